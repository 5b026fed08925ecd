package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DataDir returns the recall data directory. Resolution order: the
// RECALL_HOME environment variable, a .recall directory in the current
// working directory (project-local setup), then ~/.recall.
func DataDir() (string, error) {
	if dir := os.Getenv("RECALL_HOME"); dir != "" {
		return dir, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ".recall")
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return local, nil
		}
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".recall"), nil
}

// DefaultConfigPath returns the path of config.yaml inside the data dir.
func DefaultConfigPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ResolvePaths fills the path fields that default to living under the
// data directory. Explicitly configured paths are left alone.
func (c *Config) ResolvePaths(dataDir string) {
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = filepath.Join(dataDir, "recall.db")
	}
	if c.Inbox.Dir == "" {
		c.Inbox.Dir = filepath.Join(dataDir, "inbox")
	}
}
