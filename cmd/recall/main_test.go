package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recall/internal/consent"
	"recall/internal/store"
)

func setTestGlobals(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	dataDir = t.TempDir()
	t.Cleanup(func() {
		dataDir = ""
		backendURL = ""
	})
}

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	setTestGlobals(t)
	backendURL = "http://example.com:9000"

	cfg, dir, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	if dir != dataDir {
		t.Fatalf("expected data dir %s, got %s", dataDir, dir)
	}
	if cfg.Backend.BaseURL != "http://example.com:9000" {
		t.Fatalf("expected the flag to win, got %s", cfg.Backend.BaseURL)
	}
	if !strings.HasPrefix(cfg.Storage.DatabasePath, dir) {
		t.Fatalf("expected the database under the data dir, got %s", cfg.Storage.DatabasePath)
	}
	if !strings.HasPrefix(cfg.Inbox.Dir, dir) {
		t.Fatalf("expected the inbox under the data dir, got %s", cfg.Inbox.Dir)
	}
}

func TestConsentStatusNotRecorded(t *testing.T) {
	setTestGlobals(t)

	output := captureOutput(t, func() {
		if err := consentStatus(&cobra.Command{}, nil); err != nil {
			t.Fatalf("consentStatus returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Agreement not recorded") {
		t.Fatalf("expected the not-recorded notice, got: %s", output)
	}
}

func TestConsentStatusRecorded(t *testing.T) {
	setTestGlobals(t)

	cfg, _, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	settings, err := store.NewSettingsStore(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open settings store: %v", err)
	}
	if err := settings.Set(context.Background(), consent.Key, consent.Accepted); err != nil {
		t.Fatalf("failed to seed acceptance: %v", err)
	}
	settings.Close()

	output := captureOutput(t, func() {
		if err := consentStatus(&cobra.Command{}, nil); err != nil {
			t.Fatalf("consentStatus returned error: %v", err)
		}
	})

	if !strings.Contains(output, "Agreement recorded") {
		t.Fatalf("expected the recorded notice, got: %s", output)
	}
}

func TestConsentResetForgetsAcceptance(t *testing.T) {
	setTestGlobals(t)

	cfg, _, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}
	settings, err := store.NewSettingsStore(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open settings store: %v", err)
	}
	if err := settings.Set(context.Background(), consent.Key, consent.Accepted); err != nil {
		t.Fatalf("failed to seed acceptance: %v", err)
	}
	settings.Close()

	output := captureOutput(t, func() {
		if err := consentReset(&cobra.Command{}, nil); err != nil {
			t.Fatalf("consentReset returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Agreement forgotten") {
		t.Fatalf("expected the forgotten notice, got: %s", output)
	}

	output = captureOutput(t, func() {
		if err := consentStatus(&cobra.Command{}, nil); err != nil {
			t.Fatalf("consentStatus returned error: %v", err)
		}
	})
	if !strings.Contains(output, "Agreement not recorded") {
		t.Fatalf("expected the reset to clear acceptance, got: %s", output)
	}
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}
