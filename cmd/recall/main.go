package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"recall/cmd/recall/app"
	"recall/internal/api"
	"recall/internal/config"
	"recall/internal/consent"
	"recall/internal/inbox"
	"recall/internal/logging"
	"recall/internal/store"
)

var (
	// Global flags
	verbose    bool
	backendURL string
	dataDir    string

	// Logger for the non-interactive commands
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "recall - a memory assistant for the people you talk to",
	Long: `recall keeps track of the people you meet and what was said.

Recordings dropped into the inbox are transcribed and face-matched by the
backend; the terminal interface lets you browse people, replay past
conversations and jump straight to highlighted moments.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "recall" && cmd.CalledAs() == "recall" {
			return nil
		}

		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive interface
		return runInterface()
	},
}

// consentCmd groups the agreement inspection commands
var consentCmd = &cobra.Command{
	Use:   "consent",
	Short: "Inspect or reset the stored agreement",
}

var consentStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the agreement has been recorded",
	RunE:  consentStatus,
}

var consentResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the stored agreement so the next launch asks again",
	RunE:  consentReset,
}

// peopleCmd lists everyone the backend remembers
var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List everyone the backend remembers",
	RunE:  listPeople,
}

// statusCmd shows system status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recall system status",
	RunE:  showStatus,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend base URL (or set RECALL_BACKEND_URL)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default: $RECALL_HOME or ~/.recall)")

	// Consent subcommands
	consentCmd.AddCommand(consentStatusCmd)
	consentCmd.AddCommand(consentResetCmd)

	// Add commands to root
	rootCmd.AddCommand(consentCmd)
	rootCmd.AddCommand(peopleCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the data directory and loads config.yaml from it,
// applying flag overrides on top of the file and environment.
func loadConfig() (*config.Config, string, error) {
	dir := dataDir
	if dir == "" {
		var err error
		dir, err = config.DataDir()
		if err != nil {
			return nil, "", err
		}
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return nil, "", err
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
	}
	cfg.ResolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, dir, nil
}

// runInterface wires the stores, the backend client and the inbox
// watcher together and hands them to the interactive interface.
func runInterface() error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging unavailable: %v\n", err)
	}
	defer logging.CloseAll()
	if err := logging.InitAudit(); err != nil {
		logging.BootWarn("Audit log unavailable: %v", err)
	}
	defer logging.CloseAudit()

	settings, err := store.NewSettingsStore(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer settings.Close()

	manager := consent.NewManager(settings, cfg.GetConsentCheckTimeout(), cfg.GetConsentWriteTimeout())
	client := api.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout(), cfg.Backend.RetryMax)

	sessionCtx, cancelSession := context.WithTimeout(context.Background(), cfg.GetConsentWriteTimeout())
	if err := settings.Set(sessionCtx, "last_session", client.SessionID()); err != nil {
		logging.StoreWarn("Failed to record session id: %v", err)
	}
	cancelSession()

	// The watcher is optional: a broken inbox directory degrades the
	// upload tab, it does not block the launch.
	var watcher *inbox.Watcher
	if cfg.Inbox.Enabled {
		w, werr := inbox.New(cfg.Inbox.Dir, cfg.GetInboxDebounce())
		if werr != nil {
			logging.InboxWarn("Inbox watcher unavailable: %v", werr)
		} else if serr := w.Start(context.Background()); serr != nil {
			logging.InboxWarn("Inbox watcher failed to start: %v", serr)
		} else {
			watcher = w
			defer watcher.Stop()
		}
	}

	logging.Boot("recall %s starting (backend %s)", app.Version, cfg.Backend.BaseURL)
	audit := logging.AuditWithSession(client.SessionID())
	audit.SessionStart(client.SessionID())
	started := time.Now()
	defer func() {
		audit.SessionEnd(client.SessionID(), time.Since(started).Milliseconds())
		logging.Boot("recall shut down after %s", time.Since(started).Round(time.Second))
	}()

	model := app.New(app.Options{
		Client:  client,
		Consent: manager,
		Inbox:   watcher,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}

// consentStatus reports whether the agreement has been recorded
func consentStatus(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	settings, err := store.NewSettingsStore(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer settings.Close()

	manager := consent.NewManager(settings, cfg.GetConsentCheckTimeout(), cfg.GetConsentWriteTimeout())
	accepted := manager.CheckStatus(context.Background())
	logger.Info("Consent status checked", zap.Bool("accepted", accepted))

	if accepted {
		fmt.Println("Agreement recorded. recall starts straight into the interface.")
	} else {
		fmt.Println("Agreement not recorded. The next launch will show the agreement form.")
	}
	return nil
}

// consentReset forgets the stored agreement
func consentReset(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	settings, err := store.NewSettingsStore(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer settings.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetConsentWriteTimeout())
	defer cancel()
	if err := settings.Delete(ctx, consent.Key); err != nil {
		return fmt.Errorf("failed to reset agreement: %w", err)
	}

	logger.Info("Consent reset", zap.String("db", cfg.Storage.DatabasePath))
	fmt.Println("Agreement forgotten. The next launch will ask again.")
	return nil
}

// listPeople prints everyone the backend has on file
func listPeople(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout(), cfg.Backend.RetryMax)
	logger.Info("Listing people", zap.String("backend", cfg.Backend.BaseURL))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetBackendTimeout())
	defer cancel()

	people, err := client.People(ctx)
	if err != nil {
		return fmt.Errorf("backend unreachable at %s: %w", cfg.Backend.BaseURL, err)
	}

	if len(people) == 0 {
		fmt.Println("Nobody on file yet. Upload a recording to get started.")
		return nil
	}

	fmt.Printf("%d people on file:\n", len(people))
	for _, p := range people {
		if p.ImageURL != "" {
			fmt.Printf("  %s  (%s)\n", p.Name, p.ImageURL)
		} else {
			fmt.Printf("  %s\n", p.Name)
		}
	}
	return nil
}

// showStatus displays system status
func showStatus(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("recall System Status")
	fmt.Println("====================")
	fmt.Printf("Version:  %s\n", app.Version)
	fmt.Printf("Data dir: %s\n", dir)
	fmt.Printf("Database: %s\n", cfg.Storage.DatabasePath)
	fmt.Printf("Inbox:    %s\n", cfg.Inbox.Dir)
	fmt.Println()

	// Check the agreement
	settings, err := store.NewSettingsStore(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Printf("✗ Settings store unavailable: %v\n", err)
	} else {
		defer settings.Close()
		manager := consent.NewManager(settings, cfg.GetConsentCheckTimeout(), cfg.GetConsentWriteTimeout())
		if manager.CheckStatus(context.Background()) {
			fmt.Println("✓ Agreement recorded")
		} else {
			fmt.Println("✗ Agreement not recorded")
		}
	}

	// Check the backend
	client := api.NewClient(cfg.Backend.BaseURL, cfg.GetBackendTimeout(), cfg.Backend.RetryMax)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetBackendTimeout())
	defer cancel()
	if people, err := client.People(ctx); err != nil {
		fmt.Printf("✗ Backend unreachable: %s\n", cfg.Backend.BaseURL)
	} else {
		fmt.Printf("✓ Backend reachable: %s (%d people on file)\n", cfg.Backend.BaseURL, len(people))
	}

	return nil
}
