package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// resetState clears package globals so each test starts from a cold boot.
func resetState() {
	CloseAll()
	CloseAudit()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	dataDir = ""
	config = loggingConfig{}
	logLevel = LevelInfo
	auditLogger = nil
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

// TestAllCategoriesLog tests that all categories create log files when debug_mode is true
func TestAllCategoriesLog(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: true
  categories:
    boot: true
    consent: true
    nav: true
    api: true
    store: true
    inbox: true
    session: true
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot,
		CategoryConsent,
		CategoryNav,
		CategoryAPI,
		CategoryStore,
		CategoryInbox,
		CategorySession,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}

		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	// Also test convenience functions
	Boot("Convenience boot log")
	Consent("Convenience consent log")
	Nav("Convenience nav log")
	API("Convenience api log")
	Store("Convenience store log")
	Inbox("Convenience inbox log")
	Session("Convenience session log")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

// TestDebugModeDisabled tests that no logs are created when debug_mode is false
func TestDebugModeDisabled(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: false
  categories:
    boot: true
    consent: true
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("Expected debug mode to be DISABLED (production mode)")
	}

	for _, cat := range []Category{CategoryBoot, CategoryConsent, CategoryNav} {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be DISABLED when debug_mode=false", cat)
		}
	}

	// Try to log - should be no-ops
	Boot("This should NOT be logged")
	Consent("This should NOT be logged")

	logger := Get(CategoryBoot)
	logger.Info("This should NOT be logged")
	logger.Error("This should NOT be logged")

	CloseAll()

	logsPath := filepath.Join(tempDir, "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("Expected NO log files in production mode, found %d", len(entries))
		}
	} else if !os.IsNotExist(err) {
		t.Fatalf("Stat logs dir: %v", err)
	}
}

// TestMissingConfigDefaultsToProduction tests the no-config case
func TestMissingConfigDefaultsToProduction(t *testing.T) {
	tempDir := t.TempDir()

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Initialize without config should not error: %v", err)
	}
	if IsDebugMode() {
		t.Error("Missing config must mean production mode")
	}
}

// TestCategoryToggle tests individual category enable/disable
func TestCategoryToggle(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: true
  categories:
    boot: true
    consent: true
    api: false
    inbox: false
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if !IsCategoryEnabled(CategoryConsent) {
		t.Error("consent should be enabled")
	}
	if IsCategoryEnabled(CategoryAPI) {
		t.Error("api should be DISABLED")
	}
	if IsCategoryEnabled(CategoryInbox) {
		t.Error("inbox should be DISABLED")
	}

	// Category not in config defaults to enabled in debug mode
	if !IsCategoryEnabled(CategoryNav) {
		t.Error("nav (not in config) should default to enabled")
	}

	Boot("This SHOULD be logged")
	API("This should NOT be logged")
	Inbox("This should NOT be logged")

	CloseAll()

	entries, _ := os.ReadDir(filepath.Join(tempDir, "logs"))
	hasAPILog := false
	hasBootLog := false
	for _, e := range entries {
		if strings.Contains(e.Name(), "api") {
			hasAPILog = true
		}
		if strings.Contains(e.Name(), "boot") {
			hasBootLog = true
		}
	}
	if !hasBootLog {
		t.Error("Expected boot log file")
	}
	if hasAPILog {
		t.Error("Should NOT have api log file (disabled)")
	}
}

// TestTimerLogging tests the timing helper
func TestTimerLogging(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: true
`)

	resetState()
	Initialize(tempDir)

	timer := StartTimer(CategoryAPI, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("Timer should have recorded non-zero duration")
	}

	slow := StartTimer(CategoryStore, "SlowOperation")
	time.Sleep(2 * time.Millisecond)
	if got := slow.StopWithThreshold(time.Millisecond); got <= time.Millisecond {
		t.Errorf("StopWithThreshold returned %v, want > 1ms", got)
	}

	CloseAll()
}

// TestAuditEvents tests that audit events land as parseable JSONL
func TestAuditEvents(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, `logging:
  level: debug
  debug_mode: true
`)

	resetState()
	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := InitAudit(); err != nil {
		t.Fatalf("InitAudit: %v", err)
	}

	audit := AuditWithSession("session-123")
	audit.SessionStart("session-123")
	audit.ConsentCheck(false, 12, "")
	audit.ConsentAccept(true, 30, "")
	audit.NavEvent(AuditNavOpen, "Sarah Chen")
	audit.APICall("/api/people", 45, true, "")
	audit.Upload(AuditUploadComplete, "clip.mp4", true, "")

	CloseAll()
	CloseAudit()

	entries, err := os.ReadDir(filepath.Join(tempDir, "logs"))
	if err != nil {
		t.Fatalf("read logs dir: %v", err)
	}
	var auditName string
	for _, e := range entries {
		if strings.Contains(e.Name(), "audit") {
			auditName = e.Name()
		}
	}
	if auditName == "" {
		t.Fatal("No audit log file created")
	}

	content, err := os.ReadFile(filepath.Join(tempDir, "logs", auditName))
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}

	var parsed int
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var event AuditEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Errorf("Audit line is not valid JSON: %q (%v)", line, err)
			continue
		}
		if event.SessionID != "session-123" {
			t.Errorf("Event %s missing session scope, got %q", event.EventType, event.SessionID)
		}
		parsed++
	}
	if parsed != 6 {
		t.Errorf("Expected 6 audit events, parsed %d", parsed)
	}
}

// TestAuditDisabledInProduction tests that audit is a no-op without debug mode
func TestAuditDisabledInProduction(t *testing.T) {
	tempDir := t.TempDir()

	resetState()
	Initialize(tempDir)

	if err := InitAudit(); err != nil {
		t.Fatalf("InitAudit in production should be a silent no-op: %v", err)
	}
	Audit().ConsentCheck(true, 1, "")
	CloseAudit()

	if _, err := os.Stat(filepath.Join(tempDir, "logs")); !os.IsNotExist(err) {
		t.Error("No logs directory should exist in production mode")
	}
}
