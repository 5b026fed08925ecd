// Audit logging writes structured JSONL events alongside the category
// logs. Like the category logs it is diagnostic output, only written in
// debug mode; the consent flag in the settings store stays the single
// durable product record.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType defines the type of audit event.
type AuditEventType string

const (
	// Session lifecycle
	AuditSessionStart AuditEventType = "session_start"
	AuditSessionEnd   AuditEventType = "session_end"

	// Agreement gate
	AuditConsentCheck  AuditEventType = "consent_check"
	AuditConsentAccept AuditEventType = "consent_accept"

	// Navigation
	AuditNavTab   AuditEventType = "nav_tab"
	AuditNavOpen  AuditEventType = "nav_open"
	AuditNavClose AuditEventType = "nav_close"
	AuditNavTheme AuditEventType = "nav_theme"

	// Backend traffic
	AuditAPICall AuditEventType = "api_call"

	// Recording uploads
	AuditUploadStart    AuditEventType = "upload_start"
	AuditUploadComplete AuditEventType = "upload_complete"
)

// AuditEvent is one JSONL entry in the audit log.
type AuditEvent struct {
	Timestamp  int64          `json:"ts"` // Unix milliseconds
	EventType  AuditEventType `json:"event"`
	SessionID  string         `json:"session,omitempty"`
	Target     string         `json:"target,omitempty"`
	Success    bool           `json:"success"`
	DurationMs int64          `json:"dur_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
	Message    string         `json:"msg,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes structured audit events, optionally scoped to a session.
type AuditLogger struct {
	sessionID string
}

// InitAudit opens the audit log file. No-op outside debug mode.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	auditFile.WriteString(fmt.Sprintf("# Audit log started at %s\n", time.Now().Format(time.RFC3339)))
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger.
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession creates an audit logger scoped to a launch session.
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes an audit event.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" && a.sessionID != "" {
		event.SessionID = a.sessionID
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// =============================================================================
// CONVENIENCE METHODS FOR COMMON EVENTS
// =============================================================================

// SessionStart logs the start of a launch session.
func (a *AuditLogger) SessionStart(sessionID string) {
	a.Log(AuditEvent{
		EventType: AuditSessionStart,
		SessionID: sessionID,
		Success:   true,
		Message:   fmt.Sprintf("Session started: %s", sessionID),
	})
}

// SessionEnd logs the end of a launch session.
func (a *AuditLogger) SessionEnd(sessionID string, durationMs int64) {
	a.Log(AuditEvent{
		EventType:  AuditSessionEnd,
		SessionID:  sessionID,
		Success:    true,
		DurationMs: durationMs,
		Message:    fmt.Sprintf("Session ended: %s (%dms)", sessionID, durationMs),
	})
}

// ConsentCheck logs the result of the startup consent lookup.
func (a *AuditLogger) ConsentCheck(accepted bool, durationMs int64, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditConsentCheck,
		Success:    errMsg == "",
		DurationMs: durationMs,
		Error:      errMsg,
		Fields:     map[string]any{"accepted": accepted},
		Message:    fmt.Sprintf("Consent check: accepted=%v (%dms)", accepted, durationMs),
	})
}

// ConsentAccept logs an attempt to record acceptance.
func (a *AuditLogger) ConsentAccept(success bool, durationMs int64, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditConsentAccept,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("Consent accept: success=%v (%dms)", success, durationMs),
	})
}

// NavEvent logs a navigation transition.
func (a *AuditLogger) NavEvent(eventType AuditEventType, target string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    target,
		Success:   true,
		Message:   fmt.Sprintf("Nav %s: %s", eventType, target),
	})
}

// APICall logs a backend request.
func (a *AuditLogger) APICall(endpoint string, durationMs int64, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType:  AuditAPICall,
		Target:     endpoint,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("API %s (%dms, success=%v)", endpoint, durationMs, success),
	})
}

// Upload logs a recording upload outcome.
func (a *AuditLogger) Upload(eventType AuditEventType, path string, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType: eventType,
		Target:    path,
		Success:   success,
		Error:     errMsg,
		Message:   fmt.Sprintf("Upload %s: %s (success=%v)", eventType, path, success),
	})
}
