// Package consent implements recall's one-time legal agreement gate.
// Acceptance is recorded once under a fixed settings key; only the exact
// sentinel value counts as recorded consent. Every ambiguous or failing
// read resolves to "not accepted" so the user is re-shown the agreement
// rather than being waved through.
package consent

import (
	"context"
	"time"

	"recall/internal/logging"
)

// Key is the settings key under which acceptance is recorded.
const Key = "consent_accepted"

// Accepted is the only stored value that counts as recorded consent.
// Any other value, a missing key, or a failed read all mean "ask again".
const Accepted = "true"

// DefaultTimeout bounds a store call when no explicit timeout is given.
const DefaultTimeout = 5 * time.Second

// Store is the durable key-value boundary the gate persists through.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Manager resolves and records the agreement decision. Store calls are
// bounded by per-operation timeouts so a hung database can never wedge
// the boot sequence.
type Manager struct {
	store        Store
	checkTimeout time.Duration
	writeTimeout time.Duration
}

// NewManager wraps store with bounded consent operations. Non-positive
// timeouts fall back to DefaultTimeout.
func NewManager(store Store, checkTimeout, writeTimeout time.Duration) *Manager {
	if checkTimeout <= 0 {
		checkTimeout = DefaultTimeout
	}
	if writeTimeout <= 0 {
		writeTimeout = DefaultTimeout
	}
	return &Manager{
		store:        store,
		checkTimeout: checkTimeout,
		writeTimeout: writeTimeout,
	}
}

// CheckStatus reports whether consent was recorded in an earlier session.
// Failures are logged and resolve to false; the caller shows the
// agreement form and the user can simply accept again.
func (m *Manager) CheckStatus(ctx context.Context) bool {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, m.checkTimeout)
	defer cancel()

	value, found, err := m.store.Get(ctx, Key)
	elapsed := time.Since(start)
	if err != nil {
		logging.ConsentWarn("Consent check failed, treating as not accepted: %v", err)
		logging.Audit().ConsentCheck(false, elapsed.Milliseconds(), err.Error())
		return false
	}

	accepted := found && value == Accepted
	if found && !accepted {
		logging.ConsentWarn("Consent flag holds unexpected value %q, treating as not accepted", value)
	}
	logging.Consent("Consent check: accepted=%v (%v)", accepted, elapsed)
	logging.Audit().ConsentCheck(accepted, elapsed.Milliseconds(), "")
	return accepted
}

// Accept records the agreement. It returns nil only after the sentinel
// is durably stored; on error the caller keeps the user on the form so
// they can retry.
func (m *Manager) Accept(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()

	if err := m.store.Set(ctx, Key, Accepted); err != nil {
		elapsed := time.Since(start)
		logging.ConsentError("Failed to record consent: %v", err)
		logging.Audit().ConsentAccept(false, elapsed.Milliseconds(), err.Error())
		return err
	}

	elapsed := time.Since(start)
	logging.Consent("Consent recorded (%v)", elapsed)
	logging.Audit().ConsentAccept(true, elapsed.Milliseconds(), "")
	return nil
}
