package consent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// MockStore implements Store for testing.
type MockStore struct {
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error

	mu   sync.Mutex
	sets []string // recorded "key=value" writes
}

func (m *MockStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", false, nil
}

func (m *MockStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.sets = append(m.sets, key+"="+value)
	m.mu.Unlock()
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

func (m *MockStore) recordedSets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sets...)
}

// memStore is a working in-memory Store for end-to-end flows.
type memStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// =============================================================================
// CHECK STATUS
// =============================================================================

func TestCheckStatus_AcceptedOnlyForExactSentinel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		found bool
		err   error
		want  bool
	}{
		{name: "exact sentinel", value: "true", found: true, want: true},
		{name: "uppercase rejected", value: "TRUE", found: true, want: false},
		{name: "title case rejected", value: "True", found: true, want: false},
		{name: "padded rejected", value: " true", found: true, want: false},
		{name: "yes rejected", value: "yes", found: true, want: false},
		{name: "numeric rejected", value: "1", found: true, want: false},
		{name: "empty value rejected", value: "", found: true, want: false},
		{name: "missing key rejected", found: false, want: false},
		{name: "store error rejected", err: errors.New("disk gone"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := &MockStore{
				GetFunc: func(ctx context.Context, key string) (string, bool, error) {
					if key != Key {
						t.Errorf("unexpected key %q", key)
					}
					return tt.value, tt.found, tt.err
				},
			}
			m := NewManager(store, 0, 0)
			if got := m.CheckStatus(context.Background()); got != tt.want {
				t.Errorf("CheckStatus=%v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckStatus_HungStoreResolvesNotAccepted(t *testing.T) {
	t.Parallel()

	store := &MockStore{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			select {
			case <-ctx.Done():
				return "", false, ctx.Err()
			case <-time.After(5 * time.Second):
				return Accepted, true, nil
			}
		},
	}
	m := NewManager(store, 20*time.Millisecond, 20*time.Millisecond)

	start := time.Now()
	if m.CheckStatus(context.Background()) {
		t.Error("hung store must resolve to not accepted")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("CheckStatus took %v, timeout did not bound the call", elapsed)
	}
}

func TestCheckStatus_IsIdempotent(t *testing.T) {
	t.Parallel()

	calls := 0
	store := &MockStore{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			calls++
			return Accepted, true, nil
		},
	}
	m := NewManager(store, 0, 0)

	for i := 0; i < 3; i++ {
		if !m.CheckStatus(context.Background()) {
			t.Fatalf("check %d flipped to not accepted", i)
		}
	}
	if calls != 3 {
		t.Errorf("store consulted %d times, want 3", calls)
	}
}

// =============================================================================
// ACCEPT
// =============================================================================

func TestAccept_WritesSentinel(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	m := NewManager(store, 0, 0)

	if err := m.Accept(context.Background()); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	sets := store.recordedSets()
	if len(sets) != 1 {
		t.Fatalf("recorded %d writes, want 1", len(sets))
	}
	if sets[0] != Key+"="+Accepted {
		t.Errorf("wrote %q, want %s=%s", sets[0], Key, Accepted)
	}
}

func TestAccept_WriteFailureSurfaces(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("disk full")
	store := &MockStore{
		SetFunc: func(ctx context.Context, key, value string) error {
			return wantErr
		},
	}
	m := NewManager(store, 0, 0)

	if err := m.Accept(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Accept error=%v, want %v", err, wantErr)
	}
}

func TestAccept_HungStoreErrors(t *testing.T) {
	t.Parallel()

	store := &MockStore{
		SetFunc: func(ctx context.Context, key, value string) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		},
	}
	m := NewManager(store, 20*time.Millisecond, 20*time.Millisecond)

	start := time.Now()
	if err := m.Accept(context.Background()); err == nil {
		t.Error("hung write must surface an error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Accept took %v, timeout did not bound the call", elapsed)
	}
}

func TestAccept_RetryAfterFailureSucceeds(t *testing.T) {
	t.Parallel()

	attempts := 0
	store := &MockStore{
		SetFunc: func(ctx context.Context, key, value string) error {
			attempts++
			if attempts == 1 {
				return errors.New("transient")
			}
			return nil
		},
	}
	m := NewManager(store, 0, 0)

	if err := m.Accept(context.Background()); err == nil {
		t.Fatal("first attempt should fail")
	}
	if err := m.Accept(context.Background()); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts=%d, want 2", attempts)
	}
}

// =============================================================================
// END TO END
// =============================================================================

// Two managers over one store stand in for two app launches.
func TestConsentFlow_AcrossLaunches(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	ctx := context.Background()

	first := NewManager(store, 0, 0)
	if first.CheckStatus(ctx) {
		t.Fatal("fresh install must not be accepted")
	}
	if err := first.Accept(ctx); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !first.CheckStatus(ctx) {
		t.Fatal("same launch: consent should now be recorded")
	}

	second := NewManager(store, 0, 0)
	if !second.CheckStatus(ctx) {
		t.Fatal("next launch must skip the agreement")
	}
}
