package state

import (
	"sync"
	"time"

	"github.com/vibe-coding/cliprelay/pkg/storage"
)

// Manager caches the persisted run state for the monitor and the CLI.
type Manager struct {
	storage storage.Storage
	mu      sync.Mutex
	state   *storage.State
}

func NewManager(s storage.Storage) *Manager {
	return &Manager{storage: s}
}

// load returns the cached state, loading from storage if needed.
// Must be called with m.mu held.
func (m *Manager) load() (*storage.State, error) {
	if m.state != nil {
		return m.state, nil
	}
	state, err := m.storage.Load()
	if err != nil {
		return nil, err
	}
	m.state = state
	return state, nil
}

// update reads the state from storage, applies fn and saves it. Another
// process may have written the file since the cache was filled, so the
// cached copy is never written back. The cache only changes after a
// successful save.
// Must be called with m.mu held.
func (m *Manager) update(fn func(*storage.State)) error {
	state, err := m.storage.Load()
	if err != nil {
		return err
	}
	fn(state)
	if err := m.storage.Save(state); err != nil {
		return err
	}
	m.state = state
	return nil
}

// SetActive pauses or resumes the periodic timer.
func (m *Manager) SetActive(active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.update(func(state *storage.State) { state.Active = active })
}

// IsActive reports whether timer ticks should start the chain. A state
// that cannot be loaded counts as active.
func (m *Manager) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.load()
	if err != nil {
		return true
	}
	return state.Active
}

// RecordCapture counts one clipboard capture of the given length.
func (m *Manager) RecordCapture(length int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.update(func(state *storage.State) {
		state.Captures++
		state.LastCaptureAt = at
		state.LastCaptureLen = length
	})
}

// Status returns a copy of the current state.
func (m *Manager) Status() (storage.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.load()
	if err != nil {
		return storage.State{}, err
	}
	return *state, nil
}

// Reset clears the capture statistics.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.storage.Clear(); err != nil {
		return err
	}
	m.state = nil // invalidate cache
	return nil
}

// Reload drops the cache so the next call reads storage again.
func (m *Manager) Reload() {
	m.mu.Lock()
	m.state = nil
	m.mu.Unlock()
}
