// Package theme manages the high-contrast display preference.
package theme

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// StorageKey is where the preference is persisted.
const StorageKey = "contrast-mode"

// Mode is the contrast mode.
type Mode string

const (
	Normal Mode = "normal"
	High   Mode = "high"
)

// Store persists the preference.
type Store interface {
	Load(key string, dst any) (bool, error)
	Save(key string, v any) error
}

// Manager holds the current mode and mirrors every change to its store.
type Manager struct {
	mu     sync.Mutex
	mode   Mode
	store  Store
	logger *zap.Logger
}

// Load reads the saved mode, falling back to Normal when nothing usable is
// stored.
func Load(store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{mode: Normal, store: store, logger: logger}

	var saved Mode
	found, err := store.Load(StorageKey, &saved)
	switch {
	case err != nil:
		logger.Warn("ignoring unreadable contrast mode", zap.Error(err))
	case found && (saved == Normal || saved == High):
		m.mode = saved
	case found:
		logger.Warn("ignoring unknown contrast mode", zap.String("mode", string(saved)))
	}
	return m
}

func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.mode
}

// Pressed is the toggle button state: true while high contrast is on.
func (m *Manager) Pressed() bool {
	return m.Mode() == High
}

// Toggle flips the mode and persists it. The in-memory mode changes even when
// persisting fails; the error is returned so callers can report it.
func (m *Manager) Toggle() (Mode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == High {
		m.mode = Normal
	} else {
		m.mode = High
	}

	if err := m.store.Save(StorageKey, m.mode); err != nil {
		return m.mode, fmt.Errorf("saving contrast mode: %w", err)
	}
	m.logger.Debug("contrast mode changed", zap.String("mode", string(m.mode)))
	return m.mode, nil
}
