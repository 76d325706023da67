// Package persist stores the durable subset of the application state
// ({theme, selectedAPI}) under a fixed key and restores it at startup.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/apifolio/folio/internal/state"
)

// DefaultKey names the persisted record.
const DefaultKey = "app-storage"

// Backend names a Storage implementation.
type Backend string

const (
	BackendTOML   Backend = "toml"
	BackendSQLite Backend = "sqlite"
)

// Record is exactly the persisted part of state.State.
type Record struct {
	Theme       string  `toml:"theme" json:"theme"`
	SelectedAPI *string `toml:"selected_api,omitempty" json:"selectedAPI"`
}

// Storage is a key-value store for records.
type Storage interface {
	// Load returns the record for key. ok is false when none was saved.
	Load(ctx context.Context, key string) (rec Record, ok bool, err error)
	Save(ctx context.Context, key string, rec Record) error
	Close() error
}

// Open returns the storage for backend rooted at dir.
func Open(backend Backend, dir string) (Storage, error) {
	if strings.TrimSpace(dir) == "" {
		dir = defaultStorageDir
	}
	switch Backend(strings.ToLower(strings.TrimSpace(string(backend)))) {
	case "", BackendTOML:
		return NewFileStorage(dir)
	case BackendSQLite:
		resolved, err := expandPath(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve storage dir: %w", err)
		}
		return OpenSQLite(filepath.Join(resolved, "folio.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Partialize extracts the persisted fields from s.
func Partialize(s state.State) Record {
	rec := Record{Theme: string(s.Theme)}
	if s.SelectedAPI != nil {
		id := *s.SelectedAPI
		rec.SelectedAPI = &id
	}
	return rec
}

// Rehydrate builds a fresh state from the defaults and rec. Everything that
// is not in the record starts from state.Defaults.
func Rehydrate(rec Record) state.State {
	s := state.Defaults()
	if theme, ok := state.ParseTheme(rec.Theme); ok {
		s.Theme = theme
	}
	if rec.SelectedAPI != nil {
		id := *rec.SelectedAPI
		s.SelectedAPI = &id
	}
	return s
}

// Restore loads key from storage and rehydrates it. A missing or unreadable
// record yields the defaults.
func Restore(ctx context.Context, storage Storage, key string, logger *slog.Logger) state.State {
	if logger == nil {
		logger = slog.Default()
	}
	rec, ok, err := storage.Load(ctx, key)
	if err != nil {
		logger.Warn("persisted state unreadable, using defaults", "key", key, "err", err)
		return state.Defaults()
	}
	if !ok {
		return state.Defaults()
	}
	return Rehydrate(rec)
}

// Attach saves the persisted subset of the store after every transition.
// Save errors are logged and otherwise ignored. The returned function
// detaches the writer.
func Attach(store *state.Store, storage Storage, key string, logger *slog.Logger) (detach func()) {
	if logger == nil {
		logger = slog.Default()
	}
	return store.Subscribe(func(a state.Action, s state.State) {
		if err := storage.Save(context.Background(), key, Partialize(s)); err != nil {
			logger.Error("persist state failed", "key", key, "action", a.Name(), "err", err)
		}
	})
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
