// Package prefsfile stores per-device user preferences as JSON files on disk.
package prefsfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists one JSON file per device under a base directory,
// named user_preferences_<device>.json. Writes replace the whole file.
type Store struct {
	mu  sync.Mutex
	dir string
}

// New creates a Store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Load returns the preferences saved for the device. A missing file yields an
// empty map.
func (s *Store) Load(_ context.Context, deviceID string) (map[string]string, error) {
	data, err := os.ReadFile(s.path(deviceID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read preferences for %s: %w", deviceID, err)
	}

	prefs := map[string]string{}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parse preferences for %s: %w", deviceID, err)
	}
	return prefs, nil
}

// Save replaces the device's preference file with the given map.
func (s *Store) Save(_ context.Context, deviceID string, prefs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal preferences for %s: %w", deviceID, err)
	}

	// Write to a temp file and rename so readers never see a partial file.
	path := s.path(deviceID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write preferences for %s: %w", deviceID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace preferences for %s: %w", deviceID, err)
	}
	return nil
}

func (s *Store) path(deviceID string) string {
	return filepath.Join(s.dir, "user_preferences_"+sanitize(deviceID)+".json")
}

// sanitize keeps device IDs filesystem-safe. Anything outside
// [a-zA-Z0-9_-] becomes an underscore, so a hostile device ID cannot
// escape the base directory.
func sanitize(deviceID string) string {
	var b strings.Builder
	for _, r := range deviceID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default_user"
	}
	return b.String()
}
