// Package prefs defines the port for per-device user preference storage.
package prefs

import "context"

// Store persists the preference map for a device. Implementations load and
// save the whole map at once; preference sets are small (a handful of keys).
type Store interface {
	// Load returns the preferences saved for the device. A device with no
	// saved preferences yields an empty map, not an error.
	Load(ctx context.Context, deviceID string) (map[string]string, error)

	// Save replaces the device's preferences with the given map.
	Save(ctx context.Context, deviceID string, prefs map[string]string) error
}
