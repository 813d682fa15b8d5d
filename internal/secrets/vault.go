// Package secrets keeps secret material in memory behind a reloadable vault,
// so handlers never read the environment or files directly.
package secrets

import (
	"fmt"
	"sync"
)

// Loader fetches the full secret set from its source, typically the
// environment, a file, or a remote vault.
type Loader func() (map[string]string, error)

// Vault serves secrets from an in-memory snapshot that can be swapped out
// atomically by Reload.
type Vault struct {
	mu     sync.RWMutex
	snap   map[string]string
	reload Loader
}

// NewVault runs the loader once and fails if that first load fails, so a
// constructed Vault always holds a usable snapshot.
func NewVault(loader Loader) (*Vault, error) {
	snap, err := loader()
	if err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	return &Vault{snap: snap, reload: loader}, nil
}

// Get returns the secret for key, or "" when the snapshot has no entry.
func (v *Vault) Get(key string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snap[key]
}

// Reload fetches a fresh snapshot and swaps it in. On loader failure the
// current snapshot stays in place and the error is returned.
func (v *Vault) Reload() error {
	snap, err := v.reload()
	if err != nil {
		return fmt.Errorf("reload secrets: %w", err)
	}
	v.mu.Lock()
	v.snap = snap
	v.mu.Unlock()
	return nil
}
