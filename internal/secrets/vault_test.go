package secrets_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/arenlabs/aren/internal/secrets"
)

func staticLoader(vals map[string]string) secrets.Loader {
	return func() (map[string]string, error) { return vals, nil }
}

func TestVaultInitialLoad(t *testing.T) {
	v, err := secrets.NewVault(staticLoader(map[string]string{
		"OPENWEATHER_API_KEY": "k-123",
	}))
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}
	if got := v.Get("OPENWEATHER_API_KEY"); got != "k-123" {
		t.Fatalf("Get = %q, want %q", got, "k-123")
	}
}

func TestVaultLoaderFailure(t *testing.T) {
	_, err := secrets.NewVault(func() (map[string]string, error) {
		return nil, errors.New("source unavailable")
	})
	if err == nil {
		t.Fatal("NewVault succeeded with a failing loader")
	}
}

func TestVaultMissingKey(t *testing.T) {
	v, err := secrets.NewVault(staticLoader(map[string]string{"EXIST": "yes"}))
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}
	if got := v.Get("MISSING"); got != "" {
		t.Fatalf("Get for a missing key = %q, want empty", got)
	}
}

func TestVaultReloadSwapsSnapshot(t *testing.T) {
	calls := 0
	v, err := secrets.NewVault(func() (map[string]string, error) {
		calls++
		if calls == 1 {
			return map[string]string{"TOKEN": "old"}, nil
		}
		return map[string]string{"TOKEN": "new"}, nil
	})
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	if err := v.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := v.Get("TOKEN"); got != "new" {
		t.Fatalf("Get after reload = %q, want %q", got, "new")
	}
}

func TestVaultReloadFailureKeepsSnapshot(t *testing.T) {
	calls := 0
	v, err := secrets.NewVault(func() (map[string]string, error) {
		calls++
		if calls == 1 {
			return map[string]string{"KEY": "original"}, nil
		}
		return nil, errors.New("source unavailable")
	})
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	if err := v.Reload(); err == nil {
		t.Fatal("Reload succeeded with a failing loader")
	}
	if got := v.Get("KEY"); got != "original" {
		t.Fatalf("Get after failed reload = %q, want %q", got, "original")
	}
}

func TestVaultConcurrentGetAndReload(t *testing.T) {
	v, err := secrets.NewVault(staticLoader(map[string]string{"K": "V"}))
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = v.Get("K")
		}()
		go func() {
			defer wg.Done()
			_ = v.Reload()
		}()
	}
	wg.Wait()
}

func TestEnvLoaderSkipsUnset(t *testing.T) {
	t.Setenv("AREN_TEST_SECRET", "s3cret")
	loader := secrets.EnvLoader("AREN_TEST_SECRET", "AREN_TEST_ABSENT")

	snap, err := loader()
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	if snap["AREN_TEST_SECRET"] != "s3cret" {
		t.Fatalf("snapshot = %v, want AREN_TEST_SECRET present", snap)
	}
	if _, ok := snap["AREN_TEST_ABSENT"]; ok {
		t.Fatal("unset variable appeared in the snapshot")
	}
}
