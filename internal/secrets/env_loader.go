package secrets

import "os"

// EnvLoader returns a Loader reading the named environment variables. Unset
// or empty variables are left out of the snapshot rather than stored as "",
// so Get still reports them as absent.
func EnvLoader(names ...string) Loader {
	return func() (map[string]string, error) {
		snap := make(map[string]string, len(names))
		for _, name := range names {
			if val := os.Getenv(name); val != "" {
				snap[name] = val
			}
		}
		return snap, nil
	}
}
