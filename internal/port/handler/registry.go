package handler

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Handler from the shared dependency bundle.
type Factory func(deps Deps) (Handler, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a handler factory available under the given capability name.
// It panics if a factory is already registered for that name, which points at
// a duplicate blank import in the providers file.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("handler: duplicate registration for %q", name))
	}
	factories[name] = f
}

// New builds the handler registered under name.
func New(name string, deps Deps) (Handler, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("handler: unknown capability %q", name)
	}
	return f(deps)
}

// BuildAll instantiates every registered handler. Construction is all or
// nothing so a misconfigured capability surfaces at startup, not mid-request.
func BuildAll(deps Deps) (map[string]Handler, error) {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]Handler, len(factories))
	for name, f := range factories {
		h, err := f(deps)
		if err != nil {
			return nil, fmt.Errorf("handler: build %q: %w", name, err)
		}
		out[name] = h
	}
	return out, nil
}

// Available returns the sorted names of all registered handlers.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
