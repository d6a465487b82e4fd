package winloop

import (
	"cmp"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

type registryEntry struct {
	factory  BackendFactory
	name     string
	priority int
}

var registry struct {
	entries map[string]registryEntry
	mu      sync.RWMutex
}

// RegisterBackend makes a backend available by name. When no backend is
// explicitly requested, registered backends are tried in order of
// descending priority (then by name), and the first that initializes is
// used.
//
// RegisterBackend is intended to be called from the init function of the
// backend package. It panics if name is empty or already registered, or if
// factory is nil.
func RegisterBackend(name string, priority int, factory BackendFactory) {
	if name == "" {
		panic("winloop: RegisterBackend: empty name")
	}
	if factory == nil {
		panic("winloop: RegisterBackend: nil factory for " + name)
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.entries[name]; ok {
		panic("winloop: RegisterBackend: called twice for " + name)
	}
	if registry.entries == nil {
		registry.entries = make(map[string]registryEntry)
	}
	registry.entries[name] = registryEntry{name: name, priority: priority, factory: factory}
}

// Backends returns the names of the registered backends, in the order they
// are tried.
func Backends() []string {
	entries := registeredBackends()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func registeredBackends() []registryEntry {
	registry.mu.RLock()
	entries := make([]registryEntry, 0, len(registry.entries))
	for _, e := range registry.entries {
		entries = append(entries, e)
	}
	registry.mu.RUnlock()
	slices.SortFunc(entries, func(a, b registryEntry) int {
		if c := cmp.Compare(b.priority, a.priority); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return entries
}

func lookupBackend(name string) (registryEntry, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	e, ok := registry.entries[name]
	return e, ok
}

// newBackend constructs the backend, preferring in order: the explicit
// factory, the explicit name, the environment, then every registered
// backend. It returns an error wrapping ErrUnknownBackend or ErrNoBackend,
// or the *BackendError of an explicitly requested backend.
func newBackend(opts *loopOptions, env envConfig, cfg BackendConfig) (Backend, string, error) {
	if opts.backendFactory != nil {
		b, err := opts.backendFactory(cfg)
		if err != nil {
			return nil, "", &BackendError{Name: "custom", Err: err}
		}
		return b, "custom", nil
	}

	name := opts.backendName
	if name == "" {
		name = env.backend
	}
	if name != "" {
		e, ok := lookupBackend(name)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q (registered: %q)", ErrUnknownBackend, name, Backends())
		}
		b, err := e.factory(cfg)
		if err != nil {
			return nil, "", &BackendError{Name: name, Err: err}
		}
		return b, name, nil
	}

	errs := []error{ErrNoBackend}
	for _, e := range registeredBackends() {
		b, err := e.factory(cfg)
		if err == nil {
			return b, e.name, nil
		}
		cfg.Logger.Debug().
			Str(`backend`, e.name).
			Err(err).
			Log(`backend unavailable`)
		errs = append(errs, &BackendError{Name: e.name, Err: err})
	}
	return nil, "", errors.Join(errs...)
}
