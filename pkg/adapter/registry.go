package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Factory creates an unconnected adapter.
type Factory func(logger *slog.Logger) Adapter

type registration struct {
	name    string
	factory Factory
}

var (
	registryMu sync.RWMutex
	// keyed by lower-cased name and alias
	registrations = make(map[string]*registration)
)

// Register makes an adapter available as target type name and under each
// alias. Lookups are case-insensitive. Adapter packages call it from init;
// registering a taken name panics.
func Register(name string, factory Factory, aliases ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	keys := make([]string, 0, len(aliases)+1)
	for _, key := range append([]string{name}, aliases...) {
		key = strings.ToLower(key)
		if prev, ok := registrations[key]; ok {
			panic(fmt.Sprintf("adapter: %q already registered by %s", key, prev.name))
		}
		keys = append(keys, key)
	}
	r := &registration{name: keys[0], factory: factory}
	for _, key := range keys {
		registrations[key] = r
	}
}

func lookup(name string) (*registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registrations[strings.ToLower(name)]
	return r, ok
}

// Get returns the factory registered under name or one of its aliases.
func Get(name string) (Factory, bool) {
	r, ok := lookup(name)
	if !ok {
		return nil, false
	}
	return r.factory, true
}

// Canonical maps an alias to the name the adapter was registered with.
func Canonical(name string) (string, bool) {
	r, ok := lookup(name)
	if !ok {
		return "", false
	}
	return r.name, true
}

// IsRegistered reports whether name or alias resolves to an adapter.
func IsRegistered(name string) bool {
	_, ok := lookup(name)
	return ok
}

// ListAdapters returns the canonical adapter names, sorted. Aliases are not listed.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make(map[string]struct{}, len(registrations))
	for _, r := range registrations {
		names[r.name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(names))
}

// NewAdapter creates an unconnected adapter for cfg.Type. A nil logger
// discards adapter logs.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, errors.New("adapter type not specified")
	}
	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{Type: cfg.Type, Available: ListAdapters()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// UnknownAdapterError reports a target type no adapter is registered for.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q (available: %s); check target.type in leapquery.yaml",
		e.Type, strings.Join(e.Available, ", "))
}
