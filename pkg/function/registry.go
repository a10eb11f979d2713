package function

import (
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// Source identifies which registry tier answered a lookup.
type Source int

const (
	SourceDialect Source = iota
	SourceDefault
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceDialect:
		return "dialect"
	case SourceDefault:
		return "default"
	default:
		return "fallback"
	}
}

// WindowPrefix is prepended to a function name when the call carries
// FILTER or OVER.
const WindowPrefix = "WINDOW_"

// Registry maps logical function names to renderers in three tiers:
// dialect-specific overrides, dialect-neutral defaults and fallbacks.
// It is populated at startup and read concurrently afterwards.
type Registry struct {
	mu        sync.RWMutex
	dialects  map[string]map[string]Function // dialect name -> function name -> fn
	defaults  map[string]Function
	fallbacks map[string]Function
	logger    *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		dialects:  make(map[string]map[string]Function),
		defaults:  make(map[string]Function),
		fallbacks: make(map[string]Function),
		logger:    logger,
	}
}

// Register registers the dialect-neutral default implementation of name.
func (r *Registry) Register(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults[strings.ToUpper(name)] = fn
}

// RegisterDialect registers an override of name for one dialect.
func (r *Registry) RegisterDialect(dialectName, name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(dialectName)
	if r.dialects[key] == nil {
		r.dialects[key] = make(map[string]Function)
	}
	r.dialects[key][strings.ToUpper(name)] = fn
}

// RegisterFallback registers the last-resort implementation of name.
func (r *Registry) RegisterFallback(name string, fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks[strings.ToUpper(name)] = fn
}

// Lookup resolves name for d (nil for dialect-neutral rendering) and reports
// the tier that answered.
func (r *Registry) Lookup(name string, d *dialect.Dialect) (Function, Source, error) {
	name = strings.ToUpper(name)
	dialectName := ""
	if d != nil {
		dialectName = strings.ToLower(d.Name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if fn, ok := r.dialects[dialectName][name]; ok {
		return fn, SourceDialect, nil
	}
	if fn, ok := r.defaults[name]; ok {
		return fn, SourceDefault, nil
	}
	if fn, ok := r.fallbacks[name]; ok {
		r.logger.Debug("function resolved through fallback", "function", name, "dialect", dialectName)
		return fn, SourceFallback, nil
	}
	return nil, 0, &UnknownFunctionError{Name: name, Dialect: dialectName}
}

// Resolve is Lookup without the tier.
func (r *Registry) Resolve(name string, d *dialect.Dialect) (Function, error) {
	fn, _, err := r.Lookup(name, d)
	return fn, err
}

// Has reports whether any tier knows name for d.
func (r *Registry) Has(name string, d *dialect.Dialect) bool {
	_, _, err := r.Lookup(name, d)
	return err == nil
}

// IsAggregate reports whether name is an aggregate for d: one of the standard
// aggregates or a Simple registered with Aggregate set.
func (r *Registry) IsAggregate(name string, d *dialect.Dialect) bool {
	if slices.Contains(aggregateNames, strings.ToUpper(name)) {
		return true
	}
	fn, err := r.Resolve(name, d)
	if err != nil {
		return false
	}
	s, ok := fn.(*Simple)
	return ok && s.Aggregate
}

// Entry describes one resolvable function.
type Entry struct {
	Name     string
	Source   Source
	Function Function
}

// Entries lists every function resolvable for d, sorted by name.
func (r *Registry) Entries(d *dialect.Dialect) []Entry {
	r.mu.RLock()
	names := make(map[string]struct{})
	for n := range r.defaults {
		names[n] = struct{}{}
	}
	for n := range r.fallbacks {
		names[n] = struct{}{}
	}
	if d != nil {
		for n := range r.dialects[strings.ToLower(d.Name)] {
			names[n] = struct{}{}
		}
	}
	r.mu.RUnlock()

	out := make([]Entry, 0, len(names))
	for n := range names {
		fn, src, err := r.Lookup(n, d)
		if err != nil {
			continue
		}
		out = append(out, Entry{Name: n, Source: src, Function: fn})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
