// Package module defines the module contract (§4.2) and the name-keyed
// registry built at task load.
//
// The registry shape — a mutex-guarded map with Register/Get/List, built
// once at startup and read-only thereafter — follows the teacher's
// pkg/vector.Registry (chosen over its tool-registry counterpart because
// vector.Registry's simpler Register/Get/List/Close shape maps directly
// onto the spec's "modules are a closed set known at build time; the
// registry is read-only after construction" invariant, with no
// predicate/matching machinery this runtime does not need).
package module

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ErrorKind is the closed module-error taxonomy from §7.
type ErrorKind string

const (
	DisallowedCommand  ErrorKind = "DisallowedCommand"
	UnsupportedEncoding ErrorKind = "UnsupportedEncoding"
	PathNotFound        ErrorKind = "PathNotFound"
	ModuleTimeout       ErrorKind = "ModuleTimeout"
	TransportFailure    ErrorKind = "TransportFailure"
	ModuleParseError    ErrorKind = "ParseError"
)

// Error is a non-fatal module-level failure, rendered into the
// conversation as "MODULE_ERROR: <kind> <detail>".
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// NewError constructs a module Error.
func NewError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Args is the argument mapping a module action receives: positional
// arguments under "0", "1", ... and key=value pairs under their key.
type Args map[string]string

// Get returns the value stored under key, or "" when there is none. It
// does not fall back to positional arguments; actions that take a single
// bare argument (e.g. "sh run <command>") read via Positional instead.
func (a Args) Get(key string) string {
	return a[key]
}

// Positional returns the i-th positional argument ("0", "1", ...).
func (a Args) Positional(i int) string {
	return a[fmt.Sprintf("%d", i)]
}

// Module is the uniform contract every built-in capability implements.
type Module interface {
	Name() string
	Version() string
	Execute(ctx context.Context, action string, args Args) (string, error)
}

// Registry is the name-keyed lookup of constructed modules, built once at
// task load and read-only afterward.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Module)}
}

// Register adds a module under its own Name(). Registering the same name
// twice is a configuration error.
func (r *Registry) Register(m Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[m.Name()]; exists {
		return fmt.Errorf("configuration: module %q registered more than once", m.Name())
	}
	r.modules[m.Name()] = m
	return nil
}

// Get returns the module registered under name. Dispatch against an
// unregistered name is a configuration error caught at task load (unknown
// module references are fatal per §4.2), so callers resolve names before
// the role engine begins using MustGet.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// MustGet resolves name at dispatch time via Get; it does not panic —
// "must" refers to the configuration-time guarantee that name was
// validated against the registry before the workflow ever runs.
func (r *Registry) MustGet(name string) (Module, error) {
	m, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("configuration: unknown module %q", name)
	}
	return m, nil
}

// Names returns the registered module names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.modules))
	for n := range r.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
