// Package module defines the capability contract the process engine depends
// on and the name→factory registry that resolves a statement's module
// reference to a concrete implementation. This package treats actual module
// behavior (bringing up an interface, running a subprocess, holding a
// resource) as entirely opaque — see internal/modules/* for the reference
// implementations this repo ships to exercise the contract.
package module

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ncdsv/ncdsv/internal/value"
)

// recoverAndWrapFactory wraps factory so a panic during Init becomes an
// ordinary InstanceInitFailure instead of taking down the whole process,
// and so an instance it successfully returns has its methods protected the
// same way. A module author's mistake stays contained to that module's
// retry loop.
func recoverAndWrapFactory(name string, factory Factory) Factory {
	return func(ctx context.Context, params InitParams) (inst Instance, err error) {
		defer func() {
			if r := recover(); r != nil {
				slog.Default().Error("module panic recovered", "module", name, "method", "Init", "panic", r)
				inst, err = nil, fmt.Errorf("module %q: panic during init: %v", name, r)
			}
		}()
		inst, err = factory(ctx, params)
		if err != nil || inst == nil {
			return inst, err
		}
		return &recoveringInstance{name: name, inner: inst}, nil
	}
}

// recoveringInstance recovers panics from every Instance method, logging and
// falling back to a safe zero value rather than propagating into the
// reactor's run queue.
type recoveringInstance struct {
	name  string
	inner Instance
}

func (r *recoveringInstance) Die() {
	defer r.recover("Die")
	r.inner.Die()
}

func (r *recoveringInstance) GetVar(name string) (v value.Value, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Default().Error("module panic recovered", "module", r.name, "method", "GetVar", "panic", rec)
			v, ok = value.Value{}, false
		}
	}()
	return r.inner.GetVar(name)
}

func (r *recoveringInstance) Free() {
	defer r.recover("Free")
	r.inner.Free()
}

func (r *recoveringInstance) recover(method string) {
	if rec := recover(); rec != nil {
		slog.Default().Error("module panic recovered", "module", r.name, "method", method, "panic", rec)
	}
}

// Event is one of the three asynchronous notifications an Instance may raise
// after Init returns successfully. Events never arrive from inside Init
// itself — only from callback context dispatched by the reactor.
type Event int

const (
	// EventUp transitions a slot CHILD → ADULT.
	EventUp Event = iota
	// EventDown transitions a slot ADULT → CHILD; the instance stays alive.
	EventDown
	// EventDying transitions a slot CHILD or ADULT → DYING. Exactly one
	// died callback must follow.
	EventDying
)

func (e Event) String() string {
	switch e {
	case EventUp:
		return "up"
	case EventDown:
		return "down"
	case EventDying:
		return "dying"
	default:
		return "unknown"
	}
}

// SubprocessManager is the opaque handle to the external subprocess manager
// collaborator; it's out of scope for this repo. The core never calls
// methods on it; it only threads the handle through to modules that need
// one (e.g. internal/modules/exec). A nil SubprocessManager means "no
// subprocess manager configured" and is valid for any module that doesn't
// need one.
type SubprocessManager interface{}

// Callbacks is how an Instance reports back to the process engine that
// created it. Both fields are always non-nil when passed to Init.
type Callbacks struct {
	// OnEvent delivers one of EventUp/EventDown/EventDying. The process
	// engine posts it to the reactor's run queue and handles it there.
	OnEvent func(Event)

	// OnDied is called exactly once, after which the Instance is
	// considered dead; the engine calls Free immediately afterward.
	// isError is true if the instance's work failed, false for a clean
	// exit requested via Die.
	OnDied func(isError bool)
}

// InitParams carries everything a module instance needs to start up: the
// owning slot's identity, its resolved arguments, a logger, and the
// callbacks it reports back through.
type InitParams struct {
	// ProcessName and StatementIndex identify the owning slot, for logging
	// and for correlating instances in tests.
	ProcessName    string
	StatementIndex int

	// Args is the materialized, resolved, and deep-copied argument list.
	// The process engine keeps ownership and frees every element itself
	// once the instance has died; an instance that holds on to an element
	// keeps its own DeepCopy of it.
	Args []value.Value

	// Log is pre-seeded with process/statement attributes.
	Log *slog.Logger

	// Subprocess is the opaque subprocess-manager handle (see
	// SubprocessManager doc).
	Subprocess SubprocessManager

	Callbacks Callbacks
}

// Instance is the live handle to a running module instance.
// A module factory returns one from Init; the process engine calls Die,
// GetVar, and eventually Free on it, and never constructs one directly.
type Instance interface {
	// Die requests termination. The instance must eventually emit
	// EventDying (if it hasn't already) and then call OnDied exactly once.
	Die()

	// GetVar resolves a named variable. Only called while the slot is
	// ADULT. An empty name requests the instance's "default" variable.
	// The returned Value is freshly owned by the caller.
	GetVar(name string) (value.Value, bool)

	// Free releases the instance's resources. Called by the engine from
	// inside the died callback, after OnDied has returned.
	Free()
}

// Factory constructs and initializes one module instance. Returning an
// error is equivalent to initialization failing: the process engine treats
// it as an instance init failure and never calls any method on a non-nil
// return when err != nil.
type Factory func(ctx context.Context, params InitParams) (Instance, error)

// GlobalInitFunc runs once per module type, before any Process is
// constructed — grounded on ncd.c's func_globalinit. A failing
// GlobalInitFunc is startup-fatal: RunGlobalInit returns its error wrapped
// with the module name, and the program exits before the reactor runs.
type GlobalInitFunc func(ctx context.Context) error

// entry pairs a module's Factory with its optional GlobalInitFunc.
type entry struct {
	factory    Factory
	globalInit GlobalInitFunc
}

// Registry is the name→capability table built at startup. It is not safe
// for concurrent registration, but lookups and the registry itself are
// read-only after startup, so no locking is needed once the reactor loop
// begins.
type Registry struct {
	entries map[string]entry
	order   []string // registration order, for deterministic GlobalInit
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a module factory under the given type name. Registering the
// same name twice overwrites the previous entry but does not change its
// position in GlobalInit order.
func (r *Registry) Register(name string, factory Factory) {
	r.RegisterWithGlobalInit(name, factory, nil)
}

// RegisterWithGlobalInit adds a module factory along with a one-time
// initialization hook run by RunGlobalInit.
func (r *Registry) RegisterWithGlobalInit(name string, factory Factory, globalInit GlobalInitFunc) {
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = entry{factory: recoverAndWrapFactory(name, factory), globalInit: globalInit}
}

// Lookup returns the factory registered under name, or an UnknownModule
// error.
func (r *Registry) Lookup(name string) (Factory, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, &ConfigError{Kind: UnknownModule, Message: fmt.Sprintf("unknown module: %s", name)}
	}
	return e.factory, nil
}

// Names returns every registered module type name, in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// RunGlobalInit runs every registered module's GlobalInitFunc, in
// registration order, stopping at the first failure.
func (r *Registry) RunGlobalInit(ctx context.Context) error {
	for _, name := range r.order {
		e := r.entries[name]
		if e.globalInit == nil {
			continue
		}
		if err := e.globalInit(ctx); err != nil {
			return fmt.Errorf("module %q global init: %w", name, err)
		}
	}
	return nil
}
