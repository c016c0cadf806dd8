// Package hook implements the request hook pipeline: named callbacks
// registered against path patterns and invoked synchronously around
// document accesses.
package hook

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Kind selects which phase of an access a hook runs in.
type Kind int

const (
	// Before hooks run ahead of registry resolution. An error from a
	// before hook aborts the access at the boundary.
	Before Kind = iota
	// After hooks run once the document has been resolved. The boundary
	// logs their errors without altering the response.
	After
)

func (k Kind) String() string {
	switch k {
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is the context structure handed to hook callbacks. The dispatcher
// forwards it opaquely; Request, Response, Document and Payload belong to
// the boundary that invoked the hooks.
//
// After hooks may replace Payload to decorate what the boundary is about
// to serialize. A hook that does so must copy the level it touches:
// Document and the original Payload alias the registry's index and are
// shared with concurrent readers.
type Event struct {
	// Path is the logical path being accessed, used for pattern matching.
	Path string
	// Request is the boundary's request object (*http.Request for the
	// REST boundary, the MCP call request for the MCP boundary).
	Request any
	// Response is the boundary's response object. After hooks only.
	Response any
	// Document is the resolved document. After hooks only.
	Document any
	// Payload is the value the boundary will serialize. After hooks only.
	Payload any
	// Elapsed is the time spent on the access so far. After hooks only.
	Elapsed time.Duration
}

// Func is a hook callback. Both kinds share this signature.
type Func func(ctx context.Context, ev *Event) error

// Registration is one registered hook, in the order it was added.
type Registration struct {
	Kind    Kind
	Pattern string
	Fn      Func
}

// Dispatcher holds ordered hook registrations and runs the ones whose
// pattern matches an accessed path. Registration is append-only: hooks
// are never replaced or removed, and several hooks may share a pattern.
//
// All methods are safe for concurrent use. Add may race with Invoke;
// hooks registered mid-invocation apply to subsequent accesses.
type Dispatcher struct {
	mu     sync.RWMutex
	before []Registration
	after  []Registration
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Add appends a hook for the given kind and pattern.
func (d *Dispatcher) Add(kind Kind, pattern string, fn Func) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg := Registration{Kind: kind, Pattern: pattern, Fn: fn}
	switch kind {
	case Before:
		d.before = append(d.before, reg)
	case After:
		d.after = append(d.after, reg)
	default:
		panic(fmt.Sprintf("hook: unknown kind %d", int(kind)))
	}
}

// Matching returns the callbacks of the given kind whose pattern matches
// path, in registration order. The returned slice is a copy and stays
// valid while other goroutines register hooks.
func (d *Dispatcher) Matching(kind Kind, path string) []Func {
	regs := d.matches(kind, path)
	fns := make([]Func, len(regs))
	for i, reg := range regs {
		fns[i] = reg.Fn
	}
	return fns
}

// Invoke synchronously runs every hook of the given kind matching ev.Path,
// in registration order, stopping at the first error. The error comes back
// wrapped with the pattern that produced it; policy belongs to the caller.
// No lock is held while callbacks run.
func (d *Dispatcher) Invoke(ctx context.Context, kind Kind, ev *Event) error {
	for _, reg := range d.matches(kind, ev.Path) {
		if err := reg.Fn(ctx, ev); err != nil {
			return fmt.Errorf("%s hook %q: %w", reg.Kind, reg.Pattern, err)
		}
	}
	return nil
}

func (d *Dispatcher) matches(kind Kind, path string) []Registration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	regs := d.before
	if kind == After {
		regs = d.after
	}
	out := make([]Registration, 0, len(regs))
	for _, reg := range regs {
		if Match(reg.Pattern, path) {
			out = append(out, reg)
		}
	}
	return out
}
