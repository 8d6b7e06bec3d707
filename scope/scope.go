// Package scope provides hierarchical release regions for manually managed
// resources.
//
// A Scope collects release functions (unmapping an arena, dropping a large
// buffer) and child scopes. Destroying a scope destroys its children first,
// then runs its own releasers in LIFO order, so everything allocated "under"
// a scope goes away in one call. This mirrors the parent/child lifetime
// discipline used for pool arenas: the pool registers its backing memory on a
// child scope and a single Destroy tears all of it down.
//
// Scopes are not safe for concurrent use; callers that share one must
// synchronize externally.
package scope

import "io"

// Scope is a release region. The zero value is not usable; create scopes with
// New or Child.
type Scope struct {
	name      string
	parent    *Scope
	children  []*Scope
	releasers []func()
	destroyed bool
}

// New creates a root scope with the given name. The name appears only in
// diagnostics.
func New(name string) *Scope {
	return &Scope{name: name}
}

// Child creates a scope nested under s. Destroying s destroys the child;
// destroying the child detaches it from s.
func (s *Scope) Child(name string) *Scope {
	c := &Scope{name: name, parent: s}
	s.children = append(s.children, c)
	return c
}

// Name returns the scope's diagnostic name.
func (s *Scope) Name() string {
	return s.name
}

// Defer registers fn to run when the scope is destroyed. Releasers run in
// LIFO order, after all child scopes have been destroyed.
func (s *Scope) Defer(fn func()) {
	if fn == nil {
		return
	}
	s.releasers = append(s.releasers, fn)
}

// DeferClose registers c's Close to run at destruction. Close errors are
// discarded; release paths have nowhere to surface them.
func (s *Scope) DeferClose(c io.Closer) {
	if c == nil {
		return
	}
	s.Defer(func() { _ = c.Close() })
}

// Destroyed reports whether Destroy has run.
func (s *Scope) Destroyed() bool {
	return s.destroyed
}

// Destroy releases everything registered under the scope: children first
// (newest first), then the scope's own releasers in LIFO order. It is
// idempotent and detaches the scope from its parent so a later parent
// Destroy does not touch it again.
func (s *Scope) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	for i := len(s.children) - 1; i >= 0; i-- {
		s.children[i].Destroy()
	}
	s.children = nil

	for i := len(s.releasers) - 1; i >= 0; i-- {
		s.releasers[i]()
	}
	s.releasers = nil

	if s.parent != nil {
		s.parent.detach(s)
		s.parent = nil
	}
}

func (s *Scope) detach(child *Scope) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
