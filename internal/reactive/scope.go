package reactive

import (
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ScopeState is the lifecycle state of a Scope.
type ScopeState int

const (
	// ScopeActive accepts cleanup registrations and children.
	ScopeActive ScopeState = iota
	// ScopeUnmounted is terminal.
	ScopeUnmounted
)

func (s ScopeState) String() string {
	switch s {
	case ScopeActive:
		return "active"
	case ScopeUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// Scope is the lifecycle boundary of a mounted component. Cleanups registered
// with OnCleanup run once, most recent first, when the scope unmounts.
// Safe for concurrent use.
type Scope struct {
	name   string
	parent *Scope // not owned; nil for a root
	logger *zap.Logger

	mu         sync.Mutex
	state      ScopeState
	cleanups   []func()
	children   []*Scope
	unmountErr error
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// WithLogger sets the logger used for lifecycle and panic reports.
func WithLogger(l *zap.Logger) ScopeOption {
	return func(s *Scope) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScope creates an active root scope.
func NewScope(name string, opts ...ScopeOption) *Scope {
	s := &Scope{name: name, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the scope's own name.
func (s *Scope) Name() string {
	return s.name
}

// Path returns the slash-joined names from the root down to s.
func (s *Scope) Path() string {
	var parts []string
	for cur := s; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// State returns the current lifecycle state.
func (s *Scope) State() ScopeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pending returns the number of cleanups registered and not yet run.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cleanups)
}

// OnCleanup registers fn to run when the scope unmounts.
// Returns a *StaleScopeError and registers nothing if the scope has unmounted.
func (s *Scope) OnCleanup(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScopeUnmounted {
		return &StaleScopeError{Scope: s.Path(), Op: "on_cleanup"}
	}
	s.cleanups = append(s.cleanups, fn)
	return nil
}

// Child creates a nested scope that unmounts before s does.
func (s *Scope) Child(name string) (*Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScopeUnmounted {
		return nil, &StaleScopeError{Scope: s.Path(), Op: "child"}
	}
	c := &Scope{name: name, parent: s, logger: s.logger}
	s.children = append(s.children, c)
	return c, nil
}

// Unmount tears the scope down: children first (most recent first), then the
// scope's own cleanups in reverse registration order. Only the first call has
// any effect. A panicking cleanup is recovered and logged; the rest still run.
func (s *Scope) Unmount() {
	s.mu.Lock()
	if s.state == ScopeUnmounted {
		s.mu.Unlock()
		return
	}
	s.state = ScopeUnmounted
	children := s.children
	cleanups := s.cleanups
	s.children = nil
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Unmount()
	}

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		if err := s.runCleanup(i, cleanups[i]); err != nil {
			errs = append(errs, err)
		}
	}

	s.mu.Lock()
	s.unmountErr = errors.Join(errs...)
	s.mu.Unlock()

	if s.parent != nil {
		s.parent.detach(s)
	}
	s.logger.Debug("scope unmounted",
		zap.String("scope", s.Path()),
		zap.Int("cleanups", len(cleanups)),
		zap.Int("children", len(children)))
}

// UnmountErr returns the joined CleanupPanicErrors from Unmount, or nil.
func (s *Scope) UnmountErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unmountErr
}

// whileActive runs fn with the scope held active. Unmount waits for fn.
func (s *Scope) whileActive(op string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ScopeUnmounted {
		return &StaleScopeError{Scope: s.Path(), Op: op}
	}
	fn()
	return nil
}

func (s *Scope) detach(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

func (s *Scope) runCleanup(index int, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CleanupPanicError{Scope: s.Path(), Index: index, Value: r}
			s.logger.Warn("cleanup panicked",
				zap.String("scope", s.Path()),
				zap.Int("index", index),
				zap.Any("panic", r))
		}
	}()
	fn()
	return nil
}
