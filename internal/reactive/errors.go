package reactive

import (
	"errors"
	"fmt"
)

// ErrStaleScope is matched by every StaleScopeError.
var ErrStaleScope = errors.New("scope already unmounted")

// StaleScopeError reports an operation attempted on a Scope that has already
// unmounted. The operation had no effect.
type StaleScopeError struct {
	Scope string // Path of the scope
	Op    string // "on_cleanup", "child", "write"
}

func (e *StaleScopeError) Error() string {
	return fmt.Sprintf("%s on scope %q: %v", e.Op, e.Scope, ErrStaleScope)
}

// Is reports whether target is ErrStaleScope.
func (e *StaleScopeError) Is(target error) bool {
	return target == ErrStaleScope
}

// CleanupPanicError records a cleanup callback that panicked during Unmount.
type CleanupPanicError struct {
	Scope string
	Index int // registration index of the callback
	Value any // recovered value
}

func (e *CleanupPanicError) Error() string {
	return fmt.Sprintf("scope %q: cleanup #%d panicked: %v", e.Scope, e.Index, e.Value)
}
