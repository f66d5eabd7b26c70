package route

import (
	"navscope/internal/reactive"

	"go.uber.org/zap"
)

// Component is the mount body of a link target. It runs once per mount,
// after the previous component has fully unmounted. Any state it writes to
// the shared output must go through MountContext.Write (or a Writer bound to
// Scope) so it is cleared on unmount.
type Component func(mc *MountContext) error

// Link pairs a label with the component it mounts when selected.
type Link struct {
	Label     string
	Component Component
}

// MountContext is handed to a Component while it mounts.
type MountContext struct {
	label  string
	scope  *reactive.Scope
	output *reactive.Cell
	logger *zap.Logger
}

// Label returns the label of the link being mounted.
func (m *MountContext) Label() string { return m.label }

// Scope returns the fresh scope owned by this mount.
func (m *MountContext) Scope() *reactive.Scope { return m.scope }

// Output returns the shared output cell.
func (m *MountContext) Output() *reactive.Cell { return m.output }

// Logger returns a logger tagged with the link label.
func (m *MountContext) Logger() *zap.Logger { return m.logger }

// Write writes value to the output and arranges for it to be cleared when
// this mount's scope unmounts.
func (m *MountContext) Write(value string) error {
	_, err := reactive.WriteScoped(m.scope, m.output, value)
	return err
}

// OnCleanup registers fn on this mount's scope.
func (m *MountContext) OnCleanup(fn func()) error {
	return m.scope.OnCleanup(fn)
}
