package reactive

// Writer writes to a Cell on behalf of a Scope. Each write is the writer's
// claim on the cell; when the scope unmounts the claim is dropped and the
// cell falls back to the latest claim of a writer still mounted, or "" if
// there is none. A writer never clears output another writer now owns.
type Writer struct {
	scope *Scope
	cell  *Cell
	owner uint64
}

// NewWriter binds a writer to scope and registers its release cleanup.
func NewWriter(scope *Scope, cell *Cell) (*Writer, error) {
	w := &Writer{scope: scope, cell: cell, owner: cell.newOwner()}
	if err := scope.OnCleanup(w.release); err != nil {
		return nil, err
	}
	return w, nil
}

// Write sets the cell while the scope is active. On an unmounted scope it
// returns a *StaleScopeError and leaves the cell untouched.
// Listeners run after the scope is released, so they may use it.
func (w *Writer) Write(value string) error {
	var notify func()
	err := w.scope.whileActive("write", func() {
		notify = w.cell.claim(w.owner, value)
	})
	if notify != nil {
		notify()
	}
	return err
}

func (w *Writer) release() {
	w.cell.release(w.owner)()
}

// WriteScoped is NewWriter followed by Write.
func WriteScoped(scope *Scope, cell *Cell, value string) (*Writer, error) {
	w, err := NewWriter(scope, cell)
	if err != nil {
		return nil, err
	}
	if err := w.Write(value); err != nil {
		return nil, err
	}
	return w, nil
}
