// Package route mounts and unmounts components in response to link
// selection. A Navigator owns the shared output cell and at most one mounted
// component; selecting a link fully unmounts the current component (running
// its scope's cleanups) before the target component's body runs.
package route

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"navscope/internal/reactive"

	"go.uber.org/zap"
)

var (
	// ErrUnknownLink is returned when selecting a label that was never registered.
	ErrUnknownLink = errors.New("unknown link")
	// ErrDuplicateLink is returned when registering a label twice.
	ErrDuplicateLink = errors.New("duplicate link")
	// ErrNoHistory is returned by Back when there is nothing to go back to.
	ErrNoHistory = errors.New("no navigation history")
	// ErrEmptyLabel is returned when registering a link without a label.
	ErrEmptyLabel = errors.New("link label is empty")
)

// DefaultHistoryLimit bounds the back stack when no limit is configured.
const DefaultHistoryLimit = 32

type mounted struct {
	label string
	scope *reactive.Scope
}

// Navigator is the navigation harness. Navigations are serialized: cleanup of
// the outgoing component never interleaves with the mount of the incoming one.
type Navigator struct {
	mu        sync.Mutex
	links     map[string]Link
	order     []string
	output    *reactive.Cell
	current   *mounted
	history   History
	observers []Observer
	logger    *zap.Logger
	seq       uint64
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the navigator's logger. Scopes inherit it.
func WithLogger(l *zap.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithObserver adds an observer for navigation events.
func WithObserver(o Observer) Option {
	return func(n *Navigator) {
		if o != nil {
			n.observers = append(n.observers, o)
		}
	}
}

// WithHistoryLimit bounds the back stack. limit <= 0 keeps the default.
func WithHistoryLimit(limit int) Option {
	return func(n *Navigator) {
		if limit > 0 {
			n.history.Limit = limit
		}
	}
}

// WithOutput makes the navigator share an existing output cell.
func WithOutput(c *reactive.Cell) Option {
	return func(n *Navigator) {
		if c != nil {
			n.output = c
		}
	}
}

// NewNavigator creates a navigator with no links and nothing mounted.
func NewNavigator(opts ...Option) *Navigator {
	n := &Navigator{
		links:   make(map[string]Link),
		output:  reactive.NewCell(),
		history: History{Limit: DefaultHistoryLimit},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Register adds links. Labels must be non-empty and unique; on error no link
// from this call is registered.
func (n *Navigator) Register(links ...Link) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	seen := make(map[string]bool, len(links))
	for _, l := range links {
		if l.Label == "" {
			return ErrEmptyLabel
		}
		if _, ok := n.links[l.Label]; ok || seen[l.Label] {
			return fmt.Errorf("%w: %q", ErrDuplicateLink, l.Label)
		}
		if l.Component == nil {
			return fmt.Errorf("link %q: nil component", l.Label)
		}
		seen[l.Label] = true
	}
	for _, l := range links {
		n.links[l.Label] = l
		n.order = append(n.order, l.Label)
	}
	return nil
}

// Links returns registered links in registration order.
func (n *Navigator) Links() []Link {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Link, 0, len(n.order))
	for _, label := range n.order {
		out = append(out, n.links[label])
	}
	return out
}

// Output returns the shared output cell.
func (n *Navigator) Output() *reactive.Cell {
	return n.output
}

// Result reads the output cell.
func (n *Navigator) Result() string {
	return n.output.Read()
}

// Current returns the label of the mounted component, or "".
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return ""
	}
	return n.current.label
}

// Snapshot returns the mounted label and the output together, with no
// navigation in between.
func (n *Navigator) Snapshot() (current, result string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil {
		current = n.current.label
	}
	return current, n.output.Read()
}

// History returns the back stack, oldest first.
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.history.Stack))
	copy(out, n.history.Stack)
	return out
}

// SelectLink unmounts the current component and mounts the one registered
// under label. An unknown label or a done ctx leaves everything untouched.
// If the target's body fails, its scope is unmounted, nothing is left
// mounted, and the error is returned.
func (n *Navigator) SelectLink(ctx context.Context, label string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.navigate(ctx, label, true)
}

// Back re-mounts the previously mounted link.
func (n *Navigator) Back(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	prev, ok := n.history.Peek()
	if !ok {
		return ErrNoHistory
	}
	if err := n.navigate(ctx, prev, false); err != nil {
		return err
	}
	n.history.Pop()
	return nil
}

// Close unmounts the current component, if any.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return
	}
	n.current.scope.Unmount()
	n.logger.Debug("navigator closed", zap.String("unmounted", n.current.label))
	n.current = nil
}

// navigate must be called with n.mu held.
func (n *Navigator) navigate(ctx context.Context, label string, pushHistory bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	link, ok := n.links[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLink, label)
	}

	n.seq++
	seq := n.seq
	from := ""
	if n.current != nil {
		from = n.current.label
	}
	log := n.logger.With(zap.Uint64("seq", seq), zap.String("from", from), zap.String("to", label))
	n.emit(ctx, NavigationEvent{Seq: seq, Kind: EventNavigateStart, From: from, To: label})

	if n.current != nil {
		scope := n.current.scope
		cleanups := scope.Pending()
		start := time.Now()
		scope.Unmount()
		n.current = nil
		if pushHistory {
			n.history.Push(from)
		}
		if err := scope.UnmountErr(); err != nil {
			log.Warn("outgoing component cleanup failed", zap.Error(err))
		}
		n.emit(ctx, NavigationEvent{
			Seq: seq, Kind: EventUnmount, From: from, To: label,
			Cleanups: cleanups, Elapsed: time.Since(start), Err: scope.UnmountErr(),
		})
	}

	scope := reactive.NewScope(label, reactive.WithLogger(n.logger))
	mc := &MountContext{
		label:  label,
		scope:  scope,
		output: n.output,
		logger: n.logger.With(zap.String("link", label)),
	}
	start := time.Now()
	if err := link.Component(mc); err != nil {
		scope.Unmount()
		log.Warn("mount failed", zap.Error(err))
		n.emit(ctx, NavigationEvent{
			Seq: seq, Kind: EventNavigateFailed, From: from, To: label,
			Result: n.output.Read(), Err: err,
		})
		return fmt.Errorf("mount %q: %w", label, err)
	}
	n.current = &mounted{label: label, scope: scope}
	n.emit(ctx, NavigationEvent{Seq: seq, Kind: EventMount, From: from, To: label, Elapsed: time.Since(start)})

	result := n.output.Read()
	log.Debug("navigated", zap.String("result", result))
	n.emit(ctx, NavigationEvent{Seq: seq, Kind: EventNavigateEnd, From: from, To: label, Result: result})
	return nil
}

func (n *Navigator) emit(ctx context.Context, ev NavigationEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	for _, o := range n.observers {
		o.OnNavigation(ctx, ev)
	}
}
