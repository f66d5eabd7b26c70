package trace

import (
	"context"
	"strconv"
	"sync"
	"time"

	"navscope/internal/route"

	"go.uber.org/zap"
)

// DefaultMaxNavigations is the ring size used when none is given.
const DefaultMaxNavigations = 50

// Manager records navigations reported by a route.Navigator and exports
// finished ones. It implements route.Observer.
type Manager struct {
	mu       sync.RWMutex
	active   map[uint64]*Navigation // seq -> in-flight navigation
	recent   []*Navigation          // finished, oldest first
	max      int
	onChange func()
	exporter *OTLPExporter
	logger   *zap.Logger
}

var _ route.Observer = (*Manager)(nil)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithExporter sets the exporter for finished navigations. nil disables export.
func WithExporter(e *OTLPExporter) ManagerOption {
	return func(m *Manager) { m.exporter = e }
}

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager keeping the last max navigations.
func NewManager(max int, opts ...ManagerOption) *Manager {
	if max <= 0 {
		max = DefaultMaxNavigations
	}
	m := &Manager{
		active: make(map[uint64]*Navigation),
		recent: make([]*Navigation, 0, max),
		max:    max,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnNavigation implements route.Observer.
func (m *Manager) OnNavigation(ctx context.Context, ev route.NavigationEvent) {
	var finished *Navigation

	m.mu.Lock()
	switch ev.Kind {
	case route.EventNavigateStart:
		m.active[ev.Seq] = &Navigation{
			TraceID:   NewTraceID(),
			SpanID:    NewSpanID(),
			Seq:       ev.Seq,
			From:      ev.From,
			To:        ev.To,
			StartTime: ev.Time,
			Status:    StatusRunning,
		}
	case route.EventUnmount:
		if nav := m.active[ev.Seq]; nav != nil {
			nav.Cleanups = ev.Cleanups
			attrs := map[string]string{
				"scope":    ev.From,
				"cleanups": strconv.Itoa(ev.Cleanups),
			}
			if ev.Err != nil {
				attrs["error"] = ev.Err.Error()
			}
			nav.Spans = append(nav.Spans, phaseSpan("unmount "+ev.From, ev, attrs))
		}
	case route.EventMount:
		if nav := m.active[ev.Seq]; nav != nil {
			nav.Spans = append(nav.Spans, phaseSpan("mount "+ev.To, ev, map[string]string{"scope": ev.To}))
		}
	case route.EventNavigateEnd, route.EventNavigateFailed:
		if nav := m.active[ev.Seq]; nav != nil {
			delete(m.active, ev.Seq)
			nav.EndTime = ev.Time
			nav.Result = ev.Result
			nav.Status = StatusCompleted
			if ev.Kind == route.EventNavigateFailed {
				nav.Status = StatusFailed
				if ev.Err != nil {
					nav.Error = ev.Err.Error()
				}
			}
			m.addRecent(nav)
			finished = nav.clone()
		}
	}
	m.callOnChange()
	exporter := m.exporter
	m.mu.Unlock()

	if finished != nil && exporter != nil {
		exportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		if err := exporter.ExportNavigation(exportCtx, finished); err != nil {
			m.logger.Warn("export navigation failed", zap.Uint64("seq", finished.Seq), zap.Error(err))
		}
		cancel()
	}
}

// phaseSpan builds a span ending at ev.Time and lasting ev.Elapsed.
func phaseSpan(name string, ev route.NavigationEvent, attrs map[string]string) *Span {
	return &Span{
		SpanID:     NewSpanID(),
		Name:       name,
		StartTime:  ev.Time.Add(-ev.Elapsed),
		Duration:   ev.Elapsed,
		Attributes: attrs,
	}
}

// addRecent appends nav, evicting the oldest beyond max (lock held).
func (m *Manager) addRecent(nav *Navigation) {
	m.recent = append(m.recent, nav)
	if len(m.recent) > m.max {
		m.recent = m.recent[len(m.recent)-m.max:]
	}
}

// callOnChange calls the onChange callback if set (must be called with lock held)
func (m *Manager) callOnChange() {
	if m.onChange != nil {
		m.onChange()
	}
}

// Recent returns copies of finished navigations, newest first.
func (m *Manager) Recent() []*Navigation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Navigation, 0, len(m.recent))
	for i := len(m.recent) - 1; i >= 0; i-- {
		out = append(out, m.recent[i].clone())
	}
	return out
}

// Get returns a copy of the finished navigation with the given seq, or nil.
func (m *Manager) Get(seq uint64) *Navigation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, nav := range m.recent {
		if nav.Seq == seq {
			return nav.clone()
		}
	}
	return nil
}

// Active returns the number of navigations started but not finished.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// SetOnChange sets callback for state changes (thread-safe)
func (m *Manager) SetOnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Shutdown flushes pending exports and closes the OTLP exporter.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	exporter := m.exporter
	m.mu.Unlock()

	if exporter != nil {
		return exporter.Shutdown(ctx)
	}
	return nil
}
