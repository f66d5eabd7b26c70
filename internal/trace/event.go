package trace

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Status of a recorded navigation.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Span is one phase of a navigation (unmount of the outgoing component or
// mount of the incoming one).
type Span struct {
	SpanID     string            `json:"span_id"`
	Name       string            `json:"name"`
	StartTime  time.Time         `json:"start_time"`
	Duration   time.Duration     `json:"duration"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Navigation is the trace of a single link selection.
type Navigation struct {
	TraceID   string    `json:"trace_id"`
	SpanID    string    `json:"span_id"` // root span
	Seq       uint64    `json:"seq"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Cleanups  int       `json:"cleanups"`
	Result    string    `json:"result"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	Spans     []*Span   `json:"spans"`
}

// Duration returns the wall time of the navigation, or 0 while running.
func (n *Navigation) Duration() time.Duration {
	if n.EndTime.IsZero() {
		return 0
	}
	return n.EndTime.Sub(n.StartTime)
}

func (n *Navigation) clone() *Navigation {
	c := *n
	c.Spans = make([]*Span, len(n.Spans))
	for i, s := range n.Spans {
		sc := *s
		sc.Attributes = make(map[string]string, len(s.Attributes))
		for k, v := range s.Attributes {
			sc.Attributes[k] = v
		}
		c.Spans[i] = &sc
	}
	return &c
}

// NewTraceID generates a random 16-byte trace ID as hex string (32 characters)
func NewTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// NewSpanID generates a random 8-byte span ID as hex string (16 characters)
func NewSpanID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
