package reactive

import (
	"slices"
	"sync"
)

// Listener is called after a Cell's value changes.
type Listener func(old, new string)

type listener struct {
	id uint64
	fn Listener
}

// claim is a writer's hold on the cell's value. The most recent claim is
// the one shown.
type claim struct {
	owner uint64
	value string
}

// Cell holds the current output string shared across the component tree.
// The zero value is ready to use. Safe for concurrent use; listeners run on
// the writing goroutine after the cell's lock is released.
//
// Writers hold claims: while any writer with a live claim remains, the value
// is the latest claim's. A plain Write or Clear is unowned and drops every
// claim.
type Cell struct {
	mu        sync.Mutex
	value     string
	version   uint64 // bumped on every effective change
	listeners []listener
	nextID    uint64
	claims    []claim
	nextOwner uint64
}

// NewCell returns an empty Cell.
func NewCell() *Cell {
	return &Cell{}
}

// Read returns the current value.
func (c *Cell) Read() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Write sets the current value.
func (c *Cell) Write(value string) {
	c.mu.Lock()
	c.claims = nil
	notify := c.setLocked(value)
	c.mu.Unlock()
	notify()
}

// Clear sets the value to the empty string. Idempotent.
func (c *Cell) Clear() {
	c.Write("")
}

// Version returns a counter that increases each time the value changes.
func (c *Cell) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Subscribe registers fn to run after each change of value, in registration
// order. Writes that leave the value unchanged do not notify.
// The returned cancel func is idempotent.
func (c *Cell) Subscribe(fn Listener) (cancel func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, listener{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.listeners = slices.DeleteFunc(c.listeners, func(l listener) bool {
				return l.id == id
			})
		})
	}
}

func (c *Cell) newOwner() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextOwner++
	return c.nextOwner
}

// claim makes value owner's latest write and shows it. The returned func
// notifies listeners and must be called without any lock held.
func (c *Cell) claim(owner uint64, value string) (notify func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claims = slices.DeleteFunc(c.claims, func(cl claim) bool { return cl.owner == owner })
	c.claims = append(c.claims, claim{owner: owner, value: value})
	return c.setLocked(value)
}

// release drops owner's claim. If it was the one shown, the value falls back
// to the previous live claim, or "" when none is left.
func (c *Cell) release(owner uint64) (notify func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.claims, func(cl claim) bool { return cl.owner == owner })
	if i < 0 {
		return func() {}
	}
	top := i == len(c.claims)-1
	c.claims = slices.Delete(c.claims, i, i+1)
	if !top {
		return func() {}
	}
	next := ""
	if n := len(c.claims); n > 0 {
		next = c.claims[n-1].value
	}
	return c.setLocked(next)
}

// setLocked assigns value (c.mu held) and returns the listener notification.
func (c *Cell) setLocked(value string) func() {
	old := c.value
	if old == value {
		return func() {}
	}
	c.value = value
	c.version++
	ls := slices.Clone(c.listeners)
	return func() {
		for _, l := range ls {
			l.fn(old, value)
		}
	}
}
