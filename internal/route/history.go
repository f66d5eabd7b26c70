package route

// History is a bounded stack of previously mounted link labels (push/pop).
// When full, pushing drops the oldest entry.
type History struct {
	Stack []string
	Limit int // <= 0 means unbounded
}

// Push adds a label to the top of the stack.
func (h *History) Push(label string) {
	h.Stack = append(h.Stack, label)
	if h.Limit > 0 && len(h.Stack) > h.Limit {
		h.Stack = h.Stack[len(h.Stack)-h.Limit:]
	}
}

// Pop removes and returns the top label.
// Returns false if the stack is empty.
func (h *History) Pop() (string, bool) {
	if len(h.Stack) == 0 {
		return "", false
	}
	top := h.Stack[len(h.Stack)-1]
	h.Stack = h.Stack[:len(h.Stack)-1]
	return top, true
}

// Peek returns the top label without removing it.
func (h *History) Peek() (string, bool) {
	if len(h.Stack) == 0 {
		return "", false
	}
	return h.Stack[len(h.Stack)-1], true
}

// Len returns the number of labels in the stack.
func (h *History) Len() int {
	return len(h.Stack)
}
