package ui

import tea "github.com/charmbracelet/bubbletea"

// Overlay is a modal view with a dismiss key.
type Overlay struct {
	View    View
	Mode    AppMode // mode while this overlay is on top
	Dismiss string
}

// IsDismissKey reports whether key closes the overlay.
func (o *Overlay) IsDismissKey(key string) bool {
	return key == o.Dismiss || key == "q"
}

// OverlayStack is a stack of overlays; the topmost receives input first.
type OverlayStack struct {
	Stack []Overlay
}

func (s *OverlayStack) Push(o Overlay) {
	s.Stack = append(s.Stack, o)
}

func (s *OverlayStack) Pop() (Overlay, bool) {
	top, ok := s.Peek()
	if ok {
		s.Stack = s.Stack[:len(s.Stack)-1]
	}
	return top, ok
}

func (s *OverlayStack) Peek() (Overlay, bool) {
	if len(s.Stack) == 0 {
		return Overlay{}, false
	}
	return s.Stack[len(s.Stack)-1], true
}

func (s *OverlayStack) Len() int {
	return len(s.Stack)
}

// UpdateTop routes msg to the top overlay and stores the returned view.
// The bool is false when the stack is empty.
func (s *OverlayStack) UpdateTop(msg tea.Msg) (tea.Cmd, bool) {
	if len(s.Stack) == 0 {
		return nil, false
	}
	top := &s.Stack[len(s.Stack)-1]
	v, cmd := top.View.Update(msg)
	top.View = v
	return cmd, true
}
