package route

import "testing"

func TestHistory_PushPop(t *testing.T) {
	var h History
	if _, ok := h.Pop(); ok {
		t.Error("Pop on empty history returned ok")
	}
	h.Push("a")
	h.Push("b")
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if top, _ := h.Peek(); top != "b" {
		t.Errorf("Peek() = %q, want b", top)
	}
	if top, _ := h.Pop(); top != "b" {
		t.Errorf("Pop() = %q, want b", top)
	}
	if top, _ := h.Pop(); top != "a" {
		t.Errorf("Pop() = %q, want a", top)
	}
}

func TestHistory_LimitDropsOldest(t *testing.T) {
	h := History{Limit: 2}
	h.Push("a")
	h.Push("b")
	h.Push("c")
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if h.Stack[0] != "b" || h.Stack[1] != "c" {
		t.Errorf("Stack = %v, want [b c]", h.Stack)
	}
}
