package ui

import (
	"strings"
	"testing"
)

func TestLinksView_ListsLinksWithIndex(t *testing.T) {
	v := NewLinksView([]string{"test1", "4091 Home"})
	out := v.View()
	for _, want := range []string{"1  test1", "2  4091 Home"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestLinksView_DigitOutOfRangeIgnored(t *testing.T) {
	v := NewLinksView([]string{"test1"})
	if _, cmd := v.Update(keyMsg("5")); cmd != nil {
		if msg, ok := cmd().(SelectLinkMsg); ok {
			t.Errorf("unexpected selection %q", msg.Label)
		}
	}
}

func TestLinksView_EnterOnEmptyList(t *testing.T) {
	v := NewLinksView(nil)
	if _, cmd := v.Update(keyMsg("enter")); cmd != nil {
		t.Error("enter with no links should do nothing")
	}
}

func TestLinksView_SelectedFollowsDigit(t *testing.T) {
	v := NewLinksView([]string{"a", "b", "c"})
	_, cmd := v.Update(keyMsg("3"))
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	if msg := cmd().(SelectLinkMsg); msg.Label != "c" {
		t.Errorf("selected %q, want c", msg.Label)
	}
	if v.Selected() != "c" {
		t.Errorf("highlight = %q, want c", v.Selected())
	}
}
