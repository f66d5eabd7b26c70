package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// RenderKeybindHelp renders the transient hint bar shown while a leader
// sequence is pending. Returns "" when nothing can follow.
func RenderKeybindHelp(keyHandler *KeyHandler, mode AppMode) string {
	if keyHandler == nil {
		return ""
	}
	bindings := NewKeyMap(keyHandler, mode).ShortHelp()
	if len(bindings) == 0 {
		return ""
	}

	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHighlight)).Bold(true)
	h.Styles.ShortDesc = Styles.Hint
	h.Styles.ShortSeparator = Styles.Hint

	prefix := keyHandler.Sequence()
	if prefix == "" {
		prefix = LeaderSeq
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccent)).
		Padding(0, 1).
		MarginTop(1)
	return box.Render(Styles.Hint.Render(prefix) + " " + h.ShortHelpView(bindings))
}
