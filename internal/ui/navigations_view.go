package ui

import (
	"fmt"
	"strings"
	"time"

	"navscope/internal/trace"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// NavigationsUpdatedMsg carries a fresh snapshot of recent navigations,
// newest first.
type NavigationsUpdatedMsg struct {
	Navigations []*trace.Navigation
}

// NavigationsView shows recent navigations as a tree of phases.
type NavigationsView struct {
	navigations []*trace.Navigation
	viewport    viewport.Model
	width       int
}

var _ View = (*NavigationsView)(nil)

func NewNavigationsView(navs []*trace.Navigation) *NavigationsView {
	vp := viewport.New(60, 20)
	vp.Style = Styles.Box
	v := &NavigationsView{navigations: navs, viewport: vp, width: 60}
	v.refreshContent()
	return v
}

func (v *NavigationsView) Init() tea.Cmd {
	return nil
}

func (v *NavigationsView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case NavigationsUpdatedMsg:
		v.navigations = msg.Navigations
		v.refreshContent()
		return v, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			v.viewport.LineDown(1)
			return v, nil
		case "k", "up":
			v.viewport.LineUp(1)
			return v, nil
		case "g", "home":
			v.viewport.GotoTop()
			return v, nil
		case "G", "end":
			v.viewport.GotoBottom()
			return v, nil
		}
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

func (v *NavigationsView) View() string {
	return v.viewport.View()
}

func (v *NavigationsView) SetSize(width, height int) {
	v.width = width
	v.viewport.Width = width
	v.viewport.Height = height
	v.refreshContent()
}

func (v *NavigationsView) refreshContent() {
	if len(v.navigations) == 0 {
		v.viewport.SetContent(Styles.Empty.Render("No navigations yet"))
		return
	}
	lines := []string{Styles.Title.Render(fmt.Sprintf("Navigations (%d)", len(v.navigations))), ""}
	for _, nav := range v.navigations {
		lines = append(lines, v.renderNavigation(nav)...)
	}
	v.viewport.SetContent(strings.Join(lines, "\n"))
}

func (v *NavigationsView) renderNavigation(nav *trace.Navigation) []string {
	from := nav.From
	if from == "" {
		from = "(none)"
	}
	head := fmt.Sprintf("#%d %s → %s", nav.Seq, from, nav.To)
	head += " " + Styles.Muted.Render(formatDuration(nav.Duration()))
	head += " " + statusStyle(nav.Status).Render(statusIcon(nav.Status)+" "+nav.Status)
	lines := []string{head}

	for i, span := range nav.Spans {
		connector := "├─"
		if i == len(nav.Spans)-1 {
			connector = "└─"
		}
		line := fmt.Sprintf("  %s %s %s", connector, span.Name, Styles.Muted.Render(formatDuration(span.Duration)))
		if n, ok := span.Attributes["cleanups"]; ok {
			line += Styles.Hint.Render(" cleanups=" + n)
		}
		lines = append(lines, truncate(line, v.width))
	}
	if nav.Error != "" {
		lines = append(lines, "  "+Styles.Error.Render(nav.Error))
	} else if nav.Status == trace.StatusCompleted {
		lines = append(lines, "  "+Styles.Hint.Render(fmt.Sprintf("result=%q", nav.Result)))
	}
	return append(lines, "")
}

func statusIcon(status string) string {
	switch status {
	case trace.StatusCompleted:
		return "✓"
	case trace.StatusFailed:
		return "✗"
	default:
		return "●"
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case trace.StatusCompleted:
		return Styles.Success
	case trace.StatusFailed:
		return Styles.Error
	default:
		return Styles.Running
	}
}

// formatDuration renders sub-second durations in µs/ms.
func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
