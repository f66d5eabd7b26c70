package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// SelectLinkMsg asks the app to navigate to Label.
type SelectLinkMsg struct {
	Label string
}

type linkItem struct {
	index int
	label string
}

func (l linkItem) FilterValue() string { return l.label }
func (l linkItem) Title() string       { return fmt.Sprintf("%d  %s", l.index, l.label) }
func (l linkItem) Description() string { return "" }

// LinksView lists the registered links. Enter selects the highlighted link;
// digits 1-9 select directly. Current marks the mounted link.
type LinksView struct {
	list    list.Model
	Labels  []string
	Current string
}

var _ View = (*LinksView)(nil)

func NewLinksView(labels []string) *LinksView {
	l := list.New(nil, NewCompactListDelegate(), 0, 0)
	l.Title = "Links"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = Styles.Title

	v := &LinksView{list: l}
	v.SetLabels(labels)
	return v
}

// SetLabels replaces the listed links.
func (v *LinksView) SetLabels(labels []string) {
	v.Labels = labels
	items := make([]list.Item, len(labels))
	for i, label := range labels {
		items[i] = linkItem{index: i + 1, label: label}
	}
	v.list.SetItems(items)
}

// Selected returns the highlighted label, or "".
func (v *LinksView) Selected() string {
	if it, ok := v.list.SelectedItem().(linkItem); ok {
		return it.label
	}
	return ""
}

func (v *LinksView) SetSize(width, height int) {
	v.list.SetSize(width, height)
}

func (v *LinksView) Init() tea.Cmd { return nil }

func (v *LinksView) Update(msg tea.Msg) (View, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		s := km.String()
		if s == "enter" {
			if label := v.Selected(); label != "" {
				return v, selectLink(label)
			}
			return v, nil
		}
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(v.Labels) && n <= 9 {
			v.list.Select(n - 1)
			return v, selectLink(v.Labels[n-1])
		}
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *LinksView) View() string {
	if v.list.Width() == 0 {
		v.list.SetWidth(40)
	}
	if v.list.Height() == 0 {
		v.list.SetHeight(len(v.Labels) + 4)
	}
	out := v.list.View()
	if v.Current != "" {
		out += "\n" + Styles.Hint.Render("mounted: ") + Styles.Selected.Render(v.Current)
	}
	return out
}

func selectLink(label string) tea.Cmd {
	return func() tea.Msg { return SelectLinkMsg{Label: label} }
}
