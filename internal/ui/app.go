package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"navscope/internal/route"
	"navscope/internal/trace"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// BackMsg re-mounts the previous link (SPC b).
type BackMsg struct{}

// ShowNavigationsMsg opens the navigations overlay (SPC n).
type ShowNavigationsMsg struct{}

// ResultChangedMsg is sent by Watch when the output cell changes.
type ResultChangedMsg struct {
	Old, New string
}

// AppModel is the root model. It owns the navigator for the lifetime of
// the program; every navigation runs on the Bubble Tea event loop.
type AppModel struct {
	Mode       AppMode
	Navigator  *route.Navigator
	Manager    *trace.Manager // optional; nil disables the navigations overlay
	Links      *LinksView
	KeyHandler *KeyHandler
	Overlays   OverlayStack
	Logger     *zap.Logger
	Status     string
	Err        error

	ctx           context.Context
	width, height int
}

var _ tea.Model = (*appModelAdapter)(nil)

type appModelAdapter struct {
	*AppModel
}

// NewAppModel builds the root model for nav. manager and logger may be nil.
func NewAppModel(nav *route.Navigator, manager *trace.Manager, logger *zap.Logger) *AppModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	links := nav.Links()
	labels := make([]string, len(links))
	for i, l := range links {
		labels[i] = l.Label
	}

	reg := NewKeybindRegistry()
	reg.BindWithDesc("q", tea.Quit, "Quit")
	reg.BindWithDesc("ctrl+c", tea.Quit, "Quit")
	reg.BindWithDesc("SPC q", tea.Quit, "Quit")
	reg.BindWithDescForMode("SPC b", func() tea.Msg { return BackMsg{} }, "Back", []AppMode{ModeLinks})
	if manager != nil {
		reg.BindWithDescForMode("SPC n", func() tea.Msg { return ShowNavigationsMsg{} }, "Navigations", []AppMode{ModeLinks})
	}
	reg.Group("g", "Go to")
	for i, label := range labels {
		if i >= 9 {
			break
		}
		reg.BindWithDescForMode("SPC g "+strconv.Itoa(i+1), selectLink(label), label, []AppMode{ModeLinks})
	}

	lv := NewLinksView(labels)
	lv.Current = nav.Current()
	return &AppModel{
		Mode:       ModeLinks,
		Navigator:  nav,
		Manager:    manager,
		Links:      lv,
		KeyHandler: NewKeyHandler(reg),
		Logger:     logger,
		ctx:        context.Background(),
	}
}

// AsTeaModel returns a tea.Model adapter for use with tea.NewProgram.
func (m *AppModel) AsTeaModel() tea.Model {
	return &appModelAdapter{AppModel: m}
}

// Watch forwards output cell changes, and navigation records when a
// manager is set, to send (typically tea.Program.Send). Sends happen on
// their own goroutine since changes usually originate inside Update.
func (m *AppModel) Watch(send func(tea.Msg)) (cancel func()) {
	unsubscribe := m.Navigator.Output().Subscribe(func(old, new string) {
		go send(ResultChangedMsg{Old: old, New: new})
	})
	if m.Manager == nil {
		return unsubscribe
	}
	mgr := m.Manager
	mgr.SetOnChange(func() {
		go func() { send(NavigationsUpdatedMsg{Navigations: mgr.Recent()}) }()
	})
	return func() {
		unsubscribe()
		mgr.SetOnChange(nil)
	}
}

func (a *appModelAdapter) Init() tea.Cmd {
	return a.Links.Init()
}

func (a *appModelAdapter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.Links.SetSize(msg.Width, max(msg.Height-10, 4))
		for i := range a.Overlays.Stack {
			if nv, ok := a.Overlays.Stack[i].View.(*NavigationsView); ok {
				nv.SetSize(msg.Width-2, max(msg.Height-4, 4))
			}
		}
		return a, nil
	case SelectLinkMsg:
		a.navigate("select "+msg.Label, func(ctx context.Context) error {
			return a.Navigator.SelectLink(ctx, msg.Label)
		})
		return a, nil
	case BackMsg:
		a.navigate("back", a.Navigator.Back)
		return a, nil
	case ResultChangedMsg:
		a.Logger.Debug("result changed", zap.String("old", msg.Old), zap.String("new", msg.New))
		return a, nil
	case ShowNavigationsMsg:
		a.showNavigations()
		return a, nil
	case NavigationsUpdatedMsg:
		cmd, _ := a.Overlays.UpdateTop(msg)
		return a, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if top, ok := a.Overlays.Peek(); ok {
			if top.IsDismissKey(msg.String()) {
				a.Overlays.Pop()
				a.Mode = a.topMode()
				return a, nil
			}
			cmd, _ := a.Overlays.UpdateTop(msg)
			return a, cmd
		}
		if consumed, cmd := a.KeyHandler.Handle(msg); consumed {
			return a, cmd
		}
	}

	v, cmd := a.Links.Update(msg)
	if lv, ok := v.(*LinksView); ok {
		a.Links = lv
	}
	return a, cmd
}

// navigate runs a navigation and records its outcome in the status line.
func (a *AppModel) navigate(what string, fn func(context.Context) error) {
	err := fn(a.ctx)
	a.Links.Current = a.Navigator.Current()
	a.Err = err
	switch {
	case errors.Is(err, route.ErrNoHistory):
		a.Status = "nothing to go back to"
		a.Err = nil
	case err != nil:
		a.Status = ""
		a.Logger.Warn("navigation failed", zap.String("action", what), zap.Error(err))
	default:
		a.Status = fmt.Sprintf("%s: ok", what)
	}
}

func (a *AppModel) showNavigations() {
	if a.Manager == nil {
		a.Status = "navigation tracing is disabled"
		return
	}
	nv := NewNavigationsView(a.Manager.Recent())
	if a.width > 0 {
		nv.SetSize(a.width-2, max(a.height-4, 4))
	}
	a.Overlays.Push(Overlay{View: nv, Mode: ModeNavigations, Dismiss: "esc"})
	a.Mode = ModeNavigations
}

func (a *AppModel) topMode() AppMode {
	if top, ok := a.Overlays.Peek(); ok {
		return top.Mode
	}
	return ModeLinks
}

func (a *appModelAdapter) View() string {
	var b strings.Builder
	b.WriteString(Styles.Title.Render("navscope") + "  " + Styles.Hint.Render("Press [SPC] for commands") + "\n\n")

	if top, ok := a.Overlays.Peek(); ok {
		b.WriteString(top.View.View())
		b.WriteString("\n" + Styles.Hint.Render("esc close · j/k scroll"))
		return b.String()
	}

	b.WriteString(renderResult(a.Navigator.Result()) + "\n")
	b.WriteString(a.Links.View() + "\n")
	if hist := a.Navigator.History(); len(hist) > 0 {
		b.WriteString(Styles.Hint.Render("history: ") + Styles.Muted.Render(strings.Join(hist, " → ")) + "\n")
	}
	switch {
	case a.Err != nil:
		b.WriteString(Styles.Error.Render("error: "+a.Err.Error()) + "\n")
	case a.Status != "":
		b.WriteString(Styles.Muted.Render(a.Status) + "\n")
	}
	if a.KeyHandler.LeaderWaiting {
		b.WriteString(RenderKeybindHelp(a.KeyHandler, a.Mode))
	}
	return b.String()
}

func renderResult(result string) string {
	body := Styles.Empty.Render("(empty)")
	if result != "" {
		body = Styles.Result.Render(strconv.Quote(result))
	}
	return Styles.Box.Render(Styles.Hint.Render("result ") + body)
}
