package ui

import (
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// LeaderSeq is the canonical name of the leader key in sequences.
const LeaderSeq = "SPC"

type binding struct {
	cmd   tea.Cmd
	desc  string
	modes []AppMode // empty applies everywhere
}

// KeybindRegistry maps key sequences to commands. Sequences use
// spacemacs-style notation: "q", "ctrl+c", "SPC b", "SPC g 1".
type KeybindRegistry struct {
	bindings map[string]binding
	// groups labels a leader prefix that opens a submenu, e.g. "g" -> "Go to".
	groups map[string]string
}

func NewKeybindRegistry() *KeybindRegistry {
	return &KeybindRegistry{
		bindings: make(map[string]binding),
		groups:   make(map[string]string),
	}
}

// Bind registers seq with no description, replacing any existing binding.
func (r *KeybindRegistry) Bind(seq string, cmd tea.Cmd) {
	r.BindWithDescForMode(seq, cmd, "", nil)
}

// BindWithDesc registers seq for every mode.
func (r *KeybindRegistry) BindWithDesc(seq string, cmd tea.Cmd, desc string) {
	r.BindWithDescForMode(seq, cmd, desc, nil)
}

// BindWithDescForMode registers seq; its hint shows only in modes.
func (r *KeybindRegistry) BindWithDescForMode(seq string, cmd tea.Cmd, desc string, modes []AppMode) {
	r.bindings[normalizeSeq(seq)] = binding{cmd: cmd, desc: desc, modes: modes}
}

// Group sets the hint shown for a leader key that opens a submenu.
func (r *KeybindRegistry) Group(key, label string) {
	r.groups[key] = label
}

// Unbind removes seq.
func (r *KeybindRegistry) Unbind(seq string) {
	delete(r.bindings, normalizeSeq(seq))
}

// Lookup returns the command bound to seq, or nil.
func (r *KeybindRegistry) Lookup(seq string) tea.Cmd {
	return r.bindings[normalizeSeq(seq)].cmd
}

// HasPrefix reports whether a longer binding continues seq.
func (r *KeybindRegistry) HasPrefix(seq string) bool {
	prefix := normalizeSeq(seq) + " "
	for k := range r.bindings {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// Hints returns every bound sequence with its description (or the sequence itself).
func (r *KeybindRegistry) Hints() map[string]string {
	out := make(map[string]string, len(r.bindings))
	for seq, b := range r.bindings {
		if b.cmd == nil {
			continue
		}
		out[seq] = b.hint(seq)
	}
	return out
}

// LeaderHints returns the next keys available after currentSeq ("" means
// just after SPC), filtered by mode. A key that opens a submenu is labelled
// with its group name.
func (r *KeybindRegistry) LeaderHints(currentSeq string, mode AppMode) map[string]string {
	prefix := LeaderSeq + " "
	if currentSeq != "" && normalizeSeq(currentSeq) != LeaderSeq {
		prefix = normalizeSeq(currentSeq) + " "
	}
	out := make(map[string]string)
	for seq, b := range r.bindings {
		if b.cmd == nil || !strings.HasPrefix(seq, prefix) || !b.appliesTo(mode) {
			continue
		}
		next := strings.Fields(strings.TrimPrefix(seq, prefix))[0]
		if r.HasPrefix(prefix + next) {
			label, ok := r.groups[next]
			if !ok {
				label = next + "…"
			}
			out[next] = label
			continue
		}
		out[next] = b.hint(seq)
	}
	return out
}

func (b binding) hint(seq string) string {
	if b.desc != "" {
		return b.desc
	}
	return seq
}

func (b binding) appliesTo(mode AppMode) bool {
	return len(b.modes) == 0 || slices.Contains(b.modes, mode)
}

// normalizeSeq maps tea key names to sequence notation ("space" -> "SPC").
func normalizeSeq(seq string) string {
	parts := strings.Fields(seq)
	for i, p := range parts {
		parts[i] = keyToSeqPart(p)
	}
	if len(parts) == 0 && strings.Contains(seq, " ") {
		return LeaderSeq
	}
	return strings.Join(parts, " ")
}

func keyToSeqPart(s string) string {
	if s == " " || s == "space" {
		return LeaderSeq
	}
	return s
}

// KeyHandler tracks leader state and dispatches keys to the registry.
type KeyHandler struct {
	Registry      *KeybindRegistry
	LeaderKey     string // tea.KeyMsg.String() of the leader; Bubble Tea reports space as " "
	LeaderWaiting bool
	Buffer        []string
}

func NewKeyHandler(reg *KeybindRegistry) *KeyHandler {
	return &KeyHandler{Registry: reg, LeaderKey: " "}
}

// Sequence returns the pending leader sequence, e.g. "SPC g".
func (h *KeyHandler) Sequence() string {
	return strings.Join(h.Buffer, " ")
}

// Handle processes a key. consumed means views must not see it.
func (h *KeyHandler) Handle(msg tea.KeyMsg) (consumed bool, cmd tea.Cmd) {
	s := msg.String()

	if s == "esc" {
		if !h.LeaderWaiting {
			return false, nil
		}
		h.reset()
		return true, nil
	}

	if s == h.LeaderKey && !h.LeaderWaiting {
		h.LeaderWaiting = true
		h.Buffer = []string{LeaderSeq}
		return true, nil
	}

	if h.LeaderWaiting {
		h.Buffer = append(h.Buffer, keyToSeqPart(s))
		seq := h.Sequence()
		if c := h.Registry.Lookup(seq); c != nil {
			h.reset()
			return true, c
		}
		if !h.Registry.HasPrefix(seq) {
			h.reset()
		}
		return true, nil
	}

	if c := h.Registry.Lookup(keyToSeqPart(s)); c != nil {
		return true, c
	}
	return false, nil
}

func (h *KeyHandler) reset() {
	h.LeaderWaiting = false
	h.Buffer = nil
}

// KeyMap adapts the pending leader hints to bubbles/help.
type KeyMap struct {
	keyHandler *KeyHandler
	mode       AppMode
}

var _ help.KeyMap = (*KeyMap)(nil)

func NewKeyMap(keyHandler *KeyHandler, mode AppMode) *KeyMap {
	return &KeyMap{keyHandler: keyHandler, mode: mode}
}

// ShortHelp returns the hints for the next key, sorted, followed by esc.
func (km *KeyMap) ShortHelp() []key.Binding {
	if km.keyHandler == nil || km.keyHandler.Registry == nil {
		return nil
	}
	hints := km.keyHandler.Registry.LeaderHints(km.keyHandler.Sequence(), km.mode)
	if len(hints) == 0 {
		return nil
	}
	keys := make([]string, 0, len(hints))
	for k := range hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]key.Binding, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, key.NewBinding(key.WithKeys(k), key.WithHelp(k, hints[k])))
	}
	return append(out, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")))
}

func (km *KeyMap) FullHelp() [][]key.Binding {
	short := km.ShortHelp()
	if len(short) == 0 {
		return nil
	}
	return [][]key.Binding{short}
}
