package ui

// AppMode is the top-level mode, used to filter keybind hints.
type AppMode int

const (
	ModeLinks AppMode = iota
	ModeNavigations
)

func (m AppMode) String() string {
	switch m {
	case ModeLinks:
		return "Links"
	case ModeNavigations:
		return "Navigations"
	default:
		return "Unknown"
	}
}
