package route

// Labels and values of the built-in links.
const (
	LabelTest1  = "test1"
	LabelHome   = "4091 Home"
	Test1Result = "Test1"
)

// Test1 writes Test1Result on mount; the write is cleared on unmount.
func Test1(mc *MountContext) error {
	return mc.Write(Test1Result)
}

// Home writes nothing. Its only cleanup logs and never touches the output.
func Home(mc *MountContext) error {
	logger := mc.Logger()
	return mc.OnCleanup(func() {
		logger.Debug("home unmounted")
	})
}

// DefaultLinks returns the built-in links in display order.
func DefaultLinks() []Link {
	return []Link{
		{Label: LabelTest1, Component: Test1},
		{Label: LabelHome, Component: Home},
	}
}
