// Package scenario runs the Gherkin regression suite against a Navigator.
// Feature files under features/ are embedded so the suite can run from the
// navscope binary as well as from go test.
package scenario

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"

	"navscope/internal/route"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

//go:embed features/*.feature
var Features embed.FS

// Options configures a suite run.
type Options struct {
	// Paths are feature files or directories on disk. Empty runs the
	// embedded features.
	Paths []string
	// Format is a godog formatter name: pretty, progress, junit, cucumber.
	Format string
	// Tags filters scenarios, e.g. "~@wip".
	Tags   string
	Output io.Writer
	// StartLink is mounted by "I see the app".
	StartLink string
	// NewNavigator builds the navigator for each scenario. Defaults to a
	// navigator with route.DefaultLinks.
	NewNavigator func() (*route.Navigator, error)
	Logger       *zap.Logger
	// TestingT runs each scenario as a subtest.
	TestingT *testing.T
}

// Run executes the suite and returns godog's exit status (0 on success).
func Run(opts Options) int {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Format == "" {
		opts.Format = "pretty"
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewNavigator == nil {
		logger := opts.Logger
		opts.NewNavigator = func() (*route.Navigator, error) {
			n := route.NewNavigator(route.WithLogger(logger))
			return n, n.Register(route.DefaultLinks()...)
		}
	}

	godogOpts := &godog.Options{
		Format:   opts.Format,
		Paths:    opts.Paths,
		Tags:     opts.Tags,
		Output:   opts.Output,
		Strict:   true,
		TestingT: opts.TestingT,
	}
	if len(opts.Paths) == 0 {
		godogOpts.FS = Features
		godogOpts.Paths = []string{"features"}
	}

	suite := godog.TestSuite{
		Name:                "navscope",
		ScenarioInitializer: initializer(opts),
		Options:             godogOpts,
	}
	return suite.Run()
}

// initializer wires step definitions to a fresh world per scenario.
func initializer(opts Options) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		w := &world{opts: opts}

		sc.Step(`^I see the app$`, w.iSeeTheApp)
		sc.Step(`^I select the link (.+)$`, w.iSelectTheLink)
		sc.Step(`^I select the missing link (.+)$`, w.iSelectTheMissingLink)
		sc.Step(`^I select the following links$`, w.iSelectTheFollowingLinks)
		sc.Step(`^I go back$`, w.iGoBack)
		sc.Step(`^I see the result is the string (.+)$`, w.theResultIsTheString)
		sc.Step(`^I see the result is empty$`, w.theResultIsEmpty)

		sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
			w.close()
			return ctx, nil
		})
	}
}

// world is the per-scenario state.
type world struct {
	opts Options
	nav  *route.Navigator
}

var errAppNotStarted = errors.New(`app not started: missing "Given I see the app"`)

func (w *world) iSeeTheApp(ctx context.Context) error {
	nav, err := w.opts.NewNavigator()
	if err != nil {
		return fmt.Errorf("build navigator: %w", err)
	}
	w.nav = nav
	if w.opts.StartLink == "" {
		return nil
	}
	return nav.SelectLink(ctx, w.opts.StartLink)
}

func (w *world) iSelectTheLink(ctx context.Context, label string) error {
	if w.nav == nil {
		return errAppNotStarted
	}
	return w.nav.SelectLink(ctx, unquote(label))
}

func (w *world) iSelectTheMissingLink(ctx context.Context, label string) error {
	if w.nav == nil {
		return errAppNotStarted
	}
	err := w.nav.SelectLink(ctx, unquote(label))
	if !errors.Is(err, route.ErrUnknownLink) {
		return fmt.Errorf("expected unknown link error for %s, got %v", label, err)
	}
	return nil
}

func (w *world) iSelectTheFollowingLinks(ctx context.Context, table *godog.Table) error {
	for _, row := range table.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		if err := w.iSelectTheLink(ctx, row.Cells[0].Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *world) iGoBack(ctx context.Context) error {
	if w.nav == nil {
		return errAppNotStarted
	}
	return w.nav.Back(ctx)
}

func (w *world) theResultIsTheString(want string) error {
	return w.resultEquals(unquote(want))
}

func (w *world) theResultIsEmpty() error {
	return w.resultEquals("")
}

func (w *world) resultEquals(want string) error {
	if w.nav == nil {
		return errAppNotStarted
	}
	if got := w.nav.Result(); got != want {
		return fmt.Errorf("result = %q, want %q", got, want)
	}
	return nil
}

func (w *world) close() {
	if w.nav != nil {
		w.nav.Close()
	}
}

// unquote strips one level of double quotes, so both `test1` and
// `"4091 Home"` name a link.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}
