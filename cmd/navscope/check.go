package main

import (
	"fmt"

	"navscope/internal/route"
	"navscope/internal/scenario"

	"github.com/spf13/cobra"
)

type checkOptions struct {
	root   *rootOptions
	format string
	tags   string
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{root: root}
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Run the cleanup feature suite",
		Long: `Run Gherkin features against a fresh navigator per scenario.
Without paths the built-in features are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}
	cmd.Flags().StringVarP(&opts.format, "format", "f", "pretty", "output format: pretty, progress, junit, cucumber")
	cmd.Flags().StringVarP(&opts.tags, "tags", "t", "", "only run scenarios matching the tag expression")
	return cmd
}

func (o *checkOptions) run(cmd *cobra.Command, paths []string) error {
	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}
	e, err := setup(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer e.close()

	logger := e.logger.Named("scenario")
	status := scenario.Run(scenario.Options{
		Paths:     paths,
		Format:    o.format,
		Tags:      o.tags,
		Output:    cmd.OutOrStdout(),
		StartLink: e.cfg.App.StartLink,
		Logger:    logger,
		NewNavigator: func() (*route.Navigator, error) {
			n := route.NewNavigator(
				route.WithLogger(logger),
				route.WithHistoryLimit(e.cfg.App.HistoryLimit),
				route.WithObserver(e.manager),
			)
			return n, n.Register(route.DefaultLinks()...)
		},
	})
	if status != 0 {
		return fmt.Errorf("feature suite failed (status %d)", status)
	}
	return nil
}
