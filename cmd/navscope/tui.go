package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"navscope/internal/trace"
	"navscope/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type tuiOptions struct {
	root  *rootOptions
	serve bool
}

func (o *tuiOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.serve, "serve", false, "also start the HTTP driver on server.port")
}

func newTUICmd(root *rootOptions) *cobra.Command {
	opts := &tuiOptions{root: root}
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context())
		},
	}
	opts.bindFlags(cmd)
	return cmd
}

func (o *tuiOptions) run(ctx context.Context) error {
	// The UI owns the terminal, so logs go to a file.
	cfg, err := o.root.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = filepath.Join(os.TempDir(), "navscope")
	}

	e, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.mountStart(ctx); err != nil {
		return err
	}

	if o.serve {
		srv := trace.NewServer(e.nav, e.manager, e.cfg.Server.Port, e.logger.Named("server"))
		if err := srv.Start(); err != nil {
			return fmt.Errorf("start driver: %w", err)
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				e.logger.Warn("stop driver", zap.Error(err))
			}
		}()
		e.logger.Info("driver listening", zap.Int("port", srv.Port()))
	}

	app := ui.NewAppModel(e.nav, e.manager, e.logger.Named("ui"))
	p := tea.NewProgram(app.AsTeaModel(), tea.WithAltScreen(), tea.WithContext(ctx))
	cancel := app.Watch(p.Send)
	defer cancel()

	e.logger.Info("tui started", zap.String("log_dir", cfg.Log.Dir))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
