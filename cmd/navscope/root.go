package main

import (
	"context"
	"fmt"
	"time"

	"navscope/internal/config"
	"navscope/internal/logging"
	"navscope/internal/route"
	"navscope/internal/trace"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	logLevel   string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	tui := &tuiOptions{root: opts}

	cmd := &cobra.Command{
		Use:   "navscope",
		Short: "Link navigation harness with scoped cleanup",
		Long: `navscope mounts one component per selected link. Everything a component
writes to the shared output is cleared when the user navigates away.

Run without a subcommand to open the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.run(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default ./navscope.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	tui.bindFlags(cmd)

	cmd.AddCommand(newTUICmd(opts), newCheckCmd(opts), newServeCmd(opts))
	return cmd
}

// env is the wired application shared by every subcommand.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	manager *trace.Manager
	nav     *route.Navigator
}

// loadConfig reads configuration and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// setup builds the logger and tracing for cfg and registers the built-in
// links on a new navigator.
func setup(ctx context.Context, cfg *config.Config) (*env, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Dir)
	if err != nil {
		return nil, err
	}

	exporter, err := trace.NewOTLPExporter(ctx, cfg.Trace.OTLPEndpoint, cfg.Trace.ServiceName)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}
	mopts := []trace.ManagerOption{trace.WithLogger(logger.Named("trace"))}
	if exporter != nil {
		mopts = append(mopts, trace.WithExporter(exporter))
		logger.Info("exporting navigations", zap.String("endpoint", cfg.Trace.OTLPEndpoint))
	}
	manager := trace.NewManager(cfg.Trace.MaxNavigations, mopts...)

	nav := route.NewNavigator(
		route.WithLogger(logger.Named("route")),
		route.WithHistoryLimit(cfg.App.HistoryLimit),
		route.WithObserver(manager),
	)
	if err := nav.Register(route.DefaultLinks()...); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, manager: manager, nav: nav}, nil
}

// mountStart mounts the configured start link, if any.
func (e *env) mountStart(ctx context.Context) error {
	if e.cfg.App.StartLink == "" {
		return nil
	}
	if err := e.nav.SelectLink(ctx, e.cfg.App.StartLink); err != nil {
		return fmt.Errorf("mount start link: %w", err)
	}
	return nil
}

func (e *env) close() {
	e.nav.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.manager.Shutdown(ctx); err != nil {
		e.logger.Warn("trace shutdown", zap.Error(err))
	}
	_ = e.logger.Sync()
}
