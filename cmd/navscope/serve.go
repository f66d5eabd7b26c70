package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"navscope/internal/trace"

	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP driver until interrupted",
		Long: `Serve the navigator over HTTP:

  POST /navigate     {"label": "test1"}
  POST /back
  GET  /result
  GET  /navigations`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, root, port, cmd.Flags().Changed("port"))
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, root *rootOptions, port int, portSet bool) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	e, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.mountStart(ctx); err != nil {
		return err
	}
	if !portSet {
		port = e.cfg.Server.Port
	}

	srv := trace.NewServer(e.nav, e.manager, port, e.logger.Named("server"))
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start driver: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "navscope driver listening on :%d\n", srv.Port())

	<-ctx.Done()
	e.logger.Info("shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(stopCtx)
}
