package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/observability"
	"github.com/danmuck/mlbridge/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve runtime diagnostics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			observability.InitLogger("mlbridge", cmd.ErrOrStderr())
			cr, err := flags.startRuntime(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cr, server.New(cr, cfg.Server))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server] addr)")
	return cmd
}

// serve runs the diagnostics server with the runtime lock released, so
// request handlers can take it in turn.
func serve(ctx context.Context, cr *interop.Runtime, srv *server.Server) error {
	return interop.Releasing(cr, func() error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(ctx)
		})
		g.Go(func() error {
			<-ctx.Done()
			log.Info().Msg("mlbridge: shutdown requested")
			return nil
		})
		return g.Wait()
	})
}
