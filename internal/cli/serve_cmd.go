package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/timeledger/internal/server"
)

func newServeCmd(a *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default TIMELEDGER_ADDR or :8080)")

	return cmd
}

func runServer(ctx context.Context, a *App, addr string) error {
	if addr == "" {
		addr = a.Config.Addr
	}
	srv := server.New(a.serverServices(), a.Logger)
	return srv.Run(ctx, addr, a.Config.ShutdownTimeout)
}
