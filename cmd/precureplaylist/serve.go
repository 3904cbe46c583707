package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/precureplaylist/internal/server"
)

// newServeCmd creates the serve command for the HTTP API.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the playlist document HTTP API",
		Long: `Serve export, import, and stored playlist endpoints over HTTP.
Run "precureplaylist auth" first to enable publishing to Spotify.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			svc, err := initializeServices(conf, true)
			if err != nil {
				log.WithError(err).Fatal("Failed to initialize services")
				return
			}
			defer svc.Close()

			if addr == "" {
				addr = conf.Server.Address()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := newAPIServer(svc)
			if err := srv.Run(ctx, addr); err != nil {
				log.WithError(err).Error("HTTP server failed")
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default SERVER_HOST:SERVER_PORT)")

	return cmd
}

func newAPIServer(svc *services) *server.Server {
	return server.New(svc.playlists, server.Options{
		DefaultFormat: svc.defaultFormat,
		UserID:        svc.userID,
		Debug:         debug,
	}, svc.logger)
}
