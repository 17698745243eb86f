package main

import (
	"ddi/internal/app"
	"ddi/internal/pkg/port"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	serveHost     string
	serveFindPort bool
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "0.0.0.0", "Host to listen on")
	serveCmd.Flags().BoolVar(&serveFindPort, "find-port", false, "Use the next free port when app.port is taken")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Setup(envFiles...)
		if err != nil {
			return fmt.Errorf("service setup failed: %w", err)
		}

		listen := a.Config.App.Port
		if serveFindPort {
			if listen, err = port.FindAvailable(serveHost, listen, 100); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.Run(ctx, fmt.Sprintf("%s:%d", serveHost, listen))
	},
}
