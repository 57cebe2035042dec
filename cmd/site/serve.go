package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	sitehttp "github.com/nycb2b/site/internal/http"
	"github.com/nycb2b/site/internal/logging"
)

func newServeCommand(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the public and admin HTTP APIs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := c.module()
			if err != nil {
				return err
			}
			defer module.Close()

			container := module.Container()
			handler, err := container.HTTPHandler()
			if err != nil {
				return err
			}
			cfg := container.Config.HTTP
			if addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := logging.ModuleLogger(container.LoggerProvider(), logging.HTTPModule)
			if worker := container.Housekeeper(); worker != nil {
				go func() { _ = worker.Run(ctx) }()
			}
			return sitehttp.Serve(ctx, sitehttp.NewServer(cfg, handler), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Override the listen address")
	return cmd
}
