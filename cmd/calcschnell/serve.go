package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/calcschnell/internal/config"
	"github.com/codefionn/calcschnell/internal/logger"
	"github.com/codefionn/calcschnell/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and WebSocket calculator",
		Long: `Serve POST /api/eval, the history API, /openapi.json and a WebSocket
calculator on /ws. Changes to the config file are picked up while running.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			var store server.HistoryStore
			if st := a.optionalStore(); st != nil {
				store = st
			}

			srv, err := server.New(cmd.Context(), a.cfg, store)
			if err != nil {
				return err
			}

			watcher, err := config.Watch(a.configPath, func(cfg *config.Config) {
				if addr != "" {
					cfg.Server.Addr = addr
				}
				if a.logLevel != "" {
					cfg.LogLevel = a.logLevel
				}
				logger.Global().SetLevel(logger.ParseLevel(cfg.LogLevel))
				srv.UpdateConfig(cfg)
			})
			if err != nil {
				logger.Warn("config hot reload disabled: %v", err)
			} else {
				defer watcher.Close()
			}

			fmt.Fprintln(cmd.OutOrStdout(), color.CyanString("Serving calcschnell on http://%s", a.cfg.Server.Addr))
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr from the config)")
	return cmd
}
