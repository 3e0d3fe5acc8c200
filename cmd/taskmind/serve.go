package main

import (
	"github.com/spf13/cobra"

	"github.com/taskmind/taskmind/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TaskMind HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.cfg.Server, a.db, a.providers, a.orch, a.cfg.Assistant.HistoryLimit)
		return srv.Run(cmd.Context())
	},
}
