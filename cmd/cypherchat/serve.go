package main

import (
	"github.com/spf13/cobra"

	"github.com/sozercan/cypherchat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP API. Questions are posted to /api/v1/generate-cypher
(also /generate-cypher/) as {"question": "..."} and answered with
{"query": "...", "results": [...]}.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	srv := server.New(cfg.Server, a.analyzer,
		server.WithHealthChecker(a.store),
		server.WithCatalog(a.schema, a.examples),
		server.WithMetrics(a.registry),
	)
	return srv.Run(ctx)
}
