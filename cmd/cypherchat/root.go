package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sozercan/cypherchat/internal/config"
)

// Global flags, applied on top of the environment configuration.
var (
	catalogPath string
	logLevel    string
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cypherchat",
	Short: "Answer natural-language questions from a Neo4j graph",
	Long: `cypherchat turns a natural-language question into a Cypher query with a
language model, checks the generated query against a structural whitelist,
runs it on Neo4j and returns the query with its records.

Configuration is read from the environment (LLM_*, NEO4J_*, SERVER_*,
CYPHER_*, CATALOG_PATH, LOG_*).`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig is called before any command runs to load configuration
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if catalogPath != "" {
		c.Catalog.Path = catalogPath
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}

	slog.SetDefault(config.NewLogger(c.Log, os.Stderr))
	cfg = c
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Schema and examples file (overrides CATALOG_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(schemaCmd)
}
