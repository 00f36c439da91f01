package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sozercan/cypherchat/apimodels"
)

var translateModel string

var translateCmd = &cobra.Command{
	Use:   "translate QUESTION",
	Short: "Generate and validate a query without running it",
	Long: `Generate a query for the question and run it through validation, then
print it. Nothing is sent to Neo4j, which makes this useful for tuning the
catalog examples.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&translateModel, "model", "", "Override the configured model")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, false)
	if err != nil {
		return err
	}

	query, _, err := a.analyzer.Translate(ctx, apimodels.AskRequest{
		Question: strings.Join(args, " "),
		Options:  apimodels.AskOptions{Model: translateModel},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), query.String())
	return nil
}
