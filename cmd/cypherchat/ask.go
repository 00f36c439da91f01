package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sozercan/cypherchat/apimodels"
)

var askModel string

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Answer one question and print the query and its records as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askModel, "model", "", "Override the configured model")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	resp, err := a.analyzer.Analyze(ctx, apimodels.AskRequest{
		Question: strings.Join(args, " "),
		Options:  apimodels.AskOptions{Model: askModel},
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
