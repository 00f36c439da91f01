package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sozercan/cypherchat/internal/graphstore"
)

var probeSchema bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the graph schema and examples sent to the model",
	Long: `Print the schema triples and few-shot examples in the order they appear
in prompts. With --probe, count the stored relationships for each triple to
spot drift between the catalog and the data.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&probeSchema, "probe", false, "Count stored relationships for each triple")
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	desc, examples, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !probeSchema {
		for _, t := range desc.Triples() {
			fmt.Fprintln(out, t.Pattern())
		}
		if len(examples) > 0 {
			fmt.Fprintln(out)
			for _, ex := range examples {
				fmt.Fprintf(out, "Q: %s\nA: %s\n", ex.Question, ex.Query)
			}
		}
		return nil
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(ctx)

	coverage, err := graphstore.ProbeSchema(ctx, store, desc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tCOUNT")
	for _, c := range coverage {
		fmt.Fprintf(w, "%s\t%d\n", c.Triple.Pattern(), c.Count)
	}
	return w.Flush()
}
