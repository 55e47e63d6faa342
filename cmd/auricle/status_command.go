package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"auricle/internal/corpus"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show corpus statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			stats, err := store.CorpusStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("collect stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Feeds:      %d\n", stats.Feeds)
			fmt.Fprintf(out, "Items:      %d\n", stats.Items)
			fmt.Fprintf(out, "Aggregates: %d\n", stats.Aggregates)
			fmt.Fprintf(out, "Narrated:   %d\n", stats.Narrated)
			fmt.Fprintf(out, "Failed:     %d\n", stats.Failed)

			if len(stats.ByStage) == 0 {
				return nil
			}

			order := []corpus.Stage{
				corpus.StageUnset,
				corpus.StageFetched,
				corpus.StageEnriched,
				corpus.StageAggregated,
				corpus.StageNarrated,
				corpus.StageFailed,
			}
			rows := make([][]string, 0, len(order))
			for _, stage := range order {
				count, ok := stats.ByStage[stage]
				if !ok {
					continue
				}
				label := string(stage)
				if label == "" {
					label = "pending"
				}
				rows = append(rows, []string{label, fmt.Sprintf("%d", count)})
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Items"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
