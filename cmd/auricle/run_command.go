package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:       "run <stage>",
		Short:     "Run one pipeline stage immediately",
		Long:      "Runs a single pass of one pipeline stage against the local corpus, without the daemon.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"resolve", "fetch", "enrich", "aggregate", "narrate"},
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := ctx.stages()
			if err != nil {
				return err
			}
			defer ctx.close()

			processed, err := stages.Run(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stage %s processed %d item(s).\n", args[0], processed)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Batch size override (0 uses the configured default)")
	return cmd
}
