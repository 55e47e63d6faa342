package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"auricle/internal/corpus"
)

func newItemCommand(ctx *commandContext) *cobra.Command {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Inspect and manage corpus items",
	}

	itemCmd.AddCommand(newItemListCommand(ctx))
	itemCmd.AddCommand(newItemShowCommand(ctx))
	itemCmd.AddCommand(newItemRetryCommand(ctx))

	return itemCmd
}

func newItemListCommand(ctx *commandContext) *cobra.Command {
	var stageFlag string
	var kindFlag string
	var limit int
	var skip int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List corpus items",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			filter := corpus.ListFilter{
				Kind:   corpus.ItemKind(strings.TrimSpace(kindFlag)),
				Offset: skip,
				Limit:  limit,
			}
			if trimmed := strings.TrimSpace(stageFlag); trimmed != "" {
				stage, err := parseStage(trimmed)
				if err != nil {
					return err
				}
				filter.Stage = &stage
			}

			items, err := store.ListItems(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("list items: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items match.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				stage := string(item.Stage)
				if stage == "" {
					stage = "pending"
				}
				rows = append(rows, []string{
					item.ID,
					stage,
					string(item.Kind),
					fmt.Sprintf("%d", item.Attempts),
					truncate(item.Title, 50),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Stage", "Kind", "Attempts", "Title"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&stageFlag, "stage", "", "Filter by stage (pending, fetched, enriched, aggregated, narrated, failed)")
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Filter by kind (original, reprint, ai-aggregate)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of items to show")
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of items to skip")
	return cmd
}

func newItemShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			item, err := store.GetItem(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load item: %w", err)
			}
			if item == nil {
				return fmt.Errorf("item %s not found", args[0])
			}

			stage := string(item.Stage)
			if stage == "" {
				stage = "pending"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %s\n", item.ID)
			fmt.Fprintf(out, "Feed:      %s\n", item.FeedRef)
			fmt.Fprintf(out, "Stage:     %s\n", stage)
			fmt.Fprintf(out, "Kind:      %s\n", item.Kind)
			fmt.Fprintf(out, "Title:     %s\n", item.Title)
			fmt.Fprintf(out, "URL:       %s\n", item.URL)
			fmt.Fprintf(out, "Tags:      %s\n", strings.Join(item.Tags, ", "))
			fmt.Fprintf(out, "Active:    %s\n", yesNo(item.Active))
			fmt.Fprintf(out, "Attempts:  %d\n", item.Attempts)
			if item.AudioURL != "" {
				fmt.Fprintf(out, "Audio:     %s\n", item.AudioURL)
			}
			if item.LastError != "" {
				fmt.Fprintf(out, "Last err:  %s\n", item.LastError)
			}
			if item.AIAbstract != "" {
				fmt.Fprintf(out, "Abstract:  %s\n", truncate(item.AIAbstract, 200))
			}
			return nil
		},
	}
}

func newItemRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Reset failed items for another pass",
		Long:  "Resets the listed failed items back to their pre-failure stage. Without arguments, resets every failed item.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			reset, err := store.RetryFailed(cmd.Context(), args...)
			if err != nil {
				return fmt.Errorf("retry failed items: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d item(s) for retry.\n", reset)
			return nil
		},
	}
}

func parseStage(raw string) (corpus.Stage, error) {
	switch strings.ToLower(raw) {
	case "pending":
		return corpus.StageUnset, nil
	case string(corpus.StageFetched):
		return corpus.StageFetched, nil
	case string(corpus.StageEnriched):
		return corpus.StageEnriched, nil
	case string(corpus.StageAggregated):
		return corpus.StageAggregated, nil
	case string(corpus.StageNarrated):
		return corpus.StageNarrated, nil
	case string(corpus.StageFailed):
		return corpus.StageFailed, nil
	default:
		return corpus.StageUnset, fmt.Errorf("unknown stage %q", raw)
	}
}
