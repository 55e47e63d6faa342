package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"auricle/internal/corpus"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Manage content feeds",
	}

	feedCmd.AddCommand(newFeedAddCommand(ctx))
	feedCmd.AddCommand(newFeedListCommand(ctx))
	feedCmd.AddCommand(newFeedShowCommand(ctx))

	return feedCmd
}

func newFeedAddCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var title string
	var description string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Register a new feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			feedKind, err := parseFeedKind(kind)
			if err != nil {
				return err
			}

			feed, err := store.NewFeed(cmd.Context(), args[0], feedKind, title, description, tags)
			if err != nil {
				if errors.Is(err, corpus.ErrDuplicateURL) {
					return fmt.Errorf("a feed with url %s already exists", args[0])
				}
				return fmt.Errorf("add feed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added feed %s (%s)\n", feed.ID, feed.URL)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(corpus.FeedRSS), "Feed kind (rss or single-url)")
	cmd.Flags().StringVar(&title, "title", "", "Feed title")
	cmd.Flags().StringVar(&description, "description", "", "Feed description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags applied to harvested items")
	return cmd
}

func newFeedListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered feeds",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			feeds, err := store.ListFeeds(cmd.Context())
			if err != nil {
				return fmt.Errorf("list feeds: %w", err)
			}
			if len(feeds) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No feeds registered.")
				return nil
			}

			rows := make([][]string, 0, len(feeds))
			for _, feed := range feeds {
				resolved := "never"
				if feed.LastResolvedAt != nil {
					resolved = feed.LastResolvedAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					feed.ID,
					string(feed.Kind),
					truncate(feed.Title, 40),
					yesNo(feed.Active),
					resolved,
					truncate(feed.URL, 60),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Kind", "Title", "Active", "Last Resolved", "URL"},
				rows,
				nil,
			))
			return nil
		},
	}
}

func newFeedShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			feed, err := store.GetFeed(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load feed: %w", err)
			}
			if feed == nil {
				return fmt.Errorf("feed %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:          %s\n", feed.ID)
			fmt.Fprintf(out, "URL:         %s\n", feed.URL)
			fmt.Fprintf(out, "Kind:        %s\n", feed.Kind)
			fmt.Fprintf(out, "Title:       %s\n", feed.Title)
			fmt.Fprintf(out, "Description: %s\n", feed.Description)
			fmt.Fprintf(out, "Tags:        %s\n", strings.Join(feed.Tags, ", "))
			fmt.Fprintf(out, "Active:      %s\n", yesNo(feed.Active))
			if feed.LastResolvedAt != nil {
				fmt.Fprintf(out, "Resolved:    %s\n", feed.LastResolvedAt.Local().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Resolved:    never")
			}
			return nil
		},
	}
}

func parseFeedKind(raw string) (corpus.FeedKind, error) {
	switch corpus.FeedKind(strings.ToLower(strings.TrimSpace(raw))) {
	case corpus.FeedRSS, "":
		return corpus.FeedRSS, nil
	case corpus.FeedSingleURL:
		return corpus.FeedSingleURL, nil
	default:
		return "", fmt.Errorf("unknown feed kind %q (expected rss or single-url)", raw)
	}
}

func truncate(s string, limit int) string {
	if limit <= 3 || len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
