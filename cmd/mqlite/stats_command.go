package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"mqlite/internal/queue"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show stored message counts per topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("stats: %w", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{
						"path":   store.Path(),
						"mode":   store.Mode().String(),
						"topics": stats,
					})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Store: %s (%s mode)\n", store.Path(), store.Mode())
				if len(stats) == 0 {
					fmt.Fprintln(out, "No messages")
					return nil
				}
				topics := make([]string, 0, len(stats))
				total := 0
				for topic, n := range stats {
					topics = append(topics, topic)
					total += n
				}
				sort.Strings(topics)
				rows := make([][]string, 0, len(topics))
				for _, topic := range topics {
					rows = append(rows, []string{topic, strconv.Itoa(stats[topic])})
				}
				fmt.Fprintln(out, tableSpec{
					headers: []string{"Topic", "Messages"},
					rows:    rows,
					footer:  []string{"Total", strconv.Itoa(total)},
					aligns:  []columnAlignment{alignLeft, alignRight},
				}.render())
				return nil
			})
		},
	}
}
