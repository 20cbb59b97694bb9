package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "match <item-id>",
		Short: "Preview matches for an item without storing or notifying",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			logger, closeLog, err := ctx.cliLogger(cmd)
			if err != nil {
				return err
			}
			defer closeLog()

			database, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			runCtx := commandContextOf(cmd)
			item, err := store.GetItem(runCtx, database, id)
			if err != nil {
				return err
			}
			if item == nil || item.Deleted() {
				return fmt.Errorf("item %d not found", id)
			}

			engine, err := ctx.newEngine(database, logger)
			if err != nil {
				return err
			}
			candidates, skipped, err := engine.Preview(runCtx, *item)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Item %d: %s (%s, %s)\n", item.ID, item.Title, item.Status, item.Category)
			if len(candidates) == 0 {
				fmt.Fprintf(out, "No candidates at threshold %.2f\n", engine.Threshold())
			} else {
				fmt.Fprintln(out, renderCandidates(item, candidates))
			}
			for _, s := range skipped {
				fmt.Fprintf(out, "Skipped: %v\n", s)
			}
			return nil
		},
	}
}

func renderCandidates(item *model.Item, candidates []matching.Candidate) string {
	headers := []string{"ID", "Title", "Location", "Date", "Score", "Cat", "Sub", "Loc", "Date", "Desc"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		other := c.Found
		if item.Status == model.ItemStatusFound {
			other = c.Lost
		}
		b := c.Breakdown
		rows = append(rows, []string{
			strconv.FormatInt(other.ID, 10),
			other.Title,
			other.Location,
			other.OccurredOn.Format("2006-01-02"),
			fmt.Sprintf("%.3f", c.Score),
			fmt.Sprintf("%.2f", b.Category),
			fmt.Sprintf("%.2f", b.Subcategory),
			fmt.Sprintf("%.2f", b.Location),
			fmt.Sprintf("%.2f", b.Date),
			fmt.Sprintf("%.2f", b.Description),
		})
	}
	return renderTable(headers, rows, aligns)
}
