package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func newNotificationsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Inspect and retry match notifications",
	}
	cmd.AddCommand(newNotificationsFailedCommand(ctx))
	cmd.AddCommand(newNotificationsRetryCommand(ctx))
	return cmd
}

func newNotificationsFailedCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List failed notification attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			attempts, err := store.ListAttempts(commandContextOf(cmd), database, store.AttemptFilter{FailedOnly: true, Limit: limit})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No failed notifications")
				return nil
			}
			fmt.Fprintln(out, renderAttempts(attempts))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of attempts to show")
	return cmd
}

func newNotificationsRetryCommand(ctx *commandContext) *cobra.Command {
	var matchID int64

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Resend notifications for match sides not yet sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			var matches []model.Match
			if matchID > 0 {
				m, err := store.GetMatch(runCtx, database, matchID)
				if err != nil {
					return err
				}
				if m == nil {
					return fmt.Errorf("match %d not found", matchID)
				}
				matches = []model.Match{*m}
			} else {
				matches, err = store.ListMatches(runCtx, database, store.MatchFilter{UnsentOnly: true})
				if err != nil {
					return err
				}
			}

			engine, err := ctx.newEngine(database, logger)
			if err != nil {
				return err
			}

			var attempts []model.NotificationAttempt
			for _, m := range matches {
				attempts = append(attempts, engine.Renotify(runCtx, m)...)
			}

			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "Nothing to retry")
				return nil
			}
			fmt.Fprintln(out, renderAttempts(attempts))

			failed := 0
			for _, a := range attempts {
				if !a.Success {
					failed++
				}
			}
			fmt.Fprintf(out, "Retried %d notifications, %d failed\n", len(attempts), failed)
			return nil
		},
	}

	cmd.Flags().Int64Var(&matchID, "match", 0, "Retry only this match")
	return cmd
}

func renderAttempts(attempts []model.NotificationAttempt) string {
	headers := []string{"Match", "Side", "Target", "Result", "Error", "Time"}
	aligns := []columnAlignment{alignRight}

	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		result := "sent"
		if !a.Success {
			result = "failed"
		}
		rows = append(rows, []string{
			strconv.FormatInt(a.MatchID, 10),
			string(a.Side),
			a.Target,
			result,
			a.Error,
			a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	return renderTable(headers, rows, aligns)
}
