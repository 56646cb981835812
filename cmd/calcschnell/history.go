package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/calcschnell/internal/consts"
	"github.com/codefionn/calcschnell/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear the evaluation history",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent evaluations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet")
				return nil
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", consts.DefaultHistoryPageSize, "Number of entries to show")

	findCmd := &cobra.Command{
		Use:   "find <expression...>",
		Short: "Show earlier evaluations of an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			expr := strings.Join(args, " ")
			entries, err := store.FindByExpression(cmd.Context(), expr)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s has not been evaluated before\n", expr)
				return &exitError{code: 1}
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			deleted, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries\n", deleted)
			return nil
		},
	}

	cmd.AddCommand(listCmd, findCmd, clearCmd)
	return cmd
}

func printEntries(w io.Writer, entries []history.Entry) {
	for _, e := range entries {
		stamp := color.HiBlackString("%s", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		source := color.BlueString("%-5s", e.Source)
		if e.Failed() {
			fmt.Fprintf(w, "%5d %s %s %s → %s\n", e.ID, stamp, source, e.Expression, color.RedString("%s", e.ErrorMessage))
			continue
		}
		fmt.Fprintf(w, "%5d %s %s %s = %s\n", e.ID, stamp, source, e.Expression, color.GreenString("%s", e.Result))
	}
}
