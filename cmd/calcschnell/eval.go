package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/session"
)

func newEvalCmd(a *app) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "eval <expression...>",
		Short: "Evaluate one expression",
		Long: `Evaluate the expression formed by joining all arguments with spaces.

Use '--' before expressions that start with '-', e.g. calcschnell eval -- -5+2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var recorder session.Recorder
			if record {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				recorder = store
			}

			sess := session.NewSession(history.SourceCLI, recorder)
			outcome := sess.Evaluate(cmd.Context(), strings.Join(args, " "))
			if !outcome.OK() {
				fmt.Fprintln(cmd.ErrOrStderr(), color.RedString("%s", outcome.Message))
				return &exitError{code: 1}
			}

			fmt.Fprintln(cmd.OutOrStdout(), outcome.Result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Store the evaluation in the history")
	return cmd
}
