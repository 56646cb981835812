package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codefionn/calcschnell/internal/batch"
	"github.com/codefionn/calcschnell/internal/calc"
	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/logger"
)

type batchOptions struct {
	workers int
	summary bool
	record  bool
	quiet   bool
}

func newBatchCmd(a *app) *cobra.Command {
	opts := batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Evaluate one expression per line",
		Long: `Evaluate every line of file (or stdin when no file or "-" is given).

Blank lines and lines starting with '#' are skipped. The exit status is 1 when
any line fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.Batch.Workers
			}

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}
			return a.runBatch(cmd, in, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Concurrent evaluations (defaults to batch.workers from the config)")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print a summary line at the end")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Store every evaluation in the history")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Print only results, one per line")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, in io.Reader, opts batchOptions) error {
	lines, err := batch.ReadLines(in)
	if err != nil {
		return err
	}
	logger.Debug("batch: %d expressions, %d workers", len(lines), opts.workers)

	results, err := batch.Run(cmd.Context(), lines, opts.workers)
	if err != nil {
		return err
	}

	if opts.record {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		for _, r := range results {
			entry := history.NewEntry(history.SourceBatch, r.Expression, r.Result, r.Err)
			if _, err := store.Record(cmd.Context(), entry); err != nil {
				return err
			}
		}
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		switch {
		case opts.quiet && r.OK():
			fmt.Fprintln(out, r.Result)
		case opts.quiet:
			fmt.Fprintln(out, calc.Message(r.Err))
		case r.OK():
			fmt.Fprintf(out, "%s %d: %s = %s\n", color.GreenString("PASS"), r.Number, r.Expression, r.Result)
		default:
			fmt.Fprintf(out, "%s %d: %s → %s\n", color.RedString("FAIL"), r.Number, r.Expression, calc.Message(r.Err))
		}
	}

	summary := batch.Summarize(results)
	if opts.summary {
		fmt.Fprintln(out, color.CyanString("%s", summary.String()))
	}
	if summary.Failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}
