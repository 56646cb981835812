package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/logger"
	"github.com/codefionn/calcschnell/internal/session"
	"github.com/codefionn/calcschnell/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

func (a *app) runTUI(ctx context.Context) error {
	logger.Info("running in TUI mode")

	opts := tui.Options{
		ShowHistory: a.cfg.TUI.ShowHistory,
		HistoryRows: a.cfg.TUI.HistoryRows,
	}

	var recorder session.Recorder
	if store := a.optionalStore(); store != nil {
		recorder = store
		if opts.ShowHistory {
			recent, err := store.Recent(ctx, a.cfg.TUI.HistoryRows)
			if err != nil {
				logger.Warn("failed to load history: %v", err)
			}
			opts.Preload = recent
		}
	}
	opts.Session = session.NewSession(history.SourceTUI, recorder)

	err := tui.Run(ctx, opts)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
