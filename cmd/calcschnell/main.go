package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/codefionn/calcschnell/internal/config"
	"github.com/codefionn/calcschnell/internal/history"
	"github.com/codefionn/calcschnell/internal/logger"
	"github.com/codefionn/calcschnell/internal/pprof"
)

// exitError carries a process exit code without printing anything extra
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var errHistoryDisabled = errors.New("history is disabled (enable history_enabled in the config or drop --no-history)")

// app holds state shared by all commands
type app struct {
	configPath string
	logLevel   string
	noHistory  bool
	profiles   pprof.Config

	cfg      *config.Config
	store    *history.Store
	profiler *pprof.Profiler
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		logger.Error("Fatal error: %v", err)
		fmt.Fprintln(stderr, color.RedString("Error: %v", err))
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "calcschnell",
		Short: "Arithmetic expression calculator",
		Long: `calcschnell evaluates arithmetic expressions with + - * /, parentheses and
decimal numbers.

Without a subcommand it starts the terminal calculator when stdin is a terminal,
otherwise it evaluates stdin line by line like 'calcschnell batch'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return a.runTUI(cmd.Context())
			}
			return a.runBatch(cmd, cmd.InOrStdin(), batchOptions{
				workers: a.cfg.Batch.Workers,
			})
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file (JSON, defaults to "+config.GetConfigPath()+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error, none")
	root.PersistentFlags().BoolVar(&a.noHistory, "no-history", false, "Do not read or write the evaluation history")
	root.PersistentFlags().StringVar(&a.profiles.CPUProfile, "cpuprofile", "", "Write a CPU profile to this file")
	root.PersistentFlags().StringVar(&a.profiles.HeapProfile, "memprofile", "", "Write a heap profile to this file on exit")

	root.AddCommand(
		newEvalCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
		newTUICmd(a),
	)
	return root
}

// setup loads the configuration and initialises logging
func (a *app) setup() error {
	if a.configPath == "" {
		a.configPath = config.GetConfigPath()
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnvironment()
	if level := strings.TrimSpace(a.logLevel); level != "" {
		cfg.LogLevel = level
	}
	a.cfg = cfg

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug("configuration loaded: path=%s log_level=%s history=%v", a.configPath, cfg.LogLevel, a.historyEnabled())

	if a.profiles.Enabled() {
		profiler, err := pprof.Start(a.profiles)
		if err != nil {
			return err
		}
		a.profiler = profiler
	}
	return nil
}

func (a *app) historyEnabled() bool {
	return a.cfg != nil && a.cfg.HistoryEnabled && !a.noHistory
}

// openStore opens the history database once. It returns errHistoryDisabled
// when history is switched off.
func (a *app) openStore() (*history.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if !a.historyEnabled() {
		return nil, errHistoryDisabled
	}

	store, err := history.Open(a.cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	store.SetLimit(a.cfg.HistoryLimit)
	a.store = store
	return store, nil
}

// optionalStore is openStore for commands that work without history
func (a *app) optionalStore() *history.Store {
	store, err := a.openStore()
	if err != nil {
		if !errors.Is(err, errHistoryDisabled) {
			logger.Warn("history unavailable: %v", err)
		}
		return nil
	}
	return store
}

func (a *app) close() {
	if a.profiler != nil {
		if err := a.profiler.Stop(); err != nil {
			logger.Warn("failed to write profiles: %v", err)
		}
		a.profiler = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logger.Warn("failed to close history: %v", err)
		}
		a.store = nil
	}
	// Closes the log file and falls back to a disabled logger
	logger.SetGlobal(nil)
}
