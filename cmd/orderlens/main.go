// orderlens is a terminal client for the order-lookup service.
//
// Usage:
//
//	orderlens [flags]                 interactive lookup screen
//	orderlens get <order-id>          one-shot lookup
//	orderlens history [--stats]       lookup journal
//	orderlens fixture --file F        serve orders from a local file
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/orderlens/internal/config"
	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/internal/logging"
	"github.com/Mr-Dark-debug/orderlens/internal/lookup"
	"github.com/Mr-Dark-debug/orderlens/internal/tui"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	baseURL    string
	history    bool
	historyDB  string
	logFile    string
	logLevel   string
}

// app is the per-invocation runtime: resolved config, logger and journal.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  database.Store

	closers []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "orderlens",
		Short: "Look up orders and browse them as a JSON tree",
		Long: `orderlens fetches an order from <base-url>/api/order/{id} and shows the
response as a collapsible JSON tree.

Examples:
  orderlens                                  # interactive screen
  orderlens get b563feb7b2b84b6test          # print one order
  orderlens get 123 --json                   # compact JSON
  orderlens history --stats                  # journal report
  orderlens fixture --file orders.json       # local order service`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, &flags, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTUI(a)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.orderlens/config.yaml)")
	pf.StringVar(&flags.baseURL, "base-url", "", "order service base URL")
	pf.BoolVar(&flags.history, "history", false, "record lookups in the journal")
	pf.StringVar(&flags.historyDB, "history-db", "", "journal database path")
	pf.StringVar(&flags.logFile, "log-file", "", "log file path")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newGetCmd(&flags),
		newHistoryCmd(&flags),
		newFixtureCmd(&flags),
	)
	return root
}

// loadConfig reads the config file and applies flags the user set.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("base-url") {
		cfg.BaseURL = flags.baseURL
	}
	if changed("history") {
		cfg.History.Enabled = flags.history
	}
	if changed("history-db") {
		cfg.History.Path = config.ExpandHome(flags.historyDB)
		cfg.History.Enabled = true
	}
	if changed("log-file") {
		cfg.Log.File = config.ExpandHome(flags.logFile)
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// setup resolves config, opens the log file and, when enabled or required,
// the journal.
func setup(cmd *cobra.Command, flags *globalFlags, wantJournal bool) (*app, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logging.Install(logger), closers: []io.Closer{closer}}

	if wantJournal && cfg.History.Enabled {
		store, err := database.NewDBService(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open journal at %s: %w", cfg.History.Path, err)
		}
		a.store = store
		a.closers = append(a.closers, store)
	}
	return a, nil
}

// controller builds the lookup controller for a's settings.
func (a *app) controller() *lookup.Controller {
	opts := []lookup.Option{lookup.WithLogger(a.logger)}
	if a.store != nil {
		opts = append(opts, lookup.WithJournal(a.store))
	}
	return lookup.NewController(lookup.NewClient(a.cfg.BaseURL, nil), &lookup.View{}, opts...)
}

func runTUI(a *app) error {
	a.logger.Info("starting tui", "base_url", a.cfg.BaseURL, "history", a.store != nil)

	model := tui.NewModel(a.controller(), a.store, a.cfg.BaseURL)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
