package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/orderlens/internal/analysis"
	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/pkg/timeutil"
)

type historyOptions struct {
	limit   int
	orderID string
	outcome string
	stats   bool
	asJSON  bool
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var opts historyOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded lookups or print a journal report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, flags, false)
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := database.NewDBService(a.cfg.History.Path)
			if err != nil {
				return fmt.Errorf("failed to open journal at %s: %w", a.cfg.History.Path, err)
			}
			defer store.Close()

			return runHistory(cmd.OutOrStdout(), store, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.limit, "limit", 20, "maximum entries to list")
	f.StringVar(&opts.orderID, "order", "", "only lookups of this order ID")
	f.StringVar(&opts.outcome, "outcome", "", "only lookups with this outcome (shown, not_found, fetch_failed, ...)")
	f.BoolVar(&opts.stats, "stats", false, "print the analysis report instead of the listing")
	f.BoolVar(&opts.asJSON, "json", false, "print JSON")
	return cmd
}

func runHistory(out io.Writer, store database.Store, opts historyOptions) error {
	filter := database.LookupFilter{Limit: opts.limit}
	if opts.orderID != "" {
		filter.OrderID = &opts.orderID
	}
	if opts.outcome != "" {
		filter.Outcome = &opts.outcome
	}

	if opts.stats {
		report, err := analysis.NewAnalyzer(store).FullAnalysis(filter)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if opts.asJSON {
			return writeJSON(out, report)
		}
		fmt.Fprint(out, analysis.FormatReport(report))
		return nil
	}

	lookups, err := store.QueryLookups(filter)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if opts.asJSON {
		return writeJSON(out, lookups)
	}
	if len(lookups) == 0 {
		fmt.Fprintln(out, "No lookups recorded.")
		return nil
	}
	fmt.Fprintln(out, historyTable(lookups, time.Now()))
	return nil
}

func historyTable(lookups []*database.Lookup, now time.Time) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("WHEN", "ORDER", "OUTCOME", "STATUS", "ELAPSED", "SIZE")

	for _, l := range lookups {
		status := "-"
		if l.StatusCode != 0 {
			status = strconv.Itoa(l.StatusCode)
		}
		t.Row(
			timeutil.RelativeTime(l.StartedAt, now),
			l.OrderID,
			l.Outcome,
			status,
			timeutil.FormatMillis(time.Duration(l.ElapsedNs))+" ms",
			strconv.Itoa(l.ResponseSize),
		)
	}
	return t.String()
}

func writeJSON(out io.Writer, v any) error {
	enc := gojson.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
