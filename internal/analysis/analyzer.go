// Package analysis summarizes the lookup journal with plain statistics.
//
// Key capabilities:
//   - Outcome counts and latency percentiles
//   - Slow lookup detection via Z-score analysis
//   - Latency trend via linear regression over time
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/pkg/timeutil"
)

// Severity thresholds for slow lookups.
const (
	MediumZScore = 2.0
	HighZScore   = 3.0
)

// Analyzer computes reports over the lookup journal.
type Analyzer struct {
	store database.Store
	now   func() time.Time
}

// NewAnalyzer creates a new analysis engine backed by the given store.
func NewAnalyzer(store database.Store) *Analyzer {
	return &Analyzer{store: store, now: time.Now}
}

// ============================================================
// Latency Summary
// ============================================================

// LatencySummary describes the elapsed times of the analyzed lookups.
type LatencySummary struct {
	Count int           `json:"count"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	Max   time.Duration `json:"max"`
}

// Summarize computes mean and nearest-rank percentiles.
func Summarize(lookups []*database.Lookup) LatencySummary {
	if len(lookups) == 0 {
		return LatencySummary{}
	}
	elapsed := make([]int64, len(lookups))
	var sum int64
	for i, l := range lookups {
		elapsed[i] = l.ElapsedNs
		sum += l.ElapsedNs
	}
	sort.Slice(elapsed, func(i, j int) bool { return elapsed[i] < elapsed[j] })

	return LatencySummary{
		Count: len(elapsed),
		Mean:  time.Duration(sum / int64(len(elapsed))),
		P50:   time.Duration(percentile(elapsed, 50)),
		P95:   time.Duration(percentile(elapsed, 95)),
		Max:   time.Duration(elapsed[len(elapsed)-1]),
	}
}

// percentile returns the nearest-rank percentile of sorted values.
func percentile(sorted []int64, p float64) int64 {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// ============================================================
// Slow Lookup Detection
// ============================================================

// SlowLookup identifies a lookup with abnormally high latency.
type SlowLookup struct {
	LookupID string        `json:"lookup_id"`
	OrderID  string        `json:"order_id"`
	Outcome  string        `json:"outcome"`
	Elapsed  time.Duration `json:"elapsed"`
	ZScore   float64       `json:"z_score"`
	Severity string        `json:"severity"` // "medium", "high"
}

// DetectSlowLookups calculates the Z-score of elapsed time across lookups,
// returning outliers sorted by Z-score descending.
//
// A Z-score > 2.0 is "medium" severity, > 3.0 is "high".
func DetectSlowLookups(lookups []*database.Lookup) []SlowLookup {
	if len(lookups) < 2 {
		return nil
	}

	var sum, sumSq float64
	for _, l := range lookups {
		v := float64(l.ElapsedNs)
		sum += v
		sumSq += v * v
	}

	n := float64(len(lookups))
	mean := sum / n
	variance := (sumSq / n) - (mean * mean)
	if variance <= 0 {
		return nil
	}
	stddev := math.Sqrt(variance)

	var slow []SlowLookup
	for _, l := range lookups {
		zScore := (float64(l.ElapsedNs) - mean) / stddev
		if zScore <= MediumZScore {
			continue
		}
		severity := "medium"
		if zScore > HighZScore {
			severity = "high"
		}
		slow = append(slow, SlowLookup{
			LookupID: l.LookupID,
			OrderID:  l.OrderID,
			Outcome:  l.Outcome,
			Elapsed:  time.Duration(l.ElapsedNs),
			ZScore:   math.Round(zScore*100) / 100,
			Severity: severity,
		})
	}

	sort.Slice(slow, func(i, j int) bool {
		return slow[i].ZScore > slow[j].ZScore
	})
	return slow
}

// ============================================================
// Latency Trend
// ============================================================

// LatencyTrend is a least-squares fit of elapsed milliseconds against
// seconds since the first lookup.
type LatencyTrend struct {
	Points   int     `json:"points"`
	Slope    float64 `json:"slope"`     // ms per second
	Baseline float64 `json:"intercept"` // ms
	RSquared float64 `json:"r_squared"`
	// Degrading is set when latency rises steadily over the window.
	Degrading bool `json:"degrading"`
}

// dataPoint represents a single time-series observation for regression analysis.
type dataPoint struct {
	x float64
	y float64
}

// AnalyzeTrend fits elapsed time over start time.
func AnalyzeTrend(lookups []*database.Lookup) LatencyTrend {
	if len(lookups) < 2 {
		return LatencyTrend{Points: len(lookups)}
	}

	ordered := make([]*database.Lookup, len(lookups))
	copy(ordered, lookups)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartedAt < ordered[j].StartedAt
	})

	base := ordered[0].StartedAt
	points := make([]dataPoint, len(ordered))
	for i, l := range ordered {
		points[i] = dataPoint{
			x: float64(l.StartedAt-base) / 1e9,
			y: timeutil.Millis(time.Duration(l.ElapsedNs)),
		}
	}

	slope, intercept, rSquared := linearRegression(points)
	return LatencyTrend{
		Points:    len(points),
		Slope:     math.Round(slope*1000) / 1000,
		Baseline:  math.Round(intercept*100) / 100,
		RSquared:  math.Round(rSquared*1000) / 1000,
		Degrading: slope > 0 && rSquared > 0.7,
	}
}

// linearRegression computes ordinary least squares regression.
// Returns slope (m), intercept (b), and R-squared goodness of fit.
func linearRegression(points []dataPoint) (slope, intercept, rSquared float64) {
	n := float64(len(points))
	if n < 2 {
		return 0, 0, 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.x
		sumY += p.y
		sumXY += p.x * p.y
		sumX2 += p.x * p.x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0, sumY / n, 0
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		predicted := slope*p.x + intercept
		ssRes += (p.y - predicted) * (p.y - predicted)
		ssTot += (p.y - meanY) * (p.y - meanY)
	}

	if ssTot == 0 {
		rSquared = 1.0
	} else {
		rSquared = 1 - ssRes/ssTot
	}

	return slope, intercept, rSquared
}

// ============================================================
// Full Analysis Report
// ============================================================

// Report is the complete output of `orderlens history --stats`.
type Report struct {
	GeneratedAt string                `json:"generated_at"`
	Stats       *database.LookupStats `json:"stats"`
	Latency     LatencySummary        `json:"latency"`
	SlowLookups []SlowLookup          `json:"slow_lookups"`
	Trend       LatencyTrend          `json:"trend"`
	Warnings    []string              `json:"warnings"`
}

// FullAnalysis runs all passes over the lookups matching filter. Latency
// figures only cover lookups that reached the service.
func (a *Analyzer) FullAnalysis(filter database.LookupFilter) (*Report, error) {
	stats, err := a.store.GetLookupStats(filter)
	if err != nil {
		return nil, fmt.Errorf("gathering lookup stats: %w", err)
	}

	lookups, err := a.store.QueryLookups(filter)
	if err != nil {
		return nil, fmt.Errorf("querying lookups for analysis: %w", err)
	}

	var answered []*database.Lookup
	for _, l := range lookups {
		if l.StatusCode != 0 {
			answered = append(answered, l)
		}
	}

	report := &Report{
		GeneratedAt: a.now().Format(time.RFC3339),
		Stats:       stats,
		Latency:     Summarize(answered),
		SlowLookups: DetectSlowLookups(answered),
		Trend:       AnalyzeTrend(answered),
	}

	if stats.Total > 0 {
		failed := stats.Total - stats.Shown
		if rate := float64(failed) / float64(stats.Total); rate > 0.5 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%.0f%% of lookups failed", rate*100))
		}
	}
	if report.Trend.Degrading {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("latency rising by %.3f ms/sec (R²=%.3f)", report.Trend.Slope, report.Trend.RSquared))
	}
	for _, s := range report.SlowLookups {
		if s.Severity == "high" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("order %s took %s ms (Z-score: %.2f)",
					s.OrderID, timeutil.FormatMillis(s.Elapsed), s.ZScore))
		}
	}

	return report, nil
}

// FormatReport generates a human-readable markdown report.
func FormatReport(report *Report) string {
	var b strings.Builder

	b.WriteString("# orderlens Lookup Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", report.GeneratedAt)

	if s := report.Stats; s != nil {
		b.WriteString("## Outcomes\n\n")
		b.WriteString("| Metric | Value |\n")
		b.WriteString("|--------|-------|\n")
		fmt.Fprintf(&b, "| Total Lookups | %d |\n", s.Total)
		fmt.Fprintf(&b, "| Shown | %d |\n", s.Shown)
		fmt.Fprintf(&b, "| Not Found | %d |\n", s.NotFound)
		fmt.Fprintf(&b, "| Fetch Failed | %d |\n", s.FetchFailed)
		fmt.Fprintf(&b, "| Other Failures | %d |\n", s.OtherFailed)
		fmt.Fprintf(&b, "| Total Time | %s |\n\n", timeutil.FormatDuration(time.Duration(s.TotalElapsedNs)))
	}

	if l := report.Latency; l.Count > 0 {
		b.WriteString("## Latency\n\n")
		fmt.Fprintf(&b, "- **Mean:** %s ms\n", timeutil.FormatMillis(l.Mean))
		fmt.Fprintf(&b, "- **p50:** %s ms\n", timeutil.FormatMillis(l.P50))
		fmt.Fprintf(&b, "- **p95:** %s ms\n", timeutil.FormatMillis(l.P95))
		fmt.Fprintf(&b, "- **Max:** %s ms\n", timeutil.FormatMillis(l.Max))
		if report.Trend.Points >= 2 {
			fmt.Fprintf(&b, "- **Trend:** %.3f ms/sec (R² %.3f)\n", report.Trend.Slope, report.Trend.RSquared)
		}
		b.WriteString("\n")
	}

	if len(report.SlowLookups) > 0 {
		b.WriteString("## Slow Lookups\n\n")
		b.WriteString("| Order | Outcome | Elapsed (ms) | Z-Score | Severity |\n")
		b.WriteString("|-------|---------|--------------|---------|----------|\n")
		for _, s := range report.SlowLookups {
			fmt.Fprintf(&b, "| %s | %s | %s | %.2f | %s |\n",
				s.OrderID, s.Outcome, timeutil.FormatMillis(s.Elapsed), s.ZScore, s.Severity)
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
