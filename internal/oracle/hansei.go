// Hansei analyzer: retrospective over repair outcomes.

package oracle

import (
	"fmt"
	"sort"
)

// Outcome is one observed repair attempt.
type Outcome struct {
	Category     string
	Success      bool
	ErrorMessage string
	Features     []float64
}

// IssueSeverity grades how suspicious a failing category looks.
type IssueSeverity int

const (
	SeverityInfo IssueSeverity = iota
	SeverityWarn
	SeverityErr
	SeverityCritical
)

func (s IssueSeverity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarn:
		return "warning"
	case SeverityErr:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Trend labels the direction a category's success rate is moving.
type Trend int

const (
	TrendStable Trend = iota
	TrendImproving
	TrendDegrading
	TrendOscillating
)

func (t Trend) String() string {
	switch t {
	case TrendStable:
		return "stable"
	case TrendImproving:
		return "improving"
	case TrendDegrading:
		return "degrading"
	case TrendOscillating:
		return "oscillating"
	default:
		return "unknown"
	}
}

// CategoryReport summarizes one category.
type CategoryReport struct {
	Category string
	Count    int
	Failures int
	Severity IssueSeverity
	Trend    Trend
}

// Analysis is the full retrospective.
type Analysis struct {
	Categories      []CategoryReport
	ParetoTop       []string
	Recommendations []string
}

// HanseiAnalyzer consumes outcome streams and produces the retrospective.
type HanseiAnalyzer struct{}

// NewHanseiAnalyzer creates an analyzer.
func NewHanseiAnalyzer() *HanseiAnalyzer {
	return &HanseiAnalyzer{}
}

// Analyze categorizes outcomes, grades severities, picks the Pareto top-80%
// failure categories, labels trends, and derives recommendations.
func (h *HanseiAnalyzer) Analyze(outcomes []Outcome) Analysis {
	byCategory := make(map[string][]Outcome)
	for _, o := range outcomes {
		byCategory[o.Category] = append(byCategory[o.Category], o)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var reports []CategoryReport
	for _, c := range categories {
		os := byCategory[c]

		failures := 0
		for _, o := range os {
			if !o.Success {
				failures++
			}
		}

		suspiciousness := float64(failures) / float64(len(os))

		reports = append(reports, CategoryReport{
			Category: c,
			Count:    len(os),
			Failures: failures,
			Severity: gradeSeverity(suspiciousness),
			Trend:    classifyTrend(os),
		})
	}

	return Analysis{
		Categories:      reports,
		ParetoTop:       paretoTop(reports),
		Recommendations: recommend(reports),
	}
}

func gradeSeverity(suspiciousness float64) IssueSeverity {
	switch {
	case suspiciousness >= 0.9:
		return SeverityCritical
	case suspiciousness >= 0.7:
		return SeverityErr
	case suspiciousness >= 0.5:
		return SeverityWarn
	default:
		return SeverityInfo
	}
}

// classifyTrend compares success rates between the first and second half of
// a category's outcome stream, flagging sign flips as oscillation.
func classifyTrend(os []Outcome) Trend {
	if len(os) < 4 {
		return TrendStable
	}

	mid := len(os) / 2
	first := successRate(os[:mid])
	second := successRate(os[mid:])

	const margin = 0.15

	switch {
	case second-first > margin:
		return TrendImproving
	case first-second > margin:
		return TrendDegrading
	}

	// Count direction changes over a sliding window.
	flips := 0
	prev := os[0].Success
	for _, o := range os[1:] {
		if o.Success != prev {
			flips++
		}
		prev = o.Success
	}
	if float64(flips) > float64(len(os))*0.6 {
		return TrendOscillating
	}

	return TrendStable
}

func successRate(os []Outcome) float64 {
	if len(os) == 0 {
		return 0
	}

	n := 0
	for _, o := range os {
		if o.Success {
			n++
		}
	}

	return float64(n) / float64(len(os))
}

// paretoTop returns the categories accounting for the top 80% of failures,
// most failures first.
func paretoTop(reports []CategoryReport) []string {
	sorted := append([]CategoryReport(nil), reports...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Failures != sorted[j].Failures {
			return sorted[i].Failures > sorted[j].Failures
		}
		return sorted[i].Category < sorted[j].Category
	})

	total := 0
	for _, r := range sorted {
		total += r.Failures
	}
	if total == 0 {
		return nil
	}

	var top []string
	acc := 0
	for _, r := range sorted {
		if r.Failures == 0 {
			break
		}
		top = append(top, r.Category)
		acc += r.Failures
		if float64(acc) >= 0.8*float64(total) {
			break
		}
	}

	return top
}

func recommend(reports []CategoryReport) []string {
	var recs []string

	for _, r := range reports {
		switch {
		case r.Severity == SeverityCritical:
			recs = append(recs, fmt.Sprintf("category %q fails almost always; audit its fix patterns before queuing more work", r.Category))
		case r.Severity == SeverityErr:
			recs = append(recs, fmt.Sprintf("category %q has a high failure rate; consider retiring its weakest patterns", r.Category))
		case r.Trend == TrendDegrading:
			recs = append(recs, fmt.Sprintf("category %q is degrading; recent pattern changes may have regressed it", r.Category))
		case r.Trend == TrendOscillating:
			recs = append(recs, fmt.Sprintf("category %q oscillates; its patterns likely conflict with each other", r.Category))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "no systemic issues detected; keep the current pattern set")
	}

	return recs
}
