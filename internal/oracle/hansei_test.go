package oracle

import (
	"strings"
	"testing"
)

func outcomes(category string, results ...bool) []Outcome {
	os := make([]Outcome, len(results))
	for i, ok := range results {
		os[i] = Outcome{Category: category, Success: ok}
	}

	return os
}

func findCategory(t *testing.T, a Analysis, name string) CategoryReport {
	t.Helper()
	for _, r := range a.Categories {
		if r.Category == name {
			return r
		}
	}
	t.Fatalf("category %q missing from analysis", name)

	return CategoryReport{}
}

func TestSeverityGrading(t *testing.T) {
	h := NewHanseiAnalyzer()

	var all []Outcome
	// 10/10 failures, 7/10, 5/10, 1/10.
	all = append(all, outcomes("critical", false, false, false, false, false, false, false, false, false, false)...)
	all = append(all, outcomes("erroring", false, false, false, false, false, false, false, true, true, true)...)
	all = append(all, outcomes("warning", false, false, false, false, false, true, true, true, true, true)...)
	all = append(all, outcomes("healthy", false, true, true, true, true, true, true, true, true, true)...)

	a := h.Analyze(all)

	cases := []struct {
		name string
		want IssueSeverity
	}{
		{"critical", SeverityCritical},
		{"erroring", SeverityErr},
		{"warning", SeverityWarn},
		{"healthy", SeverityInfo},
	}
	for _, c := range cases {
		if got := findCategory(t, a, c.name).Severity; got != c.want {
			t.Errorf("%s severity = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestTrendClassification(t *testing.T) {
	h := NewHanseiAnalyzer()

	var all []Outcome
	all = append(all, outcomes("improving", false, false, false, true, true, true)...)
	all = append(all, outcomes("degrading", true, true, true, false, false, false)...)
	all = append(all, outcomes("oscillating", true, false, true, false, true, false, true, false)...)
	all = append(all, outcomes("stable", true, true, true, true, true, true)...)
	all = append(all, outcomes("tiny", false, true)...)

	a := h.Analyze(all)

	cases := []struct {
		name string
		want Trend
	}{
		{"improving", TrendImproving},
		{"degrading", TrendDegrading},
		{"oscillating", TrendOscillating},
		{"stable", TrendStable},
		// Fewer than four samples never establishes a trend.
		{"tiny", TrendStable},
	}
	for _, c := range cases {
		if got := findCategory(t, a, c.name).Trend; got != c.want {
			t.Errorf("%s trend = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestParetoTopCoversEightyPercentOfFailures(t *testing.T) {
	h := NewHanseiAnalyzer()

	var all []Outcome
	all = append(all, outcomes("dominant", false, false, false, false, false, false, false, false)...)
	all = append(all, outcomes("minor", false, true, true, true)...)
	all = append(all, outcomes("rare", false, true, true, true, true, true, true, true, true, true)...)
	all = append(all, outcomes("clean", true, true, true)...)

	a := h.Analyze(all)

	// 10 failures total; dominant's 8 alone reaches the 80% cutoff.
	if len(a.ParetoTop) != 1 || a.ParetoTop[0] != "dominant" {
		t.Errorf("ParetoTop = %v, want [dominant]", a.ParetoTop)
	}
}

func TestParetoTopEmptyWithoutFailures(t *testing.T) {
	h := NewHanseiAnalyzer()

	a := h.Analyze(outcomes("clean", true, true, true))

	if len(a.ParetoTop) != 0 {
		t.Errorf("ParetoTop = %v for an all-success stream", a.ParetoTop)
	}
}

func TestRecommendationsCoverSeverityAndTrend(t *testing.T) {
	h := NewHanseiAnalyzer()

	var all []Outcome
	all = append(all, outcomes("broken", false, false, false, false)...)
	all = append(all, outcomes("sliding", true, true, true, true, true, false, false, true, false, false)...)

	a := h.Analyze(all)

	if len(a.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2: %v", len(a.Recommendations), a.Recommendations)
	}
	wantSubstrings := []string{"broken", "sliding"}
	for i, sub := range wantSubstrings {
		found := false
		for _, r := range a.Recommendations {
			if strings.Contains(r, sub) {
				found = true
			}
		}
		if !found {
			t.Errorf("recommendation %d: none mentions %q in %v", i, sub, a.Recommendations)
		}
	}
}

func TestHealthyStreamGetsDefaultRecommendation(t *testing.T) {
	h := NewHanseiAnalyzer()

	a := h.Analyze(outcomes("clean", true, true, true, true, true))

	if len(a.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want the single default", len(a.Recommendations))
	}
	if !strings.Contains(a.Recommendations[0], "no systemic issues") {
		t.Errorf("default recommendation = %q", a.Recommendations[0])
	}
}
