package diagnostics

import (
	"strings"
	"testing"
)

func TestCollectorOrdering(t *testing.T) {
	c := &Collector{}
	c.Warnf(LoweringIncomplete, "zeta", "first in zeta")
	c.Warnf(LoweringIncomplete, "alpha", "first in alpha")
	c.Warnf(UnsupportedType, "zeta", "second in zeta")

	all := c.All()
	if len(all) != 3 {
		t.Fatalf("got %d diagnostics", len(all))
	}

	if all[0].Function != "alpha" {
		t.Errorf("not sorted by function: %v", all)
	}
	// Insertion order is stable within a function.
	if all[1].Kind != LoweringIncomplete || all[2].Kind != UnsupportedType {
		t.Errorf("insertion order lost within zeta: %v", all[1:])
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Kind:       DispatchArity,
		Severity:   SeverityError,
		Function:   "load",
		Message:    "json.dumps expects 1 to 2 arguments, got 3",
		Suggestion: "drop the extra argument",
	}

	s := d.String()
	for _, frag := range []string{
		"error[dispatch-arity]",
		"in load",
		"got 3",
		"(suggestion: drop the extra argument)",
	} {
		if !strings.Contains(s, frag) {
			t.Errorf("String() = %q missing %q", s, frag)
		}
	}
}

func TestErrorTracking(t *testing.T) {
	c := &Collector{}
	c.Warnf(LoweringIncomplete, "warned", "just a warning")

	if c.HasErrors() {
		t.Error("warnings counted as errors")
	}

	c.Errorf(DispatchArity, "failed", "wrong arity")

	if !c.HasErrors() {
		t.Error("error not tracked")
	}
	if !c.FunctionHasError("failed") || c.FunctionHasError("warned") {
		t.Error("per-function error attribution wrong")
	}
}

func TestBuildReportSplitsByKind(t *testing.T) {
	c := &Collector{}
	c.Warnf(LoweringIncomplete, "f", "no dispatch")
	c.Warnf(UnsupportedType, "f", "no mapping")
	c.Add(Diagnostic{Kind: LifetimeViolation, Severity: SeverityWarning, Function: "f", Message: "escapes"})

	r := c.BuildReport()

	if len(r.Unimplemented) != 1 || len(r.Warnings) != 1 || len(r.LifetimeIssues) != 1 {
		t.Errorf("report split wrong: %+v", r)
	}
}
