// Package diagnostics defines the error taxonomy and collection machinery
// for the Depyler lowering pipeline. Most failures are local to a single
// function: they are recorded here and never abort the module. The only hard
// aborts are structural HIR invariant violations, which surface as ordinary
// errors from the verifier.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"
)

// Severity is the level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Kind is the diagnostic taxonomy of the pipeline.
type Kind int

const (
	// LoweringIncomplete marks a syntactic form with no dispatch; lowering
	// emits a best-effort stub plus this diagnostic.
	LoweringIncomplete Kind = iota
	// UnsupportedType marks a type with no Rust mapping; the escape type is
	// substituted.
	UnsupportedType
	// MutabilityAmbiguous marks a binding the analyzer could not decide; it
	// errs on the side of mut.
	MutabilityAmbiguous
	// LifetimeViolation wraps a finding from the lifetime checker.
	LifetimeViolation
	// DispatchArity marks a builtin or library call with the wrong argument
	// count; the enclosing function is skipped.
	DispatchArity
	// ConstGenericConflict marks conflicting size evidence; the binding stays
	// List(T).
	ConstGenericConflict
)

func (k Kind) String() string {
	switch k {
	case LoweringIncomplete:
		return "lowering-incomplete"
	case UnsupportedType:
		return "unsupported-type"
	case MutabilityAmbiguous:
		return "mutability-ambiguous"
	case LifetimeViolation:
		return "lifetime-violation"
	case DispatchArity:
		return "dispatch-arity"
	case ConstGenericConflict:
		return "const-generic-conflict"
	default:
		return "unknown"
	}
}

// Diagnostic is one finding attached to a function.
type Diagnostic struct {
	Kind       Kind
	Severity   Severity
	Function   string
	Location   string
	Message    string
	Suggestion string
}

func (d Diagnostic) String() string {
	var b strings.Builder

	b.WriteString(d.Severity.String())
	b.WriteString("[")
	b.WriteString(d.Kind.String())
	b.WriteString("]")

	if d.Function != "" {
		fmt.Fprintf(&b, " in %s", d.Function)
	}

	if d.Location != "" {
		fmt.Fprintf(&b, " at %s", d.Location)
	}

	b.WriteString(": ")
	b.WriteString(d.Message)

	if d.Suggestion != "" {
		fmt.Fprintf(&b, " (suggestion: %s)", d.Suggestion)
	}

	return b.String()
}

// Collector accumulates diagnostics as passes run. The zero value is usable.
type Collector struct {
	diags []Diagnostic
}

// Add records a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	c.diags = append(c.diags, d)
}

// Warnf records a warning with a formatted message.
func (c *Collector) Warnf(kind Kind, function, format string, args ...interface{}) {
	c.Add(Diagnostic{
		Kind:     kind,
		Severity: SeverityWarning,
		Function: function,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errorf records an error with a formatted message.
func (c *Collector) Errorf(kind Kind, function, format string, args ...interface{}) {
	c.Add(Diagnostic{
		Kind:     kind,
		Severity: SeverityError,
		Function: function,
		Message:  fmt.Sprintf(format, args...),
	})
}

// All returns every recorded diagnostic in deterministic order: by function
// name, then by insertion order within a function.
func (c *Collector) All() []Diagnostic {
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Function < out[j].Function
	})

	return out
}

// HasErrors reports whether any diagnostic is at error severity.
func (c *Collector) HasErrors() bool {
	for _, d := range c.diags {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// FunctionHasError reports whether the named function collected an error.
func (c *Collector) FunctionHasError(name string) bool {
	for _, d := range c.diags {
		if d.Function == name && d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Report is the structured record returned alongside the emitted Rust,
// matching the downstream driver contract.
type Report struct {
	Warnings       []string `json:"warnings"`
	LifetimeIssues []string `json:"lifetime_issues"`
	Unimplemented  []string `json:"unimplemented"`
}

// BuildReport splits collected diagnostics into the driver-facing record.
func (c *Collector) BuildReport() Report {
	r := Report{
		Warnings:       []string{},
		LifetimeIssues: []string{},
		Unimplemented:  []string{},
	}

	for _, d := range c.All() {
		switch d.Kind {
		case LifetimeViolation:
			r.LifetimeIssues = append(r.LifetimeIssues, d.String())
		case LoweringIncomplete:
			r.Unimplemented = append(r.Unimplemented, d.String())
		default:
			r.Warnings = append(r.Warnings, d.String())
		}
	}

	return r
}
