// Package pipeline orchestrates the HIR→Rust transformation: structural
// verification, const-generic inference, inlining decisions, mutability
// analysis, the lifetime audit, peephole optimization, lowering, printing,
// and the text fixup, in that order. The pipeline is single-threaded per
// module and fully deterministic: the same HIR and options always emit the
// same text.
package pipeline

import (
	"github.com/pkg/errors"

	"github.com/depyler-lang/depyler/internal/constgen"
	"github.com/depyler-lang/depyler/internal/diagnostics"
	"github.com/depyler-lang/depyler/internal/fixup"
	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/inline"
	"github.com/depyler-lang/depyler/internal/lifetime"
	"github.com/depyler-lang/depyler/internal/lowering"
	"github.com/depyler-lang/depyler/internal/mutability"
	"github.com/depyler-lang/depyler/internal/optimizer"
	"github.com/depyler-lang/depyler/internal/rustast"
	"github.com/depyler-lang/depyler/internal/typemap"
	"github.com/depyler-lang/depyler/internal/typeshed"
)

// Options configures one transpilation.
type Options struct {
	// OptLevel is the module-wide optimizer level; per-function annotations
	// can raise it.
	OptLevel hir.OptLevel
	// NASAMode forbids filesystem-walking and temp-file dispatches and
	// swaps SIMD-adjacent lowerings for dependency-free ones.
	NASAMode bool
	// PackageName names the emitted Cargo package.
	PackageName string
	// Registry resolves third-party module mappings from typeshed stubs.
	// Nil is fine; only the built-in dispatch tables apply then.
	Registry *typeshed.Registry
	// Inline tunes the inlining analyzer. Zero value uses the defaults.
	Inline inline.Config
}

// Result is the output of one transpilation.
type Result struct {
	// Rust is the emitted source text.
	Rust string
	// CargoToml is the manifest listing exactly the crates the emitted
	// code uses.
	CargoToml string
	// Report carries warnings, lifetime issues, and unimplemented forms.
	Report diagnostics.Report
	// InlineDecisions is the analyzer's verdict per free function.
	InlineDecisions map[string]inline.Decision
	// LifetimeIssues are the audit findings in full structured form.
	LifetimeIssues []lifetime.Issue
}

// Transpile runs the full pipeline over a module. Structural HIR violations
// abort; everything else degrades to diagnostics in the report.
func Transpile(m *hir.Module, opts Options) (*Result, error) {
	if err := hir.VerifyModule(m); err != nil {
		return nil, errors.Wrap(err, "HIR verification")
	}

	if opts.PackageName == "" {
		opts.PackageName = m.Name
	}
	if opts.Inline == (inline.Config{}) {
		opts.Inline = inline.DefaultConfig()
	}

	diags := &diagnostics.Collector{}
	mapper := typemap.NewMapper(opts.NASAMode, diags)
	crates := rustast.NewCrateSet()

	// Fixed-size evidence first: later passes see [T; N] bindings.
	constgen.NewInferencer(diags).InferModule(m)

	decisions := inline.NewAnalyzer(opts.Inline).Analyze(m)

	mut := mutability.AnalyzeModule(m)

	// The audit is advisory: findings land in the report, never abort.
	issues := lifetime.NewChecker(mapper, diags).CheckModule(m)

	optimizer.New(opts.OptLevel).OptimizeModule(m)

	converter := lowering.NewConverter(m, mut, mapper, crates, diags, opts.Registry)
	file := converter.ConvertModule(m)

	src := fixup.Apply(rustast.NewPrinter().Print(file))

	return &Result{
		Rust:            src,
		CargoToml:       crates.CargoToml(opts.PackageName),
		Report:          diags.BuildReport(),
		InlineDecisions: decisions,
		LifetimeIssues:  issues,
	}, nil
}
