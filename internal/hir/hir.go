// Package hir defines the High-level Intermediate Representation (HIR) for
// the Depyler transpiler. The HIR is a typed, closed sum-type IR produced by
// the AST bridge from Python source. It is the single source of truth for
// every downstream pass: type mapping, const-generic inference, mutability
// analysis, lowering, lifetime checking, and optimization all consume HIR
// and nothing else.
//
// Ownership discipline: every node owns its children exclusively. Passes may
// mutate the HIR in place (const-generic inference rewrites types, the
// optimizer rewrites bodies); after textual emission the HIR is discarded.
package hir

// Module is an ordered Python module: imports, type aliases, protocols,
// classes, top-level constants, free functions, and top-level statements.
type Module struct {
	Name        string
	Imports     []Import
	TypeAliases []TypeAlias
	Protocols   []Protocol
	Classes     []*Class
	Constants   []Constant
	Functions   []*Function
	TopLevel    []Stmt
}

// Import records a Python import and the names it binds.
type Import struct {
	Module string
	Names  []ImportName
}

// ImportName is a single imported name with an optional alias.
type ImportName struct {
	Name  string
	Alias string
}

// TypeAlias binds a name to a type at module level.
type TypeAlias struct {
	Name string
	Type Type
}

// Protocol is a structural interface declaration. Protocols become traits at
// the boundary but are not used for dynamic dispatch within the core.
type Protocol struct {
	Name    string
	Methods []ProtocolMethod
}

// ProtocolMethod is a method signature inside a protocol.
type ProtocolMethod struct {
	Name   string
	Params []Param
	Ret    Type
}

// Constant is a module-level constant binding.
type Constant struct {
	Name  string
	Type  Type
	Value Expr
}

// Class is a Python class flattened to explicit field declarations plus
// methods. Methods carry an implicit self as their first parameter.
type Class struct {
	Name        string
	Bases       []string
	Fields      []ClassField
	Methods     []*Function
	IsDataclass bool
	IsEnum      bool
	Docstring   string
}

// ClassField declares one field with an optional default expression.
type ClassField struct {
	Name    string
	Type    Type
	Default Expr
}

// Function is a free function or a method body in HIR form.
type Function struct {
	Name        string
	Params      []Param
	RetType     Type
	Body        []Stmt
	Properties  FunctionProperties
	Annotations Annotations
	Docstring   string
}

// Param is a function parameter. NeedsMut is filled in by the mutability
// analyzer when the lowering requires `&mut` for this position.
type Param struct {
	Name     string
	Type     Type
	NeedsMut bool
}

// FunctionProperties are derived facts about a function body.
type FunctionProperties struct {
	IsPure           bool
	AlwaysTerminates bool
	PanicFree        bool
	CanFail          bool
	IsAsync          bool
}

// OptLevel selects how aggressively the optimizer rewrites a function.
type OptLevel int

const (
	OptConservative OptLevel = iota
	OptStandard
	OptAggressive
)

func (ol OptLevel) String() string {
	switch ol {
	case OptConservative:
		return "conservative"
	case OptStandard:
		return "standard"
	case OptAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// BoundsPolicy controls bounds-check emission for indexed accesses.
type BoundsPolicy int

const (
	BoundsEnabled BoundsPolicy = iota
	BoundsDisabled
	BoundsExplicit
)

func (bp BoundsPolicy) String() string {
	switch bp {
	case BoundsEnabled:
		return "enabled"
	case BoundsDisabled:
		return "disabled"
	case BoundsExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// PerfHintKind enumerates the recognized performance hints.
type PerfHintKind int

const (
	HintVectorize PerfHintKind = iota
	HintUnrollLoops
	HintOptimizeForLatency
	HintOptimizeForThroughput
	HintPerformanceCritical
)

func (pk PerfHintKind) String() string {
	switch pk {
	case HintVectorize:
		return "vectorize"
	case HintUnrollLoops:
		return "unroll_loops"
	case HintOptimizeForLatency:
		return "optimize_for_latency"
	case HintOptimizeForThroughput:
		return "optimize_for_throughput"
	case HintPerformanceCritical:
		return "performance_critical"
	default:
		return "unknown"
	}
}

// PerformanceHint is one user hint; Factor carries the unroll count for
// HintUnrollLoops and is zero otherwise.
type PerformanceHint struct {
	Kind   PerfHintKind
	Factor int
}

// InlinePolicy is the user-facing inline annotation on a function.
type InlinePolicy int

const (
	InlineAuto InlinePolicy = iota
	InlineAlways
	InlineNever
)

func (ip InlinePolicy) String() string {
	switch ip {
	case InlineAuto:
		return "auto"
	case InlineAlways:
		return "always"
	case InlineNever:
		return "never"
	default:
		return "unknown"
	}
}

// Annotations are user hints recognized verbatim on functions.
type Annotations struct {
	OptimizationLevel OptLevel
	PerformanceHints  []PerformanceHint
	BoundsChecking    BoundsPolicy
	InlinePolicy      InlinePolicy
}

// HasHint reports whether the annotation set carries the given hint kind.
func (a Annotations) HasHint(kind PerfHintKind) bool {
	for _, h := range a.PerformanceHints {
		if h.Kind == kind {
			return true
		}
	}

	return false
}

// UnrollFactor returns the requested unroll factor, or def when no
// UnrollLoops hint is present or the hint carries no explicit count.
func (a Annotations) UnrollFactor(def int) int {
	for _, h := range a.PerformanceHints {
		if h.Kind == HintUnrollLoops {
			if h.Factor > 0 {
				return h.Factor
			}

			return def
		}
	}

	return def
}
