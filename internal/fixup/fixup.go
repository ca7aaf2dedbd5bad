// Package fixup runs text-level repairs over emitted Rust. The printer
// occasionally produces spaced path separators or doubled terminators when
// raw fragments meet generated ones; these passes normalize the text without
// touching string literals' interiors beyond the known-safe patterns.
package fixup

import "regexp"

var (
	// `Foo :: Bar` → `Foo::Bar`
	spacedPathSep = regexp.MustCompile(`(\w)\s+::\s+(\w)`)
	// `collect :: <Vec<_>>` → `collect::<Vec<_>>`
	spacedTurbofish = regexp.MustCompile(`(\w)\s*::\s*<`)
	// `;;` → `;` (stacked raw fragments)
	doubledSemis = regexp.MustCompile(`;\s*;`)
	// trailing whitespace before a newline
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
)

// Apply runs every repair pass over the emitted source.
func Apply(src string) string {
	src = spacedPathSep.ReplaceAllString(src, "$1::$2")
	src = spacedTurbofish.ReplaceAllString(src, "$1::<")
	src = doubledSemis.ReplaceAllString(src, ";")
	src = trailingSpace.ReplaceAllString(src, "\n")

	return src
}
