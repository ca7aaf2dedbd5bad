// Package main provides the entry point for the Depyler transpiler core.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/depyler-lang/depyler/internal/hir"
	"github.com/depyler-lang/depyler/internal/pipeline"
	"github.com/depyler-lang/depyler/internal/typeshed"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help information")
		input       = flag.String("i", "", "input HIR module (JSON, as produced by the AST bridge)")
		outDir      = flag.String("o", ".", "output directory for the emitted crate")
		optLevel    = flag.String("opt", "conservative", "optimizer level: conservative|standard|aggressive")
		nasaMode    = flag.Bool("nasa", false, "restricted mode: no filesystem walking, no temp files, no SIMD crates")
		stubDir     = flag.String("typeshed", "", "directory of .pyi mapping stubs for third-party modules")
		pkgName     = flag.String("package", "", "Cargo package name (defaults to the module name)")
		reportPath  = flag.String("report", "", "write the diagnostics report JSON to this path")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("Depyler v%s (%s)\n", version, commit)
		return
	}

	if *showHelp || *input == "" {
		showUsage()
		if *input == "" && !*showHelp {
			os.Exit(1)
		}
		return
	}

	level, err := parseOptLevel(*optLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var registry *typeshed.Registry
	if *stubDir != "" {
		registry = typeshed.NewRegistry()
		if err := registry.LoadDir(*stubDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading typeshed stubs: %v\n", err)
			os.Exit(1)
		}
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", *input, err)
		os.Exit(1)
	}

	module, err := hir.DecodeModule(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: decoding HIR: %v\n", err)
		os.Exit(1)
	}

	result, err := pipeline.Transpile(module, pipeline.Options{
		OptLevel:    level,
		NASAMode:    *nasaMode,
		PackageName: *pkgName,
		Registry:    registry,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeCrate(*outDir, module.Name, result); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *reportPath != "" {
		if err := writeReport(*reportPath, result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	summarize(result)
}

func parseOptLevel(s string) (hir.OptLevel, error) {
	switch strings.ToLower(s) {
	case "conservative", "":
		return hir.OptConservative, nil
	case "standard":
		return hir.OptStandard, nil
	case "aggressive":
		return hir.OptAggressive, nil
	default:
		return 0, fmt.Errorf("unknown optimizer level %q", s)
	}
}

func writeCrate(dir, moduleName string, result *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	rsPath := filepath.Join(dir, moduleName+".rs")
	if err := os.WriteFile(rsPath, []byte(result.Rust), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rsPath, err)
	}

	manifestPath := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(manifestPath, []byte(result.CargoToml), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", manifestPath, err)
	}

	return nil
}

func writeReport(path string, result *pipeline.Result) error {
	data, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

func summarize(result *pipeline.Result) {
	fmt.Printf("warnings: %d, lifetime issues: %d, unimplemented: %d\n",
		len(result.Report.Warnings), len(result.Report.LifetimeIssues), len(result.Report.Unimplemented))
}

func showUsage() {
	fmt.Println("Depyler - Python-to-Rust transpiler core")
	fmt.Println()
	fmt.Println("Usage: depyler -i <module.hir.json> [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
}
