// Package typeshed ingests .pyi stub files into ModuleMapping records
// consumed by the lowering pass. Stubs carry mapping directives in comments:
//
//	# rust-module: regex
//	# rust-crate: regex ^1.10
//	def compile(pattern: str) -> Pattern: ...  # rust: regex::Regex::new
//	# constructor: Regex::new({0}).expect("invalid regex")
//
// The function signatures give the arity contract; the directives give the
// Rust target paths and the crate version constraint, validated with semver.
package typeshed

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

// FuncSig is the arity contract of one stub function.
type FuncSig struct {
	Name     string
	MinArgs  int
	MaxArgs  int
	RustPath string
}

// ModuleMapping is the lowering contract for one Python module.
type ModuleMapping struct {
	PyModule   string
	RustPath   string
	IsExternal bool
	Crate      string
	Version    string // semver constraint; empty when the module maps to std
	ItemMap    map[string]string
	Functions  map[string]FuncSig
	// ConstructorPatterns are emission templates keyed by class name, with
	// {0}, {1}, ... argument holes.
	ConstructorPatterns map[string]string
}

// ParsePyi parses stub content for one module.
func ParsePyi(content, moduleName string) (*ModuleMapping, error) {
	m := &ModuleMapping{
		PyModule:            moduleName,
		ItemMap:             make(map[string]string),
		Functions:           make(map[string]FuncSig),
		ConstructorPatterns: make(map[string]string),
	}

	var lastClass string

	sc := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case strings.HasPrefix(line, "# rust-module:"):
			m.RustPath = strings.TrimSpace(strings.TrimPrefix(line, "# rust-module:"))
		case strings.HasPrefix(line, "# rust-crate:"):
			if err := m.parseCrateDirective(line); err != nil {
				return nil, errors.Wrapf(err, "%s:%d", moduleName, lineNo)
			}
		case strings.HasPrefix(line, "# constructor:"):
			if lastClass == "" {
				return nil, errors.Errorf("%s:%d: constructor directive outside a class", moduleName, lineNo)
			}
			m.ConstructorPatterns[lastClass] = strings.TrimSpace(strings.TrimPrefix(line, "# constructor:"))
		case strings.HasPrefix(line, "class "):
			lastClass = className(line)
		case strings.HasPrefix(line, "def "):
			sig, err := parseDef(line)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d", moduleName, lineNo)
			}
			m.Functions[sig.Name] = sig
			if sig.RustPath != "" {
				m.ItemMap[sig.Name] = sig.RustPath
			}
		}
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read stub")
	}

	return m, nil
}

func (m *ModuleMapping) parseCrateDirective(line string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "# rust-crate:"))

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return errors.New("rust-crate directive needs a crate name")
	}

	m.Crate = fields[0]
	m.IsExternal = true

	if len(fields) > 1 {
		constraint := strings.Join(fields[1:], " ")
		if _, err := semver.NewConstraint(constraint); err != nil {
			return errors.Wrapf(err, "invalid version constraint %q", constraint)
		}
		m.Version = constraint
	}

	return nil
}

func className(line string) string {
	rest := strings.TrimPrefix(line, "class ")

	for i, r := range rest {
		if r == '(' || r == ':' {
			return strings.TrimSpace(rest[:i])
		}
	}

	return strings.TrimSpace(rest)
}

// parseDef extracts the arity contract and optional rust target from a stub
// def line.
func parseDef(line string) (FuncSig, error) {
	var sig FuncSig

	rest := strings.TrimPrefix(line, "def ")

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return sig, errors.New("malformed def: missing parameter list")
	}

	sig.Name = strings.TrimSpace(rest[:open])

	closeIdx := strings.LastIndexByte(rest, ')')
	if closeIdx < open {
		return sig, errors.New("malformed def: unbalanced parentheses")
	}

	params := splitParams(rest[open+1 : closeIdx])

	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == "" || p == "self" || p == "cls" {
			continue
		}
		if strings.HasPrefix(p, "*") {
			sig.MaxArgs = -1 // vararg: unbounded
			continue
		}
		if strings.Contains(p, "=") {
			if sig.MaxArgs >= 0 {
				sig.MaxArgs++
			}
			continue
		}
		sig.MinArgs++
		if sig.MaxArgs >= 0 {
			sig.MaxArgs++
		}
	}

	if idx := strings.Index(rest, "# rust:"); idx >= 0 {
		sig.RustPath = strings.TrimSpace(rest[idx+len("# rust:"):])
	}

	return sig, nil
}

// splitParams splits a parameter list on top-level commas, respecting
// brackets in type annotations like Dict[str, int].
func splitParams(s string) []string {
	var out []string

	depth := 0
	start := 0

	for i, r := range s {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}

	if strings.TrimSpace(s[start:]) != "" {
		out = append(out, s[start:])
	}

	return out
}

// Registry holds the loaded module mappings. It is read-mostly: lookups far
// outnumber reloads, so an RWMutex guards the map for the watcher's sake.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*ModuleMapping
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*ModuleMapping)}
}

// Register installs or replaces a module mapping.
func (r *Registry) Register(m *ModuleMapping) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules[m.PyModule] = m
}

// Module returns the mapping for a Python module name.
func (r *Registry) Module(name string) (*ModuleMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.modules[name]

	return m, ok
}

// Modules returns the registered module names in sorted order.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := maps.Keys(r.modules)
	sort.Strings(names)

	return names
}

// LookupFunction resolves a dotted call like "json.dumps" to its Rust path.
// The module prefix is matched longest-first so "os.path.join" prefers an
// "os.path" mapping over "os".
func (r *Registry) LookupFunction(dotted string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := dotted
	for {
		idx := strings.LastIndexByte(prefix, '.')
		if idx < 0 {
			break
		}
		prefix = prefix[:idx]
		rest := dotted[len(prefix)+1:]

		m, ok := r.modules[prefix]
		if !ok {
			continue
		}

		if path, ok := m.ItemMap[rest]; ok {
			return path, true
		}

		if m.RustPath != "" {
			return m.RustPath + "::" + strings.ReplaceAll(rest, ".", "::"), true
		}
	}

	return "", false
}

// CrateFor returns the crate a dotted call depends on, if external.
func (r *Registry) CrateFor(dotted string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for mod, _ := splitLongest(dotted); mod != ""; mod, _ = splitLongest(mod) {
		if m, ok := r.modules[mod]; ok && m.IsExternal {
			return m.Crate, true
		}
	}

	return "", false
}

// CheckArity validates a dotted call's argument count against the stub.
func (r *Registry) CheckArity(dotted string, argc int) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, fn := splitLongest(dotted)

	m, ok := r.modules[mod]
	if !ok {
		return nil
	}

	sig, ok := m.Functions[fn]
	if !ok {
		return nil
	}

	if argc < sig.MinArgs || (sig.MaxArgs >= 0 && argc > sig.MaxArgs) {
		return errors.Errorf("%s expects %d to %d arguments, got %d", dotted, sig.MinArgs, sig.MaxArgs, argc)
	}

	return nil
}

// CheckCrateVersion validates an installed crate version against the
// constraint carried by the stub that requires it.
func (r *Registry) CheckCrateVersion(crate, installed string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, err := semver.NewVersion(installed)
	if err != nil {
		return errors.Wrapf(err, "invalid version %q for crate %s", installed, crate)
	}

	for _, m := range r.modules {
		if m.Crate != crate || m.Version == "" {
			continue
		}

		constraint, err := semver.NewConstraint(m.Version)
		if err != nil {
			return errors.Wrapf(err, "invalid constraint %q recorded for crate %s", m.Version, crate)
		}

		if !constraint.Check(v) {
			return errors.Errorf("crate %s version %s does not satisfy %s (required by module %s)",
				crate, installed, m.Version, m.PyModule)
		}
	}

	return nil
}

// splitLongest splits "a.b.c" into ("a.b", "c"); returns ("", s) when no dot
// remains.
func splitLongest(dotted string) (string, string) {
	idx := strings.LastIndexByte(dotted, '.')
	if idx < 0 {
		return "", dotted
	}

	return dotted[:idx], dotted[idx+1:]
}

// LoadDir parses every .pyi file under dir into the registry. The file stem
// is the module name; dots in the stem express submodules (os.path.pyi).
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read stub directory %s", dir)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".pyi") {
			continue
		}

		if err := r.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}

	return nil
}

// LoadFile parses one stub file into the registry.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read stub %s", path)
	}

	module := strings.TrimSuffix(filepath.Base(path), ".pyi")

	m, err := ParsePyi(string(data), module)
	if err != nil {
		return err
	}

	r.Register(m)

	return nil
}
