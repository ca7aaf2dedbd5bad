package typeshed

import (
	"os"
	"path/filepath"
	"testing"
)

const regexStub = `# rust-module: regex
# rust-crate: regex ^1.10

class Pattern:
    # constructor: Regex::new({0}).expect("invalid regex")
    def match(self, s: str) -> Match: ...

def compile(pattern: str) -> Pattern: ...  # rust: regex::Regex::new
def findall(pattern: str, s: str, flags: int = 0) -> list: ...
`

const jsonStub = `# rust-module: serde_json
# rust-crate: serde_json ^1.0

def dumps(obj, indent: int = None) -> str: ...  # rust: serde_json::to_string
def loads(s: str) -> object: ...  # rust: serde_json::from_str
`

func TestParsePyiDirectives(t *testing.T) {
	m, err := ParsePyi(regexStub, "re")
	if err != nil {
		t.Fatalf("ParsePyi: %v", err)
	}

	if m.RustPath != "regex" {
		t.Errorf("RustPath = %q, want regex", m.RustPath)
	}
	if !m.IsExternal || m.Crate != "regex" {
		t.Errorf("crate = %q (external %v), want external regex", m.Crate, m.IsExternal)
	}
	if m.Version != "^1.10" {
		t.Errorf("Version = %q, want ^1.10", m.Version)
	}
	if got := m.ConstructorPatterns["Pattern"]; got != `Regex::new({0}).expect("invalid regex")` {
		t.Errorf("constructor pattern = %q", got)
	}
	if got := m.ItemMap["compile"]; got != "regex::Regex::new" {
		t.Errorf("ItemMap[compile] = %q", got)
	}
}

func TestParsePyiArity(t *testing.T) {
	m, err := ParsePyi(regexStub, "re")
	if err != nil {
		t.Fatalf("ParsePyi: %v", err)
	}

	compile := m.Functions["compile"]
	if compile.MinArgs != 1 || compile.MaxArgs != 1 {
		t.Errorf("compile arity = [%d, %d], want [1, 1]", compile.MinArgs, compile.MaxArgs)
	}

	// Defaulted params raise the max but not the min.
	findall := m.Functions["findall"]
	if findall.MinArgs != 2 || findall.MaxArgs != 3 {
		t.Errorf("findall arity = [%d, %d], want [2, 3]", findall.MinArgs, findall.MaxArgs)
	}

	// self never counts.
	match := m.Functions["match"]
	if match.MinArgs != 1 || match.MaxArgs != 1 {
		t.Errorf("match arity = [%d, %d], want [1, 1]", match.MinArgs, match.MaxArgs)
	}
}

func TestParsePyiVarargsUnbounded(t *testing.T) {
	m, err := ParsePyi("def join(sep: str, *parts) -> str: ...", "mod")
	if err != nil {
		t.Fatalf("ParsePyi: %v", err)
	}

	sig := m.Functions["join"]
	if sig.MinArgs != 1 || sig.MaxArgs != -1 {
		t.Errorf("join arity = [%d, %d], want [1, unbounded]", sig.MinArgs, sig.MaxArgs)
	}
}

func TestParsePyiBracketedAnnotations(t *testing.T) {
	m, err := ParsePyi("def merge(a: Dict[str, int], b: Dict[str, int]) -> Dict[str, int]: ...", "mod")
	if err != nil {
		t.Fatalf("ParsePyi: %v", err)
	}

	sig := m.Functions["merge"]
	if sig.MinArgs != 2 || sig.MaxArgs != 2 {
		t.Errorf("merge arity = [%d, %d], want [2, 2]", sig.MinArgs, sig.MaxArgs)
	}
}

func TestParsePyiRejectsBadVersionConstraint(t *testing.T) {
	_, err := ParsePyi("# rust-crate: regex not-a-version", "re")
	if err == nil {
		t.Error("malformed version constraint accepted")
	}
}

func TestParsePyiRejectsOrphanConstructor(t *testing.T) {
	_, err := ParsePyi("# constructor: Foo::new()", "mod")
	if err == nil {
		t.Error("constructor directive outside a class accepted")
	}
}

func TestRegistryLongestPrefixWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&ModuleMapping{
		PyModule: "os",
		RustPath: "std::env",
		ItemMap:  map[string]string{"getcwd": "std::env::current_dir"},
	})
	r.Register(&ModuleMapping{
		PyModule: "os.path",
		RustPath: "std::path",
		ItemMap:  map[string]string{"join": "std::path::Path::join"},
	})

	if got, ok := r.LookupFunction("os.path.join"); !ok || got != "std::path::Path::join" {
		t.Errorf("os.path.join -> %q (%v), want std::path::Path::join", got, ok)
	}
	if got, ok := r.LookupFunction("os.getcwd"); !ok || got != "std::env::current_dir" {
		t.Errorf("os.getcwd -> %q (%v)", got, ok)
	}
	// Unmapped item under a mapped module falls back to the module path.
	if got, ok := r.LookupFunction("os.path.exists"); !ok || got != "std::path::exists" {
		t.Errorf("os.path.exists -> %q (%v), want std::path::exists", got, ok)
	}
	if _, ok := r.LookupFunction("shutil.copy"); ok {
		t.Error("unregistered module resolved")
	}
}

func TestCheckArity(t *testing.T) {
	m, err := ParsePyi(jsonStub, "json")
	if err != nil {
		t.Fatalf("ParsePyi: %v", err)
	}

	r := NewRegistry()
	r.Register(m)

	if err := r.CheckArity("json.dumps", 1); err != nil {
		t.Errorf("dumps(obj): %v", err)
	}
	if err := r.CheckArity("json.dumps", 2); err != nil {
		t.Errorf("dumps(obj, indent): %v", err)
	}
	if err := r.CheckArity("json.dumps", 3); err == nil {
		t.Error("dumps with 3 args accepted")
	}
	if err := r.CheckArity("json.dumps", 0); err == nil {
		t.Error("dumps with 0 args accepted")
	}
	// Unknown callables are not the arity checker's business.
	if err := r.CheckArity("json.unknown", 9); err != nil {
		t.Errorf("unknown function rejected: %v", err)
	}
}

func TestCheckCrateVersion(t *testing.T) {
	m, err := ParsePyi(regexStub, "re")
	if err != nil {
		t.Fatalf("ParsePyi: %v", err)
	}

	r := NewRegistry()
	r.Register(m)

	if err := r.CheckCrateVersion("regex", "1.10.4"); err != nil {
		t.Errorf("1.10.4 should satisfy ^1.10: %v", err)
	}
	if err := r.CheckCrateVersion("regex", "0.2.0"); err == nil {
		t.Error("0.2.0 accepted against ^1.10")
	}
	if err := r.CheckCrateVersion("regex", "garbage"); err == nil {
		t.Error("unparseable installed version accepted")
	}
	// Crates no stub constrains pass through.
	if err := r.CheckCrateVersion("rand", "0.8.5"); err != nil {
		t.Errorf("unconstrained crate rejected: %v", err)
	}
}

func TestCrateFor(t *testing.T) {
	m, err := ParsePyi(regexStub, "re")
	if err != nil {
		t.Fatalf("ParsePyi: %v", err)
	}

	r := NewRegistry()
	r.Register(m)

	if crate, ok := r.CrateFor("re.compile"); !ok || crate != "regex" {
		t.Errorf("CrateFor(re.compile) = %q (%v), want regex", crate, ok)
	}
	if _, ok := r.CrateFor("math.sqrt"); ok {
		t.Error("std-only call reported as external")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	if err := os.WriteFile(filepath.Join(dir, "re.pyi"), []byte(regexStub), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "json.pyi"), []byte(jsonStub), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}

	want := []string{"json", "re"}
	got := r.Modules()
	if len(got) != len(want) {
		t.Fatalf("Modules() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Modules()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
