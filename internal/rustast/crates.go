// External-crate bookkeeping for the emitted manifest.

package rustast

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// CrateSet tracks the external crates the lowering actually used, so the
// Cargo.toml manifest lists exactly the dependencies of the emitted code.
type CrateSet struct {
	crates map[string]string // name -> version requirement
}

// NewCrateSet creates an empty crate set.
func NewCrateSet() *CrateSet {
	return &CrateSet{crates: make(map[string]string)}
}

// Default versions for the crates the dispatchers can introduce.
var defaultCrateVersions = map[string]string{
	"regex":      "1",
	"serde_json": "1",
	"walkdir":    "2",
	"chrono":     "0.4",
	"sha2":       "0.10",
	"md-5":       "0.10",
	"base64":     "0.22",
	"rand":       "0.8",
	"csv":        "1",
	"tempfile":   "3",
	"trueno":     "0.2",
	"tokio":      "1",
}

// Add records a crate dependency. Unknown crates default to "*".
func (cs *CrateSet) Add(name string) {
	if _, ok := cs.crates[name]; ok {
		return
	}

	version, ok := defaultCrateVersions[name]
	if !ok {
		version = "*"
	}

	cs.crates[name] = version
}

// AddVersioned records a crate with an explicit version requirement.
func (cs *CrateSet) AddVersioned(name, version string) {
	cs.crates[name] = version
}

// Has reports whether a crate was recorded.
func (cs *CrateSet) Has(name string) bool {
	_, ok := cs.crates[name]

	return ok
}

// Names returns the recorded crate names in sorted order.
func (cs *CrateSet) Names() []string {
	names := maps.Keys(cs.crates)
	sort.Strings(names)

	return names
}

// CargoToml renders the manifest for the emitted crate.
func (cs *CrateSet) CargoToml(pkgName string) string {
	var b strings.Builder

	b.WriteString("[package]\n")
	fmt.Fprintf(&b, "name = %q\n", pkgName)
	b.WriteString("version = \"0.1.0\"\n")
	b.WriteString("edition = \"2021\"\n")

	b.WriteString("\n[dependencies]\n")

	for _, name := range cs.Names() {
		fmt.Fprintf(&b, "%s = %q\n", name, cs.crates[name])
	}

	return b.String()
}
