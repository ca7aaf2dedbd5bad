// Mixture-of-experts classifier routing Rust error codes to fix domains.

package oracle

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Domain is one expert's specialty.
type Domain int

const (
	DomainTypeSystem Domain = iota
	DomainScope
	DomainMethodField
	DomainSyntaxBorrow
	domainCount
)

func (d Domain) String() string {
	switch d {
	case DomainTypeSystem:
		return "type-system"
	case DomainScope:
		return "scope-resolution"
	case DomainMethodField:
		return "method-field"
	case DomainSyntaxBorrow:
		return "syntax-borrow"
	default:
		return "unknown"
	}
}

// domainByCode is the deterministic error-code routing table.
var domainByCode = map[string]Domain{
	"E0308": DomainTypeSystem, "E0277": DomainTypeSystem,
	"E0606": DomainTypeSystem, "E0061": DomainTypeSystem,
	"E0425": DomainScope, "E0412": DomainScope,
	"E0433": DomainScope, "E0423": DomainScope,
	"E0599": DomainMethodField, "E0609": DomainMethodField,
	"E0615": DomainMethodField,
	"E0369": DomainSyntaxBorrow, "E0282": DomainSyntaxBorrow,
	"E0027": DomainSyntaxBorrow, "E0015": DomainSyntaxBorrow,
}

// featureKeywords are the context indicators in feature-vector order.
var featureKeywords = [...]string{
	"mismatched", "expected", "cannot find", "borrow", "moved",
	"trait", "method", "field", "lifetime", "mutable", "type annotations",
}

// featureDims = one-hot domain (4) + normalized code (1) + keywords (11).
const featureDims = 4 + 1 + len(featureKeywords)

// Expert is one domain's linear scorer plus its fallback fixes.
type Expert struct {
	Domain      Domain
	Weights     []float64
	Bias        float64
	DefaultFix  string
	FixPatterns []string
}

// Classification is the classifier verdict for one error.
type Classification struct {
	Domain     Domain
	Confidence float64
	Gates      []float64
	FixHints   []string
}

// MoEClassifier blends deterministic code routing with a softmax gate over
// a small feature vector. It never fails: unknown codes fall through to the
// gate alone.
type MoEClassifier struct {
	experts [domainCount]*Expert
	// gateWeights maps features to per-domain gate logits.
	gateWeights [domainCount][]float64
}

// NewMoEClassifier builds the classifier with default experts.
func NewMoEClassifier() *MoEClassifier {
	c := &MoEClassifier{}

	c.experts[DomainTypeSystem] = &Expert{
		Domain:     DomainTypeSystem,
		Weights:    uniformWeights(),
		DefaultFix: "insert an explicit cast or adjust the declared type",
		FixPatterns: []string{
			"add `as f64` / `as i32` at the mismatch site",
			"change the parameter type to match the argument",
			"wrap the value in Some(..) or unwrap the Option",
		},
	}
	c.experts[DomainScope] = &Expert{
		Domain:     DomainScope,
		Weights:    uniformWeights(),
		DefaultFix: "bring the name into scope",
		FixPatterns: []string{
			"add the missing `use` declaration",
			"fix the identifier spelling",
			"qualify the path with its module",
		},
	}
	c.experts[DomainMethodField] = &Expert{
		Domain:     DomainMethodField,
		Weights:    uniformWeights(),
		DefaultFix: "use a method the receiver type actually has",
		FixPatterns: []string{
			"replace the method with its Rust equivalent",
			"borrow or clone the receiver before the call",
			"access the field through the right struct",
		},
	}
	c.experts[DomainSyntaxBorrow] = &Expert{
		Domain:     DomainSyntaxBorrow,
		Weights:    uniformWeights(),
		DefaultFix: "restructure the expression to satisfy the borrow checker",
		FixPatterns: []string{
			"annotate the binding's type",
			"split the conflicting borrows into separate statements",
			"implement or derive the missing operator trait",
		},
	}

	for d := Domain(0); d < domainCount; d++ {
		w := make([]float64, featureDims)
		// The one-hot domain feature dominates when the code is known.
		w[int(d)] = 2.0
		c.gateWeights[d] = w
	}

	// Keyword evidence steers the gate when the code is unknown.
	for kw, d := range keywordDomains {
		c.gateWeights[d][5+keywordIndex(kw)] = 1.0
	}

	return c
}

// keywordDomains maps each context keyword to the domain it signals.
var keywordDomains = map[string]Domain{
	"mismatched":       DomainTypeSystem,
	"expected":         DomainTypeSystem,
	"trait":            DomainTypeSystem,
	"cannot find":      DomainScope,
	"method":           DomainMethodField,
	"field":            DomainMethodField,
	"borrow":           DomainSyntaxBorrow,
	"moved":            DomainSyntaxBorrow,
	"lifetime":         DomainSyntaxBorrow,
	"mutable":          DomainSyntaxBorrow,
	"type annotations": DomainSyntaxBorrow,
}

func keywordIndex(kw string) int {
	for i, k := range featureKeywords {
		if k == kw {
			return i
		}
	}

	return 0
}

func uniformWeights() []float64 {
	w := make([]float64, featureDims)
	for i := range w {
		w[i] = 1.0 / float64(featureDims)
	}

	return w
}

// Classify routes an error to its domain. The deterministic code table
// decides when it knows the code; the softmax gate over the feature vector
// breaks ties and covers unknown codes.
func (c *MoEClassifier) Classify(errorCode, errorMessage string) Classification {
	features := c.featurize(errorCode, errorMessage)
	gates := softmax(c.gateLogits(features))

	domain, known := domainByCode[errorCode]
	if !known {
		best := 0
		for i, g := range gates {
			if g > gates[best] {
				best = i
			}
		}
		domain = Domain(best)
	}

	expert := c.experts[domain]
	confidence := gates[domain]
	if known {
		// Deterministic routing is trusted over the gate.
		confidence = math.Max(confidence, 0.75)
	}

	return Classification{
		Domain:     domain,
		Confidence: confidence,
		Gates:      gates,
		FixHints:   append([]string{expert.DefaultFix}, expert.FixPatterns...),
	}
}

// featurize builds the 16-dim vector: one-hot routed domain, normalized
// numeric code, then keyword indicators over the message.
func (c *MoEClassifier) featurize(errorCode, errorMessage string) []float64 {
	f := make([]float64, featureDims)

	if d, ok := domainByCode[errorCode]; ok {
		f[int(d)] = 1
	}

	if n, ok := numericCode(errorCode); ok {
		f[4] = float64(n) / 1000.0
	}

	msg := strings.ToLower(errorMessage)
	for i, kw := range featureKeywords {
		if strings.Contains(msg, kw) {
			f[5+i] = 1
		}
	}

	return f
}

func numericCode(code string) (int, bool) {
	trimmed := strings.TrimPrefix(strings.ToUpper(code), "E")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}

	return n, true
}

func (c *MoEClassifier) gateLogits(features []float64) []float64 {
	logits := make([]float64, domainCount)
	for d := 0; d < int(domainCount); d++ {
		for i, f := range features {
			logits[d] += c.gateWeights[d][i] * f
		}
	}

	return logits
}

// softmax is numerically stable under large or all-equal logits.
func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}

	out := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		out[i] = math.Exp(l - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}

	return out
}

// Train fits each expert's weights to labeled examples with ridge-regularized
// least squares solved by Gaussian elimination. A singular or empty system
// leaves the expert's previous weights untouched.
func (c *MoEClassifier) Train(examples []TrainingExample) {
	byDomain := make(map[Domain][]TrainingExample)
	for _, ex := range examples {
		byDomain[ex.Domain] = append(byDomain[ex.Domain], ex)
	}

	domains := make([]Domain, 0, len(byDomain))
	for d := range byDomain {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	for _, d := range domains {
		if w, ok := fitRidge(byDomain[d]); ok {
			c.experts[d].Weights = w
		}
	}
}

// TrainingExample labels a featurized error with its domain and a target
// score (1 for a confirmed fix, 0 for a failed one).
type TrainingExample struct {
	Domain   Domain
	Features []float64
	Target   float64
}

// ridgeLambda keeps the normal equations invertible on tiny corpora.
const ridgeLambda = 0.1

func fitRidge(examples []TrainingExample) ([]float64, bool) {
	if len(examples) == 0 {
		return nil, false
	}

	n := featureDims

	// A = XᵀX + λI, b = Xᵀy
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
		a[i][i] = ridgeLambda
	}
	b := make([]float64, n)

	for _, ex := range examples {
		if len(ex.Features) != n {
			continue
		}
		for i := 0; i < n; i++ {
			b[i] += ex.Features[i] * ex.Target
			for j := 0; j < n; j++ {
				a[i][j] += ex.Features[i] * ex.Features[j]
			}
		}
	}

	return solveGaussian(a, b)
}

// solveGaussian solves a*x = b with partial pivoting; a near-zero pivot
// reports the system singular instead of producing garbage weights.
func solveGaussian(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}

		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}

	return x, true
}
