// Package oracle implements the error-pattern store and learning components
// behind the compile/repair loop. The store keeps fix patterns keyed by Rust
// error code and message shape, retrieves candidates with a hybrid lexical +
// dense score fused by reciprocal rank, and tracks application outcomes so
// consistently failing patterns get retired.
package oracle

import (
	"encoding/json"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Pattern is one learned error→fix association.
type Pattern struct {
	ID              string   `json:"id"`
	ErrorCode       string   `json:"error_code"`
	MessageShape    string   `json:"message_shape"`
	FixDiff         string   `json:"fix_diff"`
	ContextKeywords []string `json:"context_keywords"`
	Confidence      float64  `json:"confidence"`
	Applications    int      `json:"applications"`
	Successes       int      `json:"successes"`
}

// SuccessRate is successes over applications, zero when never applied.
func (p *Pattern) SuccessRate() float64 {
	if p.Applications == 0 {
		return 0
	}

	return float64(p.Successes) / float64(p.Applications)
}

// Query is one retrieval request.
type Query struct {
	ErrorCode     string
	ErrorMessage  string
	SourceContext string
}

// Suggestion is a retrieved pattern with its fused score.
type Suggestion struct {
	Pattern *Pattern
	Score   float64
}

// StoreConfig tunes retrieval and retirement.
type StoreConfig struct {
	MaxSuggestions int
	MinConfidence  float64
	// RetireAfter is the application count at which a low success rate
	// retires a pattern.
	RetireAfter int
	// RetireBelow is the success rate under which a pattern retires.
	RetireBelow float64
}

// DefaultStoreConfig mirrors the driver defaults.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		MaxSuggestions: 5,
		MinConfidence:  0.3,
		RetireAfter:    10,
		RetireBelow:    0.2,
	}
}

// PatternStore holds patterns and answers queries. Safe for concurrent use.
type PatternStore struct {
	mu       sync.RWMutex
	cfg      StoreConfig
	patterns map[string]*Pattern
}

// NewPatternStore creates an empty store.
func NewPatternStore(cfg StoreConfig) *PatternStore {
	return &PatternStore{cfg: cfg, patterns: make(map[string]*Pattern)}
}

// Add inserts or replaces a pattern by ID.
func (s *PatternStore) Add(p *Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patterns[p.ID] = p
}

// Get returns the pattern with the given ID.
func (s *PatternStore) Get(id string) (*Pattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patterns[id]

	return p, ok
}

// Len reports the number of live patterns.
func (s *PatternStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.patterns)
}

// ====== Retrieval ======

// Query returns up to MaxSuggestions patterns, best first, scored by BM25
// over tokenized text blended with a dense cosine similarity through
// reciprocal-rank fusion. Patterns below MinConfidence never surface.
func (s *PatternStore) Query(q Query) []Suggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := make([]*Pattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		if p.Confidence < s.cfg.MinConfidence {
			continue
		}
		if p.ErrorCode != "" && q.ErrorCode != "" && p.ErrorCode != q.ErrorCode {
			continue
		}
		candidates = append(candidates, p)
	}

	if len(candidates) == 0 {
		return nil
	}

	queryTokens := tokenize(q.ErrorMessage + " " + q.SourceContext)

	lexical := rankBy(candidates, func(p *Pattern) float64 {
		return bm25Score(queryTokens, p, candidates)
	})
	dense := rankBy(candidates, func(p *Pattern) float64 {
		return cosineSimilarity(embed(queryTokens), embed(patternTokens(p)))
	})

	fused := rrfFuse(candidates, lexical, dense)

	if len(fused) > s.cfg.MaxSuggestions {
		fused = fused[:s.cfg.MaxSuggestions]
	}

	return fused
}

// rankBy returns each candidate's rank (0 = best) under the scorer,
// deterministic under score ties by pattern ID.
func rankBy(candidates []*Pattern, score func(*Pattern) float64) map[string]int {
	type scored struct {
		p *Pattern
		s float64
	}

	all := make([]scored, len(candidates))
	for i, p := range candidates {
		all[i] = scored{p: p, s: score(p)}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].s != all[j].s {
			return all[i].s > all[j].s
		}
		return all[i].p.ID < all[j].p.ID
	})

	ranks := make(map[string]int, len(all))
	for i, sc := range all {
		ranks[sc.p.ID] = i
	}

	return ranks
}

// rrfK is the standard reciprocal-rank-fusion damping constant.
const rrfK = 60.0

func rrfFuse(candidates []*Pattern, lexical, dense map[string]int) []Suggestion {
	out := make([]Suggestion, 0, len(candidates))

	for _, p := range candidates {
		score := 1.0/(rrfK+float64(lexical[p.ID])) + 1.0/(rrfK+float64(dense[p.ID]))
		// Confidence scales the fused score so a proven pattern outranks an
		// equally similar unproven one.
		score *= p.Confidence

		out = append(out, Suggestion{Pattern: p, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Pattern.ID < out[j].Pattern.ID
	})

	return out
}

// ====== Scoring primitives ======

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '_'
	})

	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}

	return out
}

func patternTokens(p *Pattern) []string {
	tokens := tokenize(p.MessageShape)
	for _, kw := range p.ContextKeywords {
		tokens = append(tokens, strings.ToLower(kw))
	}

	return tokens
}

// BM25 constants; k1 tunes term-frequency saturation, b length normalization.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

func bm25Score(query []string, p *Pattern, corpus []*Pattern) float64 {
	docTokens := patternTokens(p)
	docLen := float64(len(docTokens))
	if docLen == 0 {
		return 0
	}

	avgLen := 0.0
	for _, c := range corpus {
		avgLen += float64(len(patternTokens(c)))
	}
	avgLen /= float64(len(corpus))
	if avgLen == 0 {
		avgLen = 1
	}

	tf := make(map[string]int, len(docTokens))
	for _, t := range docTokens {
		tf[t]++
	}

	score := 0.0
	n := float64(len(corpus))

	for _, term := range query {
		f := float64(tf[term])
		if f == 0 {
			continue
		}

		df := 0.0
		for _, c := range corpus {
			for _, t := range patternTokens(c) {
				if t == term {
					df++
					break
				}
			}
		}

		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		score += idf * (f * (bm25K1 + 1)) / (f + bm25K1*(1-bm25B+bm25B*docLen/avgLen))
	}

	return score
}

// embedDims is the dimensionality of the hashed bag-of-words embedding.
const embedDims = 64

// embed maps tokens into a fixed-size dense vector by feature hashing.
func embed(tokens []string) []float64 {
	v := make([]float64, embedDims)

	for _, t := range tokens {
		h := fnv32(t)
		v[h%embedDims]++
	}

	return v
}

func fnv32(s string) uint32 {
	const (
		offset = 2166136261
		prime  = 16777619
	)

	h := uint32(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime
	}

	return h
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}

	if na == 0 || nb == 0 {
		return 0
	}

	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ====== Outcomes ======

// RecordApplication notes that a pattern's fix was attempted.
func (s *PatternStore) RecordApplication(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.patterns[id]; ok {
		p.Applications++
	}
}

// RecordSuccess notes a fix that compiled; confidence rises toward 1.
func (s *PatternStore) RecordSuccess(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.patterns[id]; ok {
		p.Successes++
		p.Confidence = math.Min(1, p.Confidence+0.1)
	}
}

// RecordFailure notes a fix that did not help; confidence decays.
func (s *PatternStore) RecordFailure(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.patterns[id]; ok {
		p.Confidence = math.Max(0, p.Confidence-0.15)
	}
}

// Retire zeroes the confidence of patterns with enough applications and a
// poor success rate, then sweeps them out. Returns the retired count.
func (s *PatternStore) Retire() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	retired := 0
	for id, p := range s.patterns {
		if p.Applications >= s.cfg.RetireAfter && p.SuccessRate() < s.cfg.RetireBelow {
			p.Confidence = 0
			delete(s.patterns, id)
			retired++
		}
	}

	return retired
}

// ====== Persistence ======

type storeFile struct {
	Patterns []*Pattern `json:"patterns"`
}

// Save writes the store as JSON.
func (s *PatternStore) Save(path string) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.patterns))
	for id := range s.patterns {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	file := storeFile{Patterns: make([]*Pattern, 0, len(ids))}
	for _, id := range ids {
		file.Patterns = append(file.Patterns, s.patterns[id])
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal pattern store")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write pattern store %s", path)
	}

	return nil
}

// Load reads patterns from JSON. A missing file leaves the store empty.
func (s *PatternStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read pattern store %s", path)
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(err, "parse pattern store %s", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range file.Patterns {
		s.patterns[p.ID] = p
	}

	return nil
}
