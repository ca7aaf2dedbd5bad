package oracle

import (
	"os"
	"path/filepath"
	"testing"
)

func seedPatterns(s *PatternStore) {
	s.Add(&Pattern{
		ID:              "p-mismatch",
		ErrorCode:       "E0308",
		MessageShape:    "mismatched types expected i32 found f64",
		FixDiff:         "- let x: i32 = v;\n+ let x: i32 = v as i32;",
		ContextKeywords: []string{"cast", "numeric"},
		Confidence:      0.9,
	})
	s.Add(&Pattern{
		ID:              "p-unfound",
		ErrorCode:       "E0425",
		MessageShape:    "cannot find value in this scope",
		FixDiff:         "+ use std::collections::HashMap;",
		ContextKeywords: []string{"scope", "import"},
		Confidence:      0.8,
	})
	s.Add(&Pattern{
		ID:              "p-lowconf",
		ErrorCode:       "E0308",
		MessageShape:    "mismatched types in closure",
		FixDiff:         "annotate the closure parameter",
		Confidence:      0.1,
	})
}

func TestQueryFiltersByCodeAndConfidence(t *testing.T) {
	s := NewPatternStore(DefaultStoreConfig())
	seedPatterns(s)

	got := s.Query(Query{
		ErrorCode:    "E0308",
		ErrorMessage: "mismatched types: expected i32, found f64",
	})

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 suggestion, got %d", len(got))
	}
	if got[0].Pattern.ID != "p-mismatch" {
		t.Errorf("wrong pattern surfaced: %s", got[0].Pattern.ID)
	}
}

func TestQueryRanksLexicalMatchesFirst(t *testing.T) {
	s := NewPatternStore(DefaultStoreConfig())
	s.Add(&Pattern{
		ID:           "a-close",
		MessageShape: "borrowed value does not live long enough",
		Confidence:   0.5,
	})
	s.Add(&Pattern{
		ID:           "b-far",
		MessageShape: "unrelated syntax problem",
		Confidence:   0.5,
	})

	got := s.Query(Query{ErrorMessage: "borrowed value does not live long enough"})

	if len(got) == 0 || got[0].Pattern.ID != "a-close" {
		t.Errorf("lexical match not ranked first: %+v", got)
	}
}

func TestMaxSuggestionsCapped(t *testing.T) {
	cfg := DefaultStoreConfig()
	cfg.MaxSuggestions = 2

	s := NewPatternStore(cfg)
	s.Add(&Pattern{ID: "p1", MessageShape: "error one", Confidence: 0.9})
	s.Add(&Pattern{ID: "p2", MessageShape: "error two", Confidence: 0.9})
	s.Add(&Pattern{ID: "p3", MessageShape: "error three", Confidence: 0.9})

	if got := s.Query(Query{ErrorMessage: "error"}); len(got) != 2 {
		t.Errorf("expected 2 suggestions, got %d", len(got))
	}
}

func TestOutcomeTrackingAndRetirement(t *testing.T) {
	cfg := DefaultStoreConfig()
	cfg.RetireAfter = 5
	cfg.RetireBelow = 0.5

	s := NewPatternStore(cfg)
	s.Add(&Pattern{ID: "weak", MessageShape: "flaky fix", Confidence: 0.9})

	for i := 0; i < 5; i++ {
		s.RecordApplication("weak")
		s.RecordFailure("weak")
	}

	if retired := s.Retire(); retired != 1 {
		t.Errorf("expected 1 pattern retired, got %d", retired)
	}
	if s.Len() != 0 {
		t.Errorf("retired pattern still present")
	}
}

func TestSuccessRaisesConfidence(t *testing.T) {
	s := NewPatternStore(DefaultStoreConfig())
	s.Add(&Pattern{ID: "good", MessageShape: "solid fix", Confidence: 0.5})

	s.RecordApplication("good")
	s.RecordSuccess("good")

	p, _ := s.Get("good")
	if p.Confidence <= 0.5 {
		t.Errorf("confidence did not rise: %f", p.Confidence)
	}
	if p.SuccessRate() != 1.0 {
		t.Errorf("success rate = %f, want 1.0", p.SuccessRate())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")

	s := NewPatternStore(DefaultStoreConfig())
	seedPatterns(s)

	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := NewPatternStore(DefaultStoreConfig())
	if err := loaded.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Len() != s.Len() {
		t.Errorf("loaded %d patterns, want %d", loaded.Len(), s.Len())
	}

	p, ok := loaded.Get("p-mismatch")
	if !ok || p.ErrorCode != "E0308" {
		t.Errorf("pattern lost in round trip: %+v", p)
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	s := NewPatternStore(DefaultStoreConfig())

	if err := s.Load(filepath.Join(t.TempDir(), "absent.json")); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("store not empty after loading a missing file")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewPatternStore(DefaultStoreConfig())
	if err := s.Load(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
