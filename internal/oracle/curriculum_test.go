package oracle

import "testing"

func TestSchedulerDrainsEasiestFirst(t *testing.T) {
	s := NewCurriculumScheduler(false, 0)

	s.Push(WorkItem{ErrorCode: "E0308", Difficulty: DifficultyHard})
	s.Push(WorkItem{ErrorCode: "E0425", Difficulty: DifficultyEasy})
	s.Push(WorkItem{ErrorCode: "E0502", Difficulty: DifficultyExpert})
	s.Push(WorkItem{ErrorCode: "E0599", Difficulty: DifficultyMedium})

	want := []string{"E0425", "E0599", "E0308", "E0502"}
	for i, code := range want {
		item, ok := s.Pop()
		if !ok {
			t.Fatalf("pop %d: queue drained early", i)
		}
		if item.ErrorCode != code {
			t.Errorf("pop %d: got %s, want %s", i, item.ErrorCode, code)
		}
	}

	if _, ok := s.Pop(); ok {
		t.Error("queue should be empty after draining")
	}
}

func TestSchedulerBreaksTiesByComplexityThenInsertion(t *testing.T) {
	s := NewCurriculumScheduler(false, 0)

	s.Push(WorkItem{ErrorCode: "first", Difficulty: DifficultyEasy, Complexity: 2.0})
	s.Push(WorkItem{ErrorCode: "second", Difficulty: DifficultyEasy, Complexity: 1.0})
	s.Push(WorkItem{ErrorCode: "third", Difficulty: DifficultyEasy, Complexity: 2.0})

	want := []string{"second", "first", "third"}
	for i, code := range want {
		item, _ := s.Pop()
		if item.ErrorCode != code {
			t.Errorf("pop %d: got %s, want %s", i, item.ErrorCode, code)
		}
	}
}

func TestAdaptiveLevelAdvancesOnThreshold(t *testing.T) {
	s := NewCurriculumScheduler(true, 0.8)

	if s.Level() != DifficultyEasy {
		t.Fatalf("initial level = %v, want easy", s.Level())
	}

	// Four successes and one failure at easy: rate 0.8 clears the threshold,
	// but only once enough attempts have accumulated. A single 1/1 success
	// must not advance.
	s.RecordOutcome(DifficultyEasy, true)
	if s.Level() != DifficultyEasy {
		t.Errorf("level advanced on a single success")
	}

	s.RecordOutcome(DifficultyEasy, true)
	s.RecordOutcome(DifficultyEasy, false)
	if s.Level() != DifficultyEasy {
		t.Errorf("level advanced at rate 2/3 with threshold 0.8")
	}

	s.RecordOutcome(DifficultyEasy, true)
	s.RecordOutcome(DifficultyEasy, true)
	if s.Level() != DifficultyMedium {
		t.Errorf("level = %v after clearing threshold, want medium", s.Level())
	}

	// Outcomes at other levels never move the current level.
	s.RecordOutcome(DifficultyExpert, true)
	if s.Level() != DifficultyMedium {
		t.Errorf("off-level outcome moved the level to %v", s.Level())
	}
}

func TestNonAdaptiveSchedulerNeverAdvances(t *testing.T) {
	s := NewCurriculumScheduler(false, 0.1)

	for i := 0; i < 10; i++ {
		s.RecordOutcome(DifficultyEasy, true)
	}

	if s.Level() != DifficultyEasy {
		t.Errorf("non-adaptive scheduler advanced to %v", s.Level())
	}
}

func TestDifficultyWeights(t *testing.T) {
	cases := []struct {
		d    Difficulty
		want float64
	}{
		{DifficultyEasy, 0.25},
		{DifficultyMedium, 0.50},
		{DifficultyHard, 0.75},
		{DifficultyExpert, 1.00},
	}
	for _, c := range cases {
		if got := c.d.Weight(); got != c.want {
			t.Errorf("%v.Weight() = %v, want %v", c.d, got, c.want)
		}
	}
}
