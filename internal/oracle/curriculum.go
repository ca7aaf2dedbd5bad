// Curriculum scheduler: orders repair work easy-first.

package oracle

import "container/heap"

// Difficulty grades an error for scheduling.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
	DifficultyExpert
)

func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyMedium:
		return "medium"
	case DifficultyHard:
		return "hard"
	case DifficultyExpert:
		return "expert"
	default:
		return "unknown"
	}
}

// Weight is the numeric difficulty used for ordering and thresholds.
func (d Difficulty) Weight() float64 {
	switch d {
	case DifficultyEasy:
		return 0.25
	case DifficultyMedium:
		return 0.50
	case DifficultyHard:
		return 0.75
	case DifficultyExpert:
		return 1.00
	default:
		return 1.00
	}
}

// WorkItem is one error queued for repair.
type WorkItem struct {
	ErrorCode  string
	Message    string
	Difficulty Difficulty
	// Complexity breaks ties within a difficulty level.
	Complexity float64
}

// CurriculumScheduler yields errors easiest first, and in adaptive mode
// advances past the current level early when its success rate clears the
// threshold.
type CurriculumScheduler struct {
	queue workHeap
	seq   int

	adaptive  bool
	threshold float64
	level     Difficulty

	attempts  map[Difficulty]int
	successes map[Difficulty]int
}

// NewCurriculumScheduler creates a scheduler. With adaptive false the
// threshold is ignored and items drain purely by difficulty.
func NewCurriculumScheduler(adaptive bool, threshold float64) *CurriculumScheduler {
	return &CurriculumScheduler{
		adaptive:  adaptive,
		threshold: threshold,
		level:     DifficultyEasy,
		attempts:  make(map[Difficulty]int),
		successes: make(map[Difficulty]int),
	}
}

// Push queues a work item.
func (s *CurriculumScheduler) Push(item WorkItem) {
	heap.Push(&s.queue, &queued{item: item, seq: s.seq})
	s.seq++
}

// Pop returns the easiest queued item, false when the queue is empty.
func (s *CurriculumScheduler) Pop() (WorkItem, bool) {
	if s.queue.Len() == 0 {
		return WorkItem{}, false
	}

	q := heap.Pop(&s.queue).(*queued)

	return q.item, true
}

// Len reports queued items.
func (s *CurriculumScheduler) Len() int {
	return s.queue.Len()
}

// Level is the current curriculum level.
func (s *CurriculumScheduler) Level() Difficulty {
	return s.level
}

// minAdvanceAttempts is how many attempts a level needs before its success
// rate is trusted; without it a single early success would clear any
// threshold at 1/1.
const minAdvanceAttempts = 5

// RecordOutcome feeds an attempt result back. In adaptive mode, clearing
// the threshold at the current level advances to the next.
func (s *CurriculumScheduler) RecordOutcome(d Difficulty, success bool) {
	s.attempts[d]++
	if success {
		s.successes[d]++
	}

	if !s.adaptive || d != s.level || s.level == DifficultyExpert {
		return
	}

	if s.attempts[d] >= minAdvanceAttempts {
		rate := float64(s.successes[d]) / float64(s.attempts[d])
		if rate >= s.threshold {
			s.level++
		}
	}
}

// ====== Heap plumbing ======

type queued struct {
	item WorkItem
	seq  int
}

type workHeap []*queued

func (h workHeap) Len() int { return len(h) }

func (h workHeap) Less(i, j int) bool {
	a, b := h[i].item, h[j].item

	if a.Difficulty != b.Difficulty {
		return a.Difficulty < b.Difficulty
	}
	if a.Complexity != b.Complexity {
		return a.Complexity < b.Complexity
	}

	// Insertion order keeps draining deterministic.
	return h[i].seq < h[j].seq
}

func (h workHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *workHeap) Push(x interface{}) {
	*h = append(*h, x.(*queued))
}

func (h *workHeap) Pop() interface{} {
	old := *h
	n := len(old)
	q := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return q
}
