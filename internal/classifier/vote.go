package classifier

import "sync"

// Vote smooths a stream of per-window predictions: labels accumulate in a
// fixed-size ring and Resolve returns the majority, so one misclassified
// window doesn't flip the tracked activity.
type Vote struct {
	mu     sync.Mutex
	labels []string
	next   int
	filled int
}

func NewVote(size int) *Vote {
	if size < 1 {
		size = 1
	}
	return &Vote{labels: make([]string, size)}
}

func (v *Vote) Add(label string) {
	v.mu.Lock()
	v.labels[v.next] = label
	v.next = (v.next + 1) % len(v.labels)
	if v.filled < len(v.labels) {
		v.filled++
	}
	v.mu.Unlock()
}

// Resolve returns the majority label among buffered predictions. Ties go to
// the label that reached the maximum count first, in insertion order. The
// second return is false while the buffer is empty.
func (v *Vote) Resolve() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.filled == 0 {
		return "", false
	}

	start := v.next - v.filled
	if start < 0 {
		start += len(v.labels)
	}

	counts := make(map[string]int, v.filled)
	maxCount := 0
	for i := 0; i < v.filled; i++ {
		label := v.labels[(start+i)%len(v.labels)]
		counts[label]++
		if counts[label] > maxCount {
			maxCount = counts[label]
		}
	}

	// Oldest entry first so a tie goes to the label seen earliest.
	for i := 0; i < v.filled; i++ {
		label := v.labels[(start+i)%len(v.labels)]
		if counts[label] == maxCount {
			return label, true
		}
	}
	return "", false
}

// Reset clears buffered predictions, e.g. when tracking stops.
func (v *Vote) Reset() {
	v.mu.Lock()
	v.next = 0
	v.filled = 0
	v.mu.Unlock()
}
