package miner

import "github.com/spiffcs/racefinder/internal/model"

// Accumulator owns the run-wide state: the set of issue URLs already seen
// and the accepted candidates. It enforces the global cap across batches.
type Accumulator struct {
	seen    map[string]struct{}
	results []model.Candidate
	cap     int
}

// NewAccumulator creates an empty Accumulator. limit <= 0 means unbounded.
func NewAccumulator(limit int) *Accumulator {
	return &Accumulator{
		seen: make(map[string]struct{}),
		cap:  limit,
	}
}

// MarkSeen records htmlURL and reports whether it was new.
func (a *Accumulator) MarkSeen(htmlURL string) bool {
	if _, ok := a.seen[htmlURL]; ok {
		return false
	}
	a.seen[htmlURL] = struct{}{}
	return true
}

// Accept appends c and returns Halt once the cap is reached.
func (a *Accumulator) Accept(c model.Candidate) Signal {
	a.results = append(a.results, c)
	if a.Full() {
		return Halt
	}
	return Continue
}

// Full reports whether the cap has been reached.
func (a *Accumulator) Full() bool {
	return a.cap > 0 && len(a.results) >= a.cap
}

// Len is the number of accepted candidates.
func (a *Accumulator) Len() int {
	return len(a.results)
}

// Results returns a copy of the accepted candidates in acceptance order.
func (a *Accumulator) Results() []model.Candidate {
	out := make([]model.Candidate, len(a.results))
	copy(out, a.results)
	return out
}
