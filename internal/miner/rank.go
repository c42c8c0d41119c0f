package miner

import (
	"cmp"
	"slices"

	"github.com/spiffcs/racefinder/internal/model"
)

// Rank orders candidates by star count, most popular first, and keeps at
// most topN of them (topN <= 0 keeps all). Equal star counts keep their
// acceptance order. The input slice is not modified.
func Rank(candidates []model.Candidate, topN int) []model.Candidate {
	ranked := slices.Clone(candidates)
	slices.SortStableFunc(ranked, func(a, b model.Candidate) int {
		return cmp.Compare(b.Stars, a.Stars)
	})
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
