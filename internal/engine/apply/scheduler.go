package apply

import (
	"sort"

	"github.com/cgartco6/costbyte-ai/internal/engine/jobs"
)

// Schedule picks the postings to apply to this run: the highest-scoring
// matches first, capped at the remaining daily quota. Ties keep their
// incoming order. The input slice is not modified.
func Schedule(results []jobs.MatchResult, remaining int) []jobs.MatchResult {
	if remaining <= 0 || len(results) == 0 {
		return nil
	}

	ordered := make([]jobs.MatchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	if len(ordered) > remaining {
		ordered = ordered[:remaining]
	}
	return ordered
}
