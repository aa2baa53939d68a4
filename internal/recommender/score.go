package recommender

import (
	"math"

	"github.com/dshills/travelrec/pkg/types"
)

// percentEpsilon absorbs float error so 0.92 scores 92, not 91
const percentEpsilon = 1e-9

// matchPercent converts a [0, 1] score to an integer percentage in [0, 100]
func matchPercent(score float64) int {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	p := math.Floor(math.Min(score*100, 100) + percentEpsilon)
	return int(math.Min(p, 100))
}

// newCandidate copies place into a scored candidate
func newCandidate(p *types.Place, score float64, source types.Source) types.ScoredCandidate {
	return types.ScoredCandidate{
		Place:        *p,
		FinalScore:   score,
		MatchPercent: matchPercent(score),
		Source:       source,
	}
}

// idSet is a set of place IDs
type idSet map[int64]struct{}

func (s idSet) has(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) add(id int64) {
	s[id] = struct{}{}
}
