package recommender

import (
	"sort"

	"github.com/dshills/travelrec/pkg/types"
)

// neutralSentiment is assumed for places without reviews
const neutralSentiment = 0.5

// ContentWeights multiply the normalized rating and sentiment components.
// Matched places also receive CategoryBonus.
type ContentWeights struct {
	Rating             float64
	Sentiment          float64
	CategoryBonus      float64
	UnmatchedRating    float64
	UnmatchedSentiment float64
}

// DefaultContentWeights returns 0.33/0.34/0.33 for matched places and
// 0.2/0.2 for unmatched ones, capping unmatched places at 0.4
func DefaultContentWeights() ContentWeights {
	return ContentWeights{
		Rating:             0.33,
		Sentiment:          0.34,
		CategoryBonus:      0.33,
		UnmatchedRating:    0.2,
		UnmatchedSentiment: 0.2,
	}
}

// ScoreContent scores every candidate against the preferences and returns
// them sorted by final score descending. Ties keep candidate order.
func ScoreContent(candidates []*types.Place, preferences []string, w ContentWeights) []types.ScoredCandidate {
	scored := make([]types.ScoredCandidate, 0, len(candidates))
	for _, p := range candidates {
		rating := p.Rating / 5.0
		sentiment := p.SentimentOr(neutralSentiment)

		var score float64
		if _, ok := p.MatchesAny(preferences); ok {
			score = rating*w.Rating + sentiment*w.Sentiment + w.CategoryBonus
		} else {
			score = rating*w.UnmatchedRating + sentiment*w.UnmatchedSentiment
		}
		scored = append(scored, newCandidate(p, score, types.SourceSystem))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	return scored
}
