package recommender

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/travelrec/pkg/types"
)

// minGraphRating is the lowest rating a graph neighbor may have
const minGraphRating = 4.0

// TargetCategory picks the category the graph heuristic anchors on: the full
// category of the first candidate matching any preference, otherwise the
// first preference itself
func TargetCategory(candidates []*types.Place, preferences []string) (string, bool) {
	for _, p := range candidates {
		if _, ok := p.MatchesAny(preferences); ok {
			return p.Category, true
		}
	}
	if len(preferences) > 0 && preferences[0] != "" {
		return preferences[0], true
	}
	return "", false
}

// RecommendGraph returns up to limit well-rated places sharing the target
// category with its top-rated anchor. The anchor and seen places are
// excluded.
func RecommendGraph(candidates []*types.Place, preferences []string, seen map[int64]struct{}, limit int) []types.ScoredCandidate {
	if limit <= 0 {
		return nil
	}
	target, ok := TargetCategory(candidates, preferences)
	if !ok {
		return nil
	}

	needle := strings.ToLower(target)
	var category []*types.Place
	for _, p := range candidates {
		if strings.Contains(strings.ToLower(p.Category), needle) {
			category = append(category, p)
		}
	}
	if len(category) == 0 {
		return nil
	}
	sort.SliceStable(category, func(i, j int) bool {
		return category[i].Rating > category[j].Rating
	})

	anchor := category[0]
	var results []types.ScoredCandidate
	for _, p := range category {
		if p.ID == anchor.ID || p.Rating < minGraphRating {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		sc := newCandidate(p, p.Rating/5.0, types.SourceGraph)
		sc.AnchorName = anchor.Name
		sc.AnchorCategory = target
		sc.CollabInfo = fmt.Sprintf("Rekomendasi berbasis Graf: Terhubung kuat dengan %s", anchor.Name)
		results = append(results, sc)
		if len(results) == limit {
			break
		}
	}
	return results
}
