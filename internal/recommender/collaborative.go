package recommender

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dshills/travelrec/internal/metrics"
	"github.com/dshills/travelrec/pkg/types"
)

const (
	// DefaultNeighbors is the number of similar users consulted
	DefaultNeighbors = 4

	// seedRating is the pseudo-user's rating for every seed place
	seedRating = 5.0

	// fallbackSeeds is the number of random seeds when no preference matches
	fallbackSeeds = 3

	// minNeighborRating is the lowest neighbor rating that counts as a vote
	minNeighborRating = 4
)

// Collaborative is a user-based nearest-neighbor recommender
type Collaborative struct {
	K      int
	Rand   Sampler
	Logger zerolog.Logger
}

// Sampler picks random indexes for the no-match fallback
type Sampler interface {
	// Sample returns up to n distinct indexes in [0, size)
	Sample(size, n int) []int
}

// CollaborativeInput is one collaborative pass. Ratings and PlaceIDs are the
// global history and column space, not just the candidate city.
type CollaborativeInput struct {
	Candidates  []*types.Place
	Preferences []string
	Ratings     []types.UserRating
	PlaceIDs    []int64
	Limit       int
}

// placeVotes aggregates neighbor ratings for one place
type placeVotes struct {
	placeID int64
	sum     float64
	count   int
	voters  map[int64]struct{}
}

func (v *placeVotes) avg() float64 {
	return v.sum / float64(v.count)
}

// Recommend returns up to in.Limit candidates liked by users similar to the
// request. Matrix failures are logged and yield no recommendations.
func (c *Collaborative) Recommend(in CollaborativeInput) []types.ScoredCandidate {
	if len(in.Candidates) == 0 || in.Limit <= 0 {
		return nil
	}

	seeds := c.seeds(in.Candidates, in.Preferences)

	if len(in.Ratings) == 0 {
		metrics.CollaborativeFallback.WithLabelValues(metrics.ReasonNoRatings).Inc()
		c.Logger.Debug().Msg("no user rating history, skipping collaborative pass")
		return nil
	}

	neighbors, err := c.neighbors(in, seeds)
	if err != nil {
		metrics.CollaborativeFallback.WithLabelValues(metrics.ReasonDegenerate).Inc()
		c.Logger.Warn().Err(err).Msg("collaborative model fit failed")
		return nil
	}

	neighborSet := make(idSet, len(neighbors))
	for _, n := range neighbors {
		neighborSet.add(n.UserID)
	}

	byID := make(map[int64]*types.Place, len(in.Candidates))
	for _, p := range in.Candidates {
		byID[p.ID] = p
	}

	votes := make(map[int64]*placeVotes)
	for _, r := range in.Ratings {
		if !neighborSet.has(r.UserID) || r.RatingGiven < minNeighborRating {
			continue
		}
		if _, ok := byID[r.PlaceID]; !ok {
			continue
		}
		if _, ok := seeds[r.PlaceID]; ok {
			continue
		}
		v := votes[r.PlaceID]
		if v == nil {
			v = &placeVotes{placeID: r.PlaceID, voters: make(map[int64]struct{})}
			votes[r.PlaceID] = v
		}
		v.sum += float64(r.RatingGiven)
		v.count++
		v.voters[r.UserID] = struct{}{}
	}

	ranked := make([]*placeVotes, 0, len(votes))
	for _, v := range votes {
		ranked = append(ranked, v)
	}
	sort.Slice(ranked, func(i, j int) bool {
		vi, vj := len(ranked[i].voters), len(ranked[j].voters)
		if vi != vj {
			return vi > vj
		}
		if ai, aj := ranked[i].avg(), ranked[j].avg(); ai != aj {
			return ai > aj
		}
		return ranked[i].placeID < ranked[j].placeID
	})
	if len(ranked) > in.Limit {
		ranked = ranked[:in.Limit]
	}

	results := make([]types.ScoredCandidate, 0, len(ranked))
	for _, v := range ranked {
		voters := len(v.voters)
		sc := newCandidate(byID[v.placeID], v.avg()/5.0, types.SourceCollaborative)
		sc.VoterCount = voters
		sc.CollabInfo = fmt.Sprintf("Disukai oleh %d wisatawan dengan selera mirip Anda", voters)
		results = append(results, sc)
	}
	return results
}

// seeds returns the places the pseudo-user rates, falling back to a random
// sample of candidates when no category matches a preference
func (c *Collaborative) seeds(candidates []*types.Place, preferences []string) map[int64]float64 {
	seeds := make(map[int64]float64)
	for _, p := range candidates {
		if _, ok := p.MatchesAny(preferences); ok {
			seeds[p.ID] = seedRating
		}
	}
	if len(seeds) > 0 || c.Rand == nil {
		return seeds
	}

	metrics.CollaborativeFallback.WithLabelValues(metrics.ReasonRandomSeeds).Inc()
	for _, i := range c.Rand.Sample(len(candidates), fallbackSeeds) {
		seeds[candidates[i].ID] = seedRating
	}
	c.Logger.Debug().Int("seeds", len(seeds)).Msg("no preference matched, using random seeds")
	return seeds
}

// neighbors fits the matrix and searches it with the pseudo-user vector
func (c *Collaborative) neighbors(in CollaborativeInput, seeds map[int64]float64) ([]Neighbor, error) {
	m, err := BuildMatrix(in.Ratings, in.PlaceIDs)
	if err != nil {
		return nil, err
	}

	k := c.K
	if k <= 0 {
		k = DefaultNeighbors
	}

	neighbors, err := NearestNeighbors(m, m.QueryVector(seeds), k)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, errors.New("no neighbors found")
	}

	c.Logger.Debug().
		Int("users", len(m.UserIDs)).
		Int("places", len(m.PlaceIDs)).
		Int("neighbors", len(neighbors)).
		Msg("collaborative neighbors found")
	return neighbors, nil
}
