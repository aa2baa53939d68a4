package recommender

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/travelrec/internal/logging"
	"github.com/dshills/travelrec/pkg/types"
)

// Quotas is the number of items each source contributes to a merged list
type Quotas struct {
	System        int
	Collaborative int
	Graph         int
}

// DefaultQuotas returns 2 system, 2 collaborative and 1 graph item
func DefaultQuotas() Quotas {
	return Quotas{System: 2, Collaborative: 2, Graph: 1}
}

// Total returns the maximum merged list length
func (q Quotas) Total() int {
	return q.System + q.Collaborative + q.Graph
}

// Input holds everything one merge needs. Candidates are the places that
// passed the city and budget filter; Ratings and PlaceIDs are global.
type Input struct {
	Candidates  []*types.Place
	Preferences []string
	Ratings     []types.UserRating
	PlaceIDs    []int64
}

// Result is a merged recommendation list in assembly order
type Result struct {
	Items              []types.ScoredCandidate
	SystemCount        int
	CollaborativeCount int
	GraphCount         int
	Duration           time.Duration
}

// Hybrid merges the content, collaborative and graph recommenders
type Hybrid struct {
	quotas    Quotas
	weights   ContentWeights
	neighbors int
	rng       *lockedRand
	log       zerolog.Logger
}

// Option configures a Hybrid
type Option func(*Hybrid)

// WithRand sets the random source for the collaborative fallback
func WithRand(r *rand.Rand) Option {
	return func(h *Hybrid) {
		h.rng = &lockedRand{r: r}
	}
}

// WithQuotas overrides the per-source quotas
func WithQuotas(q Quotas) Option {
	return func(h *Hybrid) {
		h.quotas = q
	}
}

// WithContentWeights overrides the content scoring weights
func WithContentWeights(w ContentWeights) Option {
	return func(h *Hybrid) {
		h.weights = w
	}
}

// WithNeighbors sets K for the collaborative neighbor search
func WithNeighbors(k int) Option {
	return func(h *Hybrid) {
		if k > 0 {
			h.neighbors = k
		}
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(h *Hybrid) {
		h.log = l
	}
}

// NewHybrid creates a merger with default quotas, weights and a time-seeded
// random source
func NewHybrid(opts ...Option) *Hybrid {
	h := &Hybrid{
		quotas:    DefaultQuotas(),
		weights:   DefaultContentWeights(),
		neighbors: DefaultNeighbors,
		log:       logging.With("recommender"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		h.rng = &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
	}
	return h
}

// Quotas returns the configured quotas
func (h *Hybrid) Quotas() Quotas {
	return h.quotas
}

// Merge runs the three recommenders and assembles the final list: content
// items first, then collaborative, then graph, skipping places already
// chosen. The only error is context cancellation.
func (h *Hybrid) Merge(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	result := &Result{Items: []types.ScoredCandidate{}}
	if len(in.Candidates) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	seen := make(idSet, h.quotas.Total())
	take := func(items []types.ScoredCandidate, quota int) int {
		added := 0
		for _, item := range items {
			if added >= quota {
				break
			}
			if seen.has(item.ID) {
				continue
			}
			result.Items = append(result.Items, item)
			seen.add(item.ID)
			added++
		}
		return added
	}

	// 1. Content scoring
	result.SystemCount = take(ScoreContent(in.Candidates, in.Preferences, h.weights), h.quotas.System)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. Collaborative filtering
	collab := &Collaborative{K: h.neighbors, Rand: h.rng, Logger: h.log}
	result.CollaborativeCount = take(collab.Recommend(CollaborativeInput{
		Candidates:  in.Candidates,
		Preferences: in.Preferences,
		Ratings:     in.Ratings,
		PlaceIDs:    in.PlaceIDs,
		Limit:       h.quotas.Collaborative,
	}), h.quotas.Collaborative)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Graph heuristic, excluding everything chosen so far
	result.GraphCount = take(RecommendGraph(in.Candidates, in.Preferences, seen, h.quotas.Graph), h.quotas.Graph)

	result.Duration = time.Since(start)
	h.log.Debug().
		Int("candidates", len(in.Candidates)).
		Int("system", result.SystemCount).
		Int("collaborative", result.CollaborativeCount).
		Int("gnn", result.GraphCount).
		Dur("duration", result.Duration).
		Msg("recommendations merged")
	return result, nil
}

// lockedRand serializes access to a *rand.Rand, which is not safe for
// concurrent use
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// Sample returns up to n distinct indexes in [0, size)
func (l *lockedRand) Sample(size, n int) []int {
	if size <= 0 || n <= 0 {
		return nil
	}
	l.mu.Lock()
	perm := l.r.Perm(size)
	l.mu.Unlock()
	if n > size {
		n = size
	}
	return perm[:n]
}
