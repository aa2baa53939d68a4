package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/travelrec/internal/logging"
	"github.com/dshills/travelrec/internal/metrics"
	"github.com/dshills/travelrec/internal/recommender"
	"github.com/dshills/travelrec/internal/sentiment"
	"github.com/dshills/travelrec/internal/storage"
	"github.com/dshills/travelrec/pkg/types"
)

var (
	// ErrInvalidInput is returned when a request fails validation
	ErrInvalidInput = errors.New("invalid input")
	// ErrPlaceNotFound is returned when a referenced place doesn't exist
	ErrPlaceNotFound = errors.New("place not found")
)

// RecommendRequest asks for recommendations in a city within a budget
type RecommendRequest struct {
	City        string   `json:"city" validate:"required"`
	Budget      int      `json:"budget" validate:"gte=0"`
	Preferences []string `json:"preferences" validate:"required,min=1,dive,required"`
}

// RecommendResponse is a merged recommendation list with per-source counts
type RecommendResponse struct {
	Recommendations    []types.ScoredCandidate `json:"recommendations"`
	Candidates         int                     `json:"candidates"`
	SystemCount        int                     `json:"system_count"`
	CollaborativeCount int                     `json:"collaborative_count"`
	GraphCount         int                     `json:"gnn_count"`
	Duration           time.Duration           `json:"duration_ns"`
}

// SubmitReviewRequest is a review from a visitor without a user id
type SubmitReviewRequest struct {
	PlaceID int64  `json:"place_id" validate:"required,gt=0"`
	Comment string `json:"comment" validate:"max=5000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// SubmitReviewResponse reports the computed sentiment of a stored review
type SubmitReviewResponse struct {
	Status       string      `json:"status"`
	ReviewID     int64       `json:"review_id"`
	Label        types.Label `json:"label"`
	Score        float64     `json:"sentiment_score"`
	SentimentAvg *float64    `json:"sentiment_avg"`
}

// Service implements the recommend, submit review and graph explanation operations
type Service struct {
	store    storage.Storage
	analyzer *sentiment.Analyzer
	hybrid   *recommender.Hybrid
	log      zerolog.Logger

	hybridOpts []recommender.Option
}

// Option configures a Service
type Option func(*Service)

// WithRand seeds the collaborative fallback sampling
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.hybridOpts = append(s.hybridOpts, recommender.WithRand(r))
	}
}

// WithQuotas overrides the per-source merge quotas
func WithQuotas(q recommender.Quotas) Option {
	return func(s *Service) {
		s.hybridOpts = append(s.hybridOpts, recommender.WithQuotas(q))
	}
}

// WithNeighbors sets the collaborative neighbor count
func WithNeighbors(k int) Option {
	return func(s *Service) {
		s.hybridOpts = append(s.hybridOpts, recommender.WithNeighbors(k))
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// New creates a service. A nil analyzer gets a default-sized one.
func New(store storage.Storage, analyzer *sentiment.Analyzer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		analyzer: analyzer,
		log:      logging.With("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzer == nil {
		s.analyzer = sentiment.NewAnalyzer(0)
	}
	s.hybrid = recommender.NewHybrid(append(s.hybridOpts, recommender.WithLogger(s.log))...)
	return s
}

// Recommend returns up to five places for the request. Candidates are the
// places in the city priced at or below the budget.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	start := time.Now()
	req = normalizeRecommend(req)

	if err := validateStruct(req); err != nil {
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		return nil, err
	}

	resp, err := s.recommend(ctx, req)
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeError).Inc()
		s.log.Error().Err(err).Str("city", req.City).Int("budget", req.Budget).Msg("recommendation failed")
		return nil, err
	}

	if len(resp.Recommendations) == 0 {
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeEmpty).Inc()
	} else {
		metrics.RecommendRequests.WithLabelValues(metrics.OutcomeSuccess).Inc()
	}
	for _, item := range resp.Recommendations {
		metrics.Recommendations.WithLabelValues(string(item.Source)).Inc()
	}

	s.log.Info().
		Str("city", req.City).
		Int("budget", req.Budget).
		Strs("preferences", req.Preferences).
		Int("candidates", resp.Candidates).
		Int("count", len(resp.Recommendations)).
		Dur("duration", resp.Duration).
		Msg("recommendations served")
	return resp, nil
}

func (s *Service) recommend(ctx context.Context, req RecommendRequest) (*RecommendResponse, error) {
	start := time.Now()

	candidates, err := s.store.FetchPlaces(ctx, req.City, req.Budget)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return &RecommendResponse{
			Recommendations: []types.ScoredCandidate{},
			Duration:        time.Since(start),
		}, nil
	}

	// Snapshot the global column space and rating history
	var placeIDs []int64
	var ratings []types.UserRating
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.store.FetchAllPlaceIDs(gctx)
		if err != nil {
			return fmt.Errorf("failed to load place ids: %w", err)
		}
		placeIDs = ids
		return nil
	})
	g.Go(func() error {
		r, err := s.store.FetchReviewsWithUser(gctx)
		if err != nil {
			return fmt.Errorf("failed to load rating history: %w", err)
		}
		ratings = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result, err := s.hybrid.Merge(ctx, recommender.Input{
		Candidates:  candidates,
		Preferences: req.Preferences,
		Ratings:     ratings,
		PlaceIDs:    placeIDs,
	})
	if err != nil {
		return nil, err
	}

	return &RecommendResponse{
		Recommendations:    result.Items,
		Candidates:         len(candidates),
		SystemCount:        result.SystemCount,
		CollaborativeCount: result.CollaborativeCount,
		GraphCount:         result.GraphCount,
		Duration:           time.Since(start),
	}, nil
}

// normalizeRecommend trims whitespace so blank values fail validation
func normalizeRecommend(req RecommendRequest) RecommendRequest {
	req.City = strings.TrimSpace(req.City)
	prefs := make([]string, len(req.Preferences))
	for i, p := range req.Preferences {
		prefs[i] = strings.TrimSpace(p)
	}
	req.Preferences = prefs
	return req
}

// SubmitReview scores the comment, stores the review and recomputes the
// place's sentiment average in one transaction
func (s *Service) SubmitReview(ctx context.Context, req SubmitReviewRequest) (*SubmitReviewResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	res := s.analyzer.Analyze(req.Comment)
	review := &types.Review{
		PlaceID:        req.PlaceID,
		Comment:        req.Comment,
		SentimentScore: res.Score,
		SentimentLabel: res.Label,
		RatingGiven:    req.Rating,
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.FetchPlace(ctx, req.PlaceID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrPlaceNotFound, req.PlaceID)
		}
		return nil, err
	}
	if err := tx.InsertReview(ctx, review); err != nil {
		return nil, err
	}
	if err := tx.RecomputeSentimentAvg(ctx, req.PlaceID); err != nil {
		return nil, err
	}
	place, err := tx.FetchPlace(ctx, req.PlaceID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review: %w", err)
	}

	metrics.ReviewsSubmitted.WithLabelValues(string(res.Label)).Inc()
	s.log.Info().
		Int64("place_id", req.PlaceID).
		Int("rating", req.Rating).
		Str("label", string(res.Label)).
		Float64("score", res.Score).
		Msg("review submitted")

	return &SubmitReviewResponse{
		Status:       "success",
		ReviewID:     review.ID,
		Label:        res.Label,
		Score:        res.Score,
		SentimentAvg: place.SentimentAvg,
	}, nil
}

// GraphExplanation returns the place with the top-rated other place of the
// same city and category. Anchor is nil when there is none.
func (s *Service) GraphExplanation(ctx context.Context, placeID int64) (*types.GraphExplanation, error) {
	if placeID <= 0 {
		return nil, fmt.Errorf("%w: place_id must be greater than 0", ErrInvalidInput)
	}

	target, err := s.store.FetchPlace(ctx, placeID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrPlaceNotFound, placeID)
	}
	if err != nil {
		return nil, err
	}

	anchor, err := s.store.FindAnchor(ctx, target.City, target.Category, target.ID)
	if errors.Is(err, storage.ErrNotFound) {
		anchor = nil
	} else if err != nil {
		return nil, err
	}

	return &types.GraphExplanation{
		Target:   *target,
		Anchor:   anchor,
		Category: target.Category,
	}, nil
}

// Status returns storage statistics
func (s *Service) Status(ctx context.Context) (*storage.Stats, error) {
	return s.store.GetStats(ctx)
}
