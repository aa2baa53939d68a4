package ingest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/travelrec/internal/logging"
	"github.com/dshills/travelrec/internal/sentiment"
	"github.com/dshills/travelrec/internal/storage"
)

var (
	// ErrNoPlaces is returned when history generation finds no places
	ErrNoPlaces = errors.New("no places to generate history for")
	// ErrInvalidOptions is returned for inconsistent generation options
	ErrInvalidOptions = errors.New("invalid ingest options")
	// ErrMissingColumn is returned when the CSV header lacks a required column
	ErrMissingColumn = errors.New("missing required column")
)

const defaultBatchSize = 200

// Ingester coordinates the seeding pipeline: import -> generate -> refresh
type Ingester struct {
	storage  storage.Storage
	analyzer *sentiment.Analyzer
	log      zerolog.Logger

	// Worker pool configuration
	workers int
}

// Statistics contains statistics about an ingest operation
type Statistics struct {
	PlacesImported   int
	RowsFailed       int
	UsersGenerated   int
	ReviewsGenerated int
	ReviewsDeleted   int
	PlacesRefreshed  int
	Duration         time.Duration
	ErrorMessages    []string
}

// New creates a new Ingester. A nil analyzer gets a default-sized one.
func New(store storage.Storage, analyzer *sentiment.Analyzer) *Ingester {
	if analyzer == nil {
		analyzer = sentiment.NewAnalyzer(0)
	}
	return &Ingester{
		storage:  store,
		analyzer: analyzer,
		log:      logging.With("ingest"),
		workers:  runtime.NumCPU(),
	}
}

// SetWorkers overrides the history generation concurrency
func (in *Ingester) SetWorkers(n int) {
	if n > 0 {
		in.workers = n
	}
}

// RefreshSentiment recomputes the sentiment average of every reviewed place
func (in *Ingester) RefreshSentiment(ctx context.Context) (int64, error) {
	n, err := in.storage.RecomputeAllSentimentAvg(ctx)
	if err != nil {
		return 0, err
	}
	in.log.Info().Int64("places", n).Msg("sentiment averages refreshed")
	return n, nil
}

// SeedOptions drives a full seeding run
type SeedOptions struct {
	CSVPath   string
	BatchSize int
	// Reset drops and recreates the schema before importing
	Reset   bool
	History HistoryOptions
}

// resetter is implemented by stores that can rebuild their schema
type resetter interface {
	Reset(ctx context.Context) error
}

// Seed runs the full pipeline. Without Reset, previously generated reviews
// are deleted first so reruns don't pile up history.
func (in *Ingester) Seed(ctx context.Context, opts SeedOptions) (*Statistics, error) {
	start := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	if opts.Reset {
		r, ok := in.storage.(resetter)
		if !ok {
			return nil, fmt.Errorf("%w: storage does not support reset", ErrInvalidOptions)
		}
		if err := r.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset database: %w", err)
		}
		in.log.Info().Msg("database schema reset")
	} else {
		n, err := in.storage.DeleteGeneratedReviews(ctx)
		if err != nil {
			return nil, err
		}
		stats.ReviewsDeleted = int(n)
	}

	imported, err := in.ImportPlacesCSV(ctx, opts.CSVPath, opts.BatchSize)
	if err != nil {
		return nil, err
	}
	stats.PlacesImported = imported.PlacesImported
	stats.RowsFailed = imported.RowsFailed
	stats.ErrorMessages = append(stats.ErrorMessages, imported.ErrorMessages...)

	generated, err := in.GenerateHistory(ctx, opts.History)
	if err != nil {
		return nil, err
	}
	stats.UsersGenerated = generated.UsersGenerated
	stats.ReviewsGenerated = generated.ReviewsGenerated

	refreshed, err := in.RefreshSentiment(ctx)
	if err != nil {
		return nil, err
	}
	stats.PlacesRefreshed = int(refreshed)

	stats.Duration = time.Since(start)
	in.log.Info().
		Int("places", stats.PlacesImported).
		Int("rows_failed", stats.RowsFailed).
		Int("users", stats.UsersGenerated).
		Int("reviews", stats.ReviewsGenerated).
		Dur("duration", stats.Duration).
		Msg("seed complete")
	return stats, nil
}
