package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/travelrec/pkg/types"
)

// HistoryOptions configures synthetic rating history
type HistoryOptions struct {
	Users     int
	MinVisits int
	MaxVisits int
	Seed      int64
	// BatchSize is the number of users committed per transaction
	BatchSize int
}

// DefaultHistoryOptions mirrors the seed command defaults
func DefaultHistoryOptions() HistoryOptions {
	return HistoryOptions{
		Users:     300,
		MinVisits: 10,
		MaxVisits: 25,
		Seed:      42,
		BatchSize: 50,
	}
}

func (o HistoryOptions) validate() error {
	switch {
	case o.Users < 0:
		return fmt.Errorf("%w: users must be >= 0", ErrInvalidOptions)
	case o.MinVisits < 1:
		return fmt.Errorf("%w: min visits must be >= 1", ErrInvalidOptions)
	case o.MaxVisits < o.MinVisits:
		return fmt.Errorf("%w: max visits %d below min visits %d", ErrInvalidOptions, o.MaxVisits, o.MinVisits)
	}
	return nil
}

// ratingValues and ratingWeights skew synthetic ratings positive
var (
	ratingValues  = [...]int{5, 4, 3, 2, 1}
	ratingWeights = [...]float64{0.35, 0.35, 0.15, 0.10, 0.05}
)

// commentTemplates holds the review texts drawn for each rating
var commentTemplates = map[int][]string{
	5: {
		"Tempat yang luar biasa!",
		"Sangat puas berkunjung ke sini.",
		"Pemandangan indah dan fasilitas lengkap.",
		"Wajib dikunjungi, sangat berkesan.",
		"Liburan terbaik di sini.",
	},
	4: {
		"Tempatnya bagus, cukup nyaman.",
		"Pengalaman yang menyenangkan.",
		"Lumayan untuk liburan keluarga.",
		"Fasilitas oke, tapi agak ramai.",
		"Bagus untuk foto-foto.",
	},
	3: {
		"Biasa saja, standar.",
		"Cukup oke, tapi tidak ada yang spesial.",
		"Not bad, tapi antriannya panjang.",
		"Lumayan untuk sekedar mampir.",
	},
	2: {
		"Kurang memuaskan.",
		"Tempatnya agak kotor dan tidak terawat.",
		"Harga terlalu mahal untuk fasilitasnya.",
		"Akses jalan susah.",
	},
	1: {
		"Sangat mengecewakan.",
		"Pelayanan buruk sekali.",
		"Tidak sesuai ekspektasi, rugi waktu.",
		"Tidak akan kembali lagi.",
	},
}

// drawRating picks a rating according to ratingWeights
func drawRating(r *rand.Rand) int {
	var total float64
	for _, w := range ratingWeights {
		total += w
	}
	u := r.Float64() * total
	for i, w := range ratingWeights {
		if u < w {
			return ratingValues[i]
		}
		u -= w
	}
	return ratingValues[len(ratingValues)-1]
}

// GenerateHistory creates reviews for synthetic users 1..Users. Each user
// visits a random number of distinct places in [MinVisits, MaxVisits],
// capped at the number of places.
func (in *Ingester) GenerateHistory(ctx context.Context, opts HistoryOptions) (*Statistics, error) {
	start := time.Now()
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultHistoryOptions().BatchSize
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	placeIDs, err := in.storage.FetchAllPlaceIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(placeIDs) == 0 {
		return nil, ErrNoPlaces
	}

	// Per-user seeds are fixed up front so output doesn't depend on scheduling
	master := rand.New(rand.NewSource(opts.Seed))
	seeds := make([]int64, opts.Users)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	semaphore := make(chan struct{}, in.workers)
	var reviews int32

	g, gctx := errgroup.WithContext(ctx)
	for first := 0; first < opts.Users; first += opts.BatchSize {
		last := min(first+opts.BatchSize, opts.Users)

		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
			}
			batch := in.buildUserBatch(placeIDs, seeds, first, last, opts)
			<-semaphore

			if err := in.insertReviews(gctx, batch); err != nil {
				return err
			}
			atomic.AddInt32(&reviews, int32(len(batch)))
			in.log.Debug().Int("users", last).Int("reviews", len(batch)).Msg("history batch committed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Statistics{
		UsersGenerated:   opts.Users,
		ReviewsGenerated: int(reviews),
		Duration:         time.Since(start),
		ErrorMessages:    make([]string, 0),
	}
	in.log.Info().
		Int("users", stats.UsersGenerated).
		Int("reviews", stats.ReviewsGenerated).
		Dur("duration", stats.Duration).
		Msg("rating history generated")
	return stats, nil
}

// buildUserBatch generates reviews for users with index in [first, last)
func (in *Ingester) buildUserBatch(placeIDs []int64, seeds []int64, first, last int, opts HistoryOptions) []*types.Review {
	out := make([]*types.Review, 0, (last-first)*opts.MaxVisits)
	for i := first; i < last; i++ {
		r := rand.New(rand.NewSource(seeds[i]))
		userID := int64(i + 1)

		visits := opts.MinVisits + r.Intn(opts.MaxVisits-opts.MinVisits+1)
		visits = min(visits, len(placeIDs))

		for _, idx := range r.Perm(len(placeIDs))[:visits] {
			rating := drawRating(r)
			pool := commentTemplates[rating]
			comment := pool[r.Intn(len(pool))]
			res := in.analyzer.Analyze(comment)

			uid := userID
			out = append(out, &types.Review{
				PlaceID:        placeIDs[idx],
				UserID:         &uid,
				Comment:        comment,
				SentimentScore: res.Score,
				SentimentLabel: res.Label,
				RatingGiven:    rating,
			})
		}
	}
	return out
}

// insertReviews writes reviews within a single transaction
func (in *Ingester) insertReviews(ctx context.Context, reviews []*types.Review) error {
	tx, err := in.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, rv := range reviews {
		if err := tx.InsertReview(ctx, rv); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
