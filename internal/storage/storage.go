package storage

import (
	"context"

	"github.com/dshills/travelrec/pkg/types"
)

// Storage defines the interface for persisting and querying places and reviews
type Storage interface {
	// Place operations
	FetchPlaces(ctx context.Context, city string, maxPrice int) ([]*types.Place, error)
	FetchAllPlaceIDs(ctx context.Context) ([]int64, error)
	FetchPlace(ctx context.Context, placeID int64) (*types.Place, error)
	FindAnchor(ctx context.Context, city, category string, excludeID int64) (*types.Place, error)
	UpsertPlace(ctx context.Context, place *types.Place) error

	// Review operations
	FetchReviewsWithUser(ctx context.Context) ([]types.UserRating, error)
	InsertReview(ctx context.Context, review *types.Review) error
	RecomputeSentimentAvg(ctx context.Context, placeID int64) error
	RecomputeAllSentimentAvg(ctx context.Context) (int64, error)
	DeleteGeneratedReviews(ctx context.Context) (int64, error)

	// Status operations
	GetStats(ctx context.Context) (*Stats, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Stats contains counts describing the stored data
type Stats struct {
	PlacesCount   int     `json:"places"`
	ReviewsCount  int     `json:"reviews"`
	UsersCount    int     `json:"users"`
	CitiesCount   int     `json:"cities"`
	SizeMB        float64 `json:"size_mb"`
	SchemaVersion string  `json:"schema_version"`
	BuildMode     string  `json:"build_mode"`
}
