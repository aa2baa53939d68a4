package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/travelrec/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	// Use in-memory database for testing
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func seedPlaces(t *testing.T, s Storage) {
	t.Helper()
	places := []*types.Place{
		{ID: 1, Name: "Taman Hutan", Category: "Taman Kota", City: "Bandung", Price: 10000, Rating: 4.5},
		{ID: 2, Name: "Pantai Ceria", Category: "Bahari", City: "Bandung", Price: 60000, Rating: 4.8},
		{ID: 3, Name: "Taman Sari", Category: "Taman Kota", City: "Bandung", Price: 0, Rating: 4.7},
		{ID: 4, Name: "Monas", Category: "Budaya", City: "Jakarta", Price: 20000, Rating: 4.6},
		{ID: 5, Name: "Taman Lalu Lintas", Category: "Taman Kota", City: "Bandung", Price: 5000, Rating: 4.7},
	}
	ctx := context.Background()
	for _, p := range places {
		require.NoError(t, s.UpsertPlace(ctx, p))
	}
}

func userID(id int64) *int64 {
	return &id
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	assert.NotNil(t, storage.db)
}

func TestClose(t *testing.T) {
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	assert.NoError(t, storage.Close())
}

func TestFetchPlaces(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	places, err := storage.FetchPlaces(ctx, "Bandung", 10000)
	require.NoError(t, err)

	ids := make([]int64, len(places))
	for i, p := range places {
		ids[i] = p.ID
	}
	assert.Equal(t, []int64{1, 3, 5}, ids, "city filter, price ceiling inclusive, ordered by id")
	assert.Nil(t, places[0].SentimentAvg)

	none, err := storage.FetchPlaces(ctx, "Surabaya", 1000000)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFetchPlace(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	p, err := storage.FetchPlace(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Pantai Ceria", p.Name)
	assert.Equal(t, "Bahari", p.Category)
	assert.Equal(t, 60000, p.Price)
	assert.InDelta(t, 4.8, p.Rating, 1e-9)

	_, err = storage.FetchPlace(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertPlace(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	p := &types.Place{ID: 7, Name: "Kawah Putih", Category: "Cagar Alam", City: "Bandung", Price: 75000, Rating: 4.5, SentimentAvg: types.Float64(0.5)}
	require.NoError(t, storage.UpsertPlace(ctx, p))

	// A re-import updates attributes but keeps the computed sentiment
	_, err := storage.db.ExecContext(ctx, "UPDATE places SET sentiment_avg = 0.9 WHERE id = 7")
	require.NoError(t, err)
	p.Price = 80000
	require.NoError(t, storage.UpsertPlace(ctx, p))

	got, err := storage.FetchPlace(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 80000, got.Price)
	require.NotNil(t, got.SentimentAvg)
	assert.InDelta(t, 0.9, *got.SentimentAvg, 1e-9)

	err = storage.UpsertPlace(ctx, &types.Place{ID: 8, Name: "", City: "Bandung"})
	assert.ErrorIs(t, err, types.ErrEmptyName)
}

func TestFetchAllPlaceIDs(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	ids, err := storage.FetchAllPlaceIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	seedPlaces(t, storage)
	ids, err = storage.FetchAllPlaceIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestFindAnchor(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	// Places 3 and 5 tie at 4.7; lower id wins
	anchor, err := storage.FindAnchor(ctx, "Bandung", "Taman Kota", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), anchor.ID)

	anchor, err = storage.FindAnchor(ctx, "Bandung", "Taman Kota", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), anchor.ID)

	// Exact category match only
	_, err = storage.FindAnchor(ctx, "Bandung", "Taman", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = storage.FindAnchor(ctx, "Bandung", "Bahari", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertReviewAndRecompute(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	reviews := []*types.Review{
		{PlaceID: 1, Comment: "bagus", SentimentScore: 0.68, SentimentLabel: types.LabelPositive, RatingGiven: 5},
		{PlaceID: 1, UserID: userID(3), Comment: "kotor", SentimentScore: 0.32, SentimentLabel: types.LabelNegative, RatingGiven: 2},
	}
	for _, r := range reviews {
		require.NoError(t, storage.InsertReview(ctx, r))
		assert.Greater(t, r.ID, int64(0))
	}

	require.NoError(t, storage.RecomputeSentimentAvg(ctx, 1))
	p, err := storage.FetchPlace(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, p.SentimentAvg)
	assert.InDelta(t, 0.5, *p.SentimentAvg, 1e-9)

	// No reviews leaves the average NULL
	require.NoError(t, storage.RecomputeSentimentAvg(ctx, 2))
	p, err = storage.FetchPlace(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, p.SentimentAvg)

	assert.ErrorIs(t, storage.RecomputeSentimentAvg(ctx, 999), ErrNotFound)
}

func TestInsertReview_Invalid(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	err := storage.InsertReview(ctx, &types.Review{PlaceID: 1, SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 6})
	assert.ErrorIs(t, err, types.ErrInvalidRatingGiven)

	// Foreign key violation
	err = storage.InsertReview(ctx, &types.Review{PlaceID: 999, SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 3})
	assert.Error(t, err)
}

func TestFetchReviewsWithUser(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	ratings, err := storage.FetchReviewsWithUser(ctx)
	require.NoError(t, err)
	assert.Empty(t, ratings)

	for _, r := range []*types.Review{
		{PlaceID: 1, UserID: userID(1), SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 4},
		{PlaceID: 2, SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 5},
		{PlaceID: 3, UserID: userID(2), SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 3},
	} {
		require.NoError(t, storage.InsertReview(ctx, r))
	}

	ratings, err = storage.FetchReviewsWithUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.UserRating{
		{UserID: 1, PlaceID: 1, RatingGiven: 4},
		{UserID: 2, PlaceID: 3, RatingGiven: 3},
	}, ratings)

	n, err := storage.DeleteGeneratedReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReviewsCount, "anonymous reviews survive")
}

func TestRecomputeAllSentimentAvg(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	for _, r := range []*types.Review{
		{PlaceID: 1, SentimentScore: 0.2, SentimentLabel: types.LabelNegative, RatingGiven: 1},
		{PlaceID: 1, SentimentScore: 0.6, SentimentLabel: types.LabelPositive, RatingGiven: 4},
		{PlaceID: 4, SentimentScore: 0.76, SentimentLabel: types.LabelPositive, RatingGiven: 5},
	} {
		require.NoError(t, storage.InsertReview(ctx, r))
	}

	n, err := storage.RecomputeAllSentimentAvg(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	p, err := storage.FetchPlace(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, *p.SentimentAvg, 1e-9)

	p, err = storage.FetchPlace(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, p.SentimentAvg)
}

func TestTransaction(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	// Rolled back work is discarded
	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertReview(ctx, &types.Review{PlaceID: 1, SentimentScore: 0.68, SentimentLabel: types.LabelPositive, RatingGiven: 5}))
	require.NoError(t, tx.RecomputeSentimentAvg(ctx, 1))

	// Reads inside the transaction see its writes
	p, err := tx.FetchPlace(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, p.SentimentAvg)
	require.NoError(t, tx.Rollback())

	p, err = storage.FetchPlace(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, p.SentimentAvg)

	// Committed work persists
	tx, err = storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertReview(ctx, &types.Review{PlaceID: 1, SentimentScore: 0.68, SentimentLabel: types.LabelPositive, RatingGiven: 5}))
	require.NoError(t, tx.RecomputeSentimentAvg(ctx, 1))
	stats, err := tx.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ReviewsCount)
	require.NoError(t, tx.Commit())

	p, err = storage.FetchPlace(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, p.SentimentAvg)
	assert.InDelta(t, 0.68, *p.SentimentAvg, 1e-9)

	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
}

func TestGetStats(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	for _, r := range []*types.Review{
		{PlaceID: 1, UserID: userID(1), SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 4},
		{PlaceID: 2, UserID: userID(1), SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 4},
		{PlaceID: 3, UserID: userID(2), SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 4},
		{PlaceID: 3, SentimentScore: 0.5, SentimentLabel: types.LabelNeutral, RatingGiven: 4},
	} {
		require.NoError(t, storage.InsertReview(ctx, r))
	}

	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.PlacesCount)
	assert.Equal(t, 2, stats.CitiesCount)
	assert.Equal(t, 4, stats.ReviewsCount)
	assert.Equal(t, 2, stats.UsersCount)
	assert.Equal(t, CurrentSchemaVersion, stats.SchemaVersion)
	assert.Equal(t, BuildMode, stats.BuildMode)
	assert.GreaterOrEqual(t, stats.SizeMB, 0.0)
}

func TestReset(t *testing.T) {
	storage := setupTestDB(t)
	seedPlaces(t, storage)
	ctx := context.Background()

	require.NoError(t, storage.Reset(ctx))

	stats, err := storage.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PlacesCount)
	assert.Equal(t, CurrentSchemaVersion, stats.SchemaVersion)
}
