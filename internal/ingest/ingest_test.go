package ingest

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/travelrec/internal/sentiment"
	"github.com/dshills/travelrec/internal/storage"
	"github.com/dshills/travelrec/pkg/types"
)

const sampleCSV = `Place_Id,Place_Name,Description,Category,City,Price,Rating,Time_Minutes
1,Taman Hutan Raya,Hutan kota,Taman Hiburan,Bandung,10000,4.5,90
2,Pantai Ceria,Pantai,Bahari,Bandung,20000,4.8,
3,Museum Geologi,Museum,Budaya,Bandung,5000,4.2,60
4,Monas,Monumen,Budaya,Jakarta,20000,4.6,
5,Taman Sari,Taman,Taman Hiburan,Yogyakarta,0,4.7,45
`

func setupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestIngester(t *testing.T) (*Ingester, *storage.SQLiteStorage) {
	t.Helper()
	store := setupTestDB(t)
	return New(store, sentiment.NewAnalyzer(64)), store
}

func importSample(t *testing.T, in *Ingester) {
	t.Helper()
	stats, err := in.ImportPlaces(context.Background(), strings.NewReader(sampleCSV), 2)
	require.NoError(t, err)
	require.Equal(t, 5, stats.PlacesImported)
}

func sortedRatings(t *testing.T, store storage.Storage) []types.UserRating {
	t.Helper()
	ratings, err := store.FetchReviewsWithUser(context.Background())
	require.NoError(t, err)
	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].UserID != ratings[j].UserID {
			return ratings[i].UserID < ratings[j].UserID
		}
		return ratings[i].PlaceID < ratings[j].PlaceID
	})
	return ratings
}

func TestImageURL(t *testing.T) {
	assert.Equal(t,
		"https://dummyimage.com/600x400/008080/ffffff&text=Taman+Hutan+Raya",
		ImageURL("Taman Hutan Raya"))
}

func TestImportPlaces(t *testing.T) {
	in, store := newTestIngester(t)
	ctx := context.Background()
	importSample(t, in)

	p, err := store.FetchPlace(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Taman Hutan Raya", p.Name)
	assert.Equal(t, "Taman Hiburan", p.Category)
	assert.Equal(t, "Bandung", p.City)
	assert.Equal(t, 10000, p.Price)
	assert.InDelta(t, 4.5, p.Rating, 1e-9)
	assert.Equal(t, ImageURL("Taman Hutan Raya"), p.ImageURL)
	require.NotNil(t, p.SentimentAvg)
	assert.InDelta(t, 0.5, *p.SentimentAvg, 1e-9)

	ids, err := store.FetchAllPlaceIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
}

func TestImportPlaces_BadRows(t *testing.T) {
	in, store := newTestIngester(t)
	data := "\ufeffPlace_Id,Place_Name,Category,City,Price,Rating\n" +
		"1,Taman Hutan,Taman,Bandung,10000,4.5\n" +
		"x,Broken Id,Taman,Bandung,10000,4.5\n" +
		"3,Bad Price,Taman,Bandung,gratis,4.5\n" +
		"4,Bad Rating,Taman,Bandung,0,9.9\n" +
		"5,Short Row\n" +
		"6,Museum,Budaya,Bandung,5000,4.1\n"

	stats, err := in.ImportPlaces(context.Background(), strings.NewReader(data), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PlacesImported)
	assert.Equal(t, 4, stats.RowsFailed)
	assert.Len(t, stats.ErrorMessages, 4)
	assert.Contains(t, stats.ErrorMessages[0], "line 3")

	ids, err := store.FetchAllPlaceIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 6}, ids)
}

func TestImportPlaces_MissingColumn(t *testing.T) {
	in, _ := newTestIngester(t)
	_, err := in.ImportPlaces(context.Background(), strings.NewReader("Place_Id,Place_Name,City\n1,A,B\n"), 10)
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestImportPlacesCSV_MissingFile(t *testing.T) {
	in, _ := newTestIngester(t)
	_, err := in.ImportPlacesCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), 10)
	assert.Error(t, err)
}

func TestImportPlaces_KeepsExistingSentiment(t *testing.T) {
	in, store := newTestIngester(t)
	ctx := context.Background()
	importSample(t, in)

	uid := int64(1)
	require.NoError(t, store.InsertReview(ctx, &types.Review{
		PlaceID: 1, UserID: &uid, Comment: "jelek", SentimentScore: 0.32,
		SentimentLabel: types.LabelNegative, RatingGiven: 2,
	}))
	require.NoError(t, store.RecomputeSentimentAvg(ctx, 1))

	importSample(t, in)
	p, err := store.FetchPlace(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.32, *p.SentimentAvg, 1e-9)
}

func TestGenerateHistory(t *testing.T) {
	in, store := newTestIngester(t)
	ctx := context.Background()
	importSample(t, in)

	opts := HistoryOptions{Users: 20, MinVisits: 2, MaxVisits: 4, Seed: 7, BatchSize: 6}
	stats, err := in.GenerateHistory(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 20, stats.UsersGenerated)

	ratings := sortedRatings(t, store)
	assert.Len(t, ratings, stats.ReviewsGenerated)

	perUser := make(map[int64]map[int64]bool)
	for _, r := range ratings {
		assert.GreaterOrEqual(t, r.RatingGiven, 1)
		assert.LessOrEqual(t, r.RatingGiven, 5)
		if perUser[r.UserID] == nil {
			perUser[r.UserID] = make(map[int64]bool)
		}
		assert.False(t, perUser[r.UserID][r.PlaceID], "duplicate visit user=%d place=%d", r.UserID, r.PlaceID)
		perUser[r.UserID][r.PlaceID] = true
	}
	assert.Len(t, perUser, 20)
	for uid, places := range perUser {
		assert.GreaterOrEqual(t, len(places), 2, "user %d", uid)
		assert.LessOrEqual(t, len(places), 4, "user %d", uid)
	}
}

func TestGenerateHistory_VisitsCappedAtPlaceCount(t *testing.T) {
	in, store := newTestIngester(t)
	importSample(t, in)

	stats, err := in.GenerateHistory(context.Background(), HistoryOptions{Users: 3, MinVisits: 10, MaxVisits: 25, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 15, stats.ReviewsGenerated)
	assert.Len(t, sortedRatings(t, store), 15)
}

func TestGenerateHistory_Deterministic(t *testing.T) {
	opts := HistoryOptions{Users: 30, MinVisits: 1, MaxVisits: 5, Seed: 99, BatchSize: 4}

	in1, store1 := newTestIngester(t)
	importSample(t, in1)
	in1.SetWorkers(1)
	_, err := in1.GenerateHistory(context.Background(), opts)
	require.NoError(t, err)

	in2, store2 := newTestIngester(t)
	importSample(t, in2)
	in2.SetWorkers(8)
	_, err = in2.GenerateHistory(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, sortedRatings(t, store1), sortedRatings(t, store2))
}

func TestGenerateHistory_Errors(t *testing.T) {
	in, _ := newTestIngester(t)
	ctx := context.Background()

	_, err := in.GenerateHistory(ctx, HistoryOptions{Users: 5, MinVisits: 1, MaxVisits: 2})
	assert.ErrorIs(t, err, ErrNoPlaces)

	_, err = in.GenerateHistory(ctx, HistoryOptions{Users: 5, MinVisits: 3, MaxVisits: 2})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = in.GenerateHistory(ctx, HistoryOptions{Users: -1, MinVisits: 1, MaxVisits: 2})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestDrawRating_Distribution(t *testing.T) {
	r := rand.New(rand.NewSource(2024))
	counts := make(map[int]int)
	const n = 20000
	for i := 0; i < n; i++ {
		counts[drawRating(r)]++
	}
	for i, v := range ratingValues {
		assert.InDelta(t, ratingWeights[i], float64(counts[v])/n, 0.02, "rating %d", v)
	}
}

func TestCommentTemplates_CoverAllRatings(t *testing.T) {
	for _, v := range ratingValues {
		assert.NotEmpty(t, commentTemplates[v], "rating %d", v)
	}
}

func TestRefreshSentiment(t *testing.T) {
	in, store := newTestIngester(t)
	ctx := context.Background()
	importSample(t, in)

	uid := int64(1)
	for _, score := range []float64{0.76, 0.24} {
		require.NoError(t, store.InsertReview(ctx, &types.Review{
			PlaceID: 3, UserID: &uid, SentimentScore: score,
			SentimentLabel: types.LabelNeutral, RatingGiven: 3,
		}))
	}

	n, err := in.RefreshSentiment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, err := store.FetchPlace(ctx, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, *p.SentimentAvg, 1e-9)
}

func TestSeed(t *testing.T) {
	in, store := newTestIngester(t)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "tourism_with_id.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0o600))

	opts := SeedOptions{
		CSVPath:   csvPath,
		BatchSize: 3,
		Reset:     true,
		History:   HistoryOptions{Users: 10, MinVisits: 2, MaxVisits: 3, Seed: 5},
	}
	first, err := in.Seed(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 5, first.PlacesImported)
	assert.Equal(t, 10, first.UsersGenerated)
	assert.Positive(t, first.ReviewsGenerated)
	assert.Positive(t, first.PlacesRefreshed)

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.PlacesCount)
	assert.Equal(t, first.ReviewsGenerated, stats.ReviewsCount)
	assert.Equal(t, 10, stats.UsersCount)

	// Rerun without reset replaces the generated history
	opts.Reset = false
	second, err := in.Seed(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, first.ReviewsGenerated, second.ReviewsDeleted)

	stats, err = store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ReviewsGenerated, stats.ReviewsCount)
}
