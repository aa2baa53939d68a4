package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dshills/travelrec/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Reset drops every table and recreates the schema
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	if err := ResetSchema(ctx, s.db); err != nil {
		return fmt.Errorf("failed to reset schema: %w", err)
	}
	return nil
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Place operations

const placeColumns = `id, name, category, city, price, rating, image_url, sentiment_avg`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlace(r rowScanner) (*types.Place, error) {
	var p types.Place
	var sentiment sql.NullFloat64
	if err := r.Scan(&p.ID, &p.Name, &p.Category, &p.City, &p.Price, &p.Rating, &p.ImageURL, &sentiment); err != nil {
		return nil, err
	}
	if sentiment.Valid {
		p.SentimentAvg = types.Float64(sentiment.Float64)
	}
	return &p, nil
}

// fetchPlacesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) fetchPlacesWithQuerier(ctx context.Context, q querier, city string, maxPrice int) ([]*types.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE city = ? AND price <= ? ORDER BY id`
	rows, err := q.QueryContext(ctx, query, city, maxPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch places: %w", err)
	}
	defer rows.Close()

	var places []*types.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func (s *SQLiteStorage) FetchPlaces(ctx context.Context, city string, maxPrice int) ([]*types.Place, error) {
	return s.fetchPlacesWithQuerier(ctx, s.querier(), city, maxPrice)
}

// fetchAllPlaceIDsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) fetchAllPlaceIDsWithQuerier(ctx context.Context, q querier) ([]int64, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM places ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch place ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStorage) FetchAllPlaceIDs(ctx context.Context) ([]int64, error) {
	return s.fetchAllPlaceIDsWithQuerier(ctx, s.querier())
}

// fetchPlaceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) fetchPlaceWithQuerier(ctx context.Context, q querier, placeID int64) (*types.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM places WHERE id = ?`
	p, err := scanPlace(q.QueryRowContext(ctx, query, placeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch place %d: %w", placeID, err)
	}
	return p, nil
}

func (s *SQLiteStorage) FetchPlace(ctx context.Context, placeID int64) (*types.Place, error) {
	return s.fetchPlaceWithQuerier(ctx, s.querier(), placeID)
}

// findAnchorWithQuerier returns the top-rated other place with the same city and category
func (s *SQLiteStorage) findAnchorWithQuerier(ctx context.Context, q querier, city, category string, excludeID int64) (*types.Place, error) {
	query := `
		SELECT ` + placeColumns + `
		FROM places
		WHERE city = ? AND category = ? AND id != ?
		ORDER BY rating DESC, id
		LIMIT 1
	`
	p, err := scanPlace(q.QueryRowContext(ctx, query, city, category, excludeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find anchor: %w", err)
	}
	return p, nil
}

func (s *SQLiteStorage) FindAnchor(ctx context.Context, city, category string, excludeID int64) (*types.Place, error) {
	return s.findAnchorWithQuerier(ctx, s.querier(), city, category, excludeID)
}

// upsertPlaceWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertPlaceWithQuerier(ctx context.Context, q querier, place *types.Place) error {
	if err := place.Validate(); err != nil {
		return fmt.Errorf("invalid place %d: %w", place.ID, err)
	}
	query := `
		INSERT INTO places (id, name, category, city, price, rating, image_url, sentiment_avg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			city = excluded.city,
			price = excluded.price,
			rating = excluded.rating,
			image_url = excluded.image_url,
			sentiment_avg = COALESCE(places.sentiment_avg, excluded.sentiment_avg)
	`
	var sentiment sql.NullFloat64
	if place.SentimentAvg != nil {
		sentiment = sql.NullFloat64{Float64: *place.SentimentAvg, Valid: true}
	}
	_, err := q.ExecContext(ctx, query,
		place.ID, place.Name, place.Category, place.City,
		place.Price, place.Rating, place.ImageURL, sentiment)
	if err != nil {
		return fmt.Errorf("failed to upsert place: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertPlace(ctx context.Context, place *types.Place) error {
	return s.upsertPlaceWithQuerier(ctx, s.querier(), place)
}

// Review operations

// fetchReviewsWithUserWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) fetchReviewsWithUserWithQuerier(ctx context.Context, q querier) ([]types.UserRating, error) {
	query := `
		SELECT user_id, place_id, rating_given
		FROM reviews
		WHERE user_id IS NOT NULL
		ORDER BY id
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user reviews: %w", err)
	}
	defer rows.Close()

	var ratings []types.UserRating
	for rows.Next() {
		var r types.UserRating
		if err := rows.Scan(&r.UserID, &r.PlaceID, &r.RatingGiven); err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

func (s *SQLiteStorage) FetchReviewsWithUser(ctx context.Context) ([]types.UserRating, error) {
	return s.fetchReviewsWithUserWithQuerier(ctx, s.querier())
}

// insertReviewWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) insertReviewWithQuerier(ctx context.Context, q querier, review *types.Review) error {
	if err := review.Validate(); err != nil {
		return fmt.Errorf("invalid review: %w", err)
	}
	query := `
		INSERT INTO reviews (place_id, user_id, comment, sentiment_score, sentiment_label, rating_given)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	var userID sql.NullInt64
	if review.UserID != nil {
		userID = sql.NullInt64{Int64: *review.UserID, Valid: true}
	}
	result, err := q.ExecContext(ctx, query,
		review.PlaceID, userID, review.Comment,
		review.SentimentScore, string(review.SentimentLabel), review.RatingGiven)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	review.ID = id
	return nil
}

func (s *SQLiteStorage) InsertReview(ctx context.Context, review *types.Review) error {
	return s.insertReviewWithQuerier(ctx, s.querier(), review)
}

// recomputeSentimentAvgWithQuerier stores the mean review sentiment for a
// place, or NULL when it has no reviews
func (s *SQLiteStorage) recomputeSentimentAvgWithQuerier(ctx context.Context, q querier, placeID int64) error {
	query := `
		UPDATE places
		SET sentiment_avg = (SELECT AVG(sentiment_score) FROM reviews WHERE place_id = ?)
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, query, placeID, placeID)
	if err != nil {
		return fmt.Errorf("failed to recompute sentiment for place %d: %w", placeID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) RecomputeSentimentAvg(ctx context.Context, placeID int64) error {
	return s.recomputeSentimentAvgWithQuerier(ctx, s.querier(), placeID)
}

// recomputeAllSentimentAvgWithQuerier refreshes every reviewed place.
// Places without reviews keep their current value.
func (s *SQLiteStorage) recomputeAllSentimentAvgWithQuerier(ctx context.Context, q querier) (int64, error) {
	query := `
		UPDATE places
		SET sentiment_avg = (SELECT AVG(sentiment_score) FROM reviews WHERE reviews.place_id = places.id)
		WHERE EXISTS (SELECT 1 FROM reviews WHERE reviews.place_id = places.id)
	`
	result, err := q.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute sentiment averages: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStorage) RecomputeAllSentimentAvg(ctx context.Context) (int64, error) {
	return s.recomputeAllSentimentAvgWithQuerier(ctx, s.querier())
}

// deleteGeneratedReviewsWithQuerier removes reviews that belong to a user id
func (s *SQLiteStorage) deleteGeneratedReviewsWithQuerier(ctx context.Context, q querier) (int64, error) {
	result, err := q.ExecContext(ctx, "DELETE FROM reviews WHERE user_id IS NOT NULL")
	if err != nil {
		return 0, fmt.Errorf("failed to delete generated reviews: %w", err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStorage) DeleteGeneratedReviews(ctx context.Context) (int64, error) {
	return s.deleteGeneratedReviewsWithQuerier(ctx, s.querier())
}

// Status operations

// getStatsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getStatsWithQuerier(ctx context.Context, q querier) (*Stats, error) {
	stats := &Stats{BuildMode: BuildMode}

	err := q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM places),
			(SELECT COUNT(DISTINCT city) FROM places),
			(SELECT COUNT(*) FROM reviews),
			(SELECT COUNT(DISTINCT user_id) FROM reviews WHERE user_id IS NOT NULL)
	`).Scan(&stats.PlacesCount, &stats.CitiesCount, &stats.ReviewsCount, &stats.UsersCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	var version sql.NullString
	err = q.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	stats.SchemaVersion = version.String

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.SizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return stats, nil
}

func (s *SQLiteStorage) GetStats(ctx context.Context) (*Stats, error) {
	return s.getStatsWithQuerier(ctx, s.querier())
}

// Transaction implementations. Every operation runs on the transaction's
// connection.

func (t *sqliteTx) FetchPlaces(ctx context.Context, city string, maxPrice int) ([]*types.Place, error) {
	return t.storage.fetchPlacesWithQuerier(ctx, t.querier(), city, maxPrice)
}

func (t *sqliteTx) FetchAllPlaceIDs(ctx context.Context) ([]int64, error) {
	return t.storage.fetchAllPlaceIDsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) FetchPlace(ctx context.Context, placeID int64) (*types.Place, error) {
	return t.storage.fetchPlaceWithQuerier(ctx, t.querier(), placeID)
}

func (t *sqliteTx) FindAnchor(ctx context.Context, city, category string, excludeID int64) (*types.Place, error) {
	return t.storage.findAnchorWithQuerier(ctx, t.querier(), city, category, excludeID)
}

func (t *sqliteTx) UpsertPlace(ctx context.Context, place *types.Place) error {
	return t.storage.upsertPlaceWithQuerier(ctx, t.querier(), place)
}

func (t *sqliteTx) FetchReviewsWithUser(ctx context.Context) ([]types.UserRating, error) {
	return t.storage.fetchReviewsWithUserWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) InsertReview(ctx context.Context, review *types.Review) error {
	return t.storage.insertReviewWithQuerier(ctx, t.querier(), review)
}

func (t *sqliteTx) RecomputeSentimentAvg(ctx context.Context, placeID int64) error {
	return t.storage.recomputeSentimentAvgWithQuerier(ctx, t.querier(), placeID)
}

func (t *sqliteTx) RecomputeAllSentimentAvg(ctx context.Context) (int64, error) {
	return t.storage.recomputeAllSentimentAvgWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteGeneratedReviews(ctx context.Context) (int64, error) {
	return t.storage.deleteGeneratedReviewsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) GetStats(ctx context.Context) (*Stats, error) {
	return t.storage.getStatsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
