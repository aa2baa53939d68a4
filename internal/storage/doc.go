// Package storage provides SQLite-based persistence for places and reviews.
//
// # Database Schema
//
// Tables:
//   - places: venues with price, rating and the running sentiment average
//   - reviews: ratings and comments; user_id is set only for generated history
//   - schema_version: applied migrations, compared with semver
//
// sentiment_avg is NULL until a place receives its first review.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("wisata.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	places, err := db.FetchPlaces(ctx, "Bandung", 50000)
//
// # Transactions
//
// Submitting a review inserts it and recomputes the place average atomically:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.InsertReview(ctx, review); err != nil {
//	    return err
//	}
//	if err := tx.RecomputeSentimentAvg(ctx, review.PlaceID); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// The pool holds a single connection. Inside a transaction, always go through
// the Tx; calling the parent storage would wait for the connection the
// transaction holds.
//
// # Build Modes
//
// The default build uses modernc.org/sqlite (pure Go). Build with
// -tags sqlite_cgo to use github.com/mattn/go-sqlite3 instead.
package storage
