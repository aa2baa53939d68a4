// Package ingest seeds the database: it imports places from the tourism
// CSV, generates a synthetic rating history for collaborative filtering and
// refreshes per-place sentiment averages.
//
// # Pipeline
//
//	CSV -> places (batched upserts)
//	places -> synthetic users -> reviews (concurrent generation, batched inserts)
//	reviews -> places.sentiment_avg
//
// Generated reviews always carry a user id, so they feed the rating matrix.
// Reviews submitted through the API never do.
//
// # Determinism
//
// GenerateHistory derives one seed per user from HistoryOptions.Seed before
// any goroutine starts. The same seed and place set always produce the same
// history regardless of worker count or scheduling.
package ingest
