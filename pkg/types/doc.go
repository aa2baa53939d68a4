// Package types provides shared type definitions for the travelrec recommender.
//
// This package defines domain types used across storage, the recommenders and
// the transport layers: places, reviews, the user rating projection and the
// scored candidates that make up a recommendation list.
//
// # Core Types
//
// Place is a tourism venue. Its SentimentAvg is nil until the first review:
//
//	place := &types.Place{
//	    ID:       12,
//	    Name:     "Taman Suropati",
//	    Category: "Taman Hiburan",
//	    City:     "Jakarta",
//	    Price:    0,
//	    Rating:   4.6,
//	}
//
// ScoredCandidate embeds a Place and adds the per-request score, the integer
// match percentage shown to users and the Source that produced it:
//
//	c := types.ScoredCandidate{
//	    Place:        *place,
//	    FinalScore:   0.92,
//	    MatchPercent: 92,
//	    Source:       types.SourceSystem,
//	}
//
// # Validation
//
// Domain types implement Validate to catch out-of-range values before they
// reach storage or a client:
//
//	if err := review.Validate(); err != nil {
//	    return err
//	}
package types
