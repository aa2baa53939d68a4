// Package sentiment scores free-text reviews with a fixed bag-of-words lexicon.
//
// Matching is case-insensitive substring presence: each lexicon entry found
// anywhere in the text adds (positive) or subtracts (negative) one point, so
// "kotoran" still counts as "kotor". The raw point total maps onto [0, 1]:
//
//	raw > 0:  0.6 + min(raw, 5) * 0.08
//	raw < 0:  0.4 - min(|raw|, 5) * 0.08
//	raw == 0: 0.5
//
// Scores at or above 0.6 are labelled Positif, at or below 0.4 Negatif and
// everything in between Netral.
//
// Analyzer wraps the pure functions with an LRU cache keyed by the SHA-256 of
// the lowercased text. Seeding generates thousands of reviews from a small
// pool of template comments, so most lookups hit.
package sentiment
