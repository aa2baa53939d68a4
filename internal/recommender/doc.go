// Package recommender blends three recommendation strategies into one list.
//
// # Strategies
//
// Content scoring ("system") ranks every candidate by rating, sentiment
// average and whether its category matches a preference.
//
// Collaborative filtering ("collaborative") builds a global user x place
// rating matrix from seeded review history, synthesizes a pseudo-user that
// rated every preference-matching candidate 5, finds the K nearest users by
// cosine distance and surfaces candidates those users rated 4 or higher.
//
// The graph heuristic ("gnn") picks a target category, takes its top-rated
// place as an anchor and recommends other well-rated places of the same
// category as "connected" to it. No model is trained; the name is descriptive.
//
// # Merging
//
// Hybrid runs the strategies in order and fills fixed quotas:
//
//	content        top 2
//	collaborative  next 2 not already chosen
//	graph          next 1 not already chosen
//
// Sources are never re-ranked against each other. Each item carries its
// source so clients can explain it.
//
// # Matching
//
// A preference matches a category when its lowercase form is a substring of
// the lowercase category. "pantai" matches "Pantai Pasir Putih" and also
// "Wisata Pantai". Scoring constants assume this loose matching.
//
// # Determinism
//
// The only random step is the collaborative fallback that samples up to three
// candidates when no preference matches. Inject a seeded *rand.Rand with
// WithRand to make results reproducible.
package recommender
