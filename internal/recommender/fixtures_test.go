package recommender

import (
	"github.com/dshills/travelrec/pkg/types"
)

// bandung returns the candidate set used across recommender tests.
// Place 6 is in Jakarta and only appears in the global column space.
func bandung() []*types.Place {
	return []*types.Place{
		{ID: 1, Name: "Taman Hutan", Category: "Taman Kota", City: "Bandung", Price: 10000, Rating: 4.5},
		{ID: 2, Name: "Pantai Ceria", Category: "Bahari", City: "Bandung", Price: 20000, Rating: 4.8, SentimentAvg: types.Float64(0.9)},
		{ID: 3, Name: "Museum Geologi", Category: "Budaya", City: "Bandung", Price: 5000, Rating: 4.2},
		{ID: 4, Name: "Taman Lalu Lintas", Category: "Taman Kota", City: "Bandung", Price: 15000, Rating: 4.4},
		{ID: 5, Name: "Taman Sari", Category: "Taman Kota", City: "Bandung", Price: 0, Rating: 3.9},
		{ID: 7, Name: "Kebun Raya", Category: "Taman Kota", City: "Bandung", Price: 25000, Rating: 4.3},
	}
}

func allPlaceIDs() []int64 {
	return []int64{1, 2, 3, 4, 5, 6, 7}
}

// history gives users 1-3 overlapping taste with a "taman" request.
// Users 4 and 5 share nothing with it and sit at distance 1.
func history() []types.UserRating {
	return []types.UserRating{
		{UserID: 1, PlaceID: 1, RatingGiven: 5},
		{UserID: 1, PlaceID: 4, RatingGiven: 5},
		{UserID: 1, PlaceID: 2, RatingGiven: 5},
		{UserID: 1, PlaceID: 3, RatingGiven: 4},
		{UserID: 2, PlaceID: 1, RatingGiven: 5},
		{UserID: 2, PlaceID: 2, RatingGiven: 4},
		{UserID: 3, PlaceID: 5, RatingGiven: 5},
		{UserID: 3, PlaceID: 3, RatingGiven: 4},
		{UserID: 3, PlaceID: 2, RatingGiven: 2},
		{UserID: 4, PlaceID: 6, RatingGiven: 5},
		{UserID: 5, PlaceID: 2, RatingGiven: 5},
		{UserID: 5, PlaceID: 3, RatingGiven: 5},
	}
}

func ids(items []types.ScoredCandidate) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
