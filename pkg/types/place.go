package types

import "strings"

// Place is a tourism venue. SentimentAvg is nil until the place has reviews.
type Place struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	City         string   `json:"city"`
	Price        int      `json:"price"`
	Rating       float64  `json:"rating"`
	ImageURL     string   `json:"image_url,omitempty"`
	SentimentAvg *float64 `json:"sentiment_avg"`
}

// SentimentOr returns the sentiment average, or def for an unreviewed place
func (p *Place) SentimentOr(def float64) float64 {
	if p.SentimentAvg == nil {
		return def
	}
	return *p.SentimentAvg
}

// MatchesAny reports whether any preference is a case-insensitive substring
// of the place category. The first matching preference is returned.
func (p *Place) MatchesAny(preferences []string) (string, bool) {
	category := strings.ToLower(p.Category)
	for _, pref := range preferences {
		if strings.Contains(category, strings.ToLower(pref)) {
			return pref, true
		}
	}
	return "", false
}

// Validate checks if the place is valid
func (p *Place) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidPlaceID
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Rating < 0 || p.Rating > 5 {
		return ErrInvalidRating
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Float64 returns a pointer to v, for building optional sentiment averages
func Float64(v float64) *float64 {
	return &v
}
