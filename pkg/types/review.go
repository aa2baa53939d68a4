package types

// Label is the three-way sentiment classification of a review
type Label string

const (
	LabelPositive Label = "Positif"
	LabelNeutral  Label = "Netral"
	LabelNegative Label = "Negatif"
)

// Valid reports whether the label is one of the known labels
func (l Label) Valid() bool {
	switch l {
	case LabelPositive, LabelNeutral, LabelNegative:
		return true
	default:
		return false
	}
}

// Review is a rating and comment tied to a place. UserID is nil for reviews
// submitted through the public API; only reviews with a user id feed the
// collaborative rating matrix.
type Review struct {
	ID             int64   `json:"id"`
	PlaceID        int64   `json:"place_id"`
	UserID         *int64  `json:"user_id,omitempty"`
	Comment        string  `json:"comment"`
	SentimentScore float64 `json:"sentiment_score"`
	SentimentLabel Label   `json:"sentiment_label"`
	RatingGiven    int     `json:"rating_given"`
}

// Validate checks if the review is valid
func (r *Review) Validate() error {
	if r.PlaceID <= 0 {
		return ErrInvalidPlaceID
	}
	if r.RatingGiven < 1 || r.RatingGiven > 5 {
		return ErrInvalidRatingGiven
	}
	if r.SentimentScore < 0 || r.SentimentScore > 1 {
		return ErrInvalidSentiment
	}
	if !r.SentimentLabel.Valid() {
		return ErrInvalidLabel
	}
	return nil
}

// UserRating is the (user, place, rating) projection of a review with a user id
type UserRating struct {
	UserID      int64
	PlaceID     int64
	RatingGiven int
}
