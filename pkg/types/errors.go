package types

import "errors"

// Domain errors for type validation
var (
	// Place errors
	ErrInvalidPlaceID = errors.New("invalid place ID")
	ErrInvalidRating  = errors.New("rating must be between 0 and 5")
	ErrInvalidPrice   = errors.New("price cannot be negative")
	ErrEmptyName      = errors.New("name cannot be empty")

	// Review errors
	ErrInvalidRatingGiven = errors.New("rating given must be between 1 and 5")
	ErrInvalidSentiment   = errors.New("sentiment score must be between 0 and 1")
	ErrInvalidLabel       = errors.New("invalid sentiment label")

	// Recommendation errors
	ErrInvalidMatchPercent = errors.New("match percent must be between 0 and 100")
	ErrInvalidSource       = errors.New("invalid recommendation source")
)
