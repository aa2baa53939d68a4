package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dshills/travelrec/internal/service"
)

var errMissingBudget = errors.New("budget is required")

// flexInt decodes a JSON number or a numeric string into an int
type flexInt struct {
	Value int
	Set   bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		f.Value, f.Set = n, true
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid integer %s", data)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
		return fmt.Errorf("integer out of range: %s", data)
	}
	f.Value, f.Set = int(n), true
	return nil
}

type recommendBody struct {
	City        string   `json:"city"`
	Budget      flexInt  `json:"budget"`
	Preferences []string `json:"preferences"`
}

func (b recommendBody) toRequest() (service.RecommendRequest, error) {
	if !b.Budget.Set {
		return service.RecommendRequest{}, errMissingBudget
	}
	return service.RecommendRequest{
		City:        b.City,
		Budget:      b.Budget.Value,
		Preferences: b.Preferences,
	}, nil
}

type submitReviewBody struct {
	PlaceID flexInt `json:"place_id"`
	Comment string  `json:"comment"`
	Rating  flexInt `json:"rating"`
}

func (b submitReviewBody) toRequest() service.SubmitReviewRequest {
	return service.SubmitReviewRequest{
		PlaceID: int64(b.PlaceID.Value),
		Comment: b.Comment,
		Rating:  b.Rating.Value,
	}
}
