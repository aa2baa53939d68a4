package sentiment

import (
	"strings"

	"github.com/dshills/travelrec/pkg/types"
)

// positiveWords and negativeWords are matched as substrings of the lowercased text
var (
	positiveWords = []string{
		"bagus", "indah", "bersih", "nyaman", "keren",
		"puas", "ramah", "suka", "enak", "mantap",
		"rekomendasi", "luar biasa", "senang", "sejuk", "strategis",
	}
	negativeWords = []string{
		"jelek", "kotor", "mahal", "kecewa", "buruk",
		"kasar", "macet", "panas", "bau", "rusak",
		"membosankan", "rugi", "parah",
	}
)

const (
	neutralScore  = 0.5
	positiveFloor = 0.6
	negativeCeil  = 0.4
	pointWeight   = 0.08
	maxPoints     = 5
)

// Result is the outcome of analyzing one text
type Result struct {
	Raw   int         `json:"raw"`
	Score float64     `json:"score"`
	Label types.Label `json:"label"`
}

// RawScore returns the lexicon point total for text
func RawScore(text string) int {
	lower := strings.ToLower(text)
	raw := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			raw++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			raw--
		}
	}
	return raw
}

// Normalize maps a raw point total onto [0, 1]
func Normalize(raw int) float64 {
	switch {
	case raw > 0:
		return positiveFloor + float64(min(raw, maxPoints))*pointWeight
	case raw < 0:
		return negativeCeil - float64(min(-raw, maxPoints))*pointWeight
	default:
		return neutralScore
	}
}

// Score returns the normalized sentiment score of text
func Score(text string) float64 {
	return Normalize(RawScore(text))
}

// LabelFor classifies a normalized score
func LabelFor(score float64) types.Label {
	switch {
	case score >= positiveFloor:
		return types.LabelPositive
	case score <= negativeCeil:
		return types.LabelNegative
	default:
		return types.LabelNeutral
	}
}

// Analyze scores and labels text. Any input is accepted; empty text is neutral.
func Analyze(text string) Result {
	raw := RawScore(text)
	score := Normalize(raw)
	return Result{Raw: raw, Score: score, Label: LabelFor(score)}
}
