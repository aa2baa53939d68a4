package types

// Source identifies which recommender produced a candidate
type Source string

const (
	SourceSystem        Source = "system"
	SourceCollaborative Source = "collaborative"
	SourceGraph         Source = "gnn"
)

// Valid reports whether the source is known
func (s Source) Valid() bool {
	switch s {
	case SourceSystem, SourceCollaborative, SourceGraph:
		return true
	default:
		return false
	}
}

// ScoredCandidate is a place augmented with the score and provenance of one
// recommendation pass
type ScoredCandidate struct {
	Place

	// Scoring
	FinalScore   float64 `json:"final_score"`
	MatchPercent int     `json:"match_percent"` // 0-100
	Source       Source  `json:"reco_type"`

	// Explanation
	CollabInfo     string `json:"collab_info,omitempty"`
	VoterCount     int    `json:"voter_count_raw,omitempty"` // collaborative only
	AnchorName     string `json:"anchor_name,omitempty"`     // gnn only
	AnchorCategory string `json:"anchor_category,omitempty"` // gnn only
}

// Validate checks if the scored candidate is valid
func (c *ScoredCandidate) Validate() error {
	if c.ID <= 0 {
		return ErrInvalidPlaceID
	}
	if c.MatchPercent < 0 || c.MatchPercent > 100 {
		return ErrInvalidMatchPercent
	}
	if !c.Source.Valid() {
		return ErrInvalidSource
	}
	return nil
}

// GraphExplanation is the supporting data for a graph-sourced recommendation.
// Anchor is nil when no other place in the same city shares the category.
type GraphExplanation struct {
	Target   Place  `json:"target"`
	Anchor   *Place `json:"anchor"`
	Category string `json:"category"`
}
