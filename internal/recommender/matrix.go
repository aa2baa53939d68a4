package recommender

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dshills/travelrec/pkg/types"
)

// ErrDegenerateMatrix is returned when a rating matrix cannot be searched
var ErrDegenerateMatrix = errors.New("degenerate rating matrix")

// UserItemMatrix is a dense user x place rating matrix. Rows follow UserIDs
// (ascending), columns follow PlaceIDs. Missing ratings are 0.
type UserItemMatrix struct {
	UserIDs  []int64
	PlaceIDs []int64
	Rows     [][]float64

	colIndex map[int64]int
}

// Neighbor is a matrix row close to a query vector
type Neighbor struct {
	UserID   int64
	Distance float64
}

// BuildMatrix pivots ratings into a matrix over the given place columns.
// Repeated (user, place) ratings are averaged and ratings for unknown
// places are dropped.
func BuildMatrix(ratings []types.UserRating, placeIDs []int64) (*UserItemMatrix, error) {
	if len(placeIDs) == 0 {
		return nil, fmt.Errorf("%w: no place columns", ErrDegenerateMatrix)
	}

	colIndex := make(map[int64]int, len(placeIDs))
	for i, id := range placeIDs {
		colIndex[id] = i
	}

	type cell struct {
		sum   float64
		count int
	}
	cells := make(map[int64]map[int]*cell)
	for _, r := range ratings {
		col, ok := colIndex[r.PlaceID]
		if !ok {
			continue
		}
		row := cells[r.UserID]
		if row == nil {
			row = make(map[int]*cell)
			cells[r.UserID] = row
		}
		c := row[col]
		if c == nil {
			c = &cell{}
			row[col] = c
		}
		c.sum += float64(r.RatingGiven)
		c.count++
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: no ratings within known places", ErrDegenerateMatrix)
	}

	userIDs := make([]int64, 0, len(cells))
	for uid := range cells {
		userIDs = append(userIDs, uid)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	rows := make([][]float64, len(userIDs))
	for i, uid := range userIDs {
		row := make([]float64, len(placeIDs))
		for col, c := range cells[uid] {
			row[col] = c.sum / float64(c.count)
		}
		rows[i] = row
	}

	return &UserItemMatrix{
		UserIDs:  userIDs,
		PlaceIDs: append([]int64(nil), placeIDs...),
		Rows:     rows,
		colIndex: colIndex,
	}, nil
}

// QueryVector builds a row over the matrix columns from place ratings.
// Places outside the column space are dropped.
func (m *UserItemMatrix) QueryVector(ratings map[int64]float64) []float64 {
	q := make([]float64, len(m.PlaceIDs))
	for id, r := range ratings {
		if col, ok := m.colIndex[id]; ok {
			q[col] = r
		}
	}
	return q
}

// NearestNeighbors returns up to k rows closest to query by cosine distance,
// nearest first. Equal distances keep row order.
func NearestNeighbors(m *UserItemMatrix, query []float64, k int) ([]Neighbor, error) {
	if m == nil || len(m.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrDegenerateMatrix)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrDegenerateMatrix, k)
	}
	if len(query) != len(m.PlaceIDs) {
		return nil, fmt.Errorf("%w: query has %d columns, matrix has %d",
			ErrDegenerateMatrix, len(query), len(m.PlaceIDs))
	}

	neighbors := make([]Neighbor, len(m.Rows))
	for i, row := range m.Rows {
		if len(row) != len(query) {
			return nil, fmt.Errorf("%w: row %d has %d columns", ErrDegenerateMatrix, i, len(row))
		}
		d := cosineDistance(row, query)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: non-finite distance for user %d", ErrDegenerateMatrix, m.UserIDs[i])
		}
		neighbors[i] = Neighbor{UserID: m.UserIDs[i], Distance: d}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// cosineDistance returns 1 - cos(a, b). A zero vector is at distance 1.
func cosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
