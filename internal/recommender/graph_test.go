package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/travelrec/pkg/types"
)

func TestTargetCategory(t *testing.T) {
	tests := []struct {
		name  string
		prefs []string
		want  string
		ok    bool
	}{
		{"full category of first match", []string{"taman"}, "Taman Kota", true},
		{"candidate order wins over preference order", []string{"budaya", "bahari"}, "Bahari", true},
		{"first preference when nothing matches", []string{"Kebun Binatang", "Mall"}, "Kebun Binatang", true},
		{"no preferences", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TargetCategory(bandung(), tt.prefs)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendGraph(t *testing.T) {
	got := RecommendGraph(bandung(), []string{"taman"}, nil, 1)
	require.Len(t, got, 1)

	item := got[0]
	assert.Equal(t, int64(4), item.ID)
	assert.Equal(t, types.SourceGraph, item.Source)
	assert.Equal(t, 88, item.MatchPercent)
	assert.InDelta(t, 0.88, item.FinalScore, 1e-9)
	assert.Equal(t, "Taman Hutan", item.AnchorName)
	assert.Equal(t, "Taman Kota", item.AnchorCategory)
	assert.Equal(t, "Rekomendasi berbasis Graf: Terhubung kuat dengan Taman Hutan", item.CollabInfo)
}

func TestRecommendGraph_RatingOrderAndThreshold(t *testing.T) {
	// Place 5 is rated 3.9 and never qualifies
	got := RecommendGraph(bandung(), []string{"taman"}, nil, 5)
	assert.Equal(t, []int64{4, 7}, ids(got))
}

func TestRecommendGraph_Seen(t *testing.T) {
	got := RecommendGraph(bandung(), []string{"taman"}, map[int64]struct{}{4: {}}, 1)
	assert.Equal(t, []int64{7}, ids(got))

	got = RecommendGraph(bandung(), []string{"taman"}, map[int64]struct{}{4: {}, 7: {}}, 1)
	assert.Empty(t, got)
}

func TestRecommendGraph_AnchorNeverIncluded(t *testing.T) {
	for _, prefs := range [][]string{{"taman"}, {"bahari"}, {"budaya"}, {"a"}, {"kota"}} {
		target, ok := TargetCategory(bandung(), prefs)
		require.True(t, ok)

		var anchor *types.Place
		for _, p := range bandung() {
			if !containsFold(p.Category, target) {
				continue
			}
			if anchor == nil || p.Rating > anchor.Rating {
				anchor = p
			}
		}

		for _, item := range RecommendGraph(bandung(), prefs, nil, 10) {
			assert.NotEqual(t, anchor.ID, item.ID, "prefs %v", prefs)
		}
	}
}

func TestRecommendGraph_Empty(t *testing.T) {
	assert.Empty(t, RecommendGraph(bandung(), nil, nil, 1))
	assert.Empty(t, RecommendGraph(bandung(), []string{"kebun binatang"}, nil, 1))
	assert.Empty(t, RecommendGraph(nil, []string{"taman"}, nil, 1))
	assert.Empty(t, RecommendGraph(bandung(), []string{"taman"}, nil, 0))
}

func containsFold(s, substr string) bool {
	p := types.Place{Category: s}
	_, ok := p.MatchesAny([]string{substr})
	return ok
}
