package scoringcatalog

import (
	"context"
	"testing"
	"testing/fstest"

	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithSeeds(t *testing.T) {
	c, err := NewWithSeeds("")
	require.NoError(t, err)

	specs, err := c.List(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"five_points", "fourball", "match_play", "skins", "stableford"}, names)

	five, err := c.Get(context.Background(), "five_points", 0)
	require.NoError(t, err)
	assert.Equal(t, scoringdomain.SpecTypePoints, five.Type)
	assert.Len(t, five.Junk, 5)
	assert.Len(t, five.Multipliers, 2)
	assert.True(t, five.Multipliers[0].UserActivated())

	stableford, err := c.Get(context.Background(), "stableford", 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stableford.Scoring.ToPar[-2])
}

func TestCatalog_Versions(t *testing.T) {
	fsys := fstest.MapFS{
		"specs/a_v1.yaml": {Data: []byte("name: wolf\nversion: 1\ntype: points\n")},
		"specs/a_v2.yml":  {Data: []byte("name: wolf\nversion: 2\ntype: points\nscoring:\n  points_per_hole: 4\n")},
		"specs/notes.txt": {Data: []byte("ignored")},
	}
	c := New()
	require.NoError(t, c.LoadFS(fsys, "specs"))

	latest, err := c.Get(context.Background(), "wolf", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, 4.0, latest.Scoring.PointsPerHole)

	first, err := c.Get(context.Background(), "wolf", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	_, err = c.Get(context.Background(), "wolf", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_AddRejectsBrokenSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec scoringdomain.GameSpec
	}{
		{"no name", scoringdomain.GameSpec{Type: scoringdomain.SpecTypePoints}},
		{"unknown type", scoringdomain.GameSpec{Name: "x", Type: "bingo"}},
		{"teams without size", scoringdomain.GameSpec{Name: "x", Type: scoringdomain.SpecTypePoints, Teams: scoringdomain.TeamConfig{Teams: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, New().Add(tt.spec))
		})
	}
}

func TestCatalog_GetReturnsCopies(t *testing.T) {
	c, err := NewWithSeeds("")
	require.NoError(t, err)

	spec, err := c.Get(context.Background(), "five_points", 0)
	require.NoError(t, err)
	spec.Junk[0].Value = 99

	again, err := c.Get(context.Background(), "five_points", 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, again.Junk[0].Value)
}
