package scoringdomain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// StandardSlope is the slope rating of a course of standard difficulty.
const StandardSlope = 113

// ParseHandicapIndex parses an index snapshot. A leading "+" marks a plus
// handicap, which is returned as a negative number.
func ParseHandicapIndex(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty handicap index")
	}
	plus := strings.HasPrefix(s, "+")
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid handicap index %q: %w", s, err)
	}
	if plus {
		return -v, nil
	}
	return v, nil
}

// FormatHandicapIndex renders an index the way golfers write it.
func FormatHandicapIndex(v float64) string {
	if v < 0 {
		return "+" + strconv.FormatFloat(-v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// CourseHandicap converts an index to strokes for a tee's slope.
func CourseHandicap(index float64, slope int) int {
	if slope <= 0 {
		slope = StandardSlope
	}
	return int(math.Round(index * float64(slope) / StandardSlope))
}

// slopeFor picks the rating matching the number of holes played.
func slopeFor(t *Tee) int {
	if t == nil {
		return 0
	}
	if len(t.Holes) == 9 && t.Front.SlopeRating > 0 {
		return t.Front.SlopeRating
	}
	return t.Total.SlopeRating
}

// EffectiveHandicap resolves the strokes a player gets in a game: game handicap
// wins over course handicap, which wins over one derived from the index.
func EffectiveHandicap(rtg RoundToGame) (int, bool) {
	if rtg.GameHandicap != nil {
		return *rtg.GameHandicap, true
	}
	if rtg.CourseHandicap != nil {
		return *rtg.CourseHandicap, true
	}
	idx, err := ParseHandicapIndex(rtg.Round.HandicapIndex)
	if err != nil {
		return 0, false
	}
	return CourseHandicap(idx, slopeFor(rtg.Round.Tee)), true
}

// RelativeToLow rebases handicaps so the lowest player plays off zero.
func RelativeToLow(handicaps map[string]int) map[string]int {
	if len(handicaps) == 0 {
		return handicaps
	}
	low := math.MaxInt
	for _, h := range handicaps {
		low = min(low, h)
	}
	out := make(map[string]int, len(handicaps))
	for id, h := range handicaps {
		out[id] = h - low
	}
	return out
}
