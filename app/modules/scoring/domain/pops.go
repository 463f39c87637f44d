package scoringdomain

import (
	"cmp"
	"slices"
)

// AllocatePops spreads a course handicap over holes by stroke index. Positive
// handicaps start at stroke index 1 and wrap around once every hole has a pop;
// plus handicaps take strokes away starting at the highest stroke index.
func AllocatePops(courseHandicap int, holes []HoleRating) map[int]int {
	pops := make(map[int]int, len(holes))
	for _, h := range holes {
		pops[h.Number] = 0
	}
	n := len(holes)
	if n == 0 || courseHandicap == 0 {
		return pops
	}

	ordered := slices.Clone(holes)
	slices.SortFunc(ordered, func(a, b HoleRating) int {
		return cmp.Compare(a.StrokeIndex, b.StrokeIndex)
	})

	strokes, step := courseHandicap, 1
	if courseHandicap < 0 {
		slices.Reverse(ordered)
		strokes, step = -courseHandicap, -1
	}

	for i, h := range ordered {
		count := strokes / n
		if i < strokes%n {
			count++
		}
		pops[h.Number] = count * step
	}
	return pops
}

// TotalPops sums an allocation.
func TotalPops(pops map[int]int) int {
	total := 0
	for _, p := range pops {
		total += p
	}
	return total
}
