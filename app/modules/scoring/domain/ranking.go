package scoringdomain

import (
	"cmp"
	"slices"
)

// Ranked pairs an item with its position. Tied items share a rank and the next
// rank skips, so three players with one tie for first rank 1, 1, 3.
type Ranked[T any] struct {
	Item     T
	Rank     int
	TieCount int
}

// RankWithTies orders items by score. better is "lower" or "higher".
// Items with equal scores keep their input order.
func RankWithTies[T any](items []T, score func(T) float64, better string) []Ranked[T] {
	out := make([]Ranked[T], len(items))
	for i, it := range items {
		out[i] = Ranked[T]{Item: it}
	}
	slices.SortStableFunc(out, func(a, b Ranked[T]) int {
		if better == "higher" {
			return cmp.Compare(score(b.Item), score(a.Item))
		}
		return cmp.Compare(score(a.Item), score(b.Item))
	})

	for i := 0; i < len(out); {
		j := i
		for j < len(out) && score(out[j].Item) == score(out[i].Item) {
			j++
		}
		for k := i; k < j; k++ {
			out[k].Rank = i + 1
			out[k].TieCount = j - i
		}
		i = j
	}
	return out
}

// PointsFromTable looks up the points for a rank and tie count.
func PointsFromTable(rank, tieCount int, table []PointsEntry) float64 {
	for _, e := range table {
		if e.Rank == rank && e.TieCount == tieCount {
			return e.Points
		}
	}
	return 0
}

// SplitPoints shares the points of tied positions evenly.
func SplitPoints(points []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range points {
		total += p
	}
	return total / float64(len(points))
}

// PositionPoints returns the points for a rank, splitting across ties.
func PositionPoints(rank, tieCount int, perRank func(int) float64) float64 {
	if tieCount <= 1 {
		return perRank(rank)
	}
	split := make([]float64, tieCount)
	for i := range split {
		split[i] = perRank(rank + i)
	}
	return SplitPoints(split)
}
