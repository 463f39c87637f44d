package parsers

import (
	"fmt"
	"strconv"
	"strings"
)

// headerScanDepth is how many leading rows may precede the header.
const headerScanDepth = 5

// maxHoleScore rejects cells that are clearly totals rather than hole scores.
const maxHoleScore = 20

var nameColumns = []string{"playername", "player", "name", "username", "golfer"}

// normalize lowercases a cell and strips spaces, underscores and hyphens.
func normalize(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// holeNumber reads header labels such as "7", "h7", "hole 7" or "Hole_7".
func holeNumber(cell string) (int, bool) {
	s := normalize(cell)
	switch {
	case strings.HasPrefix(s, "hole"):
		s = strings.TrimPrefix(s, "hole")
	case strings.HasPrefix(s, "h"):
		s = strings.TrimPrefix(s, "h")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 36 {
		return 0, false
	}
	return n, true
}

// isParRow reports whether a row label marks the par line.
func isParRow(cell string) bool {
	switch normalize(cell) {
	case "par", "pars", "p":
		return true
	}
	return false
}

type layout struct {
	header  int
	nameCol int
	holes   map[int]int
	order   []int
}

// detectLayout finds the header row and the column of every hole. Header
// hole labels run consecutively, so a row whose numbers skip or repeat is a
// score line. The qualifying row with the most holes wins.
func detectLayout(rows [][]string) (layout, error) {
	best := layout{header: -1}
	for i := 0; i < len(rows) && i < headerScanDepth; i++ {
		l := layout{header: i, nameCol: -1, holes: make(map[int]int)}
		for col, cell := range rows[i] {
			if n, ok := holeNumber(cell); ok {
				if len(l.order) > 0 && n != l.order[len(l.order)-1]+1 {
					l.order = nil
					break
				}
				l.holes[col] = n
				l.order = append(l.order, n)
				continue
			}
			if l.nameCol < 0 {
				for _, name := range nameColumns {
					if normalize(cell) == name {
						l.nameCol = col
						break
					}
				}
			}
		}
		if len(l.order) > len(best.order) {
			best = l
		}
	}
	if best.header < 0 || len(best.order) == 0 {
		return layout{}, ErrNoHoleColumns
	}
	if best.nameCol < 0 {
		best.nameCol = 0
	}
	return best, nil
}

// scoreCell reads one hole cell. Blank and dash cells are unscored.
func scoreCell(cell string) (int, bool, error) {
	v := strings.TrimSpace(cell)
	if v == "" || v == "-" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("non-numeric score value %q", v)
	}
	if n <= 0 {
		return 0, false, nil
	}
	if n >= maxHoleScore {
		return 0, false, fmt.Errorf("score value %d is out of range", n)
	}
	return n, true, nil
}

// parseRows converts a grid of cells into a scorecard.
func parseRows(rows [][]string) (*ParsedScorecard, error) {
	rows = dropEmpty(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("scorecard is empty")
	}
	l, err := detectLayout(rows)
	if err != nil {
		return nil, err
	}

	card := &ParsedScorecard{Holes: l.order}
	for i := l.header + 1; i < len(rows); i++ {
		row := rows[i]
		label := ""
		if l.nameCol < len(row) {
			label = strings.TrimSpace(row[l.nameCol])
		}
		if label == "" {
			continue
		}

		scores := make(map[int]int, len(l.holes))
		total := 0
		for col, hole := range l.holes {
			if col >= len(row) {
				continue
			}
			n, ok, err := scoreCell(row[col])
			if err != nil {
				return nil, fmt.Errorf("row %d, hole %d: %w", i+1, hole, err)
			}
			if ok {
				scores[hole] = n
				total += n
			}
		}

		if isParRow(label) {
			card.Pars = scores
			continue
		}
		card.Players = append(card.Players, PlayerScoreRow{PlayerName: label, Scores: scores, Total: total})
	}

	if len(card.Players) == 0 {
		return nil, ErrNoPlayers
	}
	return card, nil
}

func dropEmpty(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
