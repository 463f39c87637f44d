package parsers

import "errors"

var (
	// ErrUnsupportedFile is returned for file types no parser reads.
	ErrUnsupportedFile = errors.New("unsupported scorecard file type")

	// ErrNoHoleColumns is returned when no header row names any holes.
	ErrNoHoleColumns = errors.New("no hole columns found")

	// ErrNoPlayers is returned when a scorecard has no player rows.
	ErrNoPlayers = errors.New("no player score rows found")
)

// ParsedScorecard is the content of an imported scorecard. Pars is empty when
// the card has no par row.
type ParsedScorecard struct {
	Holes   []int            `json:"holes"`
	Pars    map[int]int      `json:"pars,omitempty"`
	Players []PlayerScoreRow `json:"players"`
}

// PlayerScoreRow is one player's line. Holes without a score are absent from
// Scores.
type PlayerScoreRow struct {
	PlayerName string      `json:"player_name"`
	Scores     map[int]int `json:"scores"`
	Total      int         `json:"total"`
}
