package scoringdomain

import (
	"strconv"
	"strings"
	"time"
)

// Gender of a tee or golfer as the handicap authority records it.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderMixed  Gender = "Mixed"
)

// HoleRating is the course authority's data for one hole of a tee.
type HoleRating struct {
	Number      int `json:"number" yaml:"number"`
	Par         int `json:"par" yaml:"par"`
	Yards       int `json:"yards,omitempty" yaml:"yards,omitempty"`
	Meters      int `json:"meters,omitempty" yaml:"meters,omitempty"`
	StrokeIndex int `json:"stroke_index" yaml:"stroke_index"`
}

// Rating is a course/slope/bogey rating triple.
type Rating struct {
	CourseRating float64 `json:"course_rating" yaml:"course_rating"`
	SlopeRating  int     `json:"slope_rating" yaml:"slope_rating"`
	BogeyRating  float64 `json:"bogey_rating,omitempty" yaml:"bogey_rating,omitempty"`
}

// Tee holds the ratings a round is played against. It is read-only to the engine.
type Tee struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Gender Gender       `json:"gender,omitempty" yaml:"gender,omitempty"`
	Holes  []HoleRating `json:"holes" yaml:"holes"`
	Total  Rating       `json:"total" yaml:"total"`
	Front  Rating       `json:"front" yaml:"front"`
	Back   Rating       `json:"back" yaml:"back"`
}

// Hole returns the rating for hole number n.
func (t Tee) Hole(n int) (HoleRating, bool) {
	for _, h := range t.Holes {
		if h.Number == n {
			return h, true
		}
	}
	return HoleRating{}, false
}

// Par returns the summed par of the tee.
func (t Tee) Par() int {
	total := 0
	for _, h := range t.Holes {
		total += h.Par
	}
	return total
}

// Validate checks that stroke indices form a permutation of 1..len(holes).
func (t Tee) Validate() error {
	if len(t.Holes) == 0 {
		return &ConfigurationError{Reason: "tee " + t.ID + " has no holes"}
	}
	seen := make(map[int]bool, len(t.Holes))
	for _, h := range t.Holes {
		if h.StrokeIndex < 1 || h.StrokeIndex > len(t.Holes) {
			return &ConfigurationError{Reason: "tee " + t.ID + ": stroke index " + strconv.Itoa(h.StrokeIndex) + " out of range on hole " + strconv.Itoa(h.Number)}
		}
		if seen[h.StrokeIndex] {
			return &ConfigurationError{Reason: "tee " + t.ID + ": duplicate stroke index " + strconv.Itoa(h.StrokeIndex)}
		}
		seen[h.StrokeIndex] = true
	}
	return nil
}

// Value is one timestamped entry in a hole's value set.
type Value struct {
	Key        string    `json:"key" yaml:"key"`
	Value      string    `json:"value" yaml:"value"`
	RecordedAt time.Time `json:"recorded_at" yaml:"recorded_at"`
}

// Score is the value history a player recorded for one hole.
type Score struct {
	Hole   int     `json:"hole" yaml:"hole"`
	Values []Value `json:"values" yaml:"values"`
}

// ValueKeyGross is the value key holding the stroke count.
const ValueKeyGross = "gross"

// Get returns the latest value recorded for key. Later entries win timestamp ties.
func (s Score) Get(key string) (string, bool) {
	var (
		latest Value
		found  bool
	)
	for _, v := range s.Values {
		if v.Key != key {
			continue
		}
		if !found || !v.RecordedAt.Before(latest.RecordedAt) {
			latest = v
			found = true
		}
	}
	return latest.Value, found
}

// Flag reads a manual boolean override. ok is false when the key was never set
// or holds something other than a boolean.
func (s Score) Flag(key string) (set bool, ok bool) {
	v, found := s.Get(key)
	if !found {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no", "":
		return false, true
	}
	return false, false
}

// Round is one player's round of golf.
type Round struct {
	ID            string    `json:"id" yaml:"id"`
	PlayerID      string    `json:"player_id" yaml:"player_id"`
	PlayerName    string    `json:"player_name" yaml:"player_name"`
	GolferID      string    `json:"golfer_id,omitempty" yaml:"golfer_id,omitempty"`
	Gender        Gender    `json:"gender,omitempty" yaml:"gender,omitempty"`
	CourseID      string    `json:"course_id,omitempty" yaml:"course_id,omitempty"`
	Tee           *Tee      `json:"tee,omitempty" yaml:"tee,omitempty"`
	PlayedAt      time.Time `json:"played_at" yaml:"played_at"`
	HandicapIndex string    `json:"handicap_index,omitempty" yaml:"handicap_index,omitempty"`
	Scores        []Score   `json:"scores" yaml:"scores"`
}

// Score returns the score record for a hole.
func (r Round) Score(hole int) (*Score, bool) {
	for i := range r.Scores {
		if r.Scores[i].Hole == hole {
			return &r.Scores[i], true
		}
	}
	return nil, false
}

// RoundToGame links a round to a game with its handicap overrides.
type RoundToGame struct {
	Round          Round `json:"round" yaml:"round"`
	CourseHandicap *int  `json:"course_handicap,omitempty" yaml:"course_handicap,omitempty"`
	GameHandicap   *int  `json:"game_handicap,omitempty" yaml:"game_handicap,omitempty"`
}

// TeamOption is a per-team option activation, typically a user multiplier.
type TeamOption struct {
	OptionName string `json:"option_name" yaml:"option_name"`
	Value      string `json:"value,omitempty" yaml:"value,omitempty"`
	PlayerID   string `json:"player_id,omitempty" yaml:"player_id,omitempty"`
	FirstHole  int    `json:"first_hole,omitempty" yaml:"first_hole,omitempty"`
}

// Team groups players on a hole.
type Team struct {
	ID        string       `json:"id" yaml:"id"`
	PlayerIDs []string     `json:"player_ids" yaml:"player_ids"`
	Options   []TeamOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// GameHole is one hole of a game in play order.
type GameHole struct {
	Hole    int               `json:"hole" yaml:"hole"`
	Seq     int               `json:"seq" yaml:"seq"`
	Teams   []Team            `json:"teams,omitempty" yaml:"teams,omitempty"`
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// OptionOverride patches a spec option for holes at or after FromHole.
type OptionOverride struct {
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	FromHole int    `json:"from_hole,omitempty" yaml:"from_hole,omitempty"`
}

// Game is one scoring event.
type Game struct {
	ID        string           `json:"id" yaml:"id"`
	Name      string           `json:"name" yaml:"name"`
	Spec      GameSpec         `json:"spec" yaml:"spec"`
	Holes     []GameHole       `json:"holes" yaml:"holes"`
	Rounds    []RoundToGame    `json:"rounds" yaml:"rounds"`
	Overrides []OptionOverride `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Clone returns a deep copy so callers can keep mutating their own game.
func (g Game) Clone() Game {
	out := g
	out.Spec = g.Spec.Clone()
	out.Holes = make([]GameHole, len(g.Holes))
	for i, h := range g.Holes {
		nh := h
		nh.Teams = make([]Team, len(h.Teams))
		for j, t := range h.Teams {
			nt := t
			nt.PlayerIDs = append([]string(nil), t.PlayerIDs...)
			nt.Options = append([]TeamOption(nil), t.Options...)
			nh.Teams[j] = nt
		}
		if h.Options != nil {
			nh.Options = make(map[string]string, len(h.Options))
			for k, v := range h.Options {
				nh.Options[k] = v
			}
		}
		out.Holes[i] = nh
	}
	out.Rounds = make([]RoundToGame, len(g.Rounds))
	for i, rtg := range g.Rounds {
		n := rtg
		n.Round.Scores = make([]Score, len(rtg.Round.Scores))
		for j, s := range rtg.Round.Scores {
			ns := s
			ns.Values = append([]Value(nil), s.Values...)
			n.Round.Scores[j] = ns
		}
		if rtg.Round.Tee != nil {
			tee := *rtg.Round.Tee
			tee.Holes = append([]HoleRating(nil), rtg.Round.Tee.Holes...)
			n.Round.Tee = &tee
		}
		if rtg.CourseHandicap != nil {
			v := *rtg.CourseHandicap
			n.CourseHandicap = &v
		}
		if rtg.GameHandicap != nil {
			v := *rtg.GameHandicap
			n.GameHandicap = &v
		}
		out.Rounds[i] = n
	}
	out.Overrides = append([]OptionOverride(nil), g.Overrides...)
	return out
}

// Players returns player ids in round order.
func (g Game) Players() []string {
	ids := make([]string, 0, len(g.Rounds))
	for _, r := range g.Rounds {
		ids = append(ids, r.Round.PlayerID)
	}
	return ids
}

// Round returns the round for a player.
func (g Game) Round(playerID string) (*RoundToGame, bool) {
	for i := range g.Rounds {
		if g.Rounds[i].Round.PlayerID == playerID {
			return &g.Rounds[i], true
		}
	}
	return nil, false
}
