package scoringdomain

import (
	"strconv"
	"time"
)

var recordedAt = time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)

// testTee is an 18-hole par-72 tee whose stroke index equals the hole number.
func testTee() *Tee {
	pars := []int{4, 4, 3, 5, 4, 4, 3, 4, 5, 4, 4, 3, 5, 4, 4, 3, 4, 5}
	t := &Tee{
		ID:     "tee-blue",
		Name:   "Blue",
		Gender: GenderMale,
		Total:  Rating{CourseRating: 71.2, SlopeRating: 113},
		Front:  Rating{CourseRating: 35.6, SlopeRating: 113},
		Back:   Rating{CourseRating: 35.6, SlopeRating: 113},
	}
	for i, p := range pars {
		t.Holes = append(t.Holes, HoleRating{Number: i + 1, Par: p, Yards: 380, StrokeIndex: i + 1})
	}
	return t
}

func grossScore(hole, strokes int) Score {
	return Score{Hole: hole, Values: []Value{{Key: ValueKeyGross, Value: strconv.Itoa(strokes), RecordedAt: recordedAt}}}
}

func flagScore(s Score, key, value string) Score {
	s.Values = append(s.Values, Value{Key: key, Value: value, RecordedAt: recordedAt})
	return s
}

func intPtr(v int) *int { return &v }

// player builds a round with a fixed course handicap and the given gross
// scores keyed by hole.
func player(id string, handicap int, gross map[int]int) RoundToGame {
	r := Round{
		ID:         "round-" + id,
		PlayerID:   id,
		PlayerName: "Player " + id,
		GolferID:   "ghin-" + id,
		Gender:     GenderMale,
		CourseID:   "course-1",
		Tee:        testTee(),
		PlayedAt:   recordedAt,
	}
	for h := 1; h <= 18; h++ {
		if g, ok := gross[h]; ok {
			r.Scores = append(r.Scores, grossScore(h, g))
		}
	}
	return RoundToGame{Round: r, CourseHandicap: intPtr(handicap)}
}

// allHoles gives every hole the same gross score.
func allHoles(strokes int) map[int]int {
	m := make(map[int]int, 18)
	for h := 1; h <= 18; h++ {
		m[h] = strokes
	}
	return m
}

func gameHoles(n int) []GameHole {
	holes := make([]GameHole, 0, n)
	for i := 1; i <= n; i++ {
		holes = append(holes, GameHole{Hole: i, Seq: i})
	}
	return holes
}

func strokePlaySpec() GameSpec {
	return GameSpec{
		Name:    "stableford",
		Version: 1,
		Type:    SpecTypePoints,
		Scoring: ScoringRules{
			BasedOn: BasedOnNet,
			ToPar:   map[int]float64{-2: 4, -1: 3, 0: 2, 1: 1, 2: 0},
		},
	}
}

func skinsSpec() GameSpec {
	return GameSpec{
		Name:    "skins",
		Version: 1,
		Type:    SpecTypeSkins,
		Scoring: ScoringRules{BasedOn: BasedOnNet},
	}
}

func fivePointsSpec() GameSpec {
	return GameSpec{
		Name:       "five_points",
		Version:    1,
		Type:       SpecTypePoints,
		MinPlayers: 4,
		MaxPlayers: 4,
		Teams:      TeamConfig{Teams: true, TeamSize: 2},
		Scoring:    ScoringRules{BasedOn: BasedOnNet, TeamScore: CalcBestBall},
		Junk: []Junk{
			{Name: "low_ball", Disp: "Low Ball", Seq: 1, Scope: ScopeTeam, Calculation: CalcBestBall, Better: "lower", Limit: LimitOneTeamPerGroup, BasedOn: BasedOnNet, Value: 2},
			{Name: "low_total", Disp: "Low Total", Seq: 2, Scope: ScopeTeam, Calculation: CalcSum, Better: "lower", Limit: LimitOneTeamPerGroup, BasedOn: BasedOnNet, Value: 2},
			{Name: "prox", Disp: "Prox", Seq: 3, Scope: ScopePlayer, BasedOn: BasedOnUser, Value: 1},
			{Name: "birdie", Disp: "Birdie", Seq: 4, Scope: ScopePlayer, BasedOn: BasedOnNet, ScoreToPar: "exactly -1", Value: 1},
		},
		Multipliers: []Multiplier{
			{Name: "double", Disp: "2x", Seq: 1, SubType: MultiplierPress, BasedOn: BasedOnUser, Scope: ScopeRestOfNine, Value: 2,
				Availability: "{'team_down_the_most': [{'getPrevHole': []}, {'team': ['this']}]}"},
			{Name: "birdie_bbq", Disp: "BBQ", Seq: 2, SubType: MultiplierBBQ, BasedOn: "birdie", Scope: ScopeTeam, Value: 2,
				Availability: "{'===': [{'var': 'team.points'}, {'var': 'possiblePoints'}]}"},
		},
	}
}

func fivePointsGame(rounds ...RoundToGame) Game {
	holes := gameHoles(18)
	holes[0].Teams = []Team{
		{ID: "1", PlayerIDs: []string{rounds[0].Round.PlayerID, rounds[1].Round.PlayerID}},
		{ID: "2", PlayerIDs: []string{rounds[2].Round.PlayerID, rounds[3].Round.PlayerID}},
	}
	return Game{ID: "game-5pts", Name: "Saturday", Spec: fivePointsSpec(), Holes: holes, Rounds: rounds}
}
