package scoringdomain

import (
	"fmt"
	"slices"
)

// TeamScore reduces the scored members of a team to the four team figures.
type TeamScore struct {
	Scored    bool    `json:"scored"`
	LowBall   int     `json:"low_ball,omitempty"`
	Total     int     `json:"total,omitempty"`
	WorstBall int     `json:"worst_ball,omitempty"`
	Average   float64 `json:"average,omitempty"`
}

// CalculateTeamScore reduces member scores for a basis. A team is scored only
// when every member is.
func CalculateTeamScore(scores []HoleScore, basedOn string) TeamScore {
	if len(scores) == 0 {
		return TeamScore{}
	}
	ts := TeamScore{Scored: true}
	for i, s := range scores {
		if !s.Scored {
			return TeamScore{}
		}
		v := s.Value(basedOn)
		if i == 0 {
			ts.LowBall, ts.WorstBall = v, v
		}
		ts.LowBall = min(ts.LowBall, v)
		ts.WorstBall = max(ts.WorstBall, v)
		ts.Total += v
	}
	ts.Average = float64(ts.Total) / float64(len(scores))
	return ts
}

// Value picks the figure a calculation reads. Unknown calculations use the low ball.
func (t TeamScore) Value(calc TeamCalculation) float64 {
	switch calc {
	case CalcSum:
		return float64(t.Total)
	case CalcWorstBall:
		return float64(t.WorstBall)
	case CalcAverage:
		return t.Average
	}
	return float64(t.LowBall)
}

// reducePoints combines member points for team games whose base rule is scored
// per player. For points, best means most.
func reducePoints(points []float64, calc TeamCalculation) float64 {
	if len(points) == 0 {
		return 0
	}
	switch calc {
	case CalcSum:
		total := 0.0
		for _, p := range points {
			total += p
		}
		return total
	case CalcAverage:
		total := 0.0
		for _, p := range points {
			total += p
		}
		return total / float64(len(points))
	case CalcWorstBall:
		return slices.Min(points)
	}
	return slices.Max(points)
}

// teamResolver tracks the latest explicit team assignment while walking holes.
type teamResolver struct {
	spec    GameSpec
	players []string
	known   map[string]bool
	last    []Team
}

func newTeamResolver(spec GameSpec, players []string) *teamResolver {
	known := make(map[string]bool, len(players))
	for _, p := range players {
		known[p] = true
	}
	return &teamResolver{spec: spec, players: players, known: known}
}

// individual makes one team per player, keyed by the player id.
func (r *teamResolver) individual() []Team {
	teams := make([]Team, 0, len(r.players))
	for _, p := range r.players {
		teams = append(teams, Team{ID: p, PlayerIDs: []string{p}})
	}
	return teams
}

// resolve returns the teams for the hole at play index. An explicit list on
// the hole wins, otherwise the nearest earlier explicit list carries forward.
// With team_change_every set, lists only carry within their rotation period.
func (r *teamResolver) resolve(h GameHole, index int) ([]Team, []Warning, error) {
	if !r.spec.Teams.Teams {
		return r.individual(), nil, nil
	}
	if every := r.spec.Teams.TeamChangeEvery; every > 0 && index%every == 0 {
		r.last = nil
	}

	if len(h.Teams) > 0 {
		if err := r.check(h); err != nil {
			return nil, nil, err
		}
		r.last = h.Teams
	}
	if len(r.last) == 0 {
		msg := fmt.Sprintf("no teams assigned by hole %d, scoring players individually", h.Hole)
		if r.spec.Teams.TeamChangeEvery > 0 {
			msg = fmt.Sprintf("teams rotate every %d holes and none were chosen for hole %d, scoring players individually", r.spec.Teams.TeamChangeEvery, h.Hole)
		}
		return r.individual(), []Warning{{
			Hole:    h.Hole,
			Code:    WarnNoTeams,
			Message: msg,
		}}, nil
	}

	teams := make([]Team, len(r.last))
	copy(teams, r.last)

	var warnings []Warning
	placed := make(map[string]bool, len(r.players))
	for _, t := range teams {
		for _, p := range t.PlayerIDs {
			placed[p] = true
		}
	}
	for _, p := range r.players {
		if placed[p] {
			continue
		}
		teams = append(teams, Team{ID: p, PlayerIDs: []string{p}})
		warnings = append(warnings, Warning{
			Hole:     h.Hole,
			PlayerID: p,
			Code:     WarnNoTeams,
			Message:  "player is not on a team, scoring individually",
		})
	}
	return teams, warnings, nil
}

func (r *teamResolver) check(h GameHole) error {
	size := r.spec.Teams.TeamSize
	seen := make(map[string]bool)
	for _, t := range h.Teams {
		if t.ID == "" {
			return &ConfigurationError{Spec: r.spec.Name, Reason: fmt.Sprintf("hole %d has a team without an id", h.Hole)}
		}
		if size > 0 && len(t.PlayerIDs) != size {
			return &ConfigurationError{Spec: r.spec.Name, Reason: fmt.Sprintf("hole %d team %s has %d players, team_size is %d", h.Hole, t.ID, len(t.PlayerIDs), size)}
		}
		for _, p := range t.PlayerIDs {
			if !r.known[p] {
				return &ConfigurationError{Spec: r.spec.Name, Reason: fmt.Sprintf("hole %d team %s references unknown player %s", h.Hole, t.ID, p)}
			}
			if seen[p] {
				return &ConfigurationError{Spec: r.spec.Name, Reason: fmt.Sprintf("hole %d puts player %s on two teams", h.Hole, p)}
			}
			seen[p] = true
		}
	}
	return nil
}
