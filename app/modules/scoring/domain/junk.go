package scoringdomain

import (
	"strconv"
	"strings"
)

// scoreToPar is a parsed "exactly -1" / "at_most -2" / "at_least 1" condition.
type scoreToPar struct {
	op    string
	value int
}

func parseScoreToPar(s string) (scoreToPar, bool) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return scoreToPar{}, false
	}
	v, err := strconv.Atoi(parts[1])
	if err != nil {
		return scoreToPar{}, false
	}
	switch parts[0] {
	case "exactly", "at_most", "at_least":
		return scoreToPar{op: parts[0], value: v}, true
	}
	return scoreToPar{}, false
}

func (c scoreToPar) matches(toPar int) bool {
	switch c.op {
	case "exactly":
		return toPar == c.value
	case "at_most":
		return toPar <= c.value
	case "at_least":
		return toPar >= c.value
	}
	return false
}

func junkScope(j Junk) string {
	if j.Scope == "" {
		return ScopePlayer
	}
	return j.Scope
}

// possiblePoints is what a team could earn on a hole before bonus junk.
func possiblePoints(spec GameSpec, junk []Junk) float64 {
	if spec.Scoring.PointsPerHole > 0 {
		return spec.Scoring.PointsPerHole
	}
	total := 0.0
	for _, j := range junk {
		if !j.Bonus() {
			total += j.Value
		}
	}
	return total
}

func (r *holeRun) evaluateJunk(junk []Junk) {
	for _, j := range junk {
		if junkScope(j) == ScopeTeam {
			r.teamJunk(j)
			continue
		}
		for _, p := range r.h.players {
			if r.playerEarns(j, p) {
				award := JunkAward{Name: j.Name, Disp: j.Disp, PlayerID: p.id, TeamID: p.teamID, Value: j.Value, Bonus: j.Bonus()}
				p.junk = append(p.junk, award)
				r.result.Junk = append(r.result.Junk, award)
			}
		}
	}
}

// playerEarns decides a player-scoped junk. A manual flag on the score wins
// over anything derived, and is honored even when no gross was entered.
func (r *holeRun) playerEarns(j Junk, p *playerState) bool {
	if p.raw != nil {
		if set, ok := p.raw.Flag(j.Name); ok {
			return set
		}
	}
	if j.BasedOn == BasedOnUser || !p.score.Scored {
		return false
	}

	ctx := r.playerContext(p)
	if j.Availability != "" && !r.check(j.Name, j.Availability, ctx) {
		return false
	}
	switch {
	case j.ScoreToPar != "":
		cond, ok := parseScoreToPar(j.ScoreToPar)
		if !ok {
			r.warn(Warning{Hole: r.h.number, Option: j.Name, Code: WarnInvalidExpression, Message: "unreadable score_to_par " + strconv.Quote(j.ScoreToPar)})
			return false
		}
		basedOn := j.BasedOn
		if basedOn == "" {
			basedOn = BasedOnGross
		}
		return cond.matches(p.score.ValueToPar(basedOn))
	case j.Logic != "":
		return r.check(j.Name, j.Logic, ctx)
	}
	return false
}

// teamJunk awards team-scoped junk. It waits until every player has scored the
// hole so a partially entered hole never hands out a low ball.
func (r *holeRun) teamJunk(j Junk) {
	if !r.h.allScored() {
		return
	}

	if j.Calculation == CalcLogic || (j.Calculation == "" && j.Logic != "") {
		for _, t := range r.h.teams {
			ctx := r.teamContext(t)
			if j.Availability != "" && !r.check(j.Name, j.Availability, ctx) {
				continue
			}
			if r.check(j.Name, j.Logic, ctx) {
				r.awardTeam(j, t)
			}
		}
		return
	}

	basedOn := j.BasedOn
	if basedOn == "" {
		basedOn = BasedOnNet
	}
	better := j.Better
	if better == "" {
		better = "lower"
	}

	var (
		winners []*teamState
		best    float64
	)
	for _, t := range r.h.teams {
		ts := t.score(basedOn)
		if !ts.Scored {
			continue
		}
		v := ts.Value(j.Calculation)
		switch {
		case len(winners) == 0, (better == "lower" && v < best) || (better == "higher" && v > best):
			winners, best = []*teamState{t}, v
		case v == best:
			winners = append(winners, t)
		}
	}
	if len(winners) == 0 || (j.Limit == LimitOneTeamPerGroup && len(winners) > 1) {
		return
	}
	for _, t := range winners {
		if j.Availability != "" && !r.check(j.Name, j.Availability, r.teamContext(t)) {
			continue
		}
		r.awardTeam(j, t)
	}
}

func (r *holeRun) awardTeam(j Junk, t *teamState) {
	award := JunkAward{Name: j.Name, Disp: j.Disp, TeamID: t.team.ID, Value: j.Value, Bonus: j.Bonus()}
	t.junk = append(t.junk, award)
	r.result.Junk = append(r.result.Junk, award)
}
