package scoringdomain

import (
	"strconv"
	"strings"
)

// activation is a user multiplier switched on by a team at some hole.
type activation struct {
	name     string
	teamID   string
	playerID string
	first    int
	last     int
	value    string
}

func (a activation) covers(hole int) bool {
	return hole >= a.first && hole <= a.last
}

// span returns the last hole a user multiplier activated on first stays active.
func span(scope string, first, lastHole int) int {
	switch scope {
	case ScopeRestOfNine:
		end := ((first-1)/9 + 1) * 9
		return min(end, max(lastHole, first))
	case ScopeGame:
		return max(lastHole, first)
	}
	return first
}

// collectActivations reads team option activations off every hole that lists
// teams. An activation without FirstHole starts on the hole it is listed on.
func collectActivations(holes []GameHole) map[int][]activation {
	out := make(map[int][]activation)
	seen := make(map[string]bool)
	for _, h := range holes {
		for _, t := range h.Teams {
			for _, o := range t.Options {
				first := o.FirstHole
				if first == 0 {
					first = h.Hole
				}
				key := t.ID + "|" + o.OptionName + "|" + strconv.Itoa(first)
				if seen[key] {
					continue
				}
				seen[key] = true
				out[first] = append(out[first], activation{
					name:     o.OptionName,
					teamID:   t.ID,
					playerID: o.PlayerID,
					first:    first,
					value:    o.Value,
				})
			}
		}
	}
	return out
}

func truthyOption(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}

func (r *holeRun) evaluateMultipliers(mults []Multiplier) {
	for _, m := range mults {
		if m.UserActivated() {
			r.userMultiplier(m)
		} else {
			r.automaticMultiplier(m)
		}
	}
}

func hasJunk(awards []JunkAward, name string) bool {
	for _, j := range awards {
		if j.Name == name {
			return true
		}
	}
	return false
}

// automaticMultiplier fires when its trigger junk was awarded, or when only an
// availability is given and it holds. Unscored players and teams are skipped.
func (r *holeRun) automaticMultiplier(m Multiplier) {
	if m.BasedOn == "" && m.Availability == "" {
		return
	}

	if m.Scope == ScopePlayer {
		for _, p := range r.h.players {
			if !p.score.Scored {
				continue
			}
			if m.BasedOn != "" && !hasJunk(p.junk, m.BasedOn) {
				continue
			}
			if m.Availability != "" && !r.check(m.Name, m.Availability, r.playerContext(p)) {
				continue
			}
			p.mults = append(p.mults, MultiplierApplication{Name: m.Name, Disp: m.Disp, TeamID: p.teamID, PlayerID: p.id, Factor: m.Factor()})
		}
		return
	}

	for _, t := range r.h.teams {
		if !t.scored() {
			continue
		}
		if m.BasedOn != "" && !(teamView{t}).hasAnyJunk(m.BasedOn) {
			continue
		}
		if m.Availability != "" && !r.check(m.Name, m.Availability, r.teamContext(t)) {
			continue
		}
		t.mults = append(t.mults, MultiplierApplication{Name: m.Name, Disp: m.Disp, TeamID: t.team.ID, Factor: m.Factor()})
	}
}

func (v teamView) hasAnyJunk(name string) bool {
	return v.JunkCount(name) > 0
}

// userMultiplier validates activations that start on this hole, then applies
// every activation whose span covers it. A truthy hole option activates the
// multiplier for every team on that hole only.
func (r *holeRun) userMultiplier(m Multiplier) {
	hole := r.h.number
	for _, a := range r.run.pending[hole] {
		if a.name != m.Name {
			continue
		}
		t, ok := r.h.byTeam[a.teamID]
		if !ok {
			r.reject(m, a.teamID, "team is not playing this hole")
			continue
		}
		if m.Availability != "" && !r.check(m.Name, m.Availability, r.teamContext(t)) {
			r.reject(m, a.teamID, "")
			continue
		}
		a.last = span(m.Scope, a.first, r.run.lastHole)
		r.run.active = append(r.run.active, a)
	}

	for _, a := range r.run.active {
		if a.name != m.Name || !a.covers(hole) {
			continue
		}
		t, ok := r.h.byTeam[a.teamID]
		if !ok {
			continue
		}
		r.applyUser(m, t, a.value, a.first)
	}

	if v, ok := r.gameHole.Options[m.Name]; ok && truthyOption(v) {
		for _, t := range r.h.teams {
			if (teamView{t}).HasMultiplier(m.Name) {
				continue
			}
			if m.Availability != "" && !r.check(m.Name, m.Availability, r.teamContext(t)) {
				r.reject(m, t.team.ID, "")
				continue
			}
			r.applyUser(m, t, v, hole)
		}
	}
}

func (r *holeRun) applyUser(m Multiplier, t *teamState, value string, first int) {
	factor := m.Factor()
	if m.InputValue {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil && f > 0 {
			factor = f
		}
	}
	t.mults = append(t.mults, MultiplierApplication{
		Name:      m.Name,
		Disp:      m.Disp,
		TeamID:    t.team.ID,
		Factor:    factor,
		Activated: true,
		FirstHole: first,
	})
}

func (r *holeRun) reject(m Multiplier, teamID, reason string) {
	if reason == "" {
		reason = m.InvalidationReason
	}
	if reason == "" {
		reason = "not available on this hole"
	}
	r.result.Rejected = append(r.result.Rejected, RejectedActivation{Name: m.Name, TeamID: teamID, Hole: r.h.number, Reason: reason})
}
