package scoringdomain

import (
	"fmt"
	"math"
)

// scoreMatchHole gives the hole to the side with the better team score. A
// halved or incomplete hole gives nobody a point.
func (r *holeRun) scoreMatchHole() error {
	if len(r.h.teams) != 2 {
		return &ConfigurationError{Spec: r.run.spec.Name, Reason: fmt.Sprintf("match play needs exactly two sides, hole %d has %d", r.h.number, len(r.h.teams))}
	}
	a, b := r.h.teams[0], r.h.teams[1]
	if !a.scored() || !b.scored() {
		return nil
	}

	basedOn := r.run.spec.Scoring.BasedOn
	if basedOn == "" {
		basedOn = BasedOnNet
	}
	calc := r.run.spec.Scoring.TeamScore
	va, vb := a.score(basedOn).Value(calc), b.score(basedOn).Value(calc)
	switch {
	case va < vb:
		a.base = 1
	case vb < va:
		b.base = 1
	}
	return nil
}

// FormatMatchStatus renders a match state the way it is called out on the
// course: "All square", "2 up", or "3 & 2" once the match is decided early.
func FormatMatchStatus(up, remaining int, over bool) string {
	switch {
	case up == 0:
		return "All square"
	case over && remaining > 0:
		return fmt.Sprintf("%d & %d", up, remaining)
	}
	return fmt.Sprintf("%d up", up)
}

// matchStatus computes the status after the current hole from the two sides'
// running totals. Once decided the status is frozen.
func (r *holeRun) matchStatus(remaining int) *MatchStatus {
	if r.run.matchOver != nil {
		frozen := *r.run.matchOver
		return &frozen
	}
	if len(r.h.teams) != 2 {
		return nil
	}
	a, b := r.h.teams[0], r.h.teams[1]
	diff := a.running - b.running
	if r.run.opts.BetterPoints() == "lower" {
		diff = -diff
	}
	up := int(math.Round(math.Abs(diff)))

	st := &MatchStatus{Up: up, Remaining: remaining}
	switch {
	case diff > 0:
		st.Leader = a.team.ID
	case diff < 0:
		st.Leader = b.team.ID
	}
	st.Over = up > remaining && r.run.scoredSoFar
	st.Status = FormatMatchStatus(up, remaining, st.Over)
	if st.Over {
		frozen := *st
		r.run.matchOver = &frozen
	}
	return st
}
