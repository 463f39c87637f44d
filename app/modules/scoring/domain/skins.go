package scoringdomain

// scoreSkins awards the hole to the strictly lowest team score. Ties void the
// skin, or push it to the next hole when carryover is on. A hole that is not
// fully scored stays pending and neither awards nor carries.
func (r *holeRun) scoreSkins() *SkinResult {
	rules := r.run.spec.Scoring
	value := rules.SkinValue
	if value == 0 {
		value = 1
	}

	if !r.h.allScored() {
		r.warn(Warning{Hole: r.h.number, Code: WarnSkinsPending, Message: "skin pending until every player has scored"})
		return &SkinResult{Pending: true, Carried: r.run.carry}
	}

	basedOn := rules.BasedOn
	if basedOn == "" {
		basedOn = BasedOnNet
	}

	var (
		winner *teamState
		best   float64
		tied   bool
	)
	for _, t := range r.h.teams {
		v := t.score(basedOn).Value(rules.TeamScore)
		switch {
		case winner == nil || v < best:
			winner, best, tied = t, v, false
		case v == best:
			tied = true
		}
	}

	pot := value + r.run.carry
	if winner == nil || tied {
		if rules.Carryover || r.run.opts.Bool(OptionCarryover, r.h.number) {
			r.run.carry = pot
			return &SkinResult{Carried: pot}
		}
		r.run.carry = 0
		return &SkinResult{}
	}

	r.run.carry = 0
	winner.base += pot
	for _, m := range winner.members {
		m.skins += pot
		m.base += pot
	}
	return &SkinResult{WinnerID: winner.team.ID, Value: pot}
}
