package condition

import (
	"cmp"
	"fmt"
	"slices"
)

type accessorFunc func(ctx Context, args []any) (any, error)

type accessorSpec struct {
	min, max int
	fn       accessorFunc
}

var accessors map[string]accessorSpec

func init() {
	accessors = map[string]accessorSpec{
		"team":                       {1, 1, teamRef},
		"countJunk":                  {2, 2, countJunk},
		"rankWithTies":               {2, 2, rankWithTies},
		"team_down_the_most":         {0, 2, teamDownTheMost},
		"team_second_to_last":        {0, 2, teamSecondToLast},
		"other_team_multiplied_with": {1, 3, otherTeamMultipliedWith},
		"getPrevHole":                {0, 0, prevHole},
		"getCurrHole":                {0, 0, currHole},
		"playersOnTeam":              {1, 1, playersOnTeam},
		"isWolfPlayer":               {0, 0, isWolfPlayer},
		"parOrBetter":                {1, 2, parOrBetter},
		"holePar":                    {0, 1, holePar},
		"existingPreMultiplierTotal": {2, 2, existingPreMultiplierTotal},
	}
}

func teamRef(ctx Context, args []any) (any, error) {
	ref, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("team expects 'this' or 'other', got %T", args[0])
	}
	if t, ok := ctx.Team(ref); ok {
		return t, nil
	}
	return nil, nil
}

// asTeam resolves a team argument, which may be a Team or a 'this'/'other' ref.
func asTeam(ctx Context, v any) (Team, bool) {
	switch t := v.(type) {
	case Team:
		return t, t != nil
	case string:
		return ctx.Team(t)
	}
	return nil, false
}

func asHole(v any) (Hole, bool) {
	h, ok := v.(Hole)
	return h, ok && h != nil
}

func countJunk(ctx Context, args []any) (any, error) {
	name, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("countJunk expects a junk name, got %T", args[1])
	}
	t, ok := asTeam(ctx, args[0])
	if !ok {
		return 0.0, nil
	}
	return float64(t.JunkCount(name)), nil
}

func rankWithTies(ctx Context, args []any) (any, error) {
	want, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	wantTies, err := toNumber(args[1])
	if err != nil {
		return nil, err
	}
	rank, ties, ok := ctx.Rank()
	if !ok {
		return false, nil
	}
	return float64(rank) == want && float64(ties) == wantTies, nil
}

// sortedStandings orders teams from furthest behind to furthest ahead.
func sortedStandings(h Hole, better string) []Standing {
	st := slices.Clone(h.Standings())
	slices.SortStableFunc(st, func(a, b Standing) int {
		if better == "lower" {
			return cmp.Compare(b.RunningTotal, a.RunningTotal)
		}
		return cmp.Compare(a.RunningTotal, b.RunningTotal)
	})
	return st
}

func holeAndTeam(ctx Context, args []any) (Hole, bool, Team, bool) {
	var (
		h      Hole
		hasH   bool
		t      Team
		hasT   bool
		teamIn bool
	)
	if len(args) > 0 {
		h, hasH = asHole(args[0])
	}
	if len(args) > 1 && args[1] != nil {
		teamIn = true
		t, hasT = asTeam(ctx, args[1])
	}
	if !teamIn {
		t, hasT = ctx.Team("this")
	}
	return h, hasH, t, hasT
}

// teamDownTheMost is true for the team furthest behind as of the given hole.
// Everyone qualifies before the first hole and when all teams are level.
func teamDownTheMost(ctx Context, args []any) (any, error) {
	h, hasH, t, hasT := holeAndTeam(ctx, args)
	if !hasH || !hasT {
		return true, nil
	}
	st := sortedStandings(h, ctx.BetterPoints())
	if len(st) < 2 {
		return true, nil
	}
	level := true
	for _, s := range st[1:] {
		if s.RunningTotal != st[0].RunningTotal {
			level = false
			break
		}
	}
	if level {
		return true, nil
	}
	return st[0].TeamID == t.ID(), nil
}

func teamSecondToLast(ctx Context, args []any) (any, error) {
	h, hasH, t, hasT := holeAndTeam(ctx, args)
	if !hasH || !hasT {
		return false, nil
	}
	st := sortedStandings(h, ctx.BetterPoints())
	if len(st) < 2 {
		return false, nil
	}
	return st[1].TeamID == t.ID(), nil
}

// otherTeamMultipliedWith accepts (name), (hole, name) or (hole, team, name).
func otherTeamMultipliedWith(ctx Context, args []any) (any, error) {
	name, ok := args[len(args)-1].(string)
	if !ok {
		return nil, fmt.Errorf("other_team_multiplied_with expects a multiplier name, got %T", args[len(args)-1])
	}
	h, hasH, t, hasT := holeAndTeam(ctx, args[:len(args)-1])
	if !hasH {
		h, hasH = ctx.CurrentHole()
	}
	if !hasH || !hasT {
		return false, nil
	}
	for _, other := range h.Teams() {
		if other == nil || other.ID() == t.ID() {
			continue
		}
		if other.HasMultiplier(name) {
			return true, nil
		}
	}
	return false, nil
}

func prevHole(ctx Context, _ []any) (any, error) {
	if h, ok := ctx.PreviousHole(); ok {
		return h, nil
	}
	return nil, nil
}

func currHole(ctx Context, _ []any) (any, error) {
	if h, ok := ctx.CurrentHole(); ok {
		return h, nil
	}
	return nil, nil
}

func playersOnTeam(ctx Context, args []any) (any, error) {
	t, ok := asTeam(ctx, args[0])
	if !ok {
		return 0.0, nil
	}
	return float64(t.PlayerCount()), nil
}

func isWolfPlayer(ctx Context, _ []any) (any, error) {
	return ctx.WolfPlayer(), nil
}

func parOrBetter(ctx Context, args []any) (any, error) {
	scoreType, ok := args[len(args)-1].(string)
	if !ok {
		return nil, fmt.Errorf("parOrBetter expects 'gross' or 'net', got %T", args[len(args)-1])
	}
	return ctx.ParOrBetter(scoreType), nil
}

func holePar(ctx Context, args []any) (any, error) {
	if len(args) == 1 {
		if h, ok := asHole(args[0]); ok {
			return float64(h.Par()), nil
		}
	}
	if h, ok := ctx.CurrentHole(); ok {
		return float64(h.Par()), nil
	}
	return 0.0, nil
}

func existingPreMultiplierTotal(_ Context, args []any) (any, error) {
	threshold, err := toNumber(args[1])
	if err != nil {
		return nil, err
	}
	h, ok := asHole(args[0])
	if !ok {
		return false, nil
	}
	return h.PreMultiplierTotal() >= threshold, nil
}
