package scoringdomain

import (
	"strings"

	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain/condition"
)

type playerState struct {
	id     string
	name   string
	teamID string
	score  HoleScore
	raw    *Score
	rank   int
	ties   int
	base   float64
	junk   []JunkAward
	mults  []MultiplierApplication
	points float64
	skins  float64
	wolf   bool
}

func (p *playerState) junkPoints(bonus bool) float64 {
	total := 0.0
	for _, j := range p.junk {
		if bonus || !j.Bonus {
			total += j.Value
		}
	}
	return total
}

type teamState struct {
	team    Team
	members []*playerState
	gross   TeamScore
	net     TeamScore
	rank    int
	ties    int
	base    float64
	junk    []JunkAward
	mults   []MultiplierApplication
	points  float64
	running float64
	diff    float64
	holeNet float64
}

func (t *teamState) scored() bool {
	return t.net.Scored
}

// prePoints is the team's base plus junk. Bonus junk is left out unless asked.
func (t *teamState) prePoints(bonus bool) float64 {
	total := t.base
	for _, j := range t.junk {
		if bonus || !j.Bonus {
			total += j.Value
		}
	}
	for _, m := range t.members {
		total += m.junkPoints(bonus)
	}
	return total
}

func (t *teamState) score(basedOn string) TeamScore {
	if basedOn == BasedOnGross {
		return t.gross
	}
	return t.net
}

type holeState struct {
	number    int
	seq       int
	par       int
	players   []*playerState
	byPlayer  map[string]*playerState
	teams     []*teamState
	byTeam    map[string]*teamState
	possible  float64
	preTotal  float64
	standings []condition.Standing
}

func (h *holeState) allScored() bool {
	for _, p := range h.players {
		if !p.score.Scored {
			return false
		}
	}
	return len(h.players) > 0
}

// The adapters below expose hole state to availability expressions.

type teamView struct{ t *teamState }

func (v teamView) ID() string       { return v.t.team.ID }
func (v teamView) PlayerCount() int { return len(v.t.members) }

func (v teamView) JunkCount(name string) int {
	n := 0
	for _, j := range v.t.junk {
		if j.Name == name {
			n++
		}
	}
	for _, m := range v.t.members {
		for _, j := range m.junk {
			if j.Name == name {
				n++
			}
		}
	}
	return n
}

func (v teamView) HasMultiplier(name string) bool {
	for _, m := range v.t.mults {
		if m.Name == name {
			return true
		}
	}
	return false
}

type holeView struct{ h *holeState }

func (v holeView) Number() int { return v.h.number }
func (v holeView) Par() int    { return v.h.par }

func (v holeView) Teams() []condition.Team {
	out := make([]condition.Team, 0, len(v.h.teams))
	for _, t := range v.h.teams {
		out = append(out, teamView{t})
	}
	return out
}

func (v holeView) Standings() []condition.Standing { return v.h.standings }

func (v holeView) PreMultiplierTotal() float64 { return v.h.preTotal }

// evalContext is the condition.Context for one player or team on one hole.
type evalContext struct {
	hole   *holeState
	prev   *holeState
	team   *teamState
	player *playerState
	opts   *options
}

func (c *evalContext) Var(path string) (any, bool) {
	switch path {
	case "possiblePoints":
		return c.hole.possible, true
	case "hole.number", "hole":
		return float64(c.hole.number), true
	case "hole.par":
		return float64(c.hole.par), true
	case "hole.seq":
		return float64(c.hole.seq), true
	}

	if name, ok := strings.CutPrefix(path, "options."); ok {
		v, found := c.opts.Value(name, c.hole.number)
		return v, found
	}

	if field, ok := strings.CutPrefix(path, "team."); ok && c.team != nil {
		switch field {
		case "id":
			return c.team.team.ID, true
		case "points":
			return c.team.prePoints(false), true
		case "total_points":
			return c.team.prePoints(true), true
		case "rank":
			return float64(c.team.rank), true
		case "tie_count":
			return float64(c.team.ties), true
		case "players":
			return float64(len(c.team.members)), true
		case "low_ball":
			return float64(c.team.net.LowBall), c.team.net.Scored
		case "total":
			return float64(c.team.net.Total), c.team.net.Scored
		}
	}

	if field, ok := strings.CutPrefix(path, "player."); ok && c.player != nil {
		s := c.player.score
		switch field {
		case "id":
			return c.player.id, true
		case "team":
			return c.player.teamID, true
		case "rank":
			return float64(c.player.rank), true
		case "tie_count":
			return float64(c.player.ties), true
		case "pops":
			return float64(s.Pops), true
		case "gross":
			return float64(s.Gross), s.Scored
		case "net":
			return float64(s.Net), s.Scored
		case "to_par":
			return float64(s.ToPar), s.Scored
		case "net_to_par":
			return float64(s.NetToPar), s.Scored
		}
	}
	return nil, false
}

func (c *evalContext) Team(ref string) (condition.Team, bool) {
	if c.team == nil {
		return nil, false
	}
	switch ref {
	case "this":
		return teamView{c.team}, true
	case "other":
		for _, t := range c.hole.teams {
			if t != c.team {
				return teamView{t}, true
			}
		}
	}
	return nil, false
}

func (c *evalContext) CurrentHole() (condition.Hole, bool) {
	return holeView{c.hole}, true
}

func (c *evalContext) PreviousHole() (condition.Hole, bool) {
	if c.prev == nil {
		return nil, false
	}
	return holeView{c.prev}, true
}

func (c *evalContext) Rank() (int, int, bool) {
	if c.player != nil {
		return c.player.rank, c.player.ties, c.player.rank > 0
	}
	if c.team != nil {
		return c.team.rank, c.team.ties, c.team.rank > 0
	}
	return 0, 0, false
}

func (c *evalContext) BetterPoints() string {
	return c.opts.BetterPoints()
}

func (c *evalContext) WolfPlayer() bool {
	if c.player != nil {
		return c.player.wolf
	}
	if c.team != nil {
		for _, m := range c.team.members {
			if m.wolf {
				return true
			}
		}
	}
	return false
}

func (c *evalContext) ParOrBetter(scoreType string) bool {
	basedOn := BasedOnNet
	if strings.EqualFold(scoreType, BasedOnGross) {
		basedOn = BasedOnGross
	}
	if c.player != nil {
		return c.player.score.Scored && c.player.score.ValueToPar(basedOn) <= 0
	}
	if c.team != nil {
		for _, m := range c.team.members {
			if m.score.Scored && m.score.ValueToPar(basedOn) <= 0 {
				return true
			}
		}
	}
	return false
}
