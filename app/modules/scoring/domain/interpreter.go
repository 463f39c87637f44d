package scoringdomain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain/condition"
)

// DefaultPar is used for holes no tee in the game describes.
const DefaultPar = 4

// Interpreter scores games hole by hole. It is safe for concurrent use: every
// run works on its own deep copy of the game and only the parsed expression
// cache is shared.
type Interpreter struct {
	conditions *condition.Cache
}

// NewInterpreter creates an interpreter with an empty expression cache.
func NewInterpreter() *Interpreter {
	return &Interpreter{conditions: condition.NewCache()}
}

// Run scores a game and aggregates it into a scoreboard in the spec's default view.
func (in *Interpreter) Run(game Game) (*Scoreboard, error) {
	holes, warnings, err := in.Score(game)
	if err != nil {
		return nil, err
	}
	typ, _ := ParseSpecType(string(game.Spec.Type))
	sb := Aggregate(holes, DefaultView(typ))
	sb.GameID = game.ID
	sb.GameName = game.Name
	sb.Spec = game.Spec.Name
	sb.Type = typ
	sb.Warnings = append(warnings, sb.Warnings...)
	if n := len(holes); n > 0 && holes[n-1].Match != nil {
		m := *holes[n-1].Match
		sb.Match = &m
	}
	return &sb, nil
}

// Score returns the per-hole results and the game-level warnings. A
// ConfigurationError aborts the whole game.
func (in *Interpreter) Score(game Game) ([]HoleResult, []Warning, error) {
	g := game.Clone()
	typ, ok := ParseSpecType(string(g.Spec.Type))
	if !ok {
		return nil, nil, &ConfigurationError{Spec: g.Spec.Name, Reason: fmt.Sprintf("unknown spec type %q", g.Spec.Type)}
	}
	g.Spec.Type = typ
	if err := g.Spec.Validate(); err != nil {
		return nil, nil, err
	}
	if err := g.Spec.ValidateGame(g); err != nil {
		return nil, nil, err
	}
	for _, rtg := range g.Rounds {
		if rtg.Round.Tee == nil {
			continue
		}
		if err := rtg.Round.Tee.Validate(); err != nil {
			if ce, ok := err.(*ConfigurationError); ok {
				ce.Spec = g.Spec.Name
			}
			return nil, nil, err
		}
	}
	combiner, err := CombinerFor(g.Spec.Scoring.Combination)
	if err != nil {
		return nil, nil, &ConfigurationError{Spec: g.Spec.Name, Reason: err.Error()}
	}

	run := newRunState(g, typ, combiner, in.conditions)
	holes := playOrder(g)
	run.warnUnknownHoles(holes)
	if len(holes) > 0 {
		run.lastHole = holes[len(holes)-1].Hole
	}
	run.pending = collectActivations(holes)

	var prev *holeState
	results := make([]HoleResult, 0, len(holes))
	for i, gh := range holes {
		hr, state, err := run.scoreHole(gh, prev, i, len(holes)-i-1)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, hr)
		prev = state
	}
	return results, run.warnings, nil
}

type runState struct {
	game        Game
	spec        GameSpec
	typ         SpecType
	opts        *options
	combiner    Combiner
	cache       *condition.Cache
	players     []string
	names       map[string]string
	rounds      map[string]*RoundToGame
	pops        map[string]map[int]int
	pars        map[int]int
	resolver    *teamResolver
	running     map[string]float64
	carry       float64
	pending     map[int][]activation
	active      []activation
	matchOver   *MatchStatus
	scoredSoFar bool
	lastHole    int
	warnings    []Warning
}

func newRunState(g Game, typ SpecType, c Combiner, cache *condition.Cache) *runState {
	run := &runState{
		game:        g,
		spec:        g.Spec,
		typ:         typ,
		opts:        newOptions(g),
		combiner:    c,
		cache:       cache,
		players:     g.Players(),
		names:       make(map[string]string, len(g.Rounds)),
		rounds:      make(map[string]*RoundToGame, len(g.Rounds)),
		pops:        make(map[string]map[int]int, len(g.Rounds)),
		pars:        make(map[int]int),
		running:     make(map[string]float64),
		scoredSoFar: true,
	}
	run.resolver = newTeamResolver(g.Spec, run.players)

	handicaps := make(map[string]int, len(g.Rounds))
	for i := range g.Rounds {
		rtg := &g.Rounds[i]
		id := rtg.Round.PlayerID
		run.rounds[id] = rtg
		run.names[id] = rtg.Round.PlayerName
		if h, ok := EffectiveHandicap(*rtg); ok {
			handicaps[id] = h
		} else {
			run.warnings = append(run.warnings, Warning{PlayerID: id, Code: WarnMissingHandicap, Message: "no handicap available, playing off scratch"})
		}
		if rtg.Round.Tee == nil {
			run.warnings = append(run.warnings, Warning{PlayerID: id, Code: WarnMissingTee, Message: "round has no tee, using default pars"})
			continue
		}
		for _, hr := range rtg.Round.Tee.Holes {
			if _, ok := run.pars[hr.Number]; !ok {
				run.pars[hr.Number] = hr.Par
			}
		}
	}
	if v, ok := run.opts.Value(OptionHandicapMode, 1); ok && strings.EqualFold(v, HandicapModeLow) {
		handicaps = RelativeToLow(handicaps)
	}
	for id, rtg := range run.rounds {
		if rtg.Round.Tee == nil {
			run.pops[id] = map[int]int{}
			continue
		}
		run.pops[id] = AllocatePops(handicaps[id], rtg.Round.Tee.Holes)
	}
	return run
}

// playOrder sorts the game's holes ascending. A game without holes plays the
// first tee's holes, or a standard eighteen.
func playOrder(g Game) []GameHole {
	holes := slices.Clone(g.Holes)
	if len(holes) == 0 {
		n := 18
		for _, rtg := range g.Rounds {
			if rtg.Round.Tee != nil && len(rtg.Round.Tee.Holes) > 0 {
				n = len(rtg.Round.Tee.Holes)
				break
			}
		}
		for i := 1; i <= n; i++ {
			holes = append(holes, GameHole{Hole: i, Seq: i})
		}
	}
	slices.SortStableFunc(holes, func(a, b GameHole) int { return cmp.Compare(a.Hole, b.Hole) })
	for i := range holes {
		if holes[i].Seq == 0 {
			holes[i].Seq = i + 1
		}
	}
	return holes
}

// PlaysHole reports whether hole is in the game's play order.
func (g Game) PlaysHole(hole int) bool {
	for _, gh := range playOrder(g) {
		if gh.Hole == hole {
			return true
		}
	}
	return false
}

func (run *runState) warnUnknownHoles(holes []GameHole) {
	known := make(map[int]bool, len(holes))
	for _, h := range holes {
		known[h.Hole] = true
	}
	for _, id := range run.players {
		for _, s := range run.rounds[id].Round.Scores {
			if !known[s.Hole] {
				run.warnings = append(run.warnings, Warning{Hole: s.Hole, PlayerID: id, Code: WarnUnknownHole, Message: fmt.Sprintf("score for hole %d is not part of this game and was ignored", s.Hole)})
			}
		}
	}
}

func (run *runState) par(hole int) int {
	if p, ok := run.pars[hole]; ok && p > 0 {
		return p
	}
	return DefaultPar
}

func (run *runState) playerPar(id string, hole int) int {
	if rtg := run.rounds[id]; rtg != nil && rtg.Round.Tee != nil {
		if hr, ok := rtg.Round.Tee.Hole(hole); ok && hr.Par > 0 {
			return hr.Par
		}
	}
	return run.par(hole)
}

func (run *runState) basedOn() string {
	if run.spec.Scoring.BasedOn == "" || run.spec.Scoring.BasedOn == BasedOnUser {
		return BasedOnNet
	}
	return run.spec.Scoring.BasedOn
}

// holeRun is the working state of one hole.
type holeRun struct {
	run      *runState
	h        *holeState
	prev     *holeState
	gameHole GameHole
	result   *HoleResult
	warned   map[string]bool
}

func (run *runState) scoreHole(gh GameHole, prev *holeState, index, remaining int) (HoleResult, *holeState, error) {
	teams, teamWarnings, err := run.resolver.resolve(gh, index)
	if err != nil {
		return HoleResult{}, nil, err
	}

	h := &holeState{
		number:   gh.Hole,
		seq:      gh.Seq,
		par:      run.par(gh.Hole),
		byPlayer: make(map[string]*playerState, len(run.players)),
		byTeam:   make(map[string]*teamState, len(teams)),
	}
	r := &holeRun{
		run:      run,
		h:        h,
		prev:     prev,
		gameHole: gh,
		result:   &HoleResult{Hole: gh.Hole, Seq: gh.Seq, Par: h.par},
		warned:   make(map[string]bool),
	}
	for _, w := range teamWarnings {
		r.warn(w)
	}

	wolf := ""
	if n := len(run.players); n > 0 {
		wolf = run.players[((gh.Seq-1)%n+n)%n]
	}
	for _, id := range run.players {
		raw, _ := run.rounds[id].Round.Score(gh.Hole)
		p := &playerState{
			id:    id,
			name:  run.names[id],
			raw:   raw,
			score: Normalize(raw, run.pops[id][gh.Hole], run.playerPar(id, gh.Hole)),
			wolf:  id == wolf,
		}
		if !p.score.Scored {
			r.warn(Warning{Hole: gh.Hole, PlayerID: id, Code: WarnHoleUnscored, Message: fmt.Sprintf("no score for hole %d", gh.Hole)})
		}
		h.players = append(h.players, p)
		h.byPlayer[id] = p
	}

	for _, t := range teams {
		ts := &teamState{team: t}
		scores := make([]HoleScore, 0, len(t.PlayerIDs))
		for _, pid := range t.PlayerIDs {
			p, ok := h.byPlayer[pid]
			if !ok {
				continue
			}
			p.teamID = t.ID
			ts.members = append(ts.members, p)
			scores = append(scores, p.score)
		}
		ts.gross = CalculateTeamScore(scores, BasedOnGross)
		ts.net = CalculateTeamScore(scores, BasedOnNet)
		h.teams = append(h.teams, ts)
		h.byTeam[t.ID] = ts
	}

	r.rank()

	switch run.typ {
	case SpecTypePoints:
		r.scorePoints()
	case SpecTypeSkins:
		r.result.Skin = r.scoreSkins()
	case SpecTypeMatchPlay:
		if err := r.scoreMatchHole(); err != nil {
			return HoleResult{}, nil, err
		}
	}

	junk := run.opts.JunkFor(gh.Hole)
	h.possible = possiblePoints(run.spec, junk)
	r.evaluateJunk(junk)

	for _, t := range h.teams {
		h.preTotal += t.prePoints(true)
	}
	r.evaluateMultipliers(run.opts.MultipliersFor(gh.Hole))
	r.finalize()

	complete := h.allScored()
	r.accumulate(complete)
	if !complete {
		run.scoredSoFar = false
	}
	if run.typ == SpecTypeMatchPlay || run.opts.Bool(OptionMatchPlay, gh.Hole) {
		r.result.Match = r.matchStatus(remaining)
	}

	r.result.Possible = h.possible
	r.result.Complete = complete
	r.build()
	return *r.result, h, nil
}

func (r *holeRun) warn(w Warning) {
	key := string(w.Code) + "|" + w.PlayerID + "|" + w.Option
	if r.warned[key] {
		return
	}
	r.warned[key] = true
	r.result.Warnings = append(r.result.Warnings, w)
}

// check evaluates an availability or logic expression. Broken expressions are
// reported once per hole and count as false.
func (r *holeRun) check(option, src string, ctx condition.Context) bool {
	ok, err := r.run.cache.Evaluate(src, ctx)
	if err != nil {
		r.warn(Warning{Hole: r.h.number, Option: option, Code: WarnInvalidExpression, Message: err.Error()})
		return false
	}
	return ok
}

func (r *holeRun) playerContext(p *playerState) *evalContext {
	return &evalContext{hole: r.h, prev: r.prev, team: r.h.byTeam[p.teamID], player: p, opts: r.run.opts}
}

func (r *holeRun) teamContext(t *teamState) *evalContext {
	return &evalContext{hole: r.h, prev: r.prev, team: t, opts: r.run.opts}
}

// rank orders scored players and teams on the hole, lowest score first.
func (r *holeRun) rank() {
	basedOn := r.run.basedOn()

	var scored []*playerState
	for _, p := range r.h.players {
		if p.score.Scored {
			scored = append(scored, p)
		}
	}
	for _, rk := range RankWithTies(scored, func(p *playerState) float64 { return float64(p.score.Value(basedOn)) }, "lower") {
		rk.Item.rank, rk.Item.ties = rk.Rank, rk.TieCount
	}

	var teams []*teamState
	for _, t := range r.h.teams {
		if t.score(basedOn).Scored {
			teams = append(teams, t)
		}
	}
	calc := r.run.spec.Scoring.TeamScore
	for _, rk := range RankWithTies(teams, func(t *teamState) float64 { return t.score(basedOn).Value(calc) }, "lower") {
		rk.Item.rank, rk.Item.ties = rk.Rank, rk.TieCount
	}
}

// scorePoints applies the points base rule: a to-par table when one is given,
// otherwise a rank table over team scores.
func (r *holeRun) scorePoints() {
	rules := r.run.spec.Scoring
	basedOn := r.run.basedOn()

	switch {
	case len(rules.ToPar) > 0:
		for _, p := range r.h.players {
			if p.score.Scored {
				p.base = toParPoints(rules.ToPar, p.score.ValueToPar(basedOn))
			}
		}
		for _, t := range r.h.teams {
			if !t.scored() || len(t.members) == 0 {
				continue
			}
			if len(t.members) == 1 {
				t.base = t.members[0].base
				continue
			}
			pts := make([]float64, 0, len(t.members))
			for _, m := range t.members {
				pts = append(pts, m.base)
			}
			t.base = reducePoints(pts, rules.TeamScore)
		}
	case len(rules.PointsTable) > 0:
		for _, t := range r.h.teams {
			if t.rank == 0 {
				continue
			}
			t.base = PointsFromTable(t.rank, t.ties, rules.PointsTable)
			for _, m := range t.members {
				m.base = t.base
			}
		}
	}
}

// toParPoints looks up a to-par result, clamping to the table's extremes.
func toParPoints(table map[int]float64, toPar int) float64 {
	if v, ok := table[toPar]; ok {
		return v
	}
	keys := make([]int, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	if toPar < keys[0] {
		return table[keys[0]]
	}
	if toPar > keys[len(keys)-1] {
		return table[keys[len(keys)-1]]
	}
	return 0
}

// finalize folds multipliers into point totals with the game's combiner. A
// one-player team carries its player's multipliers too; in team games a
// player's own multipliers scale only that player's points.
func (r *holeRun) finalize() {
	for _, t := range r.h.teams {
		apps := slices.Clone(t.mults)
		single := len(t.members) == 1
		if single {
			apps = append(apps, t.members[0].mults...)
		}
		t.mults, t.points = r.combine(t.prePoints(true), apps)
		if single {
			m := t.members[0]
			m.points = t.points
			m.mults = slices.Clone(t.mults)
		}
	}
	for _, p := range r.h.players {
		t := r.h.byTeam[p.teamID]
		if t == nil || len(t.members) == 1 {
			continue
		}
		apps := slices.Clone(t.mults)
		apps = append(apps, p.mults...)
		p.mults, p.points = r.combine(p.base+p.junkPoints(true), apps)
	}
}

func (r *holeRun) combine(pre float64, apps []MultiplierApplication) ([]MultiplierApplication, float64) {
	factors := make([]float64, len(apps))
	for i, a := range apps {
		factors[i] = a.Factor
	}
	total, steps := Combine(r.run.combiner, pre, factors)
	out := make([]MultiplierApplication, len(apps))
	for i, a := range apps {
		a.Pre, a.Post = steps[i].Pre, steps[i].Post
		out[i] = a
	}
	return out, total
}

// accumulate updates running totals. A hole only counts once every player has
// scored it.
func (r *holeRun) accumulate(complete bool) {
	for _, t := range r.h.teams {
		if complete {
			r.run.running[t.team.ID] += t.points
		}
		t.running = r.run.running[t.team.ID]
		r.h.standings = append(r.h.standings, condition.Standing{TeamID: t.team.ID, RunningTotal: t.running})
	}
	if len(r.h.teams) != 2 {
		return
	}
	a, b := r.h.teams[0], r.h.teams[1]
	sign := 1.0
	if r.run.opts.BetterPoints() == "lower" {
		sign = -1
	}
	if complete {
		a.holeNet = sign * (a.points - b.points)
		b.holeNet = -a.holeNet
	}
	a.diff = sign * (a.running - b.running)
	b.diff = -a.diff
}

func (r *holeRun) build() {
	res := r.result
	for _, p := range r.h.players {
		res.Players = append(res.Players, PlayerHoleResult{
			PlayerID:    p.id,
			PlayerName:  p.name,
			TeamID:      p.teamID,
			Score:       p.score,
			Rank:        p.rank,
			TieCount:    p.ties,
			BasePoints:  p.base,
			Junk:        p.junk,
			Multipliers: p.mults,
			Points:      p.points,
			Skins:       p.skins,
			Wolf:        p.wolf,
		})
	}
	for _, t := range r.h.teams {
		ids := make([]string, 0, len(t.members))
		for _, m := range t.members {
			ids = append(ids, m.id)
		}
		res.Teams = append(res.Teams, TeamHoleResult{
			TeamID:       t.team.ID,
			PlayerIDs:    ids,
			Gross:        t.gross,
			Net:          t.net,
			Rank:         t.rank,
			TieCount:     t.ties,
			BasePoints:   t.base,
			Junk:         t.junk,
			PrePoints:    t.prePoints(true),
			Multipliers:  t.mults,
			Points:       t.points,
			RunningTotal: t.running,
			RunningDiff:  t.diff,
			HoleNetTotal: t.holeNet,
		})
		res.Multipliers = append(res.Multipliers, t.mults...)
		if len(t.members) > 1 {
			for _, m := range t.members {
				for _, a := range m.mults {
					if a.PlayerID != "" {
						res.Multipliers = append(res.Multipliers, a)
					}
				}
			}
		}
	}
}
