package condition

import (
	"strings"
	"testing"
)

type fakeTeam struct {
	id      string
	players int
	junk    map[string]int
	mults   []string
}

func (t *fakeTeam) ID() string                { return t.id }
func (t *fakeTeam) PlayerCount() int          { return t.players }
func (t *fakeTeam) JunkCount(name string) int { return t.junk[name] }
func (t *fakeTeam) HasMultiplier(name string) bool {
	for _, m := range t.mults {
		if m == name {
			return true
		}
	}
	return false
}

type fakeHole struct {
	number    int
	par       int
	teams     []Team
	standings []Standing
	preMult   float64
}

func (h *fakeHole) Number() int                 { return h.number }
func (h *fakeHole) Par() int                    { return h.par }
func (h *fakeHole) Teams() []Team               { return h.teams }
func (h *fakeHole) Standings() []Standing       { return h.standings }
func (h *fakeHole) PreMultiplierTotal() float64 { return h.preMult }

type fakeContext struct {
	vars    map[string]any
	this    *fakeTeam
	other   *fakeTeam
	curr    *fakeHole
	prev    *fakeHole
	rank    int
	ties    int
	better  string
	wolf    bool
	parOrBt bool
}

func (c *fakeContext) Var(path string) (any, bool) {
	v, ok := c.vars[path]
	return v, ok
}

func (c *fakeContext) Team(ref string) (Team, bool) {
	switch ref {
	case "this":
		if c.this != nil {
			return c.this, true
		}
	case "other":
		if c.other != nil {
			return c.other, true
		}
	}
	return nil, false
}

func (c *fakeContext) CurrentHole() (Hole, bool) {
	if c.curr == nil {
		return nil, false
	}
	return c.curr, true
}

func (c *fakeContext) PreviousHole() (Hole, bool) {
	if c.prev == nil {
		return nil, false
	}
	return c.prev, true
}

func (c *fakeContext) Rank() (int, int, bool) { return c.rank, c.ties, c.rank > 0 }
func (c *fakeContext) BetterPoints() string {
	if c.better == "" {
		return "higher"
	}
	return c.better
}
func (c *fakeContext) WolfPlayer() bool           { return c.wolf }
func (c *fakeContext) ParOrBetter(string) bool    { return c.parOrBt }

func twoTeamContext() *fakeContext {
	a := &fakeTeam{id: "1", players: 2, junk: map[string]int{"birdie": 1}}
	b := &fakeTeam{id: "2", players: 2, mults: []string{"double"}}
	curr := &fakeHole{number: 5, par: 4, teams: []Team{a, b}, preMult: 6}
	prev := &fakeHole{number: 4, par: 3, teams: []Team{a, b}, standings: []Standing{
		{TeamID: "1", RunningTotal: 3},
		{TeamID: "2", RunningTotal: 8},
	}}
	return &fakeContext{
		vars: map[string]any{
			"team.points":    5.0,
			"possiblePoints": 5.0,
			"team.id":        "1",
			"hole.number":    5.0,
		},
		this:  a,
		other: b,
		curr:  curr,
		prev:  prev,
		rank:  1,
		ties:  1,
	}
}

func TestEvaluate_FailsClosed(t *testing.T) {
	ctx := twoTeamContext()
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty", src: ""},
		{name: "not json", src: "team down the most"},
		{name: "unknown operator", src: "{'launch_missiles': [1]}"},
		{name: "two keys", src: "{'==': [1, 1], '!=': [1, 2]}"},
		{name: "wrong arity", src: "{'==': [1]}"},
		{name: "divide by zero", src: "{'>': [{'/': [1, 0]}, 0]}"},
		{name: "modulo by zero", src: "{'==': [{'%': [4, 0]}, 0]}"},
		{name: "non-numeric comparison", src: "{'<': [{'team': ['this']}, 3]}"},
		{name: "unknown accessor nested", src: "{'and': [true, {'or': [false, {'mystery': []}]}]}"},
		{name: "trailing garbage", src: "{'==': [1, 1]} extra"},
		{name: "bare false", src: "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Evaluate(tt.src, ctx) {
				t.Fatalf("expected %q to evaluate to false", tt.src)
			}
		})
	}
}

func TestEvaluate_TooDeep(t *testing.T) {
	src := strings.Repeat("{'!!': [", MaxDepth+2) + "true" + strings.Repeat("]}", MaxDepth+2)
	if _, err := Parse(src); err == nil {
		t.Fatal("expected depth error")
	}
	if Evaluate(src, twoTeamContext()) {
		t.Fatal("expected deep expression to fail closed")
	}
}

func TestEvaluate_Operators(t *testing.T) {
	ctx := twoTeamContext()
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{name: "bbq all points", src: "{'===':[{'var':'team.points'},{'var':'possiblePoints'}]}", want: true},
		{name: "loose equality string number", src: "{'==': ['5', {'var': 'team.points'}]}", want: true},
		{name: "strict equality type mismatch", src: "{'===': ['5', {'var': 'team.points'}]}", want: false},
		{name: "var default", src: "{'==': [{'var': ['missing', 7]}, 7]}", want: true},
		{name: "between", src: "{'<=': [1, {'var': 'hole.number'}, 9]}", want: true},
		{name: "arithmetic", src: "{'==': [{'+': [1, 2, {'*': [2, 3]}]}, 9]}", want: true},
		{name: "unary minus", src: "{'<': [{'-': [3]}, 0]}", want: true},
		{name: "min max", src: "{'and': [{'==': [{'min': [4, 2, 9]}, 2]}, {'==': [{'max': [4, 2, 9]}, 9]}]}", want: true},
		{name: "if chain", src: "{'if': [false, false, {'var': 'team.points'}, true, false]}", want: true},
		{name: "in list", src: "{'in': [{'var': 'team.id'}, ['1', '3']]}", want: true},
		{name: "not", src: "{'!': [{'var': 'missing'}]}", want: true},
		{name: "three levels", src: "{'and': [{'or': [false, {'not': [{'==': [1, 2]}]}]}, true]}", want: true},
		{name: "double quotes accepted", src: `{"==": [{"var": "team.id"}, "1"]}`, want: true},
		{name: "apostrophe in double-quoted literal", src: `{'==': ["Bob's", "Bob's"]}`, want: true},
		{name: "escaped apostrophe in single-quoted literal", src: `{'==': ['Bob\'s', "Bob's"]}`, want: true},
		{name: "apostrophes kept distinct", src: `{'==': ["Bob's", 'Bobs']}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.src, ctx); got != tt.want {
				t.Fatalf("Evaluate(%s) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Accessors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		mutate func(c *fakeContext)
		want   bool
	}{
		{
			name: "team down the most after previous hole",
			src:  "{'team_down_the_most': [{'getPrevHole': []}, {'team': ['this']}]}",
			want: true,
		},
		{
			name: "other team is not down the most",
			src:  "{'team_down_the_most': [{'getPrevHole': []}, {'team': ['other']}]}",
			want: false,
		},
		{
			name:   "everyone is down the most on the first hole",
			src:    "{'team_down_the_most': [{'getPrevHole': []}, {'team': ['other']}]}",
			mutate: func(c *fakeContext) { c.prev = nil },
			want:   true,
		},
		{
			name: "lower points better flips the order",
			src:  "{'team_down_the_most': [{'getPrevHole': []}, {'team': ['other']}]}",
			mutate: func(c *fakeContext) {
				c.better = "lower"
			},
			want: true,
		},
		{
			name: "level teams can both press",
			src:  "{'team_down_the_most': [{'getPrevHole': []}, {'team': ['other']}]}",
			mutate: func(c *fakeContext) {
				c.prev.standings = []Standing{{TeamID: "1", RunningTotal: 4}, {TeamID: "2", RunningTotal: 4}}
			},
			want: true,
		},
		{
			name: "second to last",
			src:  "{'team_second_to_last': [{'getPrevHole': []}, {'team': ['other']}]}",
			want: true,
		},
		{
			name:   "second to last needs a previous hole",
			src:    "{'team_second_to_last': [{'getPrevHole': []}, {'team': ['other']}]}",
			mutate: func(c *fakeContext) { c.prev = nil },
			want:   false,
		},
		{
			name: "double back",
			src:  "{'and': [{'team_second_to_last': [{'getPrevHole': []}, {'team': ['this']}]}, {'other_team_multiplied_with': [{'getCurrHole': []}, {'team': ['this']}, 'double']}]}",
			mutate: func(c *fakeContext) {
				c.prev.standings = []Standing{{TeamID: "1", RunningTotal: 9}, {TeamID: "2", RunningTotal: 2}}
			},
			want: true,
		},
		{
			name: "other team multiplied without hole argument",
			src:  "{'other_team_multiplied_with': ['double']}",
			want: true,
		},
		{
			name: "count junk",
			src:  "{'==': [{'countJunk': [{'team': ['this']}, 'birdie']}, 1]}",
			want: true,
		},
		{
			name: "count junk by ref",
			src:  "{'==': [{'countJunk': ['other', 'birdie']}, 0]}",
			want: true,
		},
		{
			name: "rank with ties",
			src:  "{'rankWithTies': [1, 1]}",
			want: true,
		},
		{
			name:   "rank with ties tied",
			src:    "{'rankWithTies': [1, 1]}",
			mutate: func(c *fakeContext) { c.ties = 2 },
			want:   false,
		},
		{
			name: "players on team",
			src:  "{'==': [{'playersOnTeam': ['other']}, 2]}",
			want: true,
		},
		{
			name:   "wolf",
			src:    "{'isWolfPlayer': []}",
			mutate: func(c *fakeContext) { c.wolf = true },
			want:   true,
		},
		{
			name:   "par or better",
			src:    "{'parOrBetter': [{'getCurrHole': []}, 'net']}",
			mutate: func(c *fakeContext) { c.parOrBt = true },
			want:   true,
		},
		{
			name: "hole par",
			src:  "{'==': [{'holePar': []}, 4]}",
			want: true,
		},
		{
			name: "hole par of previous hole",
			src:  "{'==': [{'holePar': [{'getPrevHole': []}]}, 3]}",
			want: true,
		},
		{
			name: "pre multiplier total reached",
			src:  "{'existingPreMultiplierTotal': [{'getCurrHole': []}, 6]}",
			want: true,
		},
		{
			name: "pre multiplier total not reached",
			src:  "{'existingPreMultiplierTotal': [{'getCurrHole': []}, 7]}",
			want: false,
		},
		{
			name: "pre multiplier total without hole",
			src:  "{'existingPreMultiplierTotal': [{'getPrevHole': []}, 0]}",
			mutate: func(c *fakeContext) { c.prev = nil },
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := twoTeamContext()
			if tt.mutate != nil {
				tt.mutate(ctx)
			}
			if got := Evaluate(tt.src, ctx); got != tt.want {
				t.Fatalf("Evaluate(%s) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvaluate_DoesNotMutateContext(t *testing.T) {
	ctx := twoTeamContext()
	src := "{'team_down_the_most': [{'getPrevHole': []}, {'team': ['this']}]}"
	before := append([]Standing(nil), ctx.prev.standings...)
	for i := 0; i < 3; i++ {
		if !Evaluate(src, ctx) {
			t.Fatalf("evaluation %d returned false", i)
		}
	}
	for i, s := range ctx.prev.standings {
		if s != before[i] {
			t.Fatalf("standings reordered: got %v, want %v", ctx.prev.standings, before)
		}
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	ctx := twoTeamContext()

	ok, err := c.Evaluate("{'rankWithTies': [1, 1]}", ctx)
	if err != nil || !ok {
		t.Fatalf("expected true without error, got %v, %v", ok, err)
	}
	if _, err := c.Evaluate("{'nope': []}", ctx); err == nil {
		t.Fatal("expected error for unknown operator")
	}
	if len(c.exprs) != 2 {
		t.Fatalf("expected 2 cached entries, got %d", len(c.exprs))
	}
}
