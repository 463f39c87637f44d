package scoringdomain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// SpecType selects the base hole-scoring rule of a GameSpec.
type SpecType string

const (
	SpecTypePoints    SpecType = "points"
	SpecTypeSkins     SpecType = "skins"
	SpecTypeMatchPlay SpecType = "match_play"
)

// ParseSpecType accepts the catalog spellings of a spec type.
func ParseSpecType(s string) (SpecType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "points":
		return SpecTypePoints, true
	case "skins":
		return SpecTypeSkins, true
	case "match_play", "match-play", "matchplay":
		return SpecTypeMatchPlay, true
	}
	return "", false
}

// Segment restricts an option to part of the round.
type Segment string

const (
	SegmentHole  Segment = "hole"
	SegmentFront Segment = "front"
	SegmentBack  Segment = "back"
	SegmentTotal Segment = "total"
)

// Covers reports whether the segment applies to a hole number.
func (s Segment) Covers(hole int) bool {
	switch s {
	case SegmentFront:
		return hole >= 1 && hole <= 9
	case SegmentBack:
		return hole >= 10 && hole <= 18
	}
	return true
}

// TeamCalculation names a way of reducing a team's scores to one number.
type TeamCalculation string

const (
	CalcBestBall  TeamCalculation = "best_ball"
	CalcSum       TeamCalculation = "sum"
	CalcWorstBall TeamCalculation = "worst_ball"
	CalcAverage   TeamCalculation = "average"
	CalcLogic     TeamCalculation = "logic"
)

// Score bases.
const (
	BasedOnGross = "gross"
	BasedOnNet   = "net"
	BasedOnUser  = "user"
)

// Meta option names read by the interpreter.
const (
	OptionBetterPoints = "better_points"
	OptionHandicapMode = "handicap_mode"
	OptionMatchPlay    = "match_play"
	OptionCarryover    = "carryover"
)

// Handicap modes.
const (
	HandicapModeFull = "full"
	HandicapModeLow  = "low"
)

// TeamConfig describes how players are grouped.
type TeamConfig struct {
	Teams           bool `json:"teams" yaml:"teams"`
	TeamSize        int  `json:"team_size,omitempty" yaml:"team_size,omitempty"`
	TeamChangeEvery int  `json:"team_change_every,omitempty" yaml:"team_change_every,omitempty"`
}

// PointsEntry awards points to a rank with a given tie count.
type PointsEntry struct {
	Rank     int     `json:"rank" yaml:"rank"`
	TieCount int     `json:"tie_count" yaml:"tie_count"`
	Points   float64 `json:"points" yaml:"points"`
}

// ScoringRules is the base hole-scoring block of a spec.
type ScoringRules struct {
	BasedOn       string          `json:"based_on,omitempty" yaml:"based_on,omitempty"`
	ToPar         map[int]float64 `json:"to_par,omitempty" yaml:"to_par,omitempty"`
	PointsTable   []PointsEntry   `json:"points_table,omitempty" yaml:"points_table,omitempty"`
	TeamScore     TeamCalculation `json:"team_score,omitempty" yaml:"team_score,omitempty"`
	Combination   string          `json:"combination,omitempty" yaml:"combination,omitempty"`
	PointsPerHole float64         `json:"points_per_hole,omitempty" yaml:"points_per_hole,omitempty"`
	Carryover     bool            `json:"carryover,omitempty" yaml:"carryover,omitempty"`
	SkinValue     float64         `json:"skin_value,omitempty" yaml:"skin_value,omitempty"`
}

// GameOption is a global toggle or value.
type GameOption struct {
	Name      string   `json:"name" yaml:"name"`
	Disp      string   `json:"disp" yaml:"disp"`
	Segment   Segment  `json:"segment,omitempty" yaml:"segment,omitempty"`
	ValueType string   `json:"value_type,omitempty" yaml:"value_type,omitempty"`
	Value     string   `json:"value" yaml:"value"`
	Choices   []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Junk is a bonus awarded on a hole to a player or team.
type Junk struct {
	Name         string          `json:"name" yaml:"name"`
	Disp         string          `json:"disp" yaml:"disp"`
	Seq          int             `json:"seq,omitempty" yaml:"seq,omitempty"`
	SubType      string          `json:"sub_type,omitempty" yaml:"sub_type,omitempty"`
	Segment      Segment         `json:"segment,omitempty" yaml:"segment,omitempty"`
	Scope        string          `json:"scope,omitempty" yaml:"scope,omitempty"`
	BasedOn      string          `json:"based_on,omitempty" yaml:"based_on,omitempty"`
	ScoreToPar   string          `json:"score_to_par,omitempty" yaml:"score_to_par,omitempty"`
	Logic        string          `json:"logic,omitempty" yaml:"logic,omitempty"`
	Calculation  TeamCalculation `json:"calculation,omitempty" yaml:"calculation,omitempty"`
	Better       string          `json:"better,omitempty" yaml:"better,omitempty"`
	Limit        string          `json:"limit,omitempty" yaml:"limit,omitempty"`
	Value        float64         `json:"value" yaml:"value"`
	Availability string          `json:"availability,omitempty" yaml:"availability,omitempty"`
}

// Junk scopes and limits.
const (
	ScopePlayer     = "player"
	ScopeTeam       = "team"
	ScopeHole       = "hole"
	ScopeRestOfNine = "rest_of_nine"
	ScopeGame       = "game"

	LimitOneTeamPerGroup = "one_team_per_group"
)

// Bonus reports whether the junk is an extra on top of the hole's possible points.
func (j Junk) Bonus() bool {
	return j.ScoreToPar != ""
}

// Multiplier sub types.
const (
	MultiplierAutomatic = "automatic"
	MultiplierBBQ       = "bbq"
	MultiplierPress     = "press"
)

// Multiplier scales a hole's points when its condition holds.
type Multiplier struct {
	Name               string  `json:"name" yaml:"name"`
	Disp               string  `json:"disp" yaml:"disp"`
	Seq                int     `json:"seq,omitempty" yaml:"seq,omitempty"`
	SubType            string  `json:"sub_type,omitempty" yaml:"sub_type,omitempty"`
	Segment            Segment `json:"segment,omitempty" yaml:"segment,omitempty"`
	BasedOn            string  `json:"based_on,omitempty" yaml:"based_on,omitempty"`
	Scope              string  `json:"scope,omitempty" yaml:"scope,omitempty"`
	Availability       string  `json:"availability,omitempty" yaml:"availability,omitempty"`
	Value              float64 `json:"value,omitempty" yaml:"value,omitempty"`
	InputValue         bool    `json:"input_value,omitempty" yaml:"input_value,omitempty"`
	InvalidationReason string  `json:"invalidation_reason,omitempty" yaml:"invalidation_reason,omitempty"`
}

// Factor returns the multiplier value, defaulting to a double.
func (m Multiplier) Factor() float64 {
	if m.Value == 0 {
		return 2
	}
	return m.Value
}

// UserActivated reports whether the multiplier needs an explicit activation.
func (m Multiplier) UserActivated() bool {
	return m.SubType == MultiplierPress || m.BasedOn == BasedOnUser
}

// GameSpec is a declarative scoring format.
type GameSpec struct {
	Name         string       `json:"name" yaml:"name"`
	Disp         string       `json:"disp,omitempty" yaml:"disp,omitempty"`
	Version      int          `json:"version" yaml:"version"`
	Type         SpecType     `json:"type" yaml:"type"`
	MinPlayers   int          `json:"min_players,omitempty" yaml:"min_players,omitempty"`
	MaxPlayers   int          `json:"max_players,omitempty" yaml:"max_players,omitempty"`
	LocationType string       `json:"location_type,omitempty" yaml:"location_type,omitempty"`
	Teams        TeamConfig   `json:"teams" yaml:"teams"`
	Scoring      ScoringRules `json:"scoring" yaml:"scoring"`
	Options      []GameOption `json:"options,omitempty" yaml:"options,omitempty"`
	Junk         []Junk       `json:"junk,omitempty" yaml:"junk,omitempty"`
	Multipliers  []Multiplier `json:"multipliers,omitempty" yaml:"multipliers,omitempty"`
}

// Clone deep-copies the spec.
func (s GameSpec) Clone() GameSpec {
	out := s
	if s.Scoring.ToPar != nil {
		out.Scoring.ToPar = make(map[int]float64, len(s.Scoring.ToPar))
		for k, v := range s.Scoring.ToPar {
			out.Scoring.ToPar[k] = v
		}
	}
	out.Scoring.PointsTable = append([]PointsEntry(nil), s.Scoring.PointsTable...)
	out.Options = make([]GameOption, len(s.Options))
	for i, o := range s.Options {
		o.Choices = append([]string(nil), o.Choices...)
		out.Options[i] = o
	}
	out.Junk = append([]Junk(nil), s.Junk...)
	out.Multipliers = append([]Multiplier(nil), s.Multipliers...)
	return out
}

// Validate reports configuration errors that make the spec unusable.
func (s GameSpec) Validate() error {
	if _, ok := ParseSpecType(string(s.Type)); !ok {
		return &ConfigurationError{Spec: s.Name, Reason: fmt.Sprintf("unknown spec type %q", s.Type)}
	}
	if _, err := CombinerFor(s.Scoring.Combination); err != nil {
		return &ConfigurationError{Spec: s.Name, Reason: err.Error()}
	}
	if s.Teams.TeamSize < 0 || s.Teams.TeamChangeEvery < 0 {
		return &ConfigurationError{Spec: s.Name, Reason: "team_size and team_change_every must not be negative"}
	}
	if s.Teams.Teams && s.Teams.TeamSize == 0 {
		return &ConfigurationError{Spec: s.Name, Reason: "team games need a team_size"}
	}
	if s.MaxPlayers > 0 && s.MinPlayers > s.MaxPlayers {
		return &ConfigurationError{Spec: s.Name, Reason: "min_players exceeds max_players"}
	}
	seen := make(map[string]bool)
	for _, j := range s.Junk {
		if seen[j.Name] {
			return &ConfigurationError{Spec: s.Name, Reason: "duplicate option name " + j.Name}
		}
		seen[j.Name] = true
	}
	for _, m := range s.Multipliers {
		if seen[m.Name] {
			return &ConfigurationError{Spec: s.Name, Reason: "duplicate option name " + m.Name}
		}
		seen[m.Name] = true
	}
	return nil
}

// ValidateGame checks the player count against the spec's team configuration.
func (s GameSpec) ValidateGame(g Game) error {
	n := len(g.Rounds)
	if s.MinPlayers > 0 && n < s.MinPlayers {
		return &ConfigurationError{Spec: s.Name, Reason: fmt.Sprintf("%d players, spec needs at least %d", n, s.MinPlayers)}
	}
	if s.MaxPlayers > 0 && n > s.MaxPlayers {
		return &ConfigurationError{Spec: s.Name, Reason: fmt.Sprintf("%d players, spec allows at most %d", n, s.MaxPlayers)}
	}
	if s.Teams.Teams && s.Teams.TeamSize > 0 && n%s.Teams.TeamSize != 0 {
		return &ConfigurationError{Spec: s.Name, Reason: fmt.Sprintf("team_size %d does not divide %d players", s.Teams.TeamSize, n)}
	}
	return nil
}

// options overlays game overrides and per-hole options on spec defaults.
type options struct {
	spec      GameSpec
	overrides []OptionOverride
	holes     map[int]GameHole
	junk      []Junk
	mults     []Multiplier
}

func newOptions(g Game) *options {
	o := &options{
		spec:      g.Spec,
		overrides: g.Overrides,
		holes:     make(map[int]GameHole, len(g.Holes)),
		junk:      append([]Junk(nil), g.Spec.Junk...),
		mults:     append([]Multiplier(nil), g.Spec.Multipliers...),
	}
	for _, h := range g.Holes {
		o.holes[h.Hole] = h
	}
	slices.SortStableFunc(o.junk, func(a, b Junk) int { return cmp.Compare(seqKey(a.Seq), seqKey(b.Seq)) })
	slices.SortStableFunc(o.mults, func(a, b Multiplier) int { return cmp.Compare(seqKey(a.Seq), seqKey(b.Seq)) })
	return o
}

// Unsequenced options keep declaration order after sequenced ones.
func seqKey(seq int) int {
	if seq <= 0 {
		return 1 << 30
	}
	return seq
}

// override returns the latest override for name effective on hole.
func (o *options) override(name string, hole int) (OptionOverride, bool) {
	var (
		best  OptionOverride
		found bool
	)
	for _, ov := range o.overrides {
		if ov.Name != name || ov.FromHole > hole {
			continue
		}
		if !found || ov.FromHole >= best.FromHole {
			best = ov
			found = true
		}
	}
	return best, found
}

// Value resolves an option for a hole: hole options, then overrides, then spec.
func (o *options) Value(name string, hole int) (string, bool) {
	if h, ok := o.holes[hole]; ok {
		if v, ok := h.Options[name]; ok {
			return v, true
		}
	}
	if ov, ok := o.override(name, hole); ok {
		if ov.Disabled {
			return "", false
		}
		return ov.Value, true
	}
	for _, opt := range o.spec.Options {
		if opt.Name == name && opt.Segment.Covers(hole) {
			return opt.Value, true
		}
	}
	return "", false
}

func (o *options) Bool(name string, hole int) bool {
	v, ok := o.Value(name, hole)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

// BetterPoints returns "higher" or "lower".
func (o *options) BetterPoints() string {
	if v, ok := o.Value(OptionBetterPoints, 1); ok && strings.EqualFold(v, "lower") {
		return "lower"
	}
	return "higher"
}

// JunkFor returns the junk active on a hole in evaluation order.
func (o *options) JunkFor(hole int) []Junk {
	out := make([]Junk, 0, len(o.junk))
	for _, j := range o.junk {
		if !j.Segment.Covers(hole) {
			continue
		}
		if ov, ok := o.override(j.Name, hole); ok {
			if ov.Disabled {
				continue
			}
			if f, err := strconv.ParseFloat(ov.Value, 64); err == nil {
				j.Value = f
			}
		}
		out = append(out, j)
	}
	return out
}

// MultipliersFor returns the multipliers active on a hole in declared order.
func (o *options) MultipliersFor(hole int) []Multiplier {
	out := make([]Multiplier, 0, len(o.mults))
	for _, m := range o.mults {
		if !m.Segment.Covers(hole) {
			continue
		}
		if ov, ok := o.override(m.Name, hole); ok {
			if ov.Disabled {
				continue
			}
			if f, err := strconv.ParseFloat(ov.Value, 64); err == nil {
				m.Value = f
			}
		}
		out = append(out, m)
	}
	return out
}

// Multiplier looks up a multiplier definition by name.
func (o *options) Multiplier(name string) (Multiplier, bool) {
	for _, m := range o.mults {
		if m.Name == name {
			return m, true
		}
	}
	return Multiplier{}, false
}
