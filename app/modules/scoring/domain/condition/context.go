// Package condition evaluates the availability expressions that gate junk and
// multipliers. Expressions are json-logic documents, usually written with single
// quotes, parsed into a small tree and interpreted against a read-only Context.
package condition

// Context is the scoring state an expression can read. Implementations must not
// change state as a result of being queried.
type Context interface {
	// Var resolves a dotted path such as "team.points" or "possiblePoints".
	Var(path string) (any, bool)
	// Team resolves 'this' or 'other'.
	Team(ref string) (Team, bool)
	CurrentHole() (Hole, bool)
	PreviousHole() (Hole, bool)
	// Rank is the rank and tie count of the player or team being evaluated.
	Rank() (rank, tieCount int, ok bool)
	// BetterPoints is "higher" or "lower".
	BetterPoints() string
	WolfPlayer() bool
	ParOrBetter(scoreType string) bool
}

// Team is a team as seen from one hole.
type Team interface {
	ID() string
	PlayerCount() int
	JunkCount(name string) int
	HasMultiplier(name string) bool
}

// Hole is a scored (or in-progress) hole.
type Hole interface {
	Number() int
	Par() int
	Teams() []Team
	Standings() []Standing
	PreMultiplierTotal() float64
}

// Standing is a team's running total after a hole.
type Standing struct {
	TeamID       string
	RunningTotal float64
}
