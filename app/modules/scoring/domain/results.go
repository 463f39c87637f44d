package scoringdomain

// JunkAward is one junk given on a hole.
type JunkAward struct {
	Name     string  `json:"name"`
	Disp     string  `json:"disp,omitempty"`
	PlayerID string  `json:"player_id,omitempty"`
	TeamID   string  `json:"team_id,omitempty"`
	Value    float64 `json:"value"`
	Bonus    bool    `json:"bonus,omitempty"`
}

// MultiplierApplication records one multiplier applied to a player or team total.
type MultiplierApplication struct {
	Name      string  `json:"name"`
	Disp      string  `json:"disp,omitempty"`
	TeamID    string  `json:"team_id,omitempty"`
	PlayerID  string  `json:"player_id,omitempty"`
	Factor    float64 `json:"factor"`
	Pre       float64 `json:"pre"`
	Post      float64 `json:"post"`
	Activated bool    `json:"activated,omitempty"`
	FirstHole int     `json:"first_hole,omitempty"`
}

// RejectedActivation is a user multiplier whose availability failed on the
// hole it was activated.
type RejectedActivation struct {
	Name   string `json:"name"`
	TeamID string `json:"team_id"`
	Hole   int    `json:"hole"`
	Reason string `json:"reason,omitempty"`
}

// PlayerHoleResult is one player's outcome on a hole.
type PlayerHoleResult struct {
	PlayerID    string                  `json:"player_id"`
	PlayerName  string                  `json:"player_name,omitempty"`
	TeamID      string                  `json:"team_id"`
	Score       HoleScore               `json:"score"`
	Rank        int                     `json:"rank,omitempty"`
	TieCount    int                     `json:"tie_count,omitempty"`
	BasePoints  float64                 `json:"base_points"`
	Junk        []JunkAward             `json:"junk,omitempty"`
	Multipliers []MultiplierApplication `json:"multipliers,omitempty"`
	Points      float64                 `json:"points"`
	Skins       float64                 `json:"skins,omitempty"`
	Wolf        bool                    `json:"wolf,omitempty"`
}

// TeamHoleResult is one team's outcome on a hole.
type TeamHoleResult struct {
	TeamID       string                  `json:"team_id"`
	PlayerIDs    []string                `json:"player_ids"`
	Gross        TeamScore               `json:"gross"`
	Net          TeamScore               `json:"net"`
	Rank         int                     `json:"rank,omitempty"`
	TieCount     int                     `json:"tie_count,omitempty"`
	BasePoints   float64                 `json:"base_points"`
	Junk         []JunkAward             `json:"junk,omitempty"`
	PrePoints    float64                 `json:"pre_points"`
	Multipliers  []MultiplierApplication `json:"multipliers,omitempty"`
	Points       float64                 `json:"points"`
	RunningTotal float64                 `json:"running_total"`
	RunningDiff  float64                 `json:"running_diff,omitempty"`
	HoleNetTotal float64                 `json:"hole_net_total,omitempty"`
}

// SkinResult is the skins outcome of a hole.
type SkinResult struct {
	WinnerID string  `json:"winner_id,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Carried  float64 `json:"carried,omitempty"`
	Pending  bool    `json:"pending,omitempty"`
}

// MatchStatus is the state of a two-sided match after a hole.
type MatchStatus struct {
	Leader    string `json:"leader,omitempty"`
	Up        int    `json:"up"`
	Remaining int    `json:"remaining"`
	Over      bool   `json:"over,omitempty"`
	Status    string `json:"status"`
}

// HoleResult is everything computed for one hole.
type HoleResult struct {
	Hole        int                     `json:"hole"`
	Seq         int                     `json:"seq"`
	Par         int                     `json:"par"`
	Players     []PlayerHoleResult      `json:"players"`
	Teams       []TeamHoleResult        `json:"teams"`
	Junk        []JunkAward             `json:"junk,omitempty"`
	Multipliers []MultiplierApplication `json:"multipliers,omitempty"`
	Rejected    []RejectedActivation    `json:"rejected,omitempty"`
	Skin        *SkinResult             `json:"skin,omitempty"`
	Match       *MatchStatus            `json:"match,omitempty"`
	Possible    float64                 `json:"possible_points"`
	Complete    bool                    `json:"complete"`
	Warnings    []Warning               `json:"warnings,omitempty"`
}

// Player returns the result for a player on the hole.
func (h HoleResult) Player(id string) (PlayerHoleResult, bool) {
	for _, p := range h.Players {
		if p.PlayerID == id {
			return p, true
		}
	}
	return PlayerHoleResult{}, false
}

// Team returns the result for a team on the hole.
func (h HoleResult) Team(id string) (TeamHoleResult, bool) {
	for _, t := range h.Teams {
		if t.TeamID == id {
			return t, true
		}
	}
	return TeamHoleResult{}, false
}
