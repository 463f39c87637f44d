package scoringdomain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// View selects what the leaderboard ranks by.
type View string

const (
	ViewGross  View = "gross"
	ViewNet    View = "net"
	ViewPoints View = "points"
)

// ParseView reads a view name.
func ParseView(s string) (View, bool) {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewGross:
		return ViewGross, true
	case ViewNet:
		return ViewNet, true
	case ViewPoints:
		return ViewPoints, true
	}
	return "", false
}

// DefaultView is the view a spec type is usually shown in.
func DefaultView(t SpecType) View {
	if t == SpecTypeMatchPlay {
		return ViewNet
	}
	return ViewPoints
}

// Totals sums scored holes. HolesPlayed counts only scored holes. Junk awarded
// from manual flags on an unscored hole still adds to Points and Junk and is
// counted in JunkHoles.
type Totals struct {
	Gross       int     `json:"gross"`
	Net         int     `json:"net"`
	Pops        int     `json:"pops"`
	Points      float64 `json:"points"`
	Junk        float64 `json:"junk"`
	Skins       float64 `json:"skins"`
	HolesPlayed int     `json:"holes_played"`
	JunkHoles   int     `json:"junk_holes,omitempty"`
}

// Split breaks totals into the front nine, the back nine and the whole round.
type Split struct {
	Front Totals `json:"front"`
	Back  Totals `json:"back"`
	Total Totals `json:"total"`
}

func (s *Split) add(hole int, t Totals) {
	part := &s.Back
	if hole <= 9 {
		part = &s.Front
	}
	for _, dst := range []*Totals{part, &s.Total} {
		dst.Gross += t.Gross
		dst.Net += t.Net
		dst.Pops += t.Pops
		dst.Points += t.Points
		dst.Junk += t.Junk
		dst.Skins += t.Skins
		dst.HolesPlayed += t.HolesPlayed
		dst.JunkHoles += t.JunkHoles
	}
}

// PlayerTotals is a player's aggregate over the game.
type PlayerTotals struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Split
}

// TeamTotals is a team's aggregate. Gross and net sum the team's low ball.
type TeamTotals struct {
	TeamID       string   `json:"team_id"`
	PlayerIDs    []string `json:"player_ids"`
	RunningTotal float64  `json:"running_total"`
	Split
}

// LeaderboardEntry is one line of the leaderboard. Position is zero for
// players who have not scored a hole, or on the points view earned junk.
type LeaderboardEntry struct {
	Position    int     `json:"position"`
	TieCount    int     `json:"tie_count"`
	PlayerID    string  `json:"player_id"`
	PlayerName  string  `json:"player_name,omitempty"`
	Value       float64 `json:"value"`
	HolesPlayed int     `json:"holes_played"`
	Display     string  `json:"display"`
}

// Scoreboard is the read-only result of scoring a game.
type Scoreboard struct {
	GameID      string             `json:"game_id"`
	GameName    string             `json:"game_name,omitempty"`
	Spec        string             `json:"spec"`
	Type        SpecType           `json:"type"`
	View        View               `json:"view"`
	Holes       []HoleResult       `json:"holes"`
	Players     []PlayerTotals     `json:"players"`
	Teams       []TeamTotals       `json:"teams"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Match       *MatchStatus       `json:"match,omitempty"`
	Warnings    []Warning          `json:"warnings,omitempty"`
}

// Aggregate sums hole results into front, back and total splits and builds the
// leaderboard for view. It recomputes everything from the holes.
func Aggregate(holes []HoleResult, view View) Scoreboard {
	sb := Scoreboard{View: view, Holes: holes}

	playerIdx := make(map[string]int)
	teamIdx := make(map[string]int)
	for _, h := range holes {
		for _, p := range h.Players {
			i, ok := playerIdx[p.PlayerID]
			if !ok {
				i = len(sb.Players)
				playerIdx[p.PlayerID] = i
				sb.Players = append(sb.Players, PlayerTotals{PlayerID: p.PlayerID, PlayerName: p.PlayerName})
			}
			junk := sumJunk(p.Junk)
			if !p.Score.Scored {
				if len(p.Junk) > 0 {
					sb.Players[i].add(h.Hole, Totals{Points: p.Points, Junk: junk, JunkHoles: 1})
				}
				continue
			}
			sb.Players[i].add(h.Hole, Totals{
				Gross:       p.Score.Gross,
				Net:         p.Score.Net,
				Pops:        p.Score.Pops,
				Points:      p.Points,
				Junk:        junk,
				Skins:       p.Skins,
				HolesPlayed: 1,
				JunkHoles:   min(len(p.Junk), 1),
			})
		}
		for _, t := range h.Teams {
			i, ok := teamIdx[t.TeamID]
			if !ok {
				i = len(sb.Teams)
				teamIdx[t.TeamID] = i
				sb.Teams = append(sb.Teams, TeamTotals{TeamID: t.TeamID})
			}
			sb.Teams[i].PlayerIDs = append([]string(nil), t.PlayerIDs...)
			sb.Teams[i].RunningTotal = t.RunningTotal
			junk := sumJunk(t.Junk)
			if !t.Net.Scored {
				// Member flags reach the team through its points.
				if len(t.Junk) > 0 || t.Points != 0 {
					sb.Teams[i].add(h.Hole, Totals{Points: t.Points, Junk: junk, JunkHoles: 1})
				}
				continue
			}
			sb.Teams[i].add(h.Hole, Totals{
				Gross:       t.Gross.LowBall,
				Net:         t.Net.LowBall,
				Points:      t.Points,
				Junk:        junk,
				HolesPlayed: 1,
				JunkHoles:   min(len(t.Junk), 1),
			})
		}
		sb.Warnings = append(sb.Warnings, h.Warnings...)
	}

	sb.Leaderboard = leaderboard(sb.Players, view)
	return sb
}

func sumJunk(awards []JunkAward) float64 {
	total := 0.0
	for _, j := range awards {
		total += j.Value
	}
	return total
}

func leaderboard(players []PlayerTotals, view View) []LeaderboardEntry {
	value := func(p PlayerTotals) float64 {
		switch view {
		case ViewGross:
			return float64(p.Total.Gross)
		case ViewNet:
			return float64(p.Total.Net)
		}
		return p.Total.Points
	}
	better := "lower"
	if view == ViewPoints {
		better = "higher"
	}

	var played, unplayed []PlayerTotals
	for _, p := range players {
		// Junk alone has no gross or net, so it only places a player on the points board.
		if p.Total.HolesPlayed > 0 || (view == ViewPoints && p.Total.JunkHoles > 0) {
			played = append(played, p)
		} else {
			unplayed = append(unplayed, p)
		}
	}

	out := make([]LeaderboardEntry, 0, len(players))
	for _, rk := range RankWithTies(played, value, better) {
		v := value(rk.Item)
		out = append(out, LeaderboardEntry{
			Position:    rk.Rank,
			TieCount:    rk.TieCount,
			PlayerID:    rk.Item.PlayerID,
			PlayerName:  rk.Item.PlayerName,
			Value:       v,
			HolesPlayed: rk.Item.Total.HolesPlayed,
			Display:     formatValue(v, view),
		})
	}
	for _, p := range unplayed {
		out = append(out, LeaderboardEntry{PlayerID: p.PlayerID, PlayerName: p.PlayerName, Display: "-"})
	}
	return out
}

func formatValue(v float64, view View) string {
	if view != ViewPoints {
		return strconv.Itoa(int(v))
	}
	return FormatPoints(v)
}

// FormatPoints renders points with a sign and at most two decimals.
func FormatPoints(v float64) string {
	v = math.Round(v*100) / 100
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

// WithView returns the scoreboard re-aggregated for another view.
func (sb Scoreboard) WithView(view View) Scoreboard {
	out := Aggregate(sb.Holes, view)
	out.GameID, out.GameName, out.Spec, out.Type, out.Match = sb.GameID, sb.GameName, sb.Spec, sb.Type, sb.Match
	out.Warnings = sb.Warnings
	return out
}

// Hash fingerprints the scoreboard contents. Equal inputs hash equally.
func (sb Scoreboard) Hash() (string, error) {
	b, err := json.Marshal(sb)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
