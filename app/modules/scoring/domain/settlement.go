package scoringdomain

import (
	"cmp"
	"fmt"
	"slices"
)

// Pool split types.
const (
	SplitPlaces        = "places"
	SplitPerUnit       = "per_unit"
	SplitWinnerTakeAll = "winner_take_all"
)

// Metrics a pool can rank players by.
const (
	MetricPoints      = "points"
	MetricPointsFront = "points_front"
	MetricPointsBack  = "points_back"
	MetricSkins       = "skins"
	MetricJunk        = "junk"
)

// DefaultPayoutPcts are the place percentages used when a pool gives none.
var DefaultPayoutPcts = map[int][]int{
	1: {100},
	2: {60, 40},
	3: {50, 30, 20},
	4: {45, 27, 18, 10},
	5: {40, 25, 17, 11, 7},
}

// Pool is one slice of the pot.
type Pool struct {
	Name       string `json:"name" yaml:"name"`
	Disp       string `json:"disp,omitempty" yaml:"disp,omitempty"`
	Pct        int    `json:"pct" yaml:"pct"`
	Metric     string `json:"metric" yaml:"metric"`
	SplitType  string `json:"split_type" yaml:"split_type"`
	PlacesPaid int    `json:"places_paid,omitempty" yaml:"places_paid,omitempty"`
	PayoutPcts []int  `json:"payout_pcts,omitempty" yaml:"payout_pcts,omitempty"`
}

// PlayerMetrics are the values a player is ranked on.
type PlayerMetrics struct {
	PlayerID   string
	PlayerName string
	Metrics    map[string]float64
}

// Payout is money won from one pool, in cents.
type Payout struct {
	PlayerID    string  `json:"player_id"`
	PlayerName  string  `json:"player_name,omitempty"`
	Pool        string  `json:"pool"`
	Place       int     `json:"place,omitempty"`
	MetricValue float64 `json:"metric_value"`
	Cents       int64   `json:"cents"`
}

// Debt is a settling payment between two players, in cents.
type Debt struct {
	FromPlayerID string `json:"from_player_id"`
	ToPlayerID   string `json:"to_player_id"`
	Cents        int64  `json:"cents"`
}

// Settlement is the money outcome of a game.
type Settlement struct {
	PotCents     int64            `json:"pot_cents"`
	BuyInCents   int64            `json:"buy_in_cents"`
	Payouts      []Payout         `json:"payouts"`
	NetPositions map[string]int64 `json:"net_positions"`
	Debts        []Debt           `json:"debts"`
}

// MetricsFromScoreboard extracts the standard metrics for every player.
func MetricsFromScoreboard(sb *Scoreboard) []PlayerMetrics {
	out := make([]PlayerMetrics, 0, len(sb.Players))
	for _, p := range sb.Players {
		out = append(out, PlayerMetrics{
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			Metrics: map[string]float64{
				MetricPoints:      p.Total.Points,
				MetricPointsFront: p.Front.Points,
				MetricPointsBack:  p.Back.Points,
				MetricSkins:       p.Total.Skins,
				MetricJunk:        p.Total.Junk,
			},
		})
	}
	return out
}

// ValidatePools checks that pool percentages cover the pot and split types are known.
func ValidatePools(pools []Pool) error {
	total := 0
	for _, p := range pools {
		switch p.SplitType {
		case SplitPlaces, SplitPerUnit, SplitWinnerTakeAll:
		default:
			return &ConfigurationError{Reason: fmt.Sprintf("pool %s has unknown split type %q", p.Name, p.SplitType)}
		}
		if p.Pct < 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("pool %s has a negative pct", p.Name)}
		}
		total += p.Pct
	}
	if len(pools) > 0 && total != 100 {
		return &ConfigurationError{Reason: fmt.Sprintf("pool percentages add up to %d, want 100", total)}
	}
	return nil
}

func payoutPcts(places int, custom []int) []int {
	if len(custom) == places {
		return custom
	}
	if d, ok := DefaultPayoutPcts[places]; ok {
		return d
	}
	return DefaultPayoutPcts[3]
}

func pctOf(cents int64, pct int) int64 {
	return (cents*int64(pct) + 50) / 100
}

type rankedMetric struct {
	id    string
	name  string
	value float64
}

// PoolPayouts splits one pool's cents. The last paid share takes the rounding
// remainder so the pool is paid out exactly.
func PoolPayouts(pool Pool, players []PlayerMetrics, cents int64) []Payout {
	ranked := make([]rankedMetric, 0, len(players))
	for _, p := range players {
		v := p.Metrics[pool.Metric]
		if v == 0 && pool.SplitType != SplitPlaces {
			continue
		}
		ranked = append(ranked, rankedMetric{id: p.PlayerID, name: p.PlayerName, value: v})
	}
	if len(ranked) == 0 {
		return nil
	}
	slices.SortStableFunc(ranked, func(a, b rankedMetric) int { return cmp.Compare(b.value, a.value) })

	var out []Payout
	switch pool.SplitType {
	case SplitPlaces:
		places := pool.PlacesPaid
		if places == 0 {
			places = 3
		}
		places = min(places, len(ranked))
		pcts := payoutPcts(places, pool.PayoutPcts)
		var paid int64
		for i := 0; i < places && i < len(pcts); i++ {
			amount := pctOf(cents, pcts[i])
			if i == places-1 {
				amount = cents - paid
			}
			out = append(out, Payout{PlayerID: ranked[i].id, PlayerName: ranked[i].name, Pool: pool.Name, Place: i + 1, MetricValue: ranked[i].value, Cents: amount})
			paid += amount
		}
	case SplitPerUnit:
		var units float64
		eligible := ranked[:0:0]
		for _, r := range ranked {
			if r.value > 0 {
				units += r.value
				eligible = append(eligible, r)
			}
		}
		if units == 0 {
			return nil
		}
		var paid int64
		for i, r := range eligible {
			amount := int64(float64(cents)*r.value/units + 0.5)
			if i == len(eligible)-1 {
				amount = cents - paid
			}
			out = append(out, Payout{PlayerID: r.id, PlayerName: r.name, Pool: pool.Name, MetricValue: r.value, Cents: amount})
			paid += amount
		}
	case SplitWinnerTakeAll:
		w := ranked[0]
		out = append(out, Payout{PlayerID: w.id, PlayerName: w.name, Pool: pool.Name, Place: 1, MetricValue: w.value, Cents: cents})
	}
	return out
}

// Settle splits the pot across pools, nets each player's position against an
// equal buy-in and reduces the positions to a short list of payments.
func Settle(pools []Pool, players []PlayerMetrics, potCents int64) (*Settlement, error) {
	if err := ValidatePools(pools); err != nil {
		return nil, err
	}
	s := &Settlement{PotCents: potCents, NetPositions: make(map[string]int64, len(players))}
	if len(players) == 0 {
		return s, nil
	}

	var allocated int64
	for i, pool := range pools {
		share := pctOf(potCents, pool.Pct)
		if i == len(pools)-1 {
			share = potCents - allocated
		}
		allocated += share
		s.Payouts = append(s.Payouts, PoolPayouts(pool, players, share)...)
	}

	n := int64(len(players))
	s.BuyInCents = potCents / n
	remainder := potCents % n
	for i, p := range players {
		buyIn := s.BuyInCents
		if int64(i) < remainder {
			buyIn++
		}
		s.NetPositions[p.PlayerID] = -buyIn
	}
	for _, p := range s.Payouts {
		s.NetPositions[p.PlayerID] += p.Cents
	}
	s.Debts = ReconcileDebts(s.NetPositions, players)
	return s, nil
}

type balance struct {
	id    string
	cents int64
}

// ReconcileDebts pairs the largest debtor with the largest creditor until
// everyone is square. order fixes tie-breaking between equal balances.
func ReconcileDebts(positions map[string]int64, order []PlayerMetrics) []Debt {
	var creditors, debtors []balance
	for _, p := range order {
		net := positions[p.PlayerID]
		switch {
		case net > 0:
			creditors = append(creditors, balance{p.PlayerID, net})
		case net < 0:
			debtors = append(debtors, balance{p.PlayerID, -net})
		}
	}
	byAmount := func(a, b balance) int { return cmp.Compare(b.cents, a.cents) }
	slices.SortStableFunc(creditors, byAmount)
	slices.SortStableFunc(debtors, byAmount)

	var debts []Debt
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		pay := min(creditors[i].cents, debtors[j].cents)
		if pay > 0 {
			debts = append(debts, Debt{FromPlayerID: debtors[j].id, ToPlayerID: creditors[i].id, Cents: pay})
		}
		creditors[i].cents -= pay
		debtors[j].cents -= pay
		if creditors[i].cents == 0 {
			i++
		}
		if debtors[j].cents == 0 {
			j++
		}
	}
	return debts
}
