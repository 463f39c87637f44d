package scoringdomain

import (
	"strconv"
	"strings"
)

// HoleScore is a normalized score. When Scored is false the numeric fields are
// meaningless and must not be summed.
type HoleScore struct {
	Scored   bool `json:"scored"`
	Gross    int  `json:"gross,omitempty"`
	Pops     int  `json:"pops"`
	Net      int  `json:"net,omitempty"`
	Par      int  `json:"par"`
	ToPar    int  `json:"to_par,omitempty"`
	NetToPar int  `json:"net_to_par,omitempty"`
}

// Normalize derives net and to-par values from a raw score.
func Normalize(score *Score, pops, par int) HoleScore {
	hs := HoleScore{Pops: pops, Par: par}
	if score == nil {
		return hs
	}
	raw, ok := score.Get(ValueKeyGross)
	if !ok {
		return hs
	}
	gross, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || gross <= 0 {
		return hs
	}
	hs.Scored = true
	hs.Gross = gross
	hs.Net = gross - pops
	hs.ToPar = gross - par
	hs.NetToPar = hs.Net - par
	return hs
}

// Value returns the gross or net figure used by a basis.
func (h HoleScore) Value(basedOn string) int {
	if basedOn == BasedOnGross {
		return h.Gross
	}
	return h.Net
}

// ValueToPar returns the to-par figure used by a basis.
func (h HoleScore) ValueToPar(basedOn string) int {
	if basedOn == BasedOnGross {
		return h.ToPar
	}
	return h.NetToPar
}

// ScoreToParName names a to-par result.
func ScoreToParName(toPar int) string {
	switch {
	case toPar <= -4:
		return "condor"
	case toPar == -3:
		return "albatross"
	case toPar == -2:
		return "eagle"
	case toPar == -1:
		return "birdie"
	case toPar == 0:
		return "par"
	case toPar == 1:
		return "bogey"
	case toPar == 2:
		return "double bogey"
	case toPar == 3:
		return "triple bogey"
	}
	return "+" + strconv.Itoa(toPar)
}
