package scoringdomain

// Invalidation is a user multiplier that applied before an edit and no longer
// does after it.
type Invalidation struct {
	Hole   int    `json:"hole"`
	Name   string `json:"name"`
	TeamID string `json:"team_id"`
	Reason string `json:"reason"`
}

// DetectInvalidations compares scoreboards from before and after an edit to
// editedHole and lists the activated multipliers on later holes that lost
// their availability. Each activation is reported once, at the hole it was
// activated on.
func DetectInvalidations(before, after *Scoreboard, editedHole int) []Invalidation {
	if before == nil || after == nil {
		return nil
	}

	type key struct {
		hole int
		name string
		team string
	}
	applied := make(map[key]bool)
	for _, h := range before.Holes {
		if h.Hole <= editedHole {
			continue
		}
		for _, m := range h.Multipliers {
			if m.Activated && m.FirstHole > editedHole {
				applied[key{m.FirstHole, m.Name, m.TeamID}] = true
			}
		}
	}

	var out []Invalidation
	for _, h := range after.Holes {
		if h.Hole <= editedHole {
			continue
		}
		for _, rj := range h.Rejected {
			if applied[key{h.Hole, rj.Name, rj.TeamID}] {
				out = append(out, Invalidation{Hole: h.Hole, Name: rj.Name, TeamID: rj.TeamID, Reason: rj.Reason})
			}
		}
	}
	return out
}
