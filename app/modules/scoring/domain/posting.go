package scoringdomain

import (
	"strconv"
)

// PlayedAtLayout is the date format the handicap authority expects.
const PlayedAtLayout = "2006-01-02"

// Score types accepted by the handicap authority.
const (
	ScoreTypeHome        = "H"
	ScoreTypeAway        = "A"
	ScoreTypeCompetition = "C"
)

// NetDoubleBogeyOver is how far over net par a hole may count for posting.
const NetDoubleBogeyOver = 2

// PostingInput is a finished round to post.
type PostingInput struct {
	Round          Round
	CourseHandicap *int
	ScoreType      string
}

// HoleDetail is one hole as submitted.
type HoleDetail struct {
	HoleNumber int `json:"hole_number"`
	RawScore   int `json:"raw_score"`
}

// HoleAdjustment shows the cap applied to one hole. It is kept locally and
// not submitted.
type HoleAdjustment struct {
	HoleNumber int `json:"hole_number"`
	Par        int `json:"par"`
	Pops       int `json:"pops"`
	RawScore   int `json:"raw_score"`
	Adjusted   int `json:"adjusted"`
}

// PostingPayload is what the handicap authority receives.
type PostingPayload struct {
	GolferID           string           `json:"golfer_id"`
	Gender             Gender           `json:"gender"`
	CourseID           string           `json:"course_id"`
	TeeSetID           string           `json:"tee_set_id"`
	PlayedAt           string           `json:"played_at"`
	ScoreType          string           `json:"score_type"`
	NumberOfHoles      int              `json:"number_of_holes"`
	HoleDetails        []HoleDetail     `json:"hole_details"`
	AdjustedGrossScore int              `json:"adjusted_gross_score"`
	Adjustments        []HoleAdjustment `json:"-"`
}

// AdjustHole caps a hole at net double bogey. The result never exceeds the
// raw score.
func AdjustHole(gross, par, pops int) int {
	return min(gross, par+pops+NetDoubleBogeyOver)
}

// BuildPostingPayload normalizes a round for submission. Every hole of the tee
// must be scored; partial rounds are rejected.
func BuildPostingPayload(in PostingInput) (*PostingPayload, error) {
	r := in.Round
	if r.Tee == nil || len(r.Tee.Holes) == 0 {
		return nil, &PostingError{RoundID: r.ID, Reason: "missing tee"}
	}
	if r.CourseID == "" {
		return nil, &PostingError{RoundID: r.ID, Reason: "missing course"}
	}
	if r.GolferID == "" {
		return nil, &PostingError{RoundID: r.ID, Reason: "missing golfer id"}
	}
	if err := r.Tee.Validate(); err != nil {
		return nil, &PostingError{RoundID: r.ID, Reason: err.Error()}
	}

	// Without a handicap the round posts off scratch.
	handicap, _ := EffectiveHandicap(RoundToGame{Round: r, CourseHandicap: in.CourseHandicap})
	pops := AllocatePops(handicap, r.Tee.Holes)

	scoreType := in.ScoreType
	if scoreType == "" {
		scoreType = ScoreTypeHome
	}
	p := &PostingPayload{
		GolferID:      r.GolferID,
		Gender:        r.Gender,
		CourseID:      r.CourseID,
		TeeSetID:      r.Tee.ID,
		PlayedAt:      r.PlayedAt.Format(PlayedAtLayout),
		ScoreType:     scoreType,
		NumberOfHoles: len(r.Tee.Holes),
	}
	if p.Gender == "" {
		p.Gender = r.Tee.Gender
	}

	for _, h := range r.Tee.Holes {
		raw, _ := r.Score(h.Number)
		hs := Normalize(raw, pops[h.Number], h.Par)
		if !hs.Scored {
			return nil, &PostingError{RoundID: r.ID, Reason: "hole " + strconv.Itoa(h.Number) + " is unscored"}
		}
		adjusted := AdjustHole(hs.Gross, h.Par, hs.Pops)
		p.HoleDetails = append(p.HoleDetails, HoleDetail{HoleNumber: h.Number, RawScore: hs.Gross})
		p.Adjustments = append(p.Adjustments, HoleAdjustment{HoleNumber: h.Number, Par: h.Par, Pops: hs.Pops, RawScore: hs.Gross, Adjusted: adjusted})
		p.AdjustedGrossScore += adjusted
	}
	return p, nil
}
