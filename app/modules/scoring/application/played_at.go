package scoringservice

import (
	"fmt"
	"strings"
	"time"

	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/en"
)

var playedAtLayouts = []string{
	scoringdomain.PlayedAtLayout,
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParsePlayedAt reads the date a round was played. Explicit dates are tried
// first, then casual English such as "yesterday". The result is midnight of
// that day in now's location and may not be after today.
func (s *ScoringService) ParsePlayedAt(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, ErrUnrecognizedPlayedAt
	}
	loc := now.Location()

	parsed, ok := parseLayouts(input, loc)
	if !ok {
		w := when.New(nil)
		w.Add(en.All...)

		r, err := w.Parse(input, now)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnrecognizedPlayedAt, input, err)
		}
		if r == nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedPlayedAt, input)
		}
		parsed = r.Time.In(loc)
	}

	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.After(today) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrPlayedAtInFuture, day.Format(scoringdomain.PlayedAtLayout))
	}
	return day, nil
}

func parseLayouts(input string, loc *time.Location) (time.Time, bool) {
	for _, layout := range playedAtLayouts {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
