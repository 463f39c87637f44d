package scoringservice

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
)

// Settle splits a pot across pools using the scoreboard's player metrics.
func (s *ScoringService) Settle(ctx context.Context, sb *scoringdomain.Scoreboard, pools []scoringdomain.Pool, potCents int64) (results.OperationResult[*scoringdomain.Settlement, error], error) {
	gameID := ""
	if sb != nil {
		gameID = sb.GameID
	}

	return withTelemetry(s, ctx, "Settle", gameID, func(ctx context.Context) (results.OperationResult[*scoringdomain.Settlement, error], error) {
		if sb == nil {
			return results.FailureResult[*scoringdomain.Settlement, error](ErrGameNotFound), nil
		}
		if potCents < 0 {
			return results.FailureResult[*scoringdomain.Settlement, error](fmt.Errorf("%w: %d", ErrInvalidPot, potCents)), nil
		}

		settlement, err := scoringdomain.Settle(pools, scoringdomain.MetricsFromScoreboard(sb), potCents)
		if err != nil {
			if scoringdomain.IsConfigurationError(err) {
				return results.FailureResult[*scoringdomain.Settlement, error](err), nil
			}
			return results.OperationResult[*scoringdomain.Settlement, error]{}, fmt.Errorf("failed to settle game: %w", err)
		}
		return results.SuccessResult[*scoringdomain.Settlement, error](settlement), nil
	})
}
