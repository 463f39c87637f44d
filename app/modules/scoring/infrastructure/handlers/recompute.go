package scoringhandlers

import (
	"context"
	"fmt"

	scoringevents "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/events"
)

// HandleGameRecomputeRequested rescores a stored game, typically after its
// spec was revised in the catalog.
func (h *ScoringHandlers) HandleGameRecomputeRequested(ctx context.Context, payload *scoringevents.GameRecomputeRequestedPayloadV1) ([]Result, error) {
	result, err := h.service.RecomputeGame(ctx, payload.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute game: %w", err)
	}
	if result.Failure != nil {
		return []Result{{
			Topic: scoringevents.GameRecomputeFailedV1,
			Payload: &scoringevents.GameRecomputeFailedPayloadV1{
				GameID: payload.GameID,
				Reason: (*result.Failure).Error(),
			},
		}}, nil
	}
	if result.Success == nil || *result.Success == nil {
		return nil, fmt.Errorf("recompute returned no scoreboard")
	}
	return []Result{{
		Topic: scoringevents.ScoreboardUpdatedV1,
		Payload: &scoringevents.ScoreboardUpdatedPayloadV1{
			GameID:     payload.GameID,
			Scoreboard: **result.Success,
		},
	}}, nil
}
