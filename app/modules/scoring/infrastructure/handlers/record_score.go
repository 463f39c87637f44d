package scoringhandlers

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	scoringevents "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/events"
)

// HandleScoreRecordRequested records one hole value and announces the
// resulting scoreboard when its contents changed.
func (h *ScoringHandlers) HandleScoreRecordRequested(ctx context.Context, payload *scoringevents.ScoreRecordRequestedPayloadV1) ([]Result, error) {
	result, err := h.service.RecordScore(ctx, scoringservice.ScoreUpdate{
		GameID:     payload.GameID,
		PlayerID:   payload.PlayerID,
		Hole:       payload.Hole,
		Key:        payload.Key,
		Value:      payload.Value,
		RecordedAt: payload.RecordedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record score: %w", err)
	}

	if result.Failure != nil {
		h.logger.WarnContext(ctx, "Score rejected",
			attr.String("game_id", payload.GameID),
			attr.String("player_id", payload.PlayerID),
			attr.Int("hole", payload.Hole),
			attr.Error(*result.Failure),
		)
		return []Result{{
			Topic: scoringevents.ScoreRecordFailedV1,
			Payload: &scoringevents.ScoreRecordFailedPayloadV1{
				GameID:   payload.GameID,
				PlayerID: payload.PlayerID,
				Hole:     payload.Hole,
				Reason:   (*result.Failure).Error(),
			},
		}}, nil
	}

	if result.Success == nil || *result.Success == nil {
		return nil, fmt.Errorf("record score returned no result")
	}
	recomputed := *result.Success
	return h.recomputeResults(payload.GameID, payload.Hole, recomputed), nil
}

func (h *ScoringHandlers) recomputeResults(gameID string, editedHole int, r *scoringservice.RecomputeResult) []Result {
	var out []Result
	if r.Changed && r.Scoreboard != nil {
		out = append(out, Result{
			Topic: scoringevents.ScoreboardUpdatedV1,
			Payload: &scoringevents.ScoreboardUpdatedPayloadV1{
				GameID:     gameID,
				Scoreboard: *r.Scoreboard,
			},
		})
	}
	if len(r.Invalidations) > 0 {
		out = append(out, Result{
			Topic: scoringevents.MultipliersInvalidatedV1,
			Payload: &scoringevents.MultipliersInvalidatedPayloadV1{
				GameID:        gameID,
				EditedHole:    editedHole,
				Invalidations: r.Invalidations,
			},
		})
	}
	return out
}
