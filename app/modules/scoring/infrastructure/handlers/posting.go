package scoringhandlers

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	scoringevents "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/events"
)

// HandlePostingRequested stores and queues a handicap posting for a player.
func (h *ScoringHandlers) HandlePostingRequested(ctx context.Context, payload *scoringevents.PostingRequestedPayloadV1) ([]Result, error) {
	result, err := h.service.SubmitPosting(ctx, scoringservice.PostingRequest{
		GameID:    payload.GameID,
		PlayerID:  payload.PlayerID,
		ScoreType: payload.ScoreType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit posting: %w", err)
	}

	if result.Failure != nil {
		h.logger.WarnContext(ctx, "Posting refused",
			attr.String("game_id", payload.GameID),
			attr.String("player_id", payload.PlayerID),
			attr.Error(*result.Failure),
		)
		return []Result{{
			Topic: scoringevents.PostingFailedV1,
			Payload: &scoringevents.PostingFailedPayloadV1{
				GameID:   payload.GameID,
				PlayerID: payload.PlayerID,
				Reason:   (*result.Failure).Error(),
			},
		}}, nil
	}

	if result.Success == nil || *result.Success == nil {
		return nil, fmt.Errorf("submit posting returned no receipt")
	}
	receipt := *result.Success
	queued := &scoringevents.PostingQueuedPayloadV1{
		GameID:    payload.GameID,
		PlayerID:  payload.PlayerID,
		PostingID: receipt.PostingID,
	}
	if receipt.Payload != nil {
		queued.AdjustedGrossScore = receipt.Payload.AdjustedGrossScore
	}
	return []Result{{Topic: scoringevents.PostingQueuedV1, Payload: queued}}, nil
}
