package scoringhandlers

import (
	"context"

	scoringevents "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/events"
)

// Handlers defines the event handlers of the scoring module.
type Handlers interface {
	HandleScoreRecordRequested(ctx context.Context, payload *scoringevents.ScoreRecordRequestedPayloadV1) ([]Result, error)
	HandleGameRecomputeRequested(ctx context.Context, payload *scoringevents.GameRecomputeRequestedPayloadV1) ([]Result, error)
	HandlePostingRequested(ctx context.Context, payload *scoringevents.PostingRequestedPayloadV1) ([]Result, error)
}
