package scoringservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type postingResult = results.OperationResult[*scoringdomain.PostingPayload, error]

// BuildPosting normalizes a player's round into the payload the handicap
// authority accepts. Nothing is stored.
func (s *ScoringService) BuildPosting(ctx context.Context, req PostingRequest) (postingResult, error) {
	return withTelemetry(s, ctx, "BuildPosting", req.GameID, func(ctx context.Context) (postingResult, error) {
		payload, _, failure, err := s.postingFor(ctx, nil, req)
		if err != nil {
			return postingResult{}, err
		}
		if failure != nil {
			return results.FailureResult[*scoringdomain.PostingPayload, error](failure), nil
		}
		return results.SuccessResult[*scoringdomain.PostingPayload, error](payload), nil
	})
}

// postingFor loads the player's round and builds its payload. A missing game,
// player or unpostable round is reported as failure.
func (s *ScoringService) postingFor(ctx context.Context, db bun.IDB, req PostingRequest) (*scoringdomain.PostingPayload, *scoringdomain.RoundToGame, error, error) {
	record, err := s.repo.GetGame(ctx, db, req.GameID)
	if err != nil {
		if errors.Is(err, scoringdb.ErrNotFound) {
			return nil, nil, ErrGameNotFound, nil
		}
		return nil, nil, nil, fmt.Errorf("failed to get game: %w", err)
	}

	rtg, ok := record.Definition.Round(req.PlayerID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrPlayerNotInGame, req.PlayerID), nil
	}

	payload, err := scoringdomain.BuildPostingPayload(scoringdomain.PostingInput{
		Round:          rtg.Round,
		CourseHandicap: rtg.CourseHandicap,
		ScoreType:      req.ScoreType,
	})
	if err != nil {
		if scoringdomain.IsPostingError(err) {
			return nil, nil, err, nil
		}
		return nil, nil, nil, fmt.Errorf("failed to build posting: %w", err)
	}
	return payload, rtg, nil, nil
}

// SubmitPosting stores a pending posting and queues it for submission. The
// job is enqueued only after the posting is committed.
func (s *ScoringService) SubmitPosting(ctx context.Context, req PostingRequest) (results.OperationResult[*PostingReceipt, error], error) {
	submitTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*PostingReceipt, error], error) {
		return s.submitPostingLogic(ctx, db, req)
	}

	return withTelemetry(s, ctx, "SubmitPosting", req.GameID, func(ctx context.Context) (results.OperationResult[*PostingReceipt, error], error) {
		result, err := runInTx(s, ctx, submitTx)
		if err != nil || !result.IsSuccess() {
			return result, err
		}

		receipt := *result.Success
		if s.queue == nil {
			s.logger.WarnContext(ctx, "No posting queue configured, posting left pending",
				attr.ExtractCorrelationID(ctx),
				attr.String("posting_id", receipt.PostingID.String()),
			)
			return result, nil
		}
		if err := s.queue.EnqueuePosting(ctx, receipt.PostingID); err != nil {
			return results.OperationResult[*PostingReceipt, error]{}, fmt.Errorf("failed to enqueue posting: %w", err)
		}
		return result, nil
	})
}

func (s *ScoringService) submitPostingLogic(ctx context.Context, db bun.IDB, req PostingRequest) (results.OperationResult[*PostingReceipt, error], error) {
	payload, rtg, failure, err := s.postingFor(ctx, db, req)
	if err != nil {
		return results.OperationResult[*PostingReceipt, error]{}, err
	}
	if failure != nil {
		return results.FailureResult[*PostingReceipt, error](failure), nil
	}

	posting := &scoringdb.Posting{
		GameID:      req.GameID,
		RoundID:     rtg.Round.ID,
		PlayerID:    req.PlayerID,
		GolferID:    payload.GolferID,
		Payload:     *payload,
		Adjustments: payload.Adjustments,
		Status:      scoringdb.PostingPending,
	}
	if err := s.repo.CreatePosting(ctx, db, posting); err != nil {
		return results.OperationResult[*PostingReceipt, error]{}, fmt.Errorf("failed to create posting: %w", err)
	}

	return results.SuccessResult[*PostingReceipt, error](&PostingReceipt{
		PostingID:   posting.ID,
		Status:      posting.Status,
		Payload:     payload,
		Adjustments: payload.Adjustments,
	}), nil
}

// ListPostings returns the postings recorded for a game, oldest first.
func (s *ScoringService) ListPostings(ctx context.Context, gameID string) (results.OperationResult[[]scoringdb.Posting, error], error) {
	return withTelemetry(s, ctx, "ListPostings", gameID, func(ctx context.Context) (results.OperationResult[[]scoringdb.Posting, error], error) {
		postings, err := s.repo.ListPostings(ctx, nil, gameID)
		if err != nil {
			return results.OperationResult[[]scoringdb.Posting, error]{}, fmt.Errorf("failed to list postings: %w", err)
		}
		return results.SuccessResult[[]scoringdb.Posting, error](postings), nil
	})
}
