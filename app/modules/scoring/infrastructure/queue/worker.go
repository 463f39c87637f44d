package scoringqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/handicap"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"
)

// PostScoreWorker sends stored postings to the handicap authority. Submissions
// share one limiter so retries cannot flood the authority.
type PostScoreWorker struct {
	river.WorkerDefaults[PostScoreJob]

	repo      scoringdb.Repository
	submitter handicap.Submitter
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewPostScoreWorker creates the worker. A nil limiter means no limit.
func NewPostScoreWorker(logger *slog.Logger, repo scoringdb.Repository, submitter handicap.Submitter, limiter *rate.Limiter) *PostScoreWorker {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &PostScoreWorker{
		repo:      repo,
		submitter: submitter,
		limiter:   limiter,
		logger:    logger,
	}
}

// Work submits the posting. Rejections cancel the job; outages are retried.
func (w *PostScoreWorker) Work(ctx context.Context, job *river.Job[PostScoreJob]) error {
	id := job.Args.PostingID
	logger := w.logger.With(
		attr.String("posting_id", id.String()),
		attr.Int64("job_id", job.ID),
		attr.Int("attempt", job.Attempt),
	)

	posting, err := w.repo.GetPosting(ctx, nil, id)
	if err != nil {
		if errors.Is(err, scoringdb.ErrNotFound) {
			logger.Warn("Posting no longer exists, dropping job")
			return river.JobCancel(err)
		}
		return fmt.Errorf("failed to load posting: %w", err)
	}
	if posting.Status == scoringdb.PostingSubmitted {
		logger.Info("Posting already submitted, skipping", attr.String("external_id", posting.ExternalID))
		return nil
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	externalID, err := w.submitter.Submit(ctx, posting.Payload)
	status, cancel := submissionOutcome(err)

	lastError := ""
	if err != nil {
		lastError = err.Error()
	}
	if uerr := w.repo.UpdatePostingStatus(ctx, nil, id, status, externalID, lastError); uerr != nil {
		if err == nil {
			return fmt.Errorf("failed to mark posting submitted: %w", uerr)
		}
		logger.Error("Failed to record submission error", attr.Error(uerr))
	}

	switch {
	case err == nil:
		logger.Info("Posting submitted", attr.String("external_id", externalID))
		return nil
	case cancel:
		logger.Warn("Posting rejected", attr.Error(err))
		return river.JobCancel(err)
	default:
		logger.Warn("Posting submission failed, will retry", attr.Error(err))
		return err
	}
}

// submissionOutcome maps a submit result to the stored status and whether the
// job should stop retrying.
func submissionOutcome(err error) (scoringdb.PostingStatus, bool) {
	switch {
	case err == nil:
		return scoringdb.PostingSubmitted, false
	case errors.Is(err, handicap.ErrRejected):
		return scoringdb.PostingFailed, true
	default:
		return scoringdb.PostingPending, false
	}
}
