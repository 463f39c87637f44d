package scoringqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/handicap"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

const (
	queueName          = "postings"
	defaultMaxAttempts = 10
)

// Metrics interface (shared with the scoring service metrics)
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService interface defines the contract for posting job operations
type QueueService interface {
	// EnqueuePosting queues a stored posting for submission
	EnqueuePosting(ctx context.Context, postingID uuid.UUID) error
	// GetPostingJobs returns the jobs of one posting (for debugging)
	GetPostingJobs(ctx context.Context, postingID uuid.UUID) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	// Start starts the queue service
	Start(ctx context.Context) error
	// Stop stops the queue service
	Stop(ctx context.Context) error
}

// Ensure Service implements QueueService
var _ QueueService = (*Service)(nil)

// Options tunes the posting queue.
type Options struct {
	DSN           string
	RatePerSecond float64
	Burst         int
	MaxWorkers    int
}

// Service runs posting submissions on River
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics Metrics
}

// NewService creates a River-based queue whose worker submits postings
// through submitter at no more than opts.RatePerSecond.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, opts Options, metrics Metrics, repo scoringdb.Repository, submitter handicap.Submitter) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_posting_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	ctxLogger.Info("Initializing posting queue service")

	// River requires pgx, not database/sql
	config, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewPostScoreWorker(ctxLogger, repo, submitter, newLimiter(opts)))

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			queueName:          {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))

	ctxLogger.Info("Posting queue service initialized successfully")
	return service, nil
}

func newLimiter(opts Options) *rate.Limiter {
	if opts.RatePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")

	s.logger.Info("Starting posting queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.metrics.RecordOperationDuration(ctx, "start_service", "river", time.Since(start))

	s.logger.Info("Posting queue service started successfully")
	return nil
}

// Stop stops the River queue service and closes its pool
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")

	s.logger.Info("Stopping posting queue service")

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()

	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.metrics.RecordOperationDuration(ctx, "stop_service", "river", time.Since(start))

	s.logger.Info("Posting queue service stopped successfully")
	return nil
}

// EnqueuePosting queues a stored posting for submission. Enqueuing the same
// posting twice while a job is pending is a no-op.
func (s *Service) EnqueuePosting(ctx context.Context, postingID uuid.UUID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_posting", "river")

	ctxLogger := s.logger.With(
		attr.String("posting_id", postingID.String()),
		attr.String("operation", "enqueue_posting"),
	)

	jobResult, err := s.client.Insert(ctx, PostScoreJob{PostingID: postingID}, &river.InsertOpts{
		Queue:       queueName,
		MaxAttempts: defaultMaxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to enqueue posting job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_posting", "river")
		return fmt.Errorf("failed to enqueue posting job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_posting", "river")
	s.metrics.RecordOperationDuration(ctx, "enqueue_posting", "river", time.Since(start))

	ctxLogger.Info("Posting job enqueued",
		attr.Int64("job_id", jobResult.Job.ID),
		attr.Bool("duplicate", jobResult.UniqueSkippedAsDuplicate))
	return nil
}

// GetPostingJobs returns the River jobs of a posting (for debugging)
func (s *Service) GetPostingJobs(ctx context.Context, postingID uuid.UUID) ([]JobInfo, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "get_posting_jobs", "river")

	type RiverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		CreatedAt   time.Time  `bun:"created_at"`
		Attempt     int16      `bun:"attempt"`
		MaxAttempts int16      `bun:"max_attempts"`
	}

	var jobs []RiverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", PostScoreJob{}.Kind()).
		Where("args->>'posting_id' = ?", postingID.String()).
		Order("created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		s.logger.Error("Failed to query posting jobs", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "get_posting_jobs", "river")
		return nil, fmt.Errorf("failed to query posting jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			PostingID:   postingID.String(),
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}

	s.metrics.RecordOperationSuccess(ctx, "get_posting_jobs", "river")
	s.metrics.RecordOperationDuration(ctx, "get_posting_jobs", "river", time.Since(start))
	return result, nil
}

// HealthCheck verifies the database behind the queue is reachable
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client not initialized")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("river database unreachable: %w", err)
	}
	return nil
}
