package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringcatalog "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/catalog"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/handicap"
	scoringhandlers "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/handlers"
	scoringhttp "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/http"
	scoringqueue "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/queue"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	scoringrouter "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/router"
	"github.com/Black-And-White-Club/golf-scoring/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Dependencies are the shared pieces the module is built from. A nil DB runs
// the module on in-memory storage without a posting queue.
type Dependencies struct {
	DB         *bun.DB
	Router     *message.Router
	Subscriber message.Subscriber
	Publisher  message.Publisher
	HTTPRouter chi.Router
	Registry   prometheus.Registerer
	Tracer     trace.Tracer
	Logger     *slog.Logger
}

// Module represents the scoring module.
type Module struct {
	Service       scoringservice.Service
	ScoringRouter *scoringrouter.ScoringRouter
	HTTPHandlers  *scoringhttp.Handlers
	Queue         *scoringqueue.Service
	logger        *slog.Logger
	config        *config.Config
	cancelFunc    context.CancelFunc
}

// NewScoringModule creates a new instance of the scoring module.
func NewScoringModule(ctx context.Context, cfg *config.Config, deps Dependencies) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("scoring.NewScoringModule called")

	catalog, err := scoringcatalog.NewWithSeeds(cfg.Scoring.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec catalog: %w", err)
	}

	var metrics scoringservice.Metrics = scoringservice.NoOpMetrics{}
	if deps.Registry != nil {
		metrics = scoringservice.NewPrometheusMetrics(deps.Registry)
	}

	var repo scoringdb.Repository
	if deps.DB != nil {
		repo = scoringdb.NewRepository(deps.DB)
	} else {
		logger.Warn("No database configured, scoring games are kept in memory")
		repo = scoringdb.NewMemoryRepository()
	}

	var queue *scoringqueue.Service
	var postingQueue scoringservice.PostingQueue
	if deps.DB != nil && cfg.Handicap.BaseURL != "" {
		submitter := handicap.NewClient(ctx, handicap.Config{
			BaseURL: cfg.Handicap.BaseURL,
			Token:   cfg.Handicap.Token,
			Timeout: cfg.Handicap.Timeout,
		}, logger)

		queue, err = scoringqueue.NewService(ctx, deps.DB, logger, scoringqueue.Options{
			DSN:           cfg.Postgres.DSN,
			RatePerSecond: cfg.Queue.RatePerSecond,
			Burst:         cfg.Queue.Burst,
			MaxWorkers:    cfg.Queue.MaxWorkers,
		}, metrics, repo, submitter)
		if err != nil {
			return nil, fmt.Errorf("failed to create posting queue: %w", err)
		}
		postingQueue = queue
	}

	service := scoringservice.NewScoringService(repo, catalog, postingQueue, logger, metrics, deps.Tracer, deps.DB)

	module := &Module{
		Service:      service,
		Queue:        queue,
		logger:       logger,
		config:       cfg,
		HTTPHandlers: scoringhttp.NewHandlers(service, logger, defaultView(cfg)),
	}

	if deps.HTTPRouter != nil {
		opts := scoringhttp.RouteOptions{Limits: cfg.HTTP}
		if cfg.JWT.Secret != "" {
			opts.Tokens = scoringhttp.NewTokenProvider(cfg.JWT.Secret)
		} else {
			logger.Warn("No JWT secret configured, scoring write routes are unauthenticated")
		}
		scoringhttp.Mount(deps.HTTPRouter, module.HTTPHandlers, opts)
	}

	if deps.Router != nil {
		module.ScoringRouter = scoringrouter.NewScoringRouter(logger, deps.Router, deps.Subscriber, deps.Publisher, deps.Tracer, metrics, deps.Registry)
		if err := module.ScoringRouter.Configure(ctx, scoringhandlers.NewScoringHandlers(service, logger)); err != nil {
			if queue != nil {
				_ = queue.Stop(ctx)
			}
			return nil, fmt.Errorf("failed to configure scoring router: %w", err)
		}
	}

	return module, nil
}

func defaultView(cfg *config.Config) scoringdomain.View {
	if v, ok := scoringdomain.ParseView(cfg.Scoring.DefaultView); ok {
		return v
	}
	return scoringdomain.ViewPoints
}

// Run starts the posting queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.Info("Starting scoring module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			m.logger.Error("Failed to start posting queue", attr.Error(err))
		}
	}

	<-ctx.Done()
	m.logger.Info("Scoring module goroutine stopped")
}

// Close stops the posting queue and any running operations.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping scoring module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		if err := m.Queue.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop posting queue: %w", err)
		}
	}

	m.logger.Info("Scoring module stopped")
	return nil
}
