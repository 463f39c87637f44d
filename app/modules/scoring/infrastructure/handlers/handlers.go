package scoringhandlers

import (
	"log/slog"

	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
)

// ScoringHandlers handles scoring events.
type ScoringHandlers struct {
	service scoringservice.Service
	logger  *slog.Logger
}

// NewScoringHandlers creates a new ScoringHandlers.
func NewScoringHandlers(service scoringservice.Service, logger *slog.Logger) *ScoringHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringHandlers{
		service: service,
		logger:  logger,
	}
}

var _ Handlers = (*ScoringHandlers)(nil)
