package scoringservice

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application/parsers"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/google/uuid"
)

// Service defines the contract for scoring operations. Domain failures such
// as a broken spec or an unpostable round come back as the result's Failure;
// the error return is reserved for infrastructure problems.
type Service interface {
	ComputeScoreboard(ctx context.Context, game scoringdomain.Game) (results.OperationResult[*scoringdomain.Scoreboard, error], error)
	SaveGame(ctx context.Context, game scoringdomain.Game) (results.OperationResult[*scoringdomain.Scoreboard, error], error)
	GetScoreboard(ctx context.Context, gameID string, view scoringdomain.View) (results.OperationResult[*scoringdomain.Scoreboard, error], error)
	RecomputeGame(ctx context.Context, gameID string) (results.OperationResult[*scoringdomain.Scoreboard, error], error)
	RecordScore(ctx context.Context, update ScoreUpdate) (RecomputeOperationResult, error)

	BuildPosting(ctx context.Context, req PostingRequest) (results.OperationResult[*scoringdomain.PostingPayload, error], error)
	SubmitPosting(ctx context.Context, req PostingRequest) (PostingOperationResult, error)
	ListPostings(ctx context.Context, gameID string) (results.OperationResult[[]scoringdb.Posting, error], error)

	ImportScorecard(ctx context.Context, filename string, data []byte) (results.OperationResult[*parsers.ParsedScorecard, error], error)
	ApplyScorecard(game scoringdomain.Game, card *parsers.ParsedScorecard, recordedAt time.Time) (scoringdomain.Game, []scoringdomain.Warning)
	ImportScorecardIntoGame(ctx context.Context, gameID, filename string, data []byte) (ScorecardImportOperationResult, error)
	RenderRunningTotals(ctx context.Context, sb *scoringdomain.Scoreboard) ([]byte, error)
	ParsePlayedAt(input string, now time.Time) (time.Time, error)

	Settle(ctx context.Context, sb *scoringdomain.Scoreboard, pools []scoringdomain.Pool, potCents int64) (results.OperationResult[*scoringdomain.Settlement, error], error)

	GetSpec(ctx context.Context, name string, version int) (results.OperationResult[*scoringdomain.GameSpec, error], error)
	ListSpecs(ctx context.Context) (results.OperationResult[[]scoringdomain.GameSpec, error], error)
}

// RecomputeOperationResult is the outcome of an edit to a stored game.
type RecomputeOperationResult = results.OperationResult[*RecomputeResult, error]

// PostingOperationResult is the outcome of a posting submission.
type PostingOperationResult = results.OperationResult[*PostingReceipt, error]

// SpecCatalog provides validated game specs.
type SpecCatalog interface {
	Get(ctx context.Context, name string, version int) (*scoringdomain.GameSpec, error)
	List(ctx context.Context) ([]scoringdomain.GameSpec, error)
}

//go:generate mockgen -destination=mocks/mock_posting_queue.go -package=mocks github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application PostingQueue

// PostingQueue schedules the submission of a stored posting.
type PostingQueue interface {
	EnqueuePosting(ctx context.Context, postingID uuid.UUID) error
}

// ScoreUpdate is one value recorded on a hole. Key defaults to the gross
// stroke count.
type ScoreUpdate struct {
	GameID     string    `json:"game_id"`
	PlayerID   string    `json:"player_id"`
	Hole       int       `json:"hole"`
	Key        string    `json:"key,omitempty"`
	Value      string    `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RecomputeResult is the scoreboard after an edit. Invalidations lists user
// multipliers on later holes that the edit made unavailable.
type RecomputeResult struct {
	Scoreboard    *scoringdomain.Scoreboard    `json:"scoreboard"`
	Invalidations []scoringdomain.Invalidation `json:"invalidations,omitempty"`
	Changed       bool                         `json:"changed"`
}

// PostingRequest names a round to post to the handicap authority.
type PostingRequest struct {
	GameID    string `json:"game_id"`
	PlayerID  string `json:"player_id"`
	ScoreType string `json:"score_type,omitempty"`
}

// PostingReceipt is a stored posting waiting for submission.
type PostingReceipt struct {
	PostingID   uuid.UUID                      `json:"posting_id"`
	Status      scoringdb.PostingStatus        `json:"status"`
	Payload     *scoringdomain.PostingPayload  `json:"payload"`
	Adjustments []scoringdomain.HoleAdjustment `json:"adjustments"`
}
