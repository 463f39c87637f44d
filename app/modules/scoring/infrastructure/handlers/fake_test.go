package scoringhandlers

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application/parsers"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
)

type scoreboardResult = results.OperationResult[*scoringdomain.Scoreboard, error]

// FakeScoringService is a programmable stub for scoringservice.Service. Unset
// funcs return zero results; Trace lists the methods called.
type FakeScoringService struct {
	trace []string

	RecordScoreFunc   func(ctx context.Context, update scoringservice.ScoreUpdate) (scoringservice.RecomputeOperationResult, error)
	RecomputeGameFunc func(ctx context.Context, gameID string) (scoreboardResult, error)
	SubmitPostingFunc func(ctx context.Context, req scoringservice.PostingRequest) (scoringservice.PostingOperationResult, error)
}

func NewFakeScoringService() *FakeScoringService {
	return &FakeScoringService{trace: []string{}}
}

func (f *FakeScoringService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeScoringService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScoringService) ComputeScoreboard(ctx context.Context, game scoringdomain.Game) (scoreboardResult, error) {
	f.record("ComputeScoreboard")
	return scoreboardResult{}, nil
}

func (f *FakeScoringService) SaveGame(ctx context.Context, game scoringdomain.Game) (scoreboardResult, error) {
	f.record("SaveGame")
	return scoreboardResult{}, nil
}

func (f *FakeScoringService) GetScoreboard(ctx context.Context, gameID string, view scoringdomain.View) (scoreboardResult, error) {
	f.record("GetScoreboard")
	return scoreboardResult{}, nil
}

func (f *FakeScoringService) RecomputeGame(ctx context.Context, gameID string) (scoreboardResult, error) {
	f.record("RecomputeGame")
	if f.RecomputeGameFunc != nil {
		return f.RecomputeGameFunc(ctx, gameID)
	}
	return scoreboardResult{}, nil
}

func (f *FakeScoringService) RecordScore(ctx context.Context, update scoringservice.ScoreUpdate) (scoringservice.RecomputeOperationResult, error) {
	f.record("RecordScore")
	if f.RecordScoreFunc != nil {
		return f.RecordScoreFunc(ctx, update)
	}
	return scoringservice.RecomputeOperationResult{}, nil
}

func (f *FakeScoringService) BuildPosting(ctx context.Context, req scoringservice.PostingRequest) (results.OperationResult[*scoringdomain.PostingPayload, error], error) {
	f.record("BuildPosting")
	return results.OperationResult[*scoringdomain.PostingPayload, error]{}, nil
}

func (f *FakeScoringService) SubmitPosting(ctx context.Context, req scoringservice.PostingRequest) (scoringservice.PostingOperationResult, error) {
	f.record("SubmitPosting")
	if f.SubmitPostingFunc != nil {
		return f.SubmitPostingFunc(ctx, req)
	}
	return scoringservice.PostingOperationResult{}, nil
}

func (f *FakeScoringService) ImportScorecard(ctx context.Context, filename string, data []byte) (results.OperationResult[*parsers.ParsedScorecard, error], error) {
	f.record("ImportScorecard")
	return results.OperationResult[*parsers.ParsedScorecard, error]{}, nil
}

func (f *FakeScoringService) ApplyScorecard(game scoringdomain.Game, card *parsers.ParsedScorecard, recordedAt time.Time) (scoringdomain.Game, []scoringdomain.Warning) {
	f.record("ApplyScorecard")
	return game, nil
}

func (f *FakeScoringService) ImportScorecardIntoGame(ctx context.Context, gameID, filename string, data []byte) (scoringservice.ScorecardImportOperationResult, error) {
	f.record("ImportScorecardIntoGame")
	return scoringservice.ScorecardImportOperationResult{}, nil
}

func (f *FakeScoringService) ListPostings(ctx context.Context, gameID string) (results.OperationResult[[]scoringdb.Posting, error], error) {
	f.record("ListPostings")
	return results.OperationResult[[]scoringdb.Posting, error]{}, nil
}

func (f *FakeScoringService) RenderRunningTotals(ctx context.Context, sb *scoringdomain.Scoreboard) ([]byte, error) {
	f.record("RenderRunningTotals")
	return nil, nil
}

func (f *FakeScoringService) ParsePlayedAt(input string, now time.Time) (time.Time, error) {
	f.record("ParsePlayedAt")
	return now, nil
}

func (f *FakeScoringService) Settle(ctx context.Context, sb *scoringdomain.Scoreboard, pools []scoringdomain.Pool, potCents int64) (results.OperationResult[*scoringdomain.Settlement, error], error) {
	f.record("Settle")
	return results.OperationResult[*scoringdomain.Settlement, error]{}, nil
}

func (f *FakeScoringService) GetSpec(ctx context.Context, name string, version int) (results.OperationResult[*scoringdomain.GameSpec, error], error) {
	f.record("GetSpec")
	return results.OperationResult[*scoringdomain.GameSpec, error]{}, nil
}

func (f *FakeScoringService) ListSpecs(ctx context.Context) (results.OperationResult[[]scoringdomain.GameSpec, error], error) {
	f.record("ListSpecs")
	return results.OperationResult[[]scoringdomain.GameSpec, error]{}, nil
}

var _ scoringservice.Service = (*FakeScoringService)(nil)
