//go:build integration

package scoringintegrationtests

import (
	"io"
	"log/slog"
	"testing"
	"time"

	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringqueue "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/queue"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/golf-scoring/integration_tests/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalPoints(t *testing.T, sb *scoringdomain.Scoreboard, playerID string) float64 {
	t.Helper()
	for _, p := range sb.Players {
		if p.PlayerID == playerID {
			return p.Total.Points
		}
	}
	t.Fatalf("player %s missing from scoreboard", playerID)
	return 0
}

func TestSaveGame_PersistsDefinitionAndSnapshot(t *testing.T) {
	deps := SetupTestScoringService(t, nil)

	res, err := deps.Service.SaveGame(deps.Ctx, testGame("game-save"))
	require.NoError(t, err)
	require.NotNil(t, res.Success, "expected success, got %v", res.Failure)

	stored, err := deps.Repo.GetGame(deps.Ctx, nil, "game-save")
	require.NoError(t, err)
	assert.Equal(t, "stableford", stored.SpecName)
	assert.Equal(t, scoringdomain.SpecTypePoints, stored.Definition.Spec.Type, "the resolved spec is stored with the game")

	snapshot, err := deps.Repo.GetSnapshot(deps.Ctx, nil, "game-save")
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.Hash)
	assert.Equal(t, totalPoints(t, *res.Success, "a"), totalPoints(t, &snapshot.Scoreboard, "a"))

	got, err := deps.Service.GetScoreboard(deps.Ctx, "game-save", scoringdomain.ViewGross)
	require.NoError(t, err)
	require.NotNil(t, got.Success)
	assert.Equal(t, scoringdomain.ViewGross, (*got.Success).View)
}

func TestRecordScore_UpdatesStoredGame(t *testing.T) {
	deps := SetupTestScoringService(t, nil)

	_, err := deps.Service.SaveGame(deps.Ctx, testGame("game-edit"))
	require.NoError(t, err)
	before, err := deps.Repo.GetSnapshot(deps.Ctx, nil, "game-edit")
	require.NoError(t, err)

	res, err := deps.Service.RecordScore(deps.Ctx, scoringservice.ScoreUpdate{
		GameID:     "game-edit",
		PlayerID:   "b",
		Hole:       1,
		Value:      "3",
		RecordedAt: time.Date(2026, 5, 9, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Success, "expected success, got %v", res.Failure)
	assert.True(t, res.Success.Changed)

	after, err := deps.Repo.GetSnapshot(deps.Ctx, nil, "game-edit")
	require.NoError(t, err)
	assert.NotEqual(t, before.Hash, after.Hash)
	assert.Greater(t, totalPoints(t, &after.Scoreboard, "b"), totalPoints(t, &before.Scoreboard, "b"))

	again, err := deps.Service.RecomputeGame(deps.Ctx, "game-edit")
	require.NoError(t, err)
	require.NotNil(t, again.Success)
	unchanged, err := deps.Repo.GetSnapshot(deps.Ctx, nil, "game-edit")
	require.NoError(t, err)
	assert.Equal(t, after.Hash, unchanged.Hash)
}

func TestRecordScore_UnknownGameIsFailure(t *testing.T) {
	deps := SetupTestScoringService(t, nil)

	res, err := deps.Service.RecordScore(deps.Ctx, scoringservice.ScoreUpdate{
		GameID: "missing", PlayerID: "a", Hole: 1, Value: "4",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.ErrorIs(t, *res.Failure, scoringservice.ErrGameNotFound)
}

func TestSubmitPosting_QueueSubmitsToHandicapAuthority(t *testing.T) {
	env := testutils.GetOrCreateTestEnv(t)
	submitter := &stubSubmitter{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := scoringdb.NewRepository(env.DB)
	queue, err := scoringqueue.NewService(env.Ctx, env.DB, logger, scoringqueue.Options{
		DSN:           env.DSN,
		RatePerSecond: 50,
		Burst:         1,
		MaxWorkers:    1,
	}, scoringservice.NoOpMetrics{}, repo, submitter)
	require.NoError(t, err)
	require.NoError(t, queue.Start(env.Ctx))
	t.Cleanup(func() { _ = queue.Stop(env.Ctx) })
	require.NoError(t, queue.HealthCheck(env.Ctx))

	deps := SetupTestScoringService(t, queue)
	_, err = deps.Service.SaveGame(deps.Ctx, testGame("game-post"))
	require.NoError(t, err)

	res, err := deps.Service.SubmitPosting(deps.Ctx, scoringservice.PostingRequest{GameID: "game-post", PlayerID: "b"})
	require.NoError(t, err)
	require.NotNil(t, res.Success, "expected success, got %v", res.Failure)
	postingID := res.Success.PostingID

	require.Eventually(t, func() bool {
		p, err := repo.GetPosting(env.Ctx, nil, postingID)
		return err == nil && p.Status == scoringdb.PostingSubmitted
	}, 20*time.Second, 200*time.Millisecond, "posting was never submitted")

	posting, err := repo.GetPosting(env.Ctx, nil, postingID)
	require.NoError(t, err)
	assert.Equal(t, "score-1", posting.ExternalID)
	assert.Equal(t, 1, posting.Attempts)
	assert.Equal(t, 1, submitter.count())
	assert.Equal(t, 12, posting.Payload.AdjustedGrossScore)

	jobs, err := queue.GetPostingJobs(env.Ctx, postingID)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}
