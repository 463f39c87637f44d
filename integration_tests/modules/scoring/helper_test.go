//go:build integration

package scoringintegrationtests

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringcatalog "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/catalog"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/Black-And-White-Club/golf-scoring/integration_tests/testutils"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestMain(m *testing.M) {
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	testutils.Shutdown(ctx)
	os.Exit(code)
}

type TestDeps struct {
	Ctx     context.Context
	Env     *testutils.TestEnvironment
	BunDB   *bun.DB
	Repo    scoringdb.Repository
	Service *scoringservice.ScoringService
	Logger  *slog.Logger
}

func SetupTestScoringService(t *testing.T, queue scoringservice.PostingQueue) TestDeps {
	t.Helper()

	env := testutils.GetOrCreateTestEnv(t)
	if err := testutils.CleanScoringTables(env.Ctx, env.DB); err != nil {
		t.Fatalf("Failed to clean scoring tables: %v", err)
	}

	catalog, err := scoringcatalog.NewWithSeeds("")
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := scoringdb.NewRepository(env.DB)
	service := scoringservice.NewScoringService(
		repo,
		catalog,
		queue,
		logger,
		scoringservice.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test_scoring_service"),
		env.DB,
	)

	return TestDeps{
		Ctx:     env.Ctx,
		Env:     env,
		BunDB:   env.DB,
		Repo:    repo,
		Service: service,
		Logger:  logger,
	}
}

func testTee() *scoringdomain.Tee {
	return &scoringdomain.Tee{
		ID:     "tee-white",
		Name:   "White",
		Gender: scoringdomain.GenderMale,
		Total:  scoringdomain.Rating{CourseRating: 35.1, SlopeRating: 113},
		Holes: []scoringdomain.HoleRating{
			{Number: 1, Par: 4, StrokeIndex: 1},
			{Number: 2, Par: 3, StrokeIndex: 3},
			{Number: 3, Par: 5, StrokeIndex: 2},
		},
	}
}

func testRound(id, name string, gross map[int]int) scoringdomain.RoundToGame {
	recorded := time.Date(2026, 5, 9, 14, 0, 0, 0, time.UTC)
	r := scoringdomain.Round{
		ID:         "round-" + id,
		PlayerID:   id,
		PlayerName: name,
		GolferID:   "ghin-" + id,
		CourseID:   "course-1",
		Tee:        testTee(),
		PlayedAt:   time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC),
	}
	for hole := 1; hole <= 3; hole++ {
		if g, ok := gross[hole]; ok {
			r.Scores = append(r.Scores, scoringdomain.Score{Hole: hole, Values: []scoringdomain.Value{
				{Key: scoringdomain.ValueKeyGross, Value: strconv.Itoa(g), RecordedAt: recorded},
			}})
		}
	}
	zero := 0
	return scoringdomain.RoundToGame{Round: r, CourseHandicap: &zero}
}

func testGame(id string) scoringdomain.Game {
	return scoringdomain.Game{
		ID:   id,
		Name: "Sunday nine",
		Spec: scoringdomain.GameSpec{Name: "stableford"},
		Holes: []scoringdomain.GameHole{
			{Hole: 1, Seq: 1},
			{Hole: 2, Seq: 2},
			{Hole: 3, Seq: 3},
		},
		Rounds: []scoringdomain.RoundToGame{
			testRound("a", "Alice", map[int]int{1: 3, 2: 3, 3: 5}),
			testRound("b", "Bob", map[int]int{1: 5, 2: 3, 3: 4}),
		},
	}
}

// stubSubmitter records submissions and answers with a fixed score id.
type stubSubmitter struct {
	mu        sync.Mutex
	submitted []scoringdomain.PostingPayload
}

func (s *stubSubmitter) Submit(_ context.Context, payload scoringdomain.PostingPayload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = append(s.submitted, payload)
	return "score-" + strconv.Itoa(len(s.submitted)), nil
}

func (s *stubSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.submitted)
}
