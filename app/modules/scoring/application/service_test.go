package scoringservice

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	loggerfrolfbot "github.com/Black-And-White-Club/frolf-bot-shared/observability/otel/logging"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application/mocks"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application/parsers"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringcatalog "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/catalog"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"
)

var testNow = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

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
				{Key: scoringdomain.ValueKeyGross, Value: strconv.Itoa(g), RecordedAt: testNow.Add(-time.Hour)},
			}})
		}
	}
	zero := 0
	return scoringdomain.RoundToGame{Round: r, CourseHandicap: &zero}
}

// testGame is a three-hole stableford game named by spec only, so the
// catalog has to fill the rules in.
func testGame() scoringdomain.Game {
	return scoringdomain.Game{
		ID:   "game-1",
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

func newTestService(t *testing.T, repo scoringdb.Repository, queue PostingQueue) *ScoringService {
	t.Helper()
	catalog, err := scoringcatalog.NewWithSeeds("")
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	svc := NewScoringService(repo, catalog, queue, loggerfrolfbot.NoOpLogger, NoOpMetrics{}, noop.NewTracerProvider().Tracer("test"), nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func countTrace(trace []string, step string) int {
	n := 0
	for _, s := range trace {
		if s == step {
			n++
		}
	}
	return n
}

func playerTotal(t *testing.T, sb *scoringdomain.Scoreboard, id string) float64 {
	t.Helper()
	for _, p := range sb.Players {
		if p.PlayerID == id {
			return p.Total.Points
		}
	}
	t.Fatalf("player %s missing from scoreboard", id)
	return 0
}

func TestScoringService_SaveGame(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		game   func() scoringdomain.Game
		verify func(t *testing.T, res scoreboardResult, err error, fake *FakeScoringRepository)
	}{
		{
			name: "success - resolves the spec and stores game and snapshot",
			game: testGame,
			verify: func(t *testing.T, res scoreboardResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Success == nil {
					t.Fatalf("expected success, got failure %v", res.Failure)
				}
				sb := *res.Success
				if sb.Type != scoringdomain.SpecTypePoints {
					t.Errorf("expected the catalog's points spec, got %q", sb.Type)
				}
				if a, b := playerTotal(t, sb, "a"), playerTotal(t, sb, "b"); a <= b {
					t.Errorf("expected Alice ahead of Bob, got %v vs %v", a, b)
				}
				stored, ok := fake.Games["game-1"]
				if !ok || stored.Definition.Spec.Type != scoringdomain.SpecTypePoints {
					t.Fatalf("expected the resolved game to be stored, got %+v", stored)
				}
				if _, ok := fake.Snapshots["game-1"]; !ok {
					t.Error("expected a snapshot to be written")
				}
			},
		},
		{
			name: "failure - missing id",
			game: func() scoringdomain.Game {
				g := testGame()
				g.ID = ""
				return g
			},
			verify: func(t *testing.T, res scoreboardResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Failure == nil || !errors.Is(*res.Failure, ErrGameIDRequired) {
					t.Errorf("expected ErrGameIDRequired, got %v", res.Failure)
				}
				if len(fake.Trace()) != 0 {
					t.Errorf("repo should not be called, got %v", fake.Trace())
				}
			},
		},
		{
			name: "failure - unknown spec",
			game: func() scoringdomain.Game {
				g := testGame()
				g.Spec.Name = "bingo_bango_bongo"
				return g
			},
			verify: func(t *testing.T, res scoreboardResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Failure == nil || !errors.Is(*res.Failure, ErrSpecNotFound) {
					t.Errorf("expected ErrSpecNotFound, got %v", res.Failure)
				}
				if countTrace(fake.Trace(), "UpsertGame") != 0 {
					t.Error("a game with an unknown spec must not be stored")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := NewFakeScoringRepository()
			svc := newTestService(t, fake, &FakePostingQueue{})
			res, err := svc.SaveGame(ctx, tt.game())
			tt.verify(t, res, err, fake)
		})
	}
}

func TestScoringService_RecordScore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		update    ScoreUpdate
		setupFake func(*FakeScoringRepository)
		verify    func(t *testing.T, res RecomputeOperationResult, err error, fake *FakeScoringRepository)
	}{
		{
			name:   "success - new score moves the scoreboard",
			update: ScoreUpdate{GameID: "game-1", PlayerID: "b", Hole: 1, Value: "4"},
			verify: func(t *testing.T, res RecomputeOperationResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Success == nil {
					t.Fatalf("expected success, got failure %v", res.Failure)
				}
				if !(*res.Success).Changed {
					t.Error("expected the scoreboard to change")
				}
				if countTrace(fake.Trace(), "SaveSnapshot") != 2 {
					t.Errorf("expected a second snapshot write, got %v", fake.Trace())
				}
				rtg, _ := fake.Games["game-1"].Definition.Round("b")
				score, _ := rtg.Round.Score(1)
				if got, _ := score.Get(scoringdomain.ValueKeyGross); got != "4" {
					t.Errorf("expected the latest gross to be 4, got %q", got)
				}
				if last := score.Values[len(score.Values)-1]; !last.RecordedAt.Equal(testNow) {
					t.Errorf("expected the value to be stamped with now, got %v", last.RecordedAt)
				}
				if len((*res.Success).Invalidations) != 0 {
					t.Errorf("stableford has no multipliers to invalidate, got %+v", (*res.Success).Invalidations)
				}
			},
		},
		{
			name:   "success - same score skips the snapshot write",
			update: ScoreUpdate{GameID: "game-1", PlayerID: "b", Hole: 1, Value: "5"},
			verify: func(t *testing.T, res RecomputeOperationResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Success == nil {
					t.Fatalf("expected success, got failure %v", res.Failure)
				}
				if (*res.Success).Changed {
					t.Error("expected an unchanged scoreboard")
				}
				if countTrace(fake.Trace(), "SaveSnapshot") != 1 {
					t.Errorf("expected only the initial snapshot write, got %v", fake.Trace())
				}
			},
		},
		{
			name:   "failure - player not in game",
			update: ScoreUpdate{GameID: "game-1", PlayerID: "zed", Hole: 1, Value: "4"},
			verify: func(t *testing.T, res RecomputeOperationResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Failure == nil || !errors.Is(*res.Failure, ErrPlayerNotInGame) {
					t.Errorf("expected ErrPlayerNotInGame, got %v", res.Failure)
				}
			},
		},
		{
			name:   "failure - hole not in game",
			update: ScoreUpdate{GameID: "game-1", PlayerID: "a", Hole: 12, Value: "4"},
			verify: func(t *testing.T, res RecomputeOperationResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Failure == nil || !errors.Is(*res.Failure, ErrHoleNotInGame) {
					t.Errorf("expected ErrHoleNotInGame, got %v", res.Failure)
				}
			},
		},
		{
			name:   "failure - unknown game",
			update: ScoreUpdate{GameID: "nope", PlayerID: "a", Hole: 1, Value: "4"},
			verify: func(t *testing.T, res RecomputeOperationResult, err error, fake *FakeScoringRepository) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Failure == nil || !errors.Is(*res.Failure, ErrGameNotFound) {
					t.Errorf("expected ErrGameNotFound, got %v", res.Failure)
				}
			},
		},
		{
			name:   "infra failure - game write fails",
			update: ScoreUpdate{GameID: "game-1", PlayerID: "a", Hole: 1, Value: "4"},
			setupFake: func(f *FakeScoringRepository) {
				f.UpsertGameFunc = func(ctx context.Context, db bun.IDB, game *scoringdb.Game) error {
					return errors.New("db connection lost")
				}
			},
			verify: func(t *testing.T, res RecomputeOperationResult, err error, fake *FakeScoringRepository) {
				if err == nil || !strings.Contains(err.Error(), "db connection lost") {
					t.Errorf("expected infra error 'db connection lost', got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := NewFakeScoringRepository()
			svc := newTestService(t, fake, &FakePostingQueue{})
			if res, err := svc.SaveGame(ctx, testGame()); err != nil || res.Success == nil {
				t.Fatalf("failed to seed game: %v %v", err, res.Failure)
			}
			if tt.setupFake != nil {
				tt.setupFake(fake)
			}
			res, err := svc.RecordScore(ctx, tt.update)
			tt.verify(t, res, err, fake)
		})
	}
}

func TestScoringService_RecordScore_TeeHoles(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeScoringRepository()
	svc := newTestService(t, fake, &FakePostingQueue{})

	g := testGame()
	g.Holes = nil
	if res, err := svc.SaveGame(ctx, g); err != nil || res.Success == nil {
		t.Fatalf("failed to seed game: %v %v", err, res.Failure)
	}

	res, err := svc.RecordScore(ctx, ScoreUpdate{GameID: "game-1", PlayerID: "b", Hole: 2, Value: "2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success == nil {
		t.Fatalf("a game without holes plays the tee's holes, got failure %v", res.Failure)
	}
	if !(*res.Success).Changed {
		t.Error("expected the scoreboard to change")
	}

	res, err = svc.RecordScore(ctx, ScoreUpdate{GameID: "game-1", PlayerID: "b", Hole: 4, Value: "4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failure == nil || !errors.Is(*res.Failure, ErrHoleNotInGame) {
		t.Errorf("expected ErrHoleNotInGame past the tee's last hole, got %v", res.Failure)
	}
}

func TestScoringService_GetScoreboard(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeScoringRepository()
	svc := newTestService(t, fake, nil)

	game := testGame()
	spec, err := svc.catalog.Get(ctx, "stableford", 0)
	if err != nil {
		t.Fatalf("failed to get spec: %v", err)
	}
	game.Spec = *spec
	fake.Games[game.ID] = &scoringdb.Game{ID: game.ID, Name: game.Name, Definition: game}

	res, err := svc.GetScoreboard(ctx, game.ID, scoringdomain.ViewGross)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success == nil {
		t.Fatalf("expected success, got failure %v", res.Failure)
	}
	if (*res.Success).View != scoringdomain.ViewGross {
		t.Errorf("expected the gross view, got %q", (*res.Success).View)
	}
	if _, ok := fake.Snapshots[game.ID]; !ok {
		t.Error("a missing snapshot should be computed and stored")
	}

	res, err = svc.GetScoreboard(ctx, "missing", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failure == nil || !errors.Is(*res.Failure, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", res.Failure)
	}
}

func TestScoringService_SubmitPosting(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		game   func() scoringdomain.Game
		queue  *FakePostingQueue
		req    PostingRequest
		verify func(t *testing.T, res PostingOperationResult, err error, fake *FakeScoringRepository, queue *FakePostingQueue)
	}{
		{
			name:  "success - stores a pending posting and queues it",
			game:  testGame,
			queue: &FakePostingQueue{},
			req:   PostingRequest{GameID: "game-1", PlayerID: "b"},
			verify: func(t *testing.T, res PostingOperationResult, err error, fake *FakeScoringRepository, queue *FakePostingQueue) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Success == nil {
					t.Fatalf("expected success, got failure %v", res.Failure)
				}
				receipt := *res.Success
				if receipt.Status != scoringdb.PostingPending {
					t.Errorf("expected pending, got %q", receipt.Status)
				}
				// 5 on the par 4 is inside net double bogey, so nothing is capped.
				if receipt.Payload.AdjustedGrossScore != 12 || receipt.Payload.ScoreType != scoringdomain.ScoreTypeHome {
					t.Errorf("unexpected payload %+v", receipt.Payload)
				}
				if len(receipt.Adjustments) != 3 {
					t.Errorf("expected an adjustment per hole, got %+v", receipt.Adjustments)
				}
				stored, ok := fake.Postings[receipt.PostingID]
				if !ok || stored.RoundID != "round-b" || stored.GolferID != "ghin-b" {
					t.Fatalf("unexpected stored posting %+v", stored)
				}
				if len(queue.Enqueued) != 1 || queue.Enqueued[0] != receipt.PostingID {
					t.Errorf("expected the posting to be queued, got %v", queue.Enqueued)
				}
			},
		},
		{
			name: "failure - partial round",
			game: func() scoringdomain.Game {
				g := testGame()
				g.Rounds[0].Round.Scores = g.Rounds[0].Round.Scores[:2]
				return g
			},
			queue: &FakePostingQueue{},
			req:   PostingRequest{GameID: "game-1", PlayerID: "a"},
			verify: func(t *testing.T, res PostingOperationResult, err error, fake *FakeScoringRepository, queue *FakePostingQueue) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if res.Failure == nil || !scoringdomain.IsPostingError(*res.Failure) {
					t.Errorf("expected a posting error, got %v", res.Failure)
				}
				if len(fake.Postings) != 0 || len(queue.Enqueued) != 0 {
					t.Error("nothing should be stored or queued for an unpostable round")
				}
			},
		},
		{
			name:  "infra failure - queue unavailable",
			game:  testGame,
			queue: &FakePostingQueue{EnqueuePostingFunc: func(ctx context.Context, id uuid.UUID) error { return errors.New("queue down") }},
			req:   PostingRequest{GameID: "game-1", PlayerID: "a"},
			verify: func(t *testing.T, res PostingOperationResult, err error, fake *FakeScoringRepository, queue *FakePostingQueue) {
				if err == nil || !strings.Contains(err.Error(), "queue down") {
					t.Errorf("expected infra error 'queue down', got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := NewFakeScoringRepository()
			g := tt.game()
			fake.Games[g.ID] = &scoringdb.Game{ID: g.ID, Name: g.Name, Definition: g}
			svc := newTestService(t, fake, tt.queue)
			res, err := svc.SubmitPosting(ctx, tt.req)
			tt.verify(t, res, err, fake, tt.queue)
		})
	}
}

func TestScoringService_BuildPosting_UnknownPlayer(t *testing.T) {
	fake := NewFakeScoringRepository()
	g := testGame()
	fake.Games[g.ID] = &scoringdb.Game{ID: g.ID, Definition: g}
	svc := newTestService(t, fake, nil)

	res, err := svc.BuildPosting(context.Background(), PostingRequest{GameID: g.ID, PlayerID: "zed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Failure == nil || !errors.Is(*res.Failure, ErrPlayerNotInGame) {
		t.Errorf("expected ErrPlayerNotInGame, got %v", res.Failure)
	}
}

func TestScoringService_Scorecard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewFakeScoringRepository(), nil)

	csv := "Name,1,2,3,4\nAlice,3,4,5,4\nZed,4,4,4,4\n"
	res, err := svc.ImportScorecard(ctx, "card.csv", []byte(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success == nil {
		t.Fatalf("expected success, got failure %v", res.Failure)
	}
	card := *res.Success

	game := testGame()
	applied, warnings := svc.ApplyScorecard(game, card, time.Time{})

	var unknownPlayers, unknownHoles int
	for _, w := range warnings {
		switch w.Code {
		case scoringdomain.WarnUnknownPlayer:
			unknownPlayers++
		case scoringdomain.WarnUnknownHole:
			unknownHoles++
		}
	}
	if unknownPlayers != 1 || unknownHoles != 1 {
		t.Errorf("expected one unknown player and one unknown hole, got %+v", warnings)
	}

	rtg, _ := applied.Round("a")
	h1, _ := rtg.Round.Score(1)
	if len(h1.Values) != 1 {
		t.Errorf("an unchanged hole should not gain a value, got %+v", h1.Values)
	}
	h2, _ := rtg.Round.Score(2)
	if got, _ := h2.Get(scoringdomain.ValueKeyGross); got != "4" {
		t.Errorf("expected hole 2 to be 4, got %q", got)
	}

	orig, _ := game.Round("a")
	o2, _ := orig.Round.Score(2)
	if len(o2.Values) != 1 {
		t.Error("the input game must not be modified")
	}

	bad, err := svc.ImportScorecard(ctx, "card.pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bad.Failure == nil || !errors.Is(*bad.Failure, parsers.ErrUnsupportedFile) {
		t.Errorf("expected ErrUnsupportedFile, got %v", bad.Failure)
	}
}

func TestScoringService_ParsePlayedAt(t *testing.T) {
	svc := newTestService(t, NewFakeScoringRepository(), nil)

	tests := []struct {
		input   string
		want    time.Time
		wantErr error
	}{
		{input: "2026-05-02", want: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)},
		{input: "05/03/2026", want: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)},
		{input: "May 4, 2026", want: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)},
		{input: "today", want: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)},
		{input: "yesterday", want: time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)},
		{input: "tomorrow", wantErr: ErrPlayedAtInFuture},
		{input: "2026-06-01", wantErr: ErrPlayedAtInFuture},
		{input: "gibberish", wantErr: ErrUnrecognizedPlayedAt},
		{input: "   ", wantErr: ErrUnrecognizedPlayedAt},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := svc.ParsePlayedAt(tt.input, testNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v (%v)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestScoringService_RenderRunningTotals(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewFakeScoringRepository(), nil)

	res, err := svc.ComputeScoreboard(ctx, testGame())
	if err != nil || res.Success == nil {
		t.Fatalf("failed to compute: %v %v", err, res.Failure)
	}

	pngMagic := []byte("\x89PNG\r\n\x1a\n")
	for name, sb := range map[string]*scoringdomain.Scoreboard{
		"scoreboard":  *res.Success,
		"placeholder": {},
	} {
		t.Run(name, func(t *testing.T) {
			img, err := svc.RenderRunningTotals(ctx, sb)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.HasPrefix(img, pngMagic) {
				t.Errorf("expected PNG output, got % x", img[:min(8, len(img))])
			}
		})
	}
}

func TestScoringService_Settle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewFakeScoringRepository(), nil)

	computed, err := svc.ComputeScoreboard(ctx, testGame())
	if err != nil || computed.Success == nil {
		t.Fatalf("failed to compute: %v %v", err, computed.Failure)
	}
	sb := *computed.Success
	winnerTakeAll := []scoringdomain.Pool{{Name: "overall", Pct: 100, Metric: scoringdomain.MetricPoints, SplitType: scoringdomain.SplitWinnerTakeAll}}

	t.Run("success", func(t *testing.T) {
		res, err := svc.Settle(ctx, sb, winnerTakeAll, 2000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Success == nil {
			t.Fatalf("expected success, got failure %v", res.Failure)
		}
		s := *res.Success
		if s.NetPositions["a"] != 1000 || s.NetPositions["b"] != -1000 {
			t.Errorf("unexpected positions %v", s.NetPositions)
		}
		if len(s.Debts) != 1 || s.Debts[0].FromPlayerID != "b" || s.Debts[0].ToPlayerID != "a" {
			t.Errorf("unexpected debts %+v", s.Debts)
		}
	})

	t.Run("failure - negative pot", func(t *testing.T) {
		res, err := svc.Settle(ctx, sb, winnerTakeAll, -5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Failure == nil || !errors.Is(*res.Failure, ErrInvalidPot) {
			t.Errorf("expected ErrInvalidPot, got %v", res.Failure)
		}
	})

	t.Run("failure - pools short of the pot", func(t *testing.T) {
		pools := []scoringdomain.Pool{{Name: "half", Pct: 50, Metric: scoringdomain.MetricPoints, SplitType: scoringdomain.SplitPlaces}}
		res, err := svc.Settle(ctx, sb, pools, 2000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Failure == nil || !scoringdomain.IsConfigurationError(*res.Failure) {
			t.Errorf("expected a configuration error, got %v", res.Failure)
		}
	})
}

func TestScoringService_Specs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, NewFakeScoringRepository(), nil)

	list, err := svc.ListSpecs(ctx)
	if err != nil || list.Success == nil {
		t.Fatalf("failed to list: %v %v", err, list.Failure)
	}
	if len(*list.Success) < 5 {
		t.Errorf("expected the built-in specs, got %d", len(*list.Success))
	}

	got, err := svc.GetSpec(ctx, "skins", 0)
	if err != nil || got.Success == nil {
		t.Fatalf("failed to get: %v %v", err, got.Failure)
	}
	if (*got.Success).Type != scoringdomain.SpecTypeSkins {
		t.Errorf("expected skins, got %q", (*got.Success).Type)
	}

	missing, err := svc.GetSpec(ctx, "nassau", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing.Failure == nil || !errors.Is(*missing.Failure, ErrSpecNotFound) {
		t.Errorf("expected ErrSpecNotFound, got %v", missing.Failure)
	}
}

func TestScoringService_ImportScorecardIntoGame(t *testing.T) {
	ctx := context.Background()
	csv := []byte("Name,1,2,3,4\nAlice,3,4,5,4\nZed,4,4,4,4\n")

	t.Run("success - applies the card and rescores", func(t *testing.T) {
		fake := NewFakeScoringRepository()
		g := testGame()
		fake.Games[g.ID] = &scoringdb.Game{ID: g.ID, Name: g.Name, Definition: g}
		svc := newTestService(t, fake, nil)

		res, err := svc.ImportScorecardIntoGame(ctx, g.ID, "card.csv", csv)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Success == nil {
			t.Fatalf("expected success, got failure %v", res.Failure)
		}
		imported := *res.Success
		if !imported.Changed {
			t.Error("a changed hole should write a new snapshot")
		}
		if len(imported.Warnings) != 2 {
			t.Errorf("expected two warnings, got %+v", imported.Warnings)
		}
		// Alice's bogey on the par 3 drops her from 7 to 6 points.
		if got := playerTotal(t, imported.Scoreboard, "a"); got != 6 {
			t.Errorf("expected 6 points for a, got %v", got)
		}
		rtg, _ := fake.Games[g.ID].Definition.Round("a")
		h2, _ := rtg.Round.Score(2)
		if got, _ := h2.Get(scoringdomain.ValueKeyGross); got != "4" {
			t.Errorf("stored hole 2 = %q, want 4", got)
		}
	})

	t.Run("failure - unknown game", func(t *testing.T) {
		svc := newTestService(t, NewFakeScoringRepository(), nil)
		res, err := svc.ImportScorecardIntoGame(ctx, "missing", "card.csv", csv)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Failure == nil || !errors.Is(*res.Failure, ErrGameNotFound) {
			t.Errorf("expected ErrGameNotFound, got %v", res.Failure)
		}
	})

	t.Run("failure - unreadable file", func(t *testing.T) {
		fake := NewFakeScoringRepository()
		svc := newTestService(t, fake, nil)
		res, err := svc.ImportScorecardIntoGame(ctx, "game-1", "card.pdf", []byte("%PDF"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Failure == nil || !errors.Is(*res.Failure, parsers.ErrUnsupportedFile) {
			t.Errorf("expected ErrUnsupportedFile, got %v", res.Failure)
		}
		if countTrace(fake.Trace(), "GetGame") != 0 {
			t.Error("the game should not be loaded for an unreadable file")
		}
	})
}

func TestScoringService_SubmitPosting_QueuesAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fake := NewFakeScoringRepository()
	g := testGame()
	fake.Games[g.ID] = &scoringdb.Game{ID: g.ID, Definition: g}

	queue := mocks.NewMockPostingQueue(ctrl)
	queue.EXPECT().EnqueuePosting(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, id uuid.UUID) error {
		if _, ok := fake.Postings[id]; !ok {
			t.Errorf("posting %s enqueued before it was stored", id)
		}
		return nil
	})

	svc := newTestService(t, fake, queue)
	res, err := svc.SubmitPosting(context.Background(), PostingRequest{GameID: g.ID, PlayerID: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success == nil {
		t.Fatalf("expected success, got failure %v", res.Failure)
	}

	listed, err := svc.ListPostings(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listed.Success == nil || len(*listed.Success) != 1 {
		t.Errorf("expected one stored posting, got %+v", listed.Success)
	}
}
