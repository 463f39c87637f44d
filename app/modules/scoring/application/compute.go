package scoringservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type scoreboardResult = results.OperationResult[*scoringdomain.Scoreboard, error]

// ComputeScoreboard scores a game without touching storage.
func (s *ScoringService) ComputeScoreboard(ctx context.Context, game scoringdomain.Game) (scoreboardResult, error) {
	return withTelemetry(s, ctx, "ComputeScoreboard", game.ID, func(ctx context.Context) (scoreboardResult, error) {
		if failure, err := s.resolveSpec(ctx, &game); err != nil || failure != nil {
			if err != nil {
				return scoreboardResult{}, err
			}
			return results.FailureResult[*scoringdomain.Scoreboard, error](failure), nil
		}
		return s.computeLogic(ctx, game)
	})
}

// computeLogic runs the interpreter. Configuration errors are domain failures.
func (s *ScoringService) computeLogic(ctx context.Context, game scoringdomain.Game) (scoreboardResult, error) {
	sb, err := s.interpreter.Run(game)
	if err != nil {
		if scoringdomain.IsConfigurationError(err) {
			return results.FailureResult[*scoringdomain.Scoreboard, error](err), nil
		}
		return scoreboardResult{}, fmt.Errorf("failed to score game: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordScoreboardWarnings(ctx, game.Spec.Name, len(sb.Warnings))
	}
	return results.SuccessResult[*scoringdomain.Scoreboard, error](sb), nil
}

// resolveSpec fills in a game that only names its spec from the catalog.
func (s *ScoringService) resolveSpec(ctx context.Context, game *scoringdomain.Game) (failure error, err error) {
	if game.Spec.Type != "" || game.Spec.Name == "" {
		return nil, nil
	}
	if s.catalog == nil {
		return fmt.Errorf("%w: %s", ErrSpecNotFound, game.Spec.Name), nil
	}
	spec, err := s.catalog.Get(ctx, game.Spec.Name, game.Spec.Version)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrSpecNotFound, game.Spec.Name), nil
		}
		return nil, fmt.Errorf("failed to load spec: %w", err)
	}
	game.Spec = *spec
	return nil, nil
}

// SaveGame stores a game definition and its first scoreboard.
func (s *ScoringService) SaveGame(ctx context.Context, game scoringdomain.Game) (scoreboardResult, error) {
	saveTx := func(ctx context.Context, db bun.IDB) (scoreboardResult, error) {
		return s.saveGameLogic(ctx, db, game)
	}

	return withTelemetry(s, ctx, "SaveGame", game.ID, func(ctx context.Context) (scoreboardResult, error) {
		if game.ID == "" {
			return results.FailureResult[*scoringdomain.Scoreboard, error](ErrGameIDRequired), nil
		}
		return runInTx(s, ctx, saveTx)
	})
}

func (s *ScoringService) saveGameLogic(ctx context.Context, db bun.IDB, game scoringdomain.Game) (scoreboardResult, error) {
	if failure, err := s.resolveSpec(ctx, &game); err != nil || failure != nil {
		if err != nil {
			return scoreboardResult{}, err
		}
		return results.FailureResult[*scoringdomain.Scoreboard, error](failure), nil
	}

	// Score before storing so a broken game is never saved.
	computed, err := s.computeLogic(ctx, game)
	if err != nil || computed.IsFailure() {
		return computed, err
	}

	record := &scoringdb.Game{ID: game.ID, Name: game.Name, Definition: game}
	if err := s.repo.UpsertGame(ctx, db, record); err != nil {
		return scoreboardResult{}, fmt.Errorf("failed to save game: %w", err)
	}

	persisted, err := s.persistLogic(ctx, db, record.ID, *computed.Success, 0)
	return scoreboardOf(persisted), err
}

// GetScoreboard returns the stored scoreboard of a game in the requested
// view, computing it first when no snapshot exists yet.
func (s *ScoringService) GetScoreboard(ctx context.Context, gameID string, view scoringdomain.View) (scoreboardResult, error) {
	getTx := func(ctx context.Context, db bun.IDB) (scoreboardResult, error) {
		return s.getScoreboardLogic(ctx, db, gameID, view)
	}

	return withTelemetry(s, ctx, "GetScoreboard", gameID, func(ctx context.Context) (scoreboardResult, error) {
		return runInTx(s, ctx, getTx)
	})
}

func (s *ScoringService) getScoreboardLogic(ctx context.Context, db bun.IDB, gameID string, view scoringdomain.View) (scoreboardResult, error) {
	var sb *scoringdomain.Scoreboard

	snapshot, err := s.repo.GetSnapshot(ctx, db, gameID)
	switch {
	case err == nil:
		sb = &snapshot.Scoreboard
	case errors.Is(err, scoringdb.ErrNotFound):
		recomputed, err := s.recomputeGameLogic(ctx, db, gameID)
		if err != nil || recomputed.IsFailure() {
			return recomputed, err
		}
		sb = *recomputed.Success
	default:
		return scoreboardResult{}, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if view != "" && view != sb.View {
		viewed := sb.WithView(view)
		sb = &viewed
	}
	return results.SuccessResult[*scoringdomain.Scoreboard, error](sb), nil
}

// RecomputeGame rescores a stored game and saves the snapshot. An unchanged
// scoreboard hash skips the write.
func (s *ScoringService) RecomputeGame(ctx context.Context, gameID string) (scoreboardResult, error) {
	recomputeTx := func(ctx context.Context, db bun.IDB) (scoreboardResult, error) {
		return s.recomputeGameLogic(ctx, db, gameID)
	}

	return withTelemetry(s, ctx, "RecomputeGame", gameID, func(ctx context.Context) (scoreboardResult, error) {
		return runInTx(s, ctx, recomputeTx)
	})
}

func (s *ScoringService) recomputeGameLogic(ctx context.Context, db bun.IDB, gameID string) (scoreboardResult, error) {
	record, err := s.repo.GetGame(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, scoringdb.ErrNotFound) {
			return results.FailureResult[*scoringdomain.Scoreboard, error](ErrGameNotFound), nil
		}
		return scoreboardResult{}, fmt.Errorf("failed to get game: %w", err)
	}
	recomputed, err := s.recomputeLogic(ctx, db, record, 0)
	return scoreboardOf(recomputed), err
}

// RecordScore appends a value to a player's hole, rescores the game and
// reports multipliers on later holes the edit invalidated.
func (s *ScoringService) RecordScore(ctx context.Context, update ScoreUpdate) (results.OperationResult[*RecomputeResult, error], error) {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RecomputeResult, error], error) {
		return s.recordScoreLogic(ctx, db, update)
	}

	return withTelemetry(s, ctx, "RecordScore", update.GameID, func(ctx context.Context) (results.OperationResult[*RecomputeResult, error], error) {
		return runInTx(s, ctx, recordTx)
	})
}

func (s *ScoringService) recordScoreLogic(ctx context.Context, db bun.IDB, update ScoreUpdate) (results.OperationResult[*RecomputeResult, error], error) {
	record, err := s.repo.GetGame(ctx, db, update.GameID)
	if err != nil {
		if errors.Is(err, scoringdb.ErrNotFound) {
			return results.FailureResult[*RecomputeResult, error](ErrGameNotFound), nil
		}
		return results.OperationResult[*RecomputeResult, error]{}, fmt.Errorf("failed to get game: %w", err)
	}

	game := &record.Definition
	rtg, ok := game.Round(update.PlayerID)
	if !ok {
		return results.FailureResult[*RecomputeResult, error](fmt.Errorf("%w: %s", ErrPlayerNotInGame, update.PlayerID)), nil
	}
	if !game.PlaysHole(update.Hole) {
		return results.FailureResult[*RecomputeResult, error](fmt.Errorf("%w: %d", ErrHoleNotInGame, update.Hole)), nil
	}

	key := update.Key
	if key == "" {
		key = scoringdomain.ValueKeyGross
	}
	recordedAt := update.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}
	appendValue(&rtg.Round, update.Hole, scoringdomain.Value{Key: key, Value: update.Value, RecordedAt: recordedAt})

	computed, err := s.computeLogic(ctx, *game)
	if err != nil {
		return results.OperationResult[*RecomputeResult, error]{}, err
	}
	if computed.IsFailure() {
		return results.FailureResult[*RecomputeResult, error](*computed.Failure), nil
	}

	if err := s.repo.UpsertGame(ctx, db, record); err != nil {
		return results.OperationResult[*RecomputeResult, error]{}, fmt.Errorf("failed to save game: %w", err)
	}
	return s.persistLogic(ctx, db, record.ID, *computed.Success, update.Hole)
}

// recomputeLogic scores a stored game and persists the result.
func (s *ScoringService) recomputeLogic(ctx context.Context, db bun.IDB, record *scoringdb.Game, editedHole int) (results.OperationResult[*RecomputeResult, error], error) {
	computed, err := s.computeLogic(ctx, record.Definition)
	if err != nil {
		return results.OperationResult[*RecomputeResult, error]{}, err
	}
	if computed.IsFailure() {
		return results.FailureResult[*RecomputeResult, error](*computed.Failure), nil
	}
	return s.persistLogic(ctx, db, record.ID, *computed.Success, editedHole)
}

// persistLogic compares a scoreboard with the last snapshot and writes it when
// the hash moved.
func (s *ScoringService) persistLogic(ctx context.Context, db bun.IDB, gameID string, sb *scoringdomain.Scoreboard, editedHole int) (results.OperationResult[*RecomputeResult, error], error) {
	hash, err := sb.Hash()
	if err != nil {
		return results.OperationResult[*RecomputeResult, error]{}, fmt.Errorf("failed to hash scoreboard: %w", err)
	}

	prev, err := s.repo.GetSnapshot(ctx, db, gameID)
	if err != nil && !errors.Is(err, scoringdb.ErrNotFound) {
		return results.OperationResult[*RecomputeResult, error]{}, fmt.Errorf("failed to get snapshot: %w", err)
	}

	out := &RecomputeResult{Scoreboard: sb}
	if prev != nil && editedHole > 0 {
		out.Invalidations = scoringdomain.DetectInvalidations(&prev.Scoreboard, sb, editedHole)
	}
	if prev != nil && prev.Hash == hash {
		if s.metrics != nil {
			s.metrics.RecordSnapshotWrite(ctx, true)
		}
		return results.SuccessResult[*RecomputeResult, error](out), nil
	}

	snapshot := &scoringdb.Snapshot{GameID: gameID, Hash: hash, Scoreboard: *sb, ComputedAt: s.now()}
	if err := s.repo.SaveSnapshot(ctx, db, snapshot); err != nil {
		return results.OperationResult[*RecomputeResult, error]{}, fmt.Errorf("failed to save snapshot: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordSnapshotWrite(ctx, false)
	}
	out.Changed = true
	return results.SuccessResult[*RecomputeResult, error](out), nil
}

func scoreboardOf(r results.OperationResult[*RecomputeResult, error]) scoreboardResult {
	switch {
	case r.IsFailure():
		return results.FailureResult[*scoringdomain.Scoreboard, error](*r.Failure)
	case r.IsSuccess():
		return results.SuccessResult[*scoringdomain.Scoreboard, error]((*r.Success).Scoreboard)
	}
	return scoreboardResult{}
}

func appendValue(round *scoringdomain.Round, hole int, v scoringdomain.Value) {
	if score, ok := round.Score(hole); ok {
		score.Values = append(score.Values, v)
		return
	}
	round.Scores = append(round.Scores, scoringdomain.Score{Hole: hole, Values: []scoringdomain.Value{v}})
}
