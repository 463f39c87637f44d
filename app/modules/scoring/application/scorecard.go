package scoringservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application/parsers"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringdb "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/repositories"
	"github.com/uptrace/bun"
)

type scorecardResult = results.OperationResult[*parsers.ParsedScorecard, error]

// ImportScorecard parses an uploaded CSV or XLSX scorecard. Unreadable files
// are failures, not errors.
func (s *ScoringService) ImportScorecard(ctx context.Context, filename string, data []byte) (scorecardResult, error) {
	return withTelemetry(s, ctx, "ImportScorecard", filename, func(ctx context.Context) (scorecardResult, error) {
		parser, err := s.parsers.GetParser(filename)
		if err != nil {
			return results.FailureResult[*parsers.ParsedScorecard, error](err), nil
		}

		card, err := parser.Parse(data)
		if err != nil {
			return results.FailureResult[*parsers.ParsedScorecard, error](fmt.Errorf("failed to parse %s: %w", filename, err)), nil
		}

		s.logger.InfoContext(ctx, "Scorecard parsed",
			attr.ExtractCorrelationID(ctx),
			attr.String("filename", filename),
			attr.Int("holes", len(card.Holes)),
			attr.Int("players", len(card.Players)),
		)
		return results.SuccessResult[*parsers.ParsedScorecard, error](card), nil
	})
}

// ApplyScorecard records the gross scores of a parsed card on a copy of game.
// Rows are matched to rounds by player name or id, ignoring case. Rows with no
// round and holes the game does not play come back as warnings. A hole whose
// latest gross already equals the card is left alone.
func (s *ScoringService) ApplyScorecard(game scoringdomain.Game, card *parsers.ParsedScorecard, recordedAt time.Time) (scoringdomain.Game, []scoringdomain.Warning) {
	out := game.Clone()
	if card == nil {
		return out, nil
	}
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	var warnings []scoringdomain.Warning
	reported := map[int]bool{}
	for _, row := range card.Players {
		rtg := matchRound(&out, row.PlayerName)
		if rtg == nil {
			warnings = append(warnings, scoringdomain.Warning{
				Code:    scoringdomain.WarnUnknownPlayer,
				Message: fmt.Sprintf("no round for scorecard player %q", row.PlayerName),
			})
			continue
		}

		for _, hole := range card.Holes {
			gross, ok := row.Scores[hole]
			if !ok {
				continue
			}
			if !out.PlaysHole(hole) {
				if !reported[hole] {
					reported[hole] = true
					warnings = append(warnings, scoringdomain.Warning{
						Hole:    hole,
						Code:    scoringdomain.WarnUnknownHole,
						Message: fmt.Sprintf("scorecard hole %d is not part of this game", hole),
					})
				}
				continue
			}

			value := strconv.Itoa(gross)
			if score, ok := rtg.Round.Score(hole); ok {
				if current, ok := score.Get(scoringdomain.ValueKeyGross); ok && current == value {
					continue
				}
			}
			appendValue(&rtg.Round, hole, scoringdomain.Value{
				Key:        scoringdomain.ValueKeyGross,
				Value:      value,
				RecordedAt: recordedAt,
			})
		}
	}
	return out, warnings
}

func matchRound(game *scoringdomain.Game, name string) *scoringdomain.RoundToGame {
	name = strings.TrimSpace(name)
	for i := range game.Rounds {
		r := &game.Rounds[i]
		if strings.EqualFold(r.Round.PlayerName, name) || strings.EqualFold(r.Round.PlayerID, name) {
			return r
		}
	}
	return nil
}

// ScorecardImport is a stored game after a scorecard was applied to it.
type ScorecardImport struct {
	RecomputeResult
	Warnings []scoringdomain.Warning `json:"warnings,omitempty"`
}

// ScorecardImportOperationResult is the outcome of applying an uploaded card.
type ScorecardImportOperationResult = results.OperationResult[*ScorecardImport, error]

// ImportScorecardIntoGame parses an uploaded card, writes its gross scores into
// the stored game and rescores it in one transaction.
func (s *ScoringService) ImportScorecardIntoGame(ctx context.Context, gameID, filename string, data []byte) (ScorecardImportOperationResult, error) {
	return withTelemetry(s, ctx, "ImportScorecardIntoGame", gameID, func(ctx context.Context) (ScorecardImportOperationResult, error) {
		parsed, err := s.ImportScorecard(ctx, filename, data)
		if err != nil {
			return ScorecardImportOperationResult{}, err
		}
		if parsed.IsFailure() {
			return results.FailureResult[*ScorecardImport, error](*parsed.Failure), nil
		}
		card := *parsed.Success

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ScorecardImportOperationResult, error) {
			return s.importIntoGameLogic(ctx, db, gameID, card)
		})
	})
}

func (s *ScoringService) importIntoGameLogic(ctx context.Context, db bun.IDB, gameID string, card *parsers.ParsedScorecard) (ScorecardImportOperationResult, error) {
	record, err := s.repo.GetGame(ctx, db, gameID)
	if err != nil {
		if errors.Is(err, scoringdb.ErrNotFound) {
			return results.FailureResult[*ScorecardImport, error](ErrGameNotFound), nil
		}
		return ScorecardImportOperationResult{}, fmt.Errorf("failed to get game: %w", err)
	}

	applied, warnings := s.ApplyScorecard(record.Definition, card, s.now())
	computed, err := s.computeLogic(ctx, applied)
	if err != nil {
		return ScorecardImportOperationResult{}, err
	}
	if computed.IsFailure() {
		return results.FailureResult[*ScorecardImport, error](*computed.Failure), nil
	}

	record.Definition = applied
	if err := s.repo.UpsertGame(ctx, db, record); err != nil {
		return ScorecardImportOperationResult{}, fmt.Errorf("failed to save game: %w", err)
	}

	// Invalidations are measured from the first hole so every later edit counts.
	persisted, err := s.persistLogic(ctx, db, record.ID, *computed.Success, firstHole(applied))
	if err != nil {
		return ScorecardImportOperationResult{}, err
	}
	if persisted.IsFailure() {
		return results.FailureResult[*ScorecardImport, error](*persisted.Failure), nil
	}
	return results.SuccessResult[*ScorecardImport, error](&ScorecardImport{
		RecomputeResult: **persisted.Success,
		Warnings:        warnings,
	}), nil
}

func firstHole(game scoringdomain.Game) int {
	first := 0
	for _, gh := range game.Holes {
		if first == 0 || gh.Hole < first {
			first = gh.Hole
		}
	}
	return first
}
