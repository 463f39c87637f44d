package scoringservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	scoringdomain "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/domain"
	scoringcatalog "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/infrastructure/catalog"
)

// GetSpec returns a catalog spec. Version 0 asks for the latest.
func (s *ScoringService) GetSpec(ctx context.Context, name string, version int) (results.OperationResult[*scoringdomain.GameSpec, error], error) {
	return withTelemetry(s, ctx, "GetSpec", name, func(ctx context.Context) (results.OperationResult[*scoringdomain.GameSpec, error], error) {
		if s.catalog == nil {
			return results.FailureResult[*scoringdomain.GameSpec, error](fmt.Errorf("%w: %s", ErrSpecNotFound, name)), nil
		}
		spec, err := s.catalog.Get(ctx, name, version)
		if err != nil {
			if isNotFound(err) {
				return results.FailureResult[*scoringdomain.GameSpec, error](fmt.Errorf("%w: %s", ErrSpecNotFound, name)), nil
			}
			return results.OperationResult[*scoringdomain.GameSpec, error]{}, fmt.Errorf("failed to get spec: %w", err)
		}
		return results.SuccessResult[*scoringdomain.GameSpec, error](spec), nil
	})
}

// ListSpecs returns every catalog spec, sorted by name then version.
func (s *ScoringService) ListSpecs(ctx context.Context) (results.OperationResult[[]scoringdomain.GameSpec, error], error) {
	return withTelemetry(s, ctx, "ListSpecs", "", func(ctx context.Context) (results.OperationResult[[]scoringdomain.GameSpec, error], error) {
		if s.catalog == nil {
			return results.SuccessResult[[]scoringdomain.GameSpec, error](nil), nil
		}
		specs, err := s.catalog.List(ctx)
		if err != nil {
			return results.OperationResult[[]scoringdomain.GameSpec, error]{}, fmt.Errorf("failed to list specs: %w", err)
		}
		return results.SuccessResult[[]scoringdomain.GameSpec, error](specs), nil
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, scoringcatalog.ErrNotFound) || errors.Is(err, ErrSpecNotFound)
}
