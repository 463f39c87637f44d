package scoringhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const handlerService = "ScoringHandlers"

// Result is one outbound event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// Metrics records handler outcomes. It is satisfied by the service metrics.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// WrapTyped adapts a typed handler into a watermill handler. It decodes the
// JSON payload, records a span and metrics, and turns each Result into a
// message that carries the inbound correlation id and its topic in metadata.
func WrapTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics Metrics,
	fn func(ctx context.Context, payload *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := msg.Context()
		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message_id", msg.UUID),
			))
		} else {
			span = trace.SpanFromContext(ctx)
		}
		defer span.End()

		if metrics != nil {
			metrics.RecordOperationAttempt(ctx, handlerName, handlerService)
			startTime := time.Now()
			defer func() {
				metrics.RecordOperationDuration(ctx, handlerName, handlerService, time.Since(startTime))
			}()
		}

		logger.InfoContext(ctx, handlerName+" triggered",
			attr.CorrelationIDFromMsg(msg),
			attr.String("message_id", msg.UUID),
		)

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.CorrelationIDFromMsg(msg),
				attr.Error(err),
			)
			if metrics != nil {
				metrics.RecordOperationFailure(ctx, handlerName, handlerService)
			}
			span.RecordError(err)
			return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
		}

		results, err := fn(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Error in "+handlerName,
				attr.CorrelationIDFromMsg(msg),
				attr.Error(err),
			)
			if metrics != nil {
				metrics.RecordOperationFailure(ctx, handlerName, handlerService)
			}
			span.RecordError(err)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := newResultMessage(msg, r)
			if err != nil {
				if metrics != nil {
					metrics.RecordOperationFailure(ctx, handlerName, handlerService)
				}
				return nil, err
			}
			out = append(out, m)
		}

		logger.InfoContext(ctx, handlerName+" completed successfully",
			attr.CorrelationIDFromMsg(msg),
			attr.Int("messages", len(out)),
		)
		if metrics != nil {
			metrics.RecordOperationSuccess(ctx, handlerName, handlerService)
		}
		return out, nil
	}
}

func newResultMessage(src *message.Message, r Result) (*message.Message, error) {
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", r.Topic, err)
	}
	m := message.NewMessage(watermill.NewUUID(), body)
	m.SetContext(src.Context())
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	if id := middleware.MessageCorrelationID(src); id != "" {
		middleware.SetCorrelationID(id, m)
	}
	m.Metadata.Set("topic", r.Topic)
	return m, nil
}
