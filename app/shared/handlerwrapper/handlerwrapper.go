// Package handlerwrapper adapts typed handlers to watermill handler funcs.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

// CtxKeyReplyTo holds the reply topic requested by the sender, if any.
const CtxKeyReplyTo ctxKey = "reply_to"

// MetadataReplyTo is the message metadata key carrying a reply topic.
const MetadataReplyTo = "reply_to"

// Result is one outgoing message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// ReplyTopic returns the sender's reply_to override or fallback.
func ReplyTopic(ctx context.Context, fallback string) string {
	if rt, ok := ctx.Value(CtxKeyReplyTo).(string); ok && rt != "" {
		return rt
	}
	return fallback
}

// WrapTransformingTyped decodes the JSON payload into T, runs handler and
// publishes every Result. Payloads that fail to decode are logged and
// acknowledged; handler and publish errors are returned so the message is
// nacked.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler func(context.Context, *T) ([]Result, error),
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := msg.Context()

		correlationID := middleware.MessageCorrelationID(msg)
		if correlationID == "" {
			correlationID = msg.UUID
		}
		ctx = attr.WithCorrelationID(ctx, correlationID)
		if rt := msg.Metadata.Get(MetadataReplyTo); rt != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, rt)
		}

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message.uuid", msg.UUID),
			attribute.String("correlation_id", correlationID),
		))
		defer span.End()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.WarnContext(ctx, "Dropping message with undecodable payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			return nil
		}

		out, err := handler(ctx, payload)
		if err != nil {
			span.RecordError(err)
			return err
		}

		for _, r := range out {
			if err := Publish(publisher, correlationID, r); err != nil {
				span.RecordError(err)
				return fmt.Errorf("%s: %w", handlerName, err)
			}
		}
		return nil
	}
}

// Publish encodes r as JSON and publishes it under the given correlation ID.
func Publish(publisher message.Publisher, correlationID string, r Result) error {
	m, err := newMessage(correlationID, r)
	if err != nil {
		return err
	}
	if err := publisher.Publish(r.Topic, m); err != nil {
		return fmt.Errorf("publish %s: %w", r.Topic, err)
	}
	return nil
}

func newMessage(correlationID string, r Result) (*message.Message, error) {
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", r.Topic, err)
	}

	m := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(correlationID, m)
	m.Metadata.Set("topic", r.Topic)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	return m, nil
}
