package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/events"
)

// StartAuditWorker subscribes an audit logger to the domain events the
// services publish. Records go to the structured log only.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}

	audit := logger.Named("audit")
	handler := func(_ context.Context, event events.Event) error {
		audit.Info("event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("actor_id", event.ActorID),
			zap.Time("at", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	}

	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventAPIKeyRegenerated,
		events.EventOrderCreated,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}
