package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/invoicer/internal/config"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pubsub"
	"github.com/flexprice/invoicer/internal/types"
	"go.uber.org/zap"
)

// EventPublisher publishes invoice lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event *types.InvoiceEvent) error
}

type eventPublisher struct {
	pubsub pubsub.Publisher
	logger *logger.Logger
	config *config.EventsConfig
}

// NewEventPublisher creates a new publisher. When events are disabled the
// returned publisher drops everything.
func NewEventPublisher(
	cfg *config.Configuration,
	logger *logger.Logger,
	ps pubsub.PubSub,
) EventPublisher {
	return &eventPublisher{
		pubsub: ps,
		logger: logger,
		config: &cfg.Events,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *types.InvoiceEvent) error {
	if !p.config.Enabled {
		return nil
	}

	p.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_name", event.EventName),
		zap.String("invoice_id", event.InvoiceID),
		zap.String("topic", p.config.Topic),
	).Debug("publishing event")

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to marshal invoice event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_name", event.EventName)
	if event.RequestID != "" {
		middleware.SetCorrelationID(event.RequestID, msg)
	}

	if err := p.pubsub.Publish(ctx, p.config.Topic, msg); err != nil {
		return ierr.WithError(err).
			WithHint("failed to publish invoice event").
			WithReportableDetails(map[string]any{
				"event_name": event.EventName,
				"invoice_id": event.InvoiceID,
			}).
			Mark(ierr.ErrSystem)
	}
	return nil
}
