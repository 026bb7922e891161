package publisher

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/types"
)

// NewAuditHandler returns a router handler that writes every invoice event to
// the structured log. It is the only consumer of the topic today.
func NewAuditHandler(log *logger.Logger) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		var event types.InvoiceEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			// acking a payload we can never decode keeps it out of the retry loop
			log.Errorw("dropping undecodable invoice event",
				"message_uuid", msg.UUID,
				"error", err,
			)
			return nil
		}

		if event.InvoiceID == "" {
			return ierr.NewError("invoice event without invoice id").
				WithHint("invoice event without invoice id").
				Mark(ierr.ErrValidation)
		}

		log.Infow("invoice event",
			"event_id", event.ID,
			"event_name", event.EventName,
			"invoice_id", event.InvoiceID,
			"invoice_number", event.InvoiceNumber,
			"request_id", event.RequestID,
			"timestamp", event.Timestamp,
		)
		return nil
	}
}
