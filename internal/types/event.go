package types

import (
	"encoding/json"
	"time"
)

// InvoiceEvent is published on every successful invoice state change
type InvoiceEvent struct {
	ID            string          `json:"id"`
	EventName     string          `json:"event_name"`
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	RequestID     string          `json:"request_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

const (
	InvoiceEventCreated = "invoice.created"
	InvoiceEventUpdated = "invoice.updated"
	InvoiceEventDeleted = "invoice.deleted"
)
