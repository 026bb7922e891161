package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/flexprice/invoicer/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents the request payload for creating a new invoice.
// Monetary totals are never accepted from callers, they are derived from the line items.
type CreateInvoiceRequest struct {
	// customer_name is printed on the bill-to block, at least 2 characters
	CustomerName string `json:"customer_name" validate:"required,min=2"`

	// customer_email is the billing address, stored lower-cased
	CustomerEmail string `json:"customer_email" validate:"required,email"`

	// line_items must contain at least one entry
	LineItems []LineItemRequest `json:"line_items" validate:"required,min=1,dive"`

	// tax_rate is a fraction, 0.10 means 10%. When omitted the configured default applies.
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
}

// UpdateInvoiceRequest fully replaces the customer, line items and tax rate of
// an invoice. invoice_number and created_at can not be changed.
type UpdateInvoiceRequest struct {
	CustomerName  string            `json:"customer_name" validate:"required,min=2"`
	CustomerEmail string            `json:"customer_email" validate:"required,email"`
	LineItems     []LineItemRequest `json:"line_items" validate:"required,min=1,dive"`

	// tax_rate is a fraction. When omitted the invoice keeps its current rate.
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
}

type LineItemRequest struct {
	Description string           `json:"description" validate:"required"`
	Quantity    int              `json:"quantity" validate:"min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price" validate:"required"`
}

// Normalize trims free text and canonicalizes the email before validation
func (r *CreateInvoiceRequest) Normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerEmail = types.NormalizeEmail(r.CustomerEmail)
	normalizeLineItems(r.LineItems)
}

func (r *CreateInvoiceRequest) Validate() error {
	return mergeValidation(validator.ValidateRequest(r), amountDetails(r.LineItems, r.TaxRate))
}

// ToInvoice builds the domain invoice with taxRate applied, totals included.
// Identity, number and timestamps are left to the caller.
func (r *CreateInvoiceRequest) ToInvoice(taxRate decimal.Decimal) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		LineItems:     toLineItems(r.LineItems),
		TaxRate:       taxRate,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := inv.ApplyTotals(); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *UpdateInvoiceRequest) Normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerEmail = types.NormalizeEmail(r.CustomerEmail)
	normalizeLineItems(r.LineItems)
}

func (r *UpdateInvoiceRequest) Validate() error {
	return mergeValidation(validator.ValidateRequest(r), amountDetails(r.LineItems, r.TaxRate))
}

// Apply returns a copy of existing carrying the replacement fields and fresh totals
func (r *UpdateInvoiceRequest) Apply(existing *invoice.Invoice) (*invoice.Invoice, error) {
	inv := existing.Copy()
	inv.CustomerName = r.CustomerName
	inv.CustomerEmail = r.CustomerEmail
	inv.LineItems = toLineItems(r.LineItems)
	if r.TaxRate != nil {
		inv.TaxRate = *r.TaxRate
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := inv.ApplyTotals(); err != nil {
		return nil, err
	}
	return inv, nil
}

func normalizeLineItems(items []LineItemRequest) {
	for i := range items {
		items[i].Description = strings.TrimSpace(items[i].Description)
	}
}

// amountDetails covers the decimal fields the struct tags can not express
func amountDetails(items []LineItemRequest, taxRate *decimal.Decimal) map[string]any {
	details := make(map[string]any)
	for i, item := range items {
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			details[fmt.Sprintf("line_items[%d].unit_price", i)] = "must be non negative"
		}
	}
	if taxRate != nil && taxRate.IsNegative() {
		details["tax_rate"] = "must be non negative"
	}
	return details
}

// mergeValidation reports the tag failures and the amount failures as one error
// so callers see every bad field at once
func mergeValidation(tagErr error, amounts map[string]any) error {
	if tagErr != nil && !ierr.IsValidation(tagErr) {
		return tagErr
	}
	if tagErr == nil && len(amounts) == 0 {
		return nil
	}

	cause := ierr.NewError("invalid amounts").Error()
	details := make(map[string]any)
	if tagErr != nil {
		cause = tagErr
		details = ierr.ReportableDetails(tagErr)
	}
	for field, reason := range amounts {
		details[field] = reason
	}
	return ierr.WithError(cause).
		WithHint("Request validation failed").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}

func toLineItems(items []LineItemRequest) invoice.LineItems {
	return lo.Map(items, func(item LineItemRequest, _ int) invoice.LineItem {
		return invoice.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   lo.FromPtr(item.UnitPrice),
		}
	})
}

// InvoiceResponse is the invoice as returned by the API
type InvoiceResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	LineItems     []LineItemResponse `json:"line_items"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	Total         decimal.Decimal    `json:"total"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type LineItemResponse struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	// amount is quantity times unit_price
	Amount decimal.Decimal `json:"amount"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	return &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		LineItems: lo.Map(inv.LineItems, func(item invoice.LineItem, _ int) LineItemResponse {
			return LineItemResponse{
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Amount:      item.Amount(),
			}
		}),
		TaxRate:   inv.TaxRate,
		Subtotal:  inv.Subtotal,
		TaxAmount: inv.TaxAmount,
		Total:     inv.Total,
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

type DeleteInvoiceResponse struct {
	Message string `json:"message"`
}

type InvoicePDFURLResponse struct {
	PresignedURL string `json:"presigned_url"`
}
