package invoice

import (
	"strings"
	"time"
	"unicode/utf8"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/shopspring/decimal"
)

const minCustomerNameLength = 2

// Invoice represents the invoice domain model. Subtotal, TaxAmount and Total
// are derived from LineItems and TaxRate and are never taken from callers.
type Invoice struct {
	ID            string          `db:"id" json:"id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	CustomerName  string          `db:"customer_name" json:"customer_name"`
	CustomerEmail string          `db:"customer_email" json:"customer_email"`
	LineItems     LineItems       `db:"line_items" json:"line_items"`
	TaxRate       decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxAmount     decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Total         decimal.Decimal `db:"total" json:"total"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ApplyTotals recomputes the derived monetary fields from the line items
func (i *Invoice) ApplyTotals() error {
	totals, err := CalculateTotals(i.LineItems, i.TaxRate)
	if err != nil {
		return err
	}
	i.Subtotal = totals.Subtotal
	i.TaxAmount = totals.TaxAmount
	i.Total = totals.Total
	return nil
}

// Copy returns a deep copy so stored records cannot be mutated through callers
func (i *Invoice) Copy() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	c.LineItems = i.LineItems.Copy()
	return &c
}

func (i *Invoice) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(i.CustomerName)) < minCustomerNameLength {
		return NewValidationError("customer_name", "must be at least 2 characters long")
	}

	if strings.TrimSpace(i.CustomerEmail) == "" {
		return NewValidationError("customer_email", "is required")
	}

	if len(i.LineItems) == 0 {
		return NewValidationError("line_items", "at least one line item is required")
	}

	for idx, item := range i.LineItems {
		if err := item.Validate(idx); err != nil {
			return err
		}
	}

	if i.TaxRate.IsNegative() {
		return NewValidationError("tax_rate", "must be non negative")
	}

	return nil
}

// NewValidationError builds an InvalidInput error carrying the offending field
func NewValidationError(field, reason string) error {
	return ierr.NewErrorf("invoice validation failed: %s %s", field, reason).
		WithHintf("%s %s", field, reason).
		WithReportableDetails(map[string]any{
			field: reason,
		}).
		Mark(ierr.ErrValidation)
}
