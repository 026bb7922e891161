package types

import (
	"strings"

	ierr "github.com/flexprice/invoicer/internal/errors"
)

// InvoiceFilter narrows invoice listings. Results are always ordered
// newest first regardless of the filter.
type InvoiceFilter struct {
	*QueryFilter

	// customer_email restricts results to invoices billed to this address
	CustomerEmail string `json:"customer_email,omitempty" form:"customer_email"`
}

// NewInvoiceFilter creates a new invoice filter with default pagination
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitInvoiceFilter creates a new invoice filter without pagination
func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *InvoiceFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetLimit()
}

func (f *InvoiceFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *InvoiceFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return true
	}
	return f.QueryFilter.IsUnlimited()
}

// Normalize lower-cases and trims the email filter so it matches stored values
func (f *InvoiceFilter) Normalize() {
	if f == nil {
		return
	}
	f.CustomerEmail = NormalizeEmail(f.CustomerEmail)
}

func (f *InvoiceFilter) Validate() error {
	if f == nil || f.QueryFilter == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint(err.Error()).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NormalizeEmail is the canonical form used for storage and duplicate lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
