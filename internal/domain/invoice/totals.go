package invoice

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimal places tax amounts are rounded to
const MoneyPrecision = 2

// Totals holds the derived monetary fields of an invoice
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// CalculateTotals derives subtotal, tax and total from line items.
// taxRate is a fraction, 0.10 means 10%. The subtotal is exact, the tax
// amount is rounded half away from zero to MoneyPrecision places.
func CalculateTotals(items []LineItem, taxRate decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, NewValidationError("line_items", "at least one line item is required")
	}

	if taxRate.IsNegative() {
		return Totals{}, NewValidationError("tax_rate", "must be non negative")
	}

	subtotal := decimal.Zero
	for idx, item := range items {
		if item.Quantity < 1 {
			return Totals{}, NewValidationError(fmt.Sprintf("line_items[%d].quantity", idx), "must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			return Totals{}, NewValidationError(fmt.Sprintf("line_items[%d].unit_price", idx), "must be non negative")
		}
		subtotal = subtotal.Add(item.Amount())
	}

	taxAmount := subtotal.Mul(taxRate).Round(MoneyPrecision)

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}, nil
}
