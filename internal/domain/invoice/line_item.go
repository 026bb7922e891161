package invoice

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one product or service entry on an invoice
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Amount is quantity times unit price
func (l LineItem) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate validates the line item at position idx
func (l LineItem) Validate(idx int) error {
	if strings.TrimSpace(l.Description) == "" {
		return NewValidationError(fmt.Sprintf("line_items[%d].description", idx), "is required")
	}

	if l.Quantity < 1 {
		return NewValidationError(fmt.Sprintf("line_items[%d].quantity", idx), "must be at least 1")
	}

	if l.UnitPrice.IsNegative() {
		return NewValidationError(fmt.Sprintf("line_items[%d].unit_price", idx), "must be non negative")
	}

	return nil
}

// LineItems is stored as a single JSONB column
type LineItems []LineItem

func (l LineItems) Copy() LineItems {
	if l == nil {
		return nil
	}
	out := make(LineItems, len(l))
	copy(out, l)
	return out
}

// Value implements driver.Valuer
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *LineItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for line items: %T", src)
	}
	return json.Unmarshal(data, l)
}
