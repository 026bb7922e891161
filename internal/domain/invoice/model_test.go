package invoice

import (
	"testing"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInvoice() *Invoice {
	return &Invoice{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		LineItems:     LineItems{item("Widget", 2, "10")},
		TaxRate:       decimal.RequireFromString("0.1"),
	}
}

func TestInvoice_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(inv *Invoice)
	}{
		{name: "short name", mutate: func(inv *Invoice) { inv.CustomerName = " J " }},
		{name: "missing email", mutate: func(inv *Invoice) { inv.CustomerEmail = "  " }},
		{name: "no items", mutate: func(inv *Invoice) { inv.LineItems = nil }},
		{name: "blank description", mutate: func(inv *Invoice) { inv.LineItems[0].Description = "   " }},
		{name: "zero quantity", mutate: func(inv *Invoice) { inv.LineItems[0].Quantity = 0 }},
		{name: "negative price", mutate: func(inv *Invoice) { inv.LineItems[0].UnitPrice = decimal.NewFromInt(-1) }},
		{name: "negative tax", mutate: func(inv *Invoice) { inv.TaxRate = decimal.NewFromInt(-1) }},
	}

	require.NoError(t, validInvoice().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(inv)
			err := inv.Validate()
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestInvoice_ApplyTotals(t *testing.T) {
	inv := validInvoice()
	inv.Total = decimal.NewFromInt(1_000_000)

	require.NoError(t, inv.ApplyTotals())
	assert.True(t, decimal.NewFromInt(20).Equal(inv.Subtotal))
	assert.True(t, decimal.NewFromInt(2).Equal(inv.TaxAmount))
	assert.True(t, decimal.NewFromInt(22).Equal(inv.Total))
}

func TestLineItems_ScanValue(t *testing.T) {
	items := LineItems{item("Widget", 2, "10.50")}

	raw, err := items.Value()
	require.NoError(t, err)

	var scanned LineItems
	require.NoError(t, scanned.Scan(raw))
	require.Len(t, scanned, 1)
	assert.Equal(t, "Widget", scanned[0].Description)
	assert.True(t, decimal.RequireFromString("10.5").Equal(scanned[0].UnitPrice))

	var empty LineItems
	require.NoError(t, empty.Scan(nil))
	assert.Empty(t, empty)
}

func TestInvoice_CopyIsDeep(t *testing.T) {
	inv := validInvoice()
	c := inv.Copy()
	c.LineItems[0].Description = "changed"
	assert.Equal(t, "Widget", inv.LineItems[0].Description)
}
