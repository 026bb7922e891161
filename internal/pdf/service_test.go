package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(t *testing.T) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            "inv_01HTEST",
		InvoiceNumber: "INV-2024030001",
		CustomerName:  "Zoë Müller",
		CustomerEmail: "zoe@example.test",
		LineItems: invoice.LineItems{
			{Description: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		TaxRate:   decimal.RequireFromString("0.10"),
		CreatedAt: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, inv.ApplyTotals())
	return inv
}

func TestRenderInvoicePdf(t *testing.T) {
	out, err := NewGenerator().RenderInvoicePdf(context.Background(), testInvoice(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderInvoicePdf_Layout(t *testing.T) {
	gen := NewGeneratorWithConfig(Config{Compress: false})

	out, err := gen.RenderInvoicePdf(context.Background(), testInvoice(t))
	require.NoError(t, err)

	for _, want := range []string{
		"(Invoice)",
		"(Invoice #: INV-2024030001)",
		"(Date: 2024-03-15)",
		"(Bill To:)",
		"(zoe@example.test)",
		"(Description)",
		"(Widget)",
		"($20.00)",
		"(Subtotal: $20.00)",
		"(Tax \\(10%\\): $2.00)",
		"(Total: $22.00)",
	} {
		assert.Contains(t, string(out), want)
	}
}
