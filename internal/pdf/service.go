package pdf

import (
	"bytes"
	"context"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/domain/pdf"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/jung-kurt/gofpdf"
)

// Generator defines the interface for PDF generation operations
type Generator interface {
	RenderInvoicePdf(ctx context.Context, inv *invoice.Invoice) ([]byte, error)
}

type Config struct {
	// Compress deflates page streams, tests turn it off to inspect the output
	Compress bool
}

type service struct {
	config Config
}

// NewGenerator creates a new PDF service
func NewGenerator() Generator {
	return &service{
		config: Config{Compress: true},
	}
}

// NewGeneratorWithConfig is NewGenerator with explicit settings
func NewGeneratorWithConfig(config Config) Generator {
	return &service{config: config}
}

// column widths of the item table in mm, 170 in total
var columnWidths = []float64{85, 25, 30, 30}

// RenderInvoicePdf lays out the invoice on a single A4 page: header, bill-to
// block, the item table and the totals aligned on the right
func (s *service) RenderInvoicePdf(ctx context.Context, inv *invoice.Invoice) ([]byte, error) {
	data := pdf.NewInvoiceData(inv)

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(s.config.Compress)
	doc.SetTitle("Invoice "+data.InvoiceNumber, true)
	doc.SetMargins(20, 20, 20)
	doc.AddPage()

	// core fonts are cp1252, translate so accented customer names survive
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Arial", "B", 20)
	doc.Text(20, 20, "Invoice")

	doc.SetFont("Arial", "", 12)
	doc.Text(20, 30, "Invoice #: "+data.InvoiceNumber)
	doc.Text(20, 40, "Date: "+data.IssuingDate)

	doc.Text(20, 60, "Bill To:")
	doc.Text(20, 70, tr(data.Recipient.Name))
	doc.Text(20, 80, tr(data.Recipient.Email))

	doc.SetXY(20, 95)
	doc.SetFont("Arial", "B", 11)
	doc.SetFillColor(41, 128, 185)
	doc.SetTextColor(255, 255, 255)
	for i, header := range []string{"Description", "Quantity", "Price", "Total"} {
		doc.CellFormat(columnWidths[i], 8, header, "1", 0, alignFor(i), true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Arial", "", 11)
	doc.SetTextColor(0, 0, 0)
	for _, item := range data.LineItems {
		doc.SetX(20)
		row := []string{tr(item.Description), item.Quantity, item.Price, item.Total}
		for i, cell := range row {
			doc.CellFormat(columnWidths[i], 8, cell, "1", 0, alignFor(i), false, 0, "")
		}
		doc.Ln(-1)
	}

	y := doc.GetY() + 10
	doc.SetFont("Arial", "", 12)
	doc.Text(140, y, "Subtotal: "+data.Subtotal)
	doc.Text(140, y+10, data.TaxLabel+": "+data.TaxAmount)
	doc.SetFont("Arial", "B", 12)
	doc.Text(140, y+20, "Total: "+data.Total)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to render invoice pdf").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrSystem)
	}

	return buf.Bytes(), nil
}

func alignFor(column int) string {
	if column == 0 {
		return "L"
	}
	return "R"
}
