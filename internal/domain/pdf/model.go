package pdf

import (
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	currencySymbol = "$"
	dateLayout     = "2006-01-02"
)

// InvoiceData is the printable view of an invoice, every amount already formatted
type InvoiceData struct {
	ID            string         `json:"id"`
	InvoiceNumber string         `json:"invoice_number"`
	IssuingDate   string         `json:"issuing_date"`
	Recipient     *RecipientInfo `json:"recipient"`
	LineItems     []LineItemData `json:"line_items"`
	Subtotal      string         `json:"subtotal"`
	TaxLabel      string         `json:"tax_label"`
	TaxAmount     string         `json:"tax_amount"`
	Total         string         `json:"total"`
}

// RecipientInfo contains customer information for the invoice recipient
type RecipientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LineItemData is one row of the item table
type LineItemData struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Total       string `json:"total"`
}

// NewInvoiceData builds the printable view from the stored invoice
func NewInvoiceData(inv *invoice.Invoice) *InvoiceData {
	return &InvoiceData{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		IssuingDate:   inv.CreatedAt.UTC().Format(dateLayout),
		Recipient: &RecipientInfo{
			Name:  inv.CustomerName,
			Email: inv.CustomerEmail,
		},
		LineItems: lo.Map(inv.LineItems, func(item invoice.LineItem, _ int) LineItemData {
			return LineItemData{
				Description: item.Description,
				Quantity:    decimal.NewFromInt(int64(item.Quantity)).String(),
				Price:       FormatMoney(item.UnitPrice),
				Total:       FormatMoney(item.Amount()),
			}
		}),
		Subtotal:  FormatMoney(inv.Subtotal),
		TaxLabel:  "Tax (" + FormatPercent(inv.TaxRate) + ")",
		TaxAmount: FormatMoney(inv.TaxAmount),
		Total:     FormatMoney(inv.Total),
	}
}

// FormatMoney renders an amount with two decimals, e.g. $22.00
func FormatMoney(amount decimal.Decimal) string {
	return currencySymbol + amount.StringFixed(invoice.MoneyPrecision)
}

// FormatPercent renders a rate fraction as a percentage, 0.075 becomes 7.5%
func FormatPercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}
