package dto

import (
	"testing"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	validator.NewValidator()
}

func validCreateRequest() CreateInvoiceRequest {
	return CreateInvoiceRequest{
		CustomerName:  "Acme Corp",
		CustomerEmail: "billing@acme.test",
		LineItems: []LineItemRequest{
			{Description: "Widget", Quantity: 2, UnitPrice: lo.ToPtr(decimal.RequireFromString("10.00"))},
		},
	}
}

func TestCreateInvoiceRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *CreateInvoiceRequest)
		wantField string
	}{
		{name: "valid request"},
		{
			name:      "name too short",
			mutate:    func(r *CreateInvoiceRequest) { r.CustomerName = " A " },
			wantField: "customer_name",
		},
		{
			name:      "name missing",
			mutate:    func(r *CreateInvoiceRequest) { r.CustomerName = "" },
			wantField: "customer_name",
		},
		{
			name:      "bad email",
			mutate:    func(r *CreateInvoiceRequest) { r.CustomerEmail = "not-an-email" },
			wantField: "customer_email",
		},
		{
			name:      "no line items",
			mutate:    func(r *CreateInvoiceRequest) { r.LineItems = nil },
			wantField: "line_items",
		},
		{
			name:      "blank description",
			mutate:    func(r *CreateInvoiceRequest) { r.LineItems[0].Description = "   " },
			wantField: "line_items[0].description",
		},
		{
			name:      "zero quantity",
			mutate:    func(r *CreateInvoiceRequest) { r.LineItems[0].Quantity = 0 },
			wantField: "line_items[0].quantity",
		},
		{
			name:      "negative unit price",
			mutate:    func(r *CreateInvoiceRequest) { r.LineItems[0].UnitPrice = lo.ToPtr(decimal.NewFromInt(-1)) },
			wantField: "line_items[0].unit_price",
		},
		{
			name:      "missing unit price",
			mutate:    func(r *CreateInvoiceRequest) { r.LineItems[0].UnitPrice = nil },
			wantField: "line_items[0].unit_price",
		},
		{
			name: "negative tax rate",
			mutate: func(r *CreateInvoiceRequest) {
				rate := decimal.RequireFromString("-0.1")
				r.TaxRate = &rate
			},
			wantField: "tax_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			req.Normalize()
			err := req.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
			assert.Contains(t, reportedFields(err), tt.wantField)
		})
	}
}

func TestCreateInvoiceRequest_ValidateReportsEveryField(t *testing.T) {
	req := validCreateRequest()
	req.CustomerName = ""
	req.LineItems = append(req.LineItems, LineItemRequest{Description: "Gizmo", Quantity: 1})
	req.LineItems[0].UnitPrice = lo.ToPtr(decimal.NewFromInt(-1))
	rate := decimal.RequireFromString("-0.5")
	req.TaxRate = &rate

	req.Normalize()
	err := req.Validate()
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.Equal(t, "Request validation failed", ierr.DisplayMessage(err))

	details := ierr.ReportableDetails(err)
	assert.Equal(t, "is required", details["customer_name"])
	assert.Equal(t, "must be non negative", details["line_items[0].unit_price"])
	assert.Equal(t, "is required", details["line_items[1].unit_price"])
	assert.Equal(t, "must be non negative", details["tax_rate"])
}

func TestUpdateInvoiceRequest_ValidateReportsEveryField(t *testing.T) {
	req := UpdateInvoiceRequest{
		CustomerName:  "Acme Corp",
		CustomerEmail: "nope",
		LineItems: []LineItemRequest{
			{Description: "Widget", Quantity: 1, UnitPrice: lo.ToPtr(decimal.NewFromInt(-3))},
		},
	}

	req.Normalize()
	err := req.Validate()
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"customer_email", "line_items[0].unit_price"}, reportedFields(err))
}

func TestCreateInvoiceRequest_Normalize(t *testing.T) {
	req := validCreateRequest()
	req.CustomerName = "  Acme Corp  "
	req.CustomerEmail = "  Billing@ACME.test "
	req.LineItems[0].Description = "  Widget "

	req.Normalize()

	assert.Equal(t, "Acme Corp", req.CustomerName)
	assert.Equal(t, "billing@acme.test", req.CustomerEmail)
	assert.Equal(t, "Widget", req.LineItems[0].Description)
}

func TestCreateInvoiceRequest_ToInvoice(t *testing.T) {
	req := validCreateRequest()
	inv, err := req.ToInvoice(decimal.RequireFromString("0.10"))
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("20.00").Equal(inv.Subtotal))
	assert.True(t, decimal.RequireFromString("2.00").Equal(inv.TaxAmount))
	assert.True(t, decimal.RequireFromString("22.00").Equal(inv.Total))
	assert.Empty(t, inv.ID)
	assert.Empty(t, inv.InvoiceNumber)
}

func TestUpdateInvoiceRequest_Apply(t *testing.T) {
	create := validCreateRequest()
	existing, err := create.ToInvoice(decimal.RequireFromString("0.10"))
	require.NoError(t, err)
	existing.ID = "inv_1"
	existing.InvoiceNumber = "INV-2024030001"

	update := UpdateInvoiceRequest{
		CustomerName:  "Acme Corp",
		CustomerEmail: "billing@acme.test",
		LineItems: []LineItemRequest{
			{Description: "Gadget", Quantity: 1, UnitPrice: lo.ToPtr(decimal.RequireFromString("5"))},
		},
	}
	updated, err := update.Apply(existing)
	require.NoError(t, err)

	assert.Equal(t, "INV-2024030001", updated.InvoiceNumber)
	assert.True(t, decimal.RequireFromString("0.10").Equal(updated.TaxRate), "omitted tax rate keeps the current one")
	assert.True(t, decimal.RequireFromString("5.50").Equal(updated.Total))
	assert.Equal(t, "Widget", existing.LineItems[0].Description, "existing invoice is not mutated")
}

func TestNewInvoiceResponse(t *testing.T) {
	req := validCreateRequest()
	inv, err := req.ToInvoice(decimal.Zero)
	require.NoError(t, err)

	resp := NewInvoiceResponse(inv)
	require.Len(t, resp.LineItems, 1)
	assert.True(t, decimal.NewFromInt(20).Equal(resp.LineItems[0].Amount))
	assert.Nil(t, NewInvoiceResponse(nil))
}

func reportedFields(err error) []string {
	fields := make([]string, 0)
	for k := range ierr.ReportableDetails(err) {
		fields = append(fields, k)
	}
	return fields
}
