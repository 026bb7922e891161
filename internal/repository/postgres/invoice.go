package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	domainInvoice "github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/sentry"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/lib/pq"
)

const (
	invoiceNumberConstraint = "idx_invoices_invoice_number"
	invoiceCounterName      = "invoices_created"
)

const invoiceColumns = `
	id, invoice_number, customer_name, customer_email, line_items,
	tax_rate, subtotal, tax_amount, total, created_at, updated_at`

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	sentry *sentry.Service
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger, sentry *sentry.Service) domainInvoice.Repository {
	return &invoiceRepository{db: db, logger: logger, sentry: sentry}
}

// Create inserts the invoice and bumps the created counter in one transaction
func (r *invoiceRepository) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	span, ctx := r.sentry.StartDBSpan(ctx, "invoice.create", map[string]interface{}{
		"invoice_id": inv.ID,
	})
	defer sentry.FinishSpan(span)

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"line_items_count", len(inv.LineItems),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
		INSERT INTO invoices (` + invoiceColumns + `
		) VALUES (
			:id, :invoice_number, :customer_name, :customer_email, :line_items,
			:tax_rate, :subtotal, :tax_amount, :total, :created_at, :updated_at
		)`

		if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Constraint == invoiceNumberConstraint {
				return ierr.WithError(err).
					WithHint("Invoice number was taken by a concurrent request, please retry").
					WithReportableDetails(map[string]any{
						"invoice_id":     inv.ID,
						"invoice_number": inv.InvoiceNumber,
					}).
					Mark(ierr.ErrDatabase)
			}
			return ierr.WithError(err).
				WithHint("invoice creation failed").
				Mark(ierr.ErrDatabase)
		}

		counter := `
		INSERT INTO invoice_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = invoice_counters.value + 1`

		if _, err := r.db.GetQuerier(ctx).ExecContext(ctx, counter, invoiceCounterName); err != nil {
			return ierr.WithError(err).
				WithHint("invoice creation failed").
				Mark(ierr.ErrDatabase)
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	span, ctx := r.sentry.StartDBSpan(ctx, "invoice.get", map[string]interface{}{
		"invoice_id": id,
	})
	defer sentry.FinishSpan(span)

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	var inv domainInvoice.Invoice
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Invoice %s not found", id).
				WithReportableDetails(map[string]any{
					"invoice_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	span, ctx := r.sentry.StartDBSpan(ctx, "invoice.list", nil)
	defer sentry.FinishSpan(span)

	query, args := buildListQuery(filter)

	invoices := make([]*domainInvoice.Invoice, 0)
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func buildListQuery(filter *types.InvoiceFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter != nil && filter.CustomerEmail != "" {
		args = append(args, filter.CustomerEmail)
		conditions = append(conditions, "customer_email = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if !filter.IsUnlimited() {
		args = append(args, filter.GetLimit())
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.GetOffset() > 0 {
		args = append(args, filter.GetOffset())
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}
	return query, args
}

func (r *invoiceRepository) ListRecent(ctx context.Context, customerEmail string, since time.Time) ([]*domainInvoice.Invoice, error) {
	span, ctx := r.sentry.StartDBSpan(ctx, "invoice.list_recent", map[string]interface{}{
		"since": since,
	})
	defer sentry.FinishSpan(span)

	query := `SELECT ` + invoiceColumns + `
	FROM invoices
	WHERE customer_email = $1 AND created_at >= $2
	ORDER BY created_at DESC, id DESC`

	invoices := make([]*domainInvoice.Invoice, 0)
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, customerEmail, since); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to list recent invoices").
			WithReportableDetails(map[string]any{
				"customer_email": customerEmail,
			}).
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COALESCE((SELECT value FROM invoice_counters WHERE name = $1), 0)`

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, invoiceCounterName); err != nil {
		return 0, ierr.WithError(err).
			WithHint("failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

// Update replaces the customer, line items and derived totals.
// invoice_number and created_at are never rewritten.
func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	span, ctx := r.sentry.StartDBSpan(ctx, "invoice.update", map[string]interface{}{
		"invoice_id": inv.ID,
	})
	defer sentry.FinishSpan(span)

	query := `
	UPDATE invoices SET
		customer_name = :customer_name,
		customer_email = :customer_email,
		line_items = :line_items,
		tax_rate = :tax_rate,
		subtotal = :subtotal,
		tax_amount = :tax_amount,
		total = :total,
		updated_at = :updated_at
	WHERE id = :id`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	return expectOneRow(result, inv.ID)
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	span, ctx := r.sentry.StartDBSpan(ctx, "invoice.delete", map[string]interface{}{
		"invoice_id": id,
	})
	defer sentry.FinishSpan(span)

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to delete invoice").
			Mark(ierr.ErrDatabase)
	}
	return expectOneRow(result, id)
}

func expectOneRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to read affected rows").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewErrorf("invoice %s not found", id).
			WithHintf("Invoice %s not found", id).
			WithReportableDetails(map[string]any{
				"invoice_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
