package invoice

import (
	"context"
	"time"

	"github.com/flexprice/invoicer/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create persists a fully assembled invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID, ierr.ErrNotFound when absent
	Get(ctx context.Context, id string) (*Invoice, error)

	// List retrieves invoices newest first
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// ListRecent retrieves invoices for the email created at or after since
	ListRecent(ctx context.Context, customerEmail string, since time.Time) ([]*Invoice, error)

	// Count returns the number of invoices ever created, deletions do not lower it
	Count(ctx context.Context) (int, error)

	// Update replaces the mutable fields of an existing invoice, ierr.ErrNotFound when absent
	Update(ctx context.Context, invoice *Invoice) error

	// Delete hard deletes an invoice, ierr.ErrNotFound when absent
	Delete(ctx context.Context, id string) error
}
