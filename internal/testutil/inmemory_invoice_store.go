package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]

	// created counts every successful Create, deletes leave it alone
	created atomic.Int64
}

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// NewInMemoryInvoiceStore creates a new in-memory invoice store
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, inv.ID, inv.Copy()); err != nil {
		return err
	}
	s.created.Add(1)
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return inv.Copy(), nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	var f interface{}
	if filter != nil {
		f = filter
	}
	invoices, err := s.InMemoryStore.List(ctx, f, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return copyInvoices(invoices), nil
}

func (s *InMemoryInvoiceStore) ListRecent(ctx context.Context, customerEmail string, since time.Time) ([]*invoice.Invoice, error) {
	recentFn := func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.CustomerEmail == customerEmail && !inv.CreatedAt.Before(since)
	}
	invoices, err := s.InMemoryStore.List(ctx, nil, recentFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return copyInvoices(invoices), nil
}

// Count mirrors the postgres counter table, it never goes down
func (s *InMemoryInvoiceStore) Count(ctx context.Context) (int, error) {
	return int(s.created.Load()), nil
}

// Update keeps the stored invoice_number and created_at
func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	existing, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Invoice %s not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}

	updated := inv.Copy()
	updated.InvoiceNumber = existing.InvoiceNumber
	updated.CreatedAt = existing.CreatedAt
	return s.InMemoryStore.Update(ctx, inv.ID, updated)
}

func (s *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	if err := s.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.WithError(err).
			WithHintf("Invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// Clear removes all invoices and resets the created counter
func (s *InMemoryInvoiceStore) Clear() {
	s.InMemoryStore.Clear()
	s.created.Store(0)
}

// invoiceFilterFn implements filtering logic for invoices
func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if f.CustomerEmail != "" && inv.CustomerEmail != f.CustomerEmail {
		return false
	}

	return true
}

// invoiceSortFn sorts newest first, id breaks ties so the order is stable
func invoiceSortFn(i, j *invoice.Invoice) bool {
	if !i.CreatedAt.Equal(j.CreatedAt) {
		return i.CreatedAt.After(j.CreatedAt)
	}
	return i.ID > j.ID
}

func copyInvoices(invoices []*invoice.Invoice) []*invoice.Invoice {
	out := make([]*invoice.Invoice, len(invoices))
	for i, inv := range invoices {
		out[i] = inv.Copy()
	}
	return out
}
