package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flexprice/invoicer/internal/api/dto"
	"github.com/flexprice/invoicer/internal/cache"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/s3"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) ([]*dto.InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
	GetInvoicePDF(ctx context.Context, id string) ([]byte, error)
	GetInvoicePDFUrl(ctx context.Context, id string) (string, error)
}

type invoiceService struct {
	ServiceParams
	detector *invoice.DuplicateDetector
	now      func() time.Time
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return newInvoiceService(params, time.Now)
}

func newInvoiceService(params ServiceParams, now func() time.Time) *invoiceService {
	return &invoiceService{
		ServiceParams: params,
		detector:      invoice.NewDuplicateDetector(params.Config.Invoice.DuplicateWindow),
		now:           now,
	}
}

// CreateInvoice validates the request, derives totals, rejects resubmissions
// inside the duplicate window, numbers the invoice and persists it.
// Counting and inserting are not atomic, concurrent creates can collide on a
// number and the second one fails in storage.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	taxRate, err := s.Config.Invoice.GetDefaultTaxRate()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("invoice tax configuration is invalid").
			Mark(ierr.ErrSystem)
	}
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	inv, err := req.ToInvoice(taxRate)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	recent, err := s.InvoiceRepo.ListRecent(ctx, inv.CustomerEmail, s.detector.Cutoff(now))
	if err != nil {
		return nil, s.storageFailure(ctx, "list recent invoices", err)
	}

	if s.detector.IsDuplicateAt(inv.LineItems, recent, now) {
		s.Logger.Infow("rejected duplicate invoice",
			"customer_email", inv.CustomerEmail,
			"window", s.detector.Window().String(),
			"request_id", types.GetRequestID(ctx),
		)
		s.Sentry.AddBreadcrumb("invoice", "rejected duplicate invoice", map[string]interface{}{
			"customer_email": inv.CustomerEmail,
			"recent_count":   len(recent),
		})
		return nil, ierr.NewError("duplicate invoice submission").
			WithHintf("An invoice with the same line items was created for this customer within the last %s", s.detector.Window()).
			WithReportableDetails(map[string]any{
				"customer_email": inv.CustomerEmail,
				"window":         s.detector.Window().String(),
			}).
			Mark(ierr.ErrDuplicate)
	}

	count, err := s.InvoiceRepo.Count(ctx)
	if err != nil {
		return nil, s.storageFailure(ctx, "count invoices", err)
	}

	inv.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE)
	inv.InvoiceNumber = invoice.NextInvoiceNumber(count, now)
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, s.storageFailure(ctx, "create invoice", err)
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"total", inv.Total.String(),
		"request_id", types.GetRequestID(ctx),
	)

	s.cacheInvoice(ctx, inv)
	resp := dto.NewInvoiceResponse(inv)
	s.publishEvent(ctx, types.InvoiceEventCreated, inv, resp)
	return resp, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

// ListInvoices returns invoices newest first, a nil filter uses the default page
func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) ([]*dto.InvoiceResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	filter.Normalize()

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, s.storageFailure(ctx, "list invoices", err)
	}

	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	}), nil
}

// UpdateInvoice replaces customer details, line items and optionally the tax
// rate. The duplicate check is skipped; number and created_at never change.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	inv, err := req.Apply(existing)
	if err != nil {
		return nil, err
	}
	inv.UpdatedAt = s.now().UTC()

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		if ierr.IsNotFound(err) {
			s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixInvoice, id))
			return nil, err
		}
		return nil, s.storageFailure(ctx, "update invoice", err)
	}

	s.Logger.Infow("updated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"total", inv.Total.String(),
		"request_id", types.GetRequestID(ctx),
	)

	s.cacheInvoice(ctx, inv)
	resp := dto.NewInvoiceResponse(inv)
	s.publishEvent(ctx, types.InvoiceEventUpdated, inv, resp)
	return resp, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	// read first so the event can carry the invoice number
	inv, err := s.getInvoice(ctx, id)
	if err != nil {
		return err
	}

	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixInvoice, id))

	if err := s.InvoiceRepo.Delete(ctx, id); err != nil {
		if ierr.IsNotFound(err) {
			return err
		}
		return s.storageFailure(ctx, "delete invoice", err)
	}

	s.Logger.Infow("deleted invoice",
		"invoice_id", id,
		"invoice_number", inv.InvoiceNumber,
		"request_id", types.GetRequestID(ctx),
	)

	s.publishEvent(ctx, types.InvoiceEventDeleted, inv, nil)
	return nil
}

// GetInvoicePDF serves the archived rendering of the current revision when
// there is one. Otherwise it renders the invoice and, with the archive enabled,
// uploads it. A failing archive never fails the download.
func (s *invoiceService) GetInvoicePDF(ctx context.Context, id string) ([]byte, error) {
	inv, err := s.getInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.S3 == nil {
		return s.renderPDF(ctx, inv)
	}

	docID := archivedDocumentID(inv)
	exists, err := s.S3.Exists(ctx, docID, s3.DocumentTypeInvoice)
	if err != nil {
		s.Logger.Warnw("failed to check invoice pdf archive", "invoice_id", id, "error", err)
	}
	if exists {
		data, err := s.S3.GetDocument(ctx, docID, s3.DocumentTypeInvoice)
		if err == nil {
			return data, nil
		}
		s.Logger.Warnw("failed to fetch archived invoice pdf, rendering again", "invoice_id", id, "error", err)
	}

	data, err := s.renderPDF(ctx, inv)
	if err != nil {
		return nil, err
	}

	if err := s.S3.UploadDocument(ctx, s3.NewPdfDocument(docID, data, s3.DocumentTypeInvoice)); err != nil {
		s.Logger.Warnw("failed to archive invoice pdf", "invoice_id", id, "error", err)
		s.Sentry.CaptureException(err)
	}

	return data, nil
}

// GetInvoicePDFUrl returns a presigned download url for the current revision,
// archiving it first if it is not stored yet
func (s *invoiceService) GetInvoicePDFUrl(ctx context.Context, id string) (string, error) {
	if s.S3 == nil {
		return "", ierr.NewError("document archive disabled").
			WithHint("PDF download links are not available, the document archive is disabled").
			Mark(ierr.ErrInvalidOperation)
	}

	inv, err := s.getInvoice(ctx, id)
	if err != nil {
		return "", err
	}

	docID := archivedDocumentID(inv)
	exists, err := s.S3.Exists(ctx, docID, s3.DocumentTypeInvoice)
	if err != nil {
		return "", err
	}

	if !exists {
		data, err := s.renderPDF(ctx, inv)
		if err != nil {
			return "", err
		}
		if err := s.S3.UploadDocument(ctx, s3.NewPdfDocument(docID, data, s3.DocumentTypeInvoice)); err != nil {
			return "", err
		}
	}

	return s.S3.GetPresignedUrl(ctx, docID, s3.DocumentTypeInvoice)
}

func (s *invoiceService) renderPDF(ctx context.Context, inv *invoice.Invoice) ([]byte, error) {
	data, err := s.PDFGenerator.RenderInvoicePdf(ctx, inv)
	if err != nil {
		s.Logger.Errorw("failed to render invoice pdf", "invoice_id", inv.ID, "error", err)
		return nil, err
	}
	return data, nil
}

// archivedDocumentID names one revision of an invoice in the archive.
// Updates bump UpdatedAt, so an edited invoice never reuses an older rendering.
func archivedDocumentID(inv *invoice.Invoice) string {
	return fmt.Sprintf("%s_%d", inv.ID, inv.UpdatedAt.UnixMilli())
}

func (s *invoiceService) getInvoice(ctx context.Context, id string) (*invoice.Invoice, error) {
	if id == "" {
		return nil, ierr.NewError("invoice id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	key := cache.GenerateKey(cache.PrefixInvoice, id)
	if cached, found := s.Cache.Get(ctx, key); found {
		if inv, ok := cached.(*invoice.Invoice); ok {
			return inv.Copy(), nil
		}
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, err
		}
		return nil, s.storageFailure(ctx, "get invoice", err)
	}

	s.cacheInvoice(ctx, inv)
	return inv, nil
}

func (s *invoiceService) cacheInvoice(ctx context.Context, inv *invoice.Invoice) {
	s.Cache.Set(ctx, cache.GenerateKey(cache.PrefixInvoice, inv.ID), inv.Copy(), 0)
}

// storageFailure logs and reports a repository error. Errors already marked
// by the repository keep their hint, anything else becomes ErrDatabase.
func (s *invoiceService) storageFailure(ctx context.Context, op string, err error) error {
	s.Logger.Errorw("invoice storage failure",
		"operation", op,
		"error", err,
		"request_id", types.GetRequestID(ctx),
	)
	s.Sentry.CaptureException(err)

	if ierr.IsDatabase(err) {
		return err
	}
	return ierr.WithError(err).
		WithHintf("failed to %s", op).
		Mark(ierr.ErrDatabase)
}

// publishEvent is fire and forget, the invoice is already persisted
func (s *invoiceService) publishEvent(ctx context.Context, name string, inv *invoice.Invoice, payload any) {
	event := &types.InvoiceEvent{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		EventName:     name,
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		RequestID:     types.GetRequestID(ctx),
		Timestamp:     s.now().UTC(),
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.Logger.Warnw("failed to marshal invoice event payload", "event_name", name, "error", err)
		} else {
			event.Payload = raw
		}
	}

	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish invoice event",
			"event_name", name,
			"invoice_id", inv.ID,
			"error", err,
		)
	}
}
