package service

import (
	"github.com/flexprice/invoicer/internal/cache"
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pdf"
	"github.com/flexprice/invoicer/internal/publisher"
	"github.com/flexprice/invoicer/internal/s3"
	"github.com/flexprice/invoicer/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger       *logger.Logger
	Config       *config.Configuration
	Cache        cache.Cache
	PDFGenerator pdf.Generator
	Sentry       *sentry.Service

	// S3 is nil when the document archive is disabled
	S3 s3.Service

	// Repositories
	InvoiceRepo invoice.Repository

	// Publishers
	EventPublisher publisher.EventPublisher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	pdfGenerator pdf.Generator,
	sentry *sentry.Service,
	s3Service s3.Service,
	invoiceRepo invoice.Repository,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		Cache:          cache,
		PDFGenerator:   pdfGenerator,
		Sentry:         sentry,
		S3:             s3Service,
		InvoiceRepo:    invoiceRepo,
		EventPublisher: eventPublisher,
	}
}
