package repository

import (
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/postgres"
	postgresRepo "github.com/flexprice/invoicer/internal/repository/postgres"
	"github.com/flexprice/invoicer/internal/sentry"
)

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger, sentry *sentry.Service) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger, sentry)
}
