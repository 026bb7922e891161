package internal

import (
	"fmt"

	"github.com/flexprice/invoicer/internal/cache"
	"github.com/flexprice/invoicer/internal/config"
	"github.com/flexprice/invoicer/internal/domain/invoice"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/pdf"
	"github.com/flexprice/invoicer/internal/postgres"
	"github.com/flexprice/invoicer/internal/publisher"
	"github.com/flexprice/invoicer/internal/pubsub/memory"
	"github.com/flexprice/invoicer/internal/repository"
	"github.com/flexprice/invoicer/internal/s3"
	"github.com/flexprice/invoicer/internal/sentry"
	"github.com/flexprice/invoicer/internal/service"
	"github.com/flexprice/invoicer/internal/validator"
)

// scriptEnv is the service stack the scripts run against, backed by the configured postgres
type scriptEnv struct {
	cfg     *config.Configuration
	log     *logger.Logger
	db      *postgres.DB
	repo    invoice.Repository
	service service.InvoiceService
}

func newScriptEnv() (*scriptEnv, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	validator.NewValidator()

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s3Service, err := s3.NewService(cfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	// scripts have no in-process consumer, events go nowhere
	cfg.Events.Enabled = false

	sentryService := sentry.NewSentryService(cfg, log)
	repo := repository.NewInvoiceRepository(db, log, sentryService)
	params := service.NewServiceParams(
		log,
		cfg,
		cache.NewInMemoryCache(cfg, log),
		pdf.NewGenerator(),
		sentryService,
		s3Service,
		repo,
		publisher.NewEventPublisher(cfg, log, memory.NewPubSub(log)),
	)

	return &scriptEnv{
		cfg:     cfg,
		log:     log,
		db:      db,
		repo:    repo,
		service: service.NewInvoiceService(params),
	}, nil
}

func (e *scriptEnv) Close() {
	e.db.Close()
}
