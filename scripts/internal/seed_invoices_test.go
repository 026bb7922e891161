package internal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/flexprice/invoicer/internal/api/dto"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/service"
	"github.com/flexprice/invoicer/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// createOnlyService answers CreateInvoice, the seeder calls nothing else
type createOnlyService struct {
	service.InvoiceService
	create func(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
}

func (s *createOnlyService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	return s.create(ctx, req)
}

func TestInvoiceGenerator_ProducesValidRequests(t *testing.T) {
	validator.NewValidator()
	generator := NewInvoiceGenerator(42)

	for i := 0; i < 50; i++ {
		req := generator.Generate()
		require.NoError(t, req.Validate())
		assert.NotEmpty(t, req.LineItems)
		assert.LessOrEqual(t, len(req.LineItems), 3)
	}
}

func TestInvoiceGenerator_Deterministic(t *testing.T) {
	a := NewInvoiceGenerator(7)
	b := NewInvoiceGenerator(7)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestSeedInvoices_CountsOutcomes(t *testing.T) {
	var calls atomic.Int64
	svc := &createOnlyService{create: func(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
		switch calls.Add(1) {
		case 2:
			return nil, ierr.NewError("duplicate invoice submission").Mark(ierr.ErrDuplicate)
		case 3:
			return nil, ierr.NewError("insert failed").Mark(ierr.ErrDatabase)
		default:
			return &dto.InvoiceResponse{InvoiceNumber: "INV-2024030001", Total: decimal.NewFromInt(1)}, nil
		}
	}}

	result, err := seedInvoices(context.Background(), svc, logger.NewNopLogger(),
		NewInvoiceGenerator(1), rate.NewLimiter(rate.Inf, 1), 5)
	require.NoError(t, err)
	assert.Equal(t, seedResult{created: 3, duplicates: 1, failed: 1}, result)
}

func TestSeedInvoices_WaitsForInFlightCreatesWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var finished atomic.Int64
	svc := &createOnlyService{create: func(_ context.Context, _ dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
		cancel()
		time.Sleep(50 * time.Millisecond)
		finished.Add(1)
		return &dto.InvoiceResponse{Total: decimal.Zero}, nil
	}}

	// one token per minute, the second create never gets past the limiter
	limiter := rate.NewLimiter(rate.Every(time.Minute), 1)
	result, err := seedInvoices(ctx, svc, logger.NewNopLogger(), NewInvoiceGenerator(1), limiter, 3)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(1), finished.Load())
	assert.Equal(t, int64(1), result.created)
}
