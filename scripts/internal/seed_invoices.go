package internal

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/flexprice/invoicer/internal/api/dto"
	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/flexprice/invoicer/internal/service"
	"github.com/flexprice/invoicer/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"
)

const (
	DEFAULT_NUM_INVOICES = 200
	MAX_CONCURRENCY      = 1
	REQUESTS_PER_SEC     = 20
)

type seedCustomer struct {
	name  string
	email string
}

type catalogItem struct {
	description string
	unitPrice   decimal.Decimal
}

// InvoiceGenerator builds random but valid create requests
type InvoiceGenerator struct {
	customers []seedCustomer
	catalog   []catalogItem
	rnd       *rand.Rand
}

func NewInvoiceGenerator(seed int64) *InvoiceGenerator {
	return &InvoiceGenerator{
		customers: []seedCustomer{
			{"Acme Corp", "billing@acme.test"},
			{"Globex", "ap@globex.test"},
			{"Initech", "finance@initech.test"},
			{"Umbrella", "invoices@umbrella.test"},
		},
		catalog: []catalogItem{
			{"Consulting hour", decimal.RequireFromString("150.00")},
			{"Widget", decimal.RequireFromString("10.00")},
			{"Support plan", decimal.RequireFromString("99.99")},
			{"Setup fee", decimal.RequireFromString("250.00")},
			{"Storage GB", decimal.RequireFromString("0.25")},
		},
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// Generate is not safe for concurrent use
func (g *InvoiceGenerator) Generate() dto.CreateInvoiceRequest {
	customer := g.customers[g.rnd.Intn(len(g.customers))]

	numItems := g.rnd.Intn(3) + 1
	items := make([]dto.LineItemRequest, 0, numItems)
	for _, idx := range g.rnd.Perm(len(g.catalog))[:numItems] {
		item := g.catalog[idx]
		items = append(items, dto.LineItemRequest{
			Description: item.description,
			Quantity:    g.rnd.Intn(20) + 1,
			UnitPrice:   lo.ToPtr(item.unitPrice),
		})
	}

	return dto.CreateInvoiceRequest{
		CustomerName:  customer.name,
		CustomerEmail: customer.email,
		LineItems:     items,
	}
}

func numInvoices() int {
	if n, err := strconv.Atoi(os.Getenv("NUM_INVOICES")); err == nil && n > 0 {
		return n
	}
	return DEFAULT_NUM_INVOICES
}

type seedResult struct {
	created    int64
	duplicates int64
	failed     int64
}

// SeedInvoices creates random invoices through the service one at a time.
// Numbers come from count plus one, so concurrent creates could collide on the unique index.
func SeedInvoices() error {
	env, err := newScriptEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	total := numInvoices()
	log := env.log
	ctx := types.SetRequestID(context.Background(), types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))

	log.Infow("starting invoice seeding",
		"count", total,
		"concurrency", MAX_CONCURRENCY,
		"requests_per_sec", REQUESTS_PER_SEC,
	)

	start := time.Now()
	result, err := seedInvoices(ctx, env.service, log,
		NewInvoiceGenerator(time.Now().UnixNano()),
		rate.NewLimiter(rate.Limit(REQUESTS_PER_SEC), 1),
		total,
	)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	log.Infow("invoice seeding completed",
		"created", result.created,
		"duplicates_rejected", result.duplicates,
		"failed", result.failed,
		"duration", elapsed.String(),
		"invoices_per_sec", fmt.Sprintf("%.2f", float64(result.created)/elapsed.Seconds()),
	)

	if result.failed > 0 {
		return fmt.Errorf("%d invoices failed to seed", result.failed)
	}
	return nil
}

// seedInvoices always waits for in-flight creates, also when the limiter gives up
func seedInvoices(
	ctx context.Context,
	svc service.InvoiceService,
	log *logger.Logger,
	generator *InvoiceGenerator,
	limiter *rate.Limiter,
	total int,
) (seedResult, error) {
	var created, duplicates, failed atomic.Int64

	p := pool.New().WithMaxGoroutines(MAX_CONCURRENCY)
	for i := 0; i < total; i++ {
		req := generator.Generate()
		if err := limiter.Wait(ctx); err != nil {
			p.Wait()
			return seedResult{created.Load(), duplicates.Load(), failed.Load()}, err
		}

		p.Go(func() {
			resp, err := svc.CreateInvoice(ctx, req)
			switch {
			case err == nil:
				created.Add(1)
				log.Debugw("seeded invoice", "invoice_number", resp.InvoiceNumber, "total", resp.Total.String())
			case ierr.IsDuplicate(err):
				duplicates.Add(1)
			default:
				failed.Add(1)
				log.Errorw("failed to seed invoice", "error", err)
			}
		})
	}
	p.Wait()

	return seedResult{created.Load(), duplicates.Load(), failed.Load()}, nil
}
