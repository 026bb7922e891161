package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flexprice/invoicer/internal/types"
	"github.com/sourcegraph/conc/pool"
)

const DEFAULT_OUTPUT_DIR = "invoices"

// ExportInvoicePDFs renders every stored invoice into OUTPUT_DIR/<invoice_number>.pdf
func ExportInvoicePDFs() error {
	env, err := newScriptEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = DEFAULT_OUTPUT_DIR
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	ctx := context.Background()
	invoices, err := env.service.ListInvoices(ctx, types.NewNoLimitInvoiceFilter())
	if err != nil {
		return fmt.Errorf("failed to list invoices: %w", err)
	}

	env.log.Infow("exporting invoice pdfs", "count", len(invoices), "output_dir", outputDir)

	p := pool.New().WithErrors().WithMaxGoroutines(MAX_CONCURRENCY)
	for _, inv := range invoices {
		inv := inv // per-iteration copy; module targets go 1.21 loop semantics
		p.Go(func() error {
			data, err := env.service.GetInvoicePDF(ctx, inv.ID)
			if err != nil {
				return fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
			}
			path := filepath.Join(outputDir, inv.InvoiceNumber+".pdf")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			env.log.Debugw("exported invoice pdf", "invoice_number", inv.InvoiceNumber, "path", path)
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return err
	}

	env.log.Infow("invoice pdf export completed", "count", len(invoices))
	return nil
}
