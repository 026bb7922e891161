package invoice

import (
	"fmt"
	"time"
)

// InvoiceNumberPrefix starts every human readable invoice number
const InvoiceNumberPrefix = "INV"

// NextInvoiceNumber formats INV-YYYYMM#### where the sequence is
// existingCount+1, zero padded to four digits. existingCount is the number of
// invoices ever created, not the number created this month. Nothing here
// guards against two callers reading the same count.
func NextInvoiceNumber(existingCount int, now time.Time) string {
	if existingCount < 0 {
		existingCount = 0
	}
	now = now.UTC()
	return fmt.Sprintf("%s-%04d%02d%04d", InvoiceNumberPrefix, now.Year(), int(now.Month()), existingCount+1)
}
