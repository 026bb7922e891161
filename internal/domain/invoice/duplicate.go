package invoice

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultDuplicateWindow is the lookback used when none is configured
const DefaultDuplicateWindow = time.Hour

// DuplicateDetector flags accidental resubmissions: the same set of line items
// sent again for the same customer email inside the lookback window.
// It never queries storage, callers hand it the recent invoices.
type DuplicateDetector struct {
	window time.Duration
	tag    language.Tag
}

func NewDuplicateDetector(window time.Duration) *DuplicateDetector {
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return &DuplicateDetector{
		window: window,
		tag:    language.English,
	}
}

func (d *DuplicateDetector) Window() time.Duration {
	return d.window
}

// Cutoff is the oldest creation time still inside the window
func (d *DuplicateDetector) Cutoff(now time.Time) time.Time {
	return now.Add(-d.window)
}

// IsDuplicateAt is IsDuplicate restricted to invoices created at or after Cutoff(now)
func (d *DuplicateDetector) IsDuplicateAt(candidate []LineItem, recent []*Invoice, now time.Time) bool {
	cutoff := d.Cutoff(now)
	inWindow := make([]*Invoice, 0, len(recent))
	for _, inv := range recent {
		if inv == nil || inv.CreatedAt.Before(cutoff) {
			continue
		}
		inWindow = append(inWindow, inv)
	}
	return d.IsDuplicate(candidate, inWindow)
}

// IsDuplicate reports whether any of recent carries exactly the candidate's
// line items, ignoring order and surrounding whitespace in descriptions.
func (d *DuplicateDetector) IsDuplicate(candidate []LineItem, recent []*Invoice) bool {
	if len(recent) == 0 {
		return false
	}

	// collators keep internal buffers and are not safe for concurrent use
	col := collate.New(d.tag)
	want := normalizeLineItems(col, candidate)

	for _, inv := range recent {
		if inv == nil || len(inv.LineItems) != len(candidate) {
			continue
		}
		if sameLineItems(want, normalizeLineItems(col, inv.LineItems)) {
			return true
		}
	}
	return false
}

// normalizeLineItems trims descriptions and sorts by description using a
// locale aware collation. Ties fall back to byte order, then quantity, then
// unit price, which makes the order total.
func normalizeLineItems(col *collate.Collator, items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		out[i] = item
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := col.CompareString(a.Description, b.Description); c != 0 {
			return c < 0
		}
		if a.Description != b.Description {
			return a.Description < b.Description
		}
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		return a.UnitPrice.LessThan(b.UnitPrice)
	})
	return out
}

func sameLineItems(a, b []LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Description != b[i].Description ||
			a[i].Quantity != b[i].Quantity ||
			!a[i].UnitPrice.Equal(b[i].UnitPrice) {
			return false
		}
	}
	return true
}
