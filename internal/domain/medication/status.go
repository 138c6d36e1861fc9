package medication

import (
	"fmt"

	"github.com/medisync/medisync/pkg/caldate"
)

// DefaultHorizonDays is how far ahead an expiration raises an alert.
const DefaultHorizonDays = 30

// Status is the derived stock state of a medication. It is never stored.
type Status string

const (
	StatusInStock  Status = "in-stock"
	StatusLow      Status = "low"
	StatusExpiring Status = "expiring"
)

// ParseStatus accepts the inventory filter values. "low-stock" is the name
// the inventory screen uses for StatusLow.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "", "all":
		return "", nil
	case "in-stock":
		return StatusInStock, nil
	case "low", "low-stock":
		return StatusLow, nil
	case "expiring":
		return StatusExpiring, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// StatusOf derives the stock state of m on day today. Expiry within
// horizonDays (or already past) wins over low stock.
func StatusOf(m *Medication, today caldate.Date, horizonDays int) Status {
	if today.DaysUntil(m.ExpirationDate) <= horizonDays {
		return StatusExpiring
	}
	if IsLowStock(m) {
		return StatusLow
	}
	return StatusInStock
}

// IsLowStock reports whether quantity has fallen to the reorder threshold.
func IsLowStock(m *Medication) bool {
	return m.Quantity <= m.MinStock
}

// ExpiresBefore reports whether m expires strictly before today+horizonDays.
// This is the expiring-soon alert rule; it differs from StatusOf at exactly
// horizonDays.
func ExpiresBefore(m *Medication, today caldate.Date, horizonDays int) bool {
	return m.ExpirationDate.Before(today.AddDays(horizonDays))
}

// Annotate pairs each medication with its status on day today. The result
// is never nil.
func Annotate(ms []*Medication, today caldate.Date, horizonDays int) []Item {
	out := make([]Item, 0, len(ms))
	for _, m := range ms {
		out = append(out, Item{Medication: m, Status: StatusOf(m, today, horizonDays)})
	}
	return out
}
