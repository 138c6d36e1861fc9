// Package audittrail keeps recent patient-data access entries in memory so
// users can review and export who touched their patients' records.
package audittrail

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/medisync/medisync/internal/platform/middleware"
	"github.com/medisync/medisync/pkg/pagination"
)

// DefaultCapacity bounds the entries kept before the oldest are dropped.
const DefaultCapacity = 10000

// Query filters a search. Zero values match everything.
type Query struct {
	PatientID    int64
	ResourceType string
	Action       string
	Since        *time.Time
	Until        *time.Time
}

func (q Query) match(e *middleware.AuditEntry) bool {
	if q.PatientID != 0 && e.PatientID != q.PatientID {
		return false
	}
	if q.ResourceType != "" && e.ResourceType != q.ResourceType {
		return false
	}
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	if q.Since != nil && e.Timestamp.Before(*q.Since) {
		return false
	}
	if q.Until != nil && e.Timestamp.After(*q.Until) {
		return false
	}
	return true
}

// Trail is a bounded, thread-safe log of audit entries. It satisfies
// middleware.AuditRecorder.
type Trail struct {
	mu       sync.RWMutex
	entries  []middleware.AuditEntry
	capacity int
}

func New(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Trail{capacity: capacity}
}

// RecordAccess appends entry, dropping the oldest once full.
func (t *Trail) RecordAccess(entry middleware.AuditEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) >= t.capacity {
		n := copy(t.entries, t.entries[1:])
		t.entries = t.entries[:n]
	}
	t.entries = append(t.entries, entry)
	return nil
}

func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// matching returns owner's entries that satisfy q, newest first.
func (t *Trail) matching(owner int64, q Query) []middleware.AuditEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]middleware.AuditEntry, 0)
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := &t.entries[i]
		if e.UserID == owner && q.match(e) {
			out = append(out, *e)
		}
	}
	return out
}

// Search returns one page of owner's matching entries and the total count.
func (t *Trail) Search(owner int64, q Query, page pagination.Params) ([]middleware.AuditEntry, int) {
	all := t.matching(owner, q)
	start, end := page.Window(len(all))
	return all[start:end], len(all)
}

var csvHeader = []string{
	"timestamp", "requestId", "action", "resourceType", "resourceId", "patientId",
	"method", "path", "statusCode", "ipAddress", "userAgent",
}

// ExportCSV writes every matching entry of owner to w.
func (t *Trail) ExportCSV(w io.Writer, owner int64, q Query) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("audit export csv: write header: %w", err)
	}
	for _, e := range t.matching(owner, q) {
		record := []string{
			e.Timestamp.UTC().Format(time.RFC3339),
			e.RequestID,
			e.Action,
			e.ResourceType,
			formatID(e.ResourceID),
			formatID(e.PatientID),
			e.Method,
			e.Path,
			strconv.Itoa(e.StatusCode),
			e.IPAddress,
			e.UserAgent,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("audit export csv: write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
