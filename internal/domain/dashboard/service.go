package dashboard

import (
	"context"
	"time"

	"github.com/medisync/medisync/internal/domain/medication"
	"github.com/medisync/medisync/pkg/caldate"
)

// newPatientWindow is the look-back for "new patients" in the patient report.
const newPatientWindow = 30 * 24 * time.Hour

type Service struct {
	src     Source
	horizon int
	now     func() time.Time
}

func NewService(src Source, horizonDays int) *Service {
	if horizonDays <= 0 {
		horizonDays = medication.DefaultHorizonDays
	}
	return &Service{src: src, horizon: horizonDays, now: time.Now}
}

// SetClock replaces the clock used for statuses and report timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Stats(ctx context.Context, owner int64) Stats {
	return s.src.DashboardStats(owner)
}

func (s *Service) Alerts(ctx context.Context, owner int64) AlertList {
	return s.annotate(s.src.Alerts(owner), caldate.Today(s.now()))
}

func (s *Service) annotate(a Alerts, today caldate.Date) AlertList {
	return AlertList{
		LowStock:     medication.Annotate(a.LowStock, today, s.horizon),
		ExpiringSoon: medication.Annotate(a.ExpiringSoon, today, s.horizon),
	}
}

// Report builds the export for kind from a single consistent snapshot.
func (s *Service) Report(ctx context.Context, owner int64, kind ReportType) *Report {
	snap := s.src.Snapshot(owner)
	now := s.now().UTC()
	today := caldate.Today(now)

	r := &Report{Type: kind, GeneratedAt: now}
	stats := snap.Stats
	alerts := s.annotate(snap.Alerts, today)

	switch kind {
	case ReportInventory:
		r.Stats = &stats
		r.Medications = medication.Annotate(snap.Medications, today, s.horizon)
	case ReportPatients:
		r.Stats = &stats
		r.Patients = snap.Patients
		n := 0
		for _, p := range snap.Patients {
			if p.CreatedAt.After(now.Add(-newPatientWindow)) {
				n++
			}
		}
		r.NewPatients = &n
	case ReportAlerts:
		r.Alerts = &alerts
	default:
		r.Type = ReportOverview
		r.Stats = &stats
		r.Medications = medication.Annotate(snap.Medications, today, s.horizon)
		r.Patients = snap.Patients
		r.Alerts = &alerts
	}
	return r
}
