package store

import (
	"sort"

	"github.com/medisync/medisync/internal/domain/dashboard"
	"github.com/medisync/medisync/internal/domain/medication"
	"github.com/medisync/medisync/internal/domain/treatment"
	"github.com/medisync/medisync/pkg/caldate"
)

// LowStock returns the owner's medications at or below their minimum stock,
// in inventory order.
func (s *Store) LowStock(owner int64) []*medication.Medication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lowStock(owner)
}

// ExpiringSoon returns the owner's medications expiring strictly before
// today plus horizonDays, compared by calendar date. horizonDays <= 0 uses
// the store default.
func (s *Store) ExpiringSoon(owner int64, horizonDays int) []*medication.Medication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiringSoon(owner, horizonDays)
}

// DashboardStats counts the owner's records. Both alert counts come from the
// same read as the totals.
func (s *Store) DashboardStats(owner int64) dashboard.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats(owner)
}

// Alerts returns both alert lists from one read.
func (s *Store) Alerts(owner int64) dashboard.Alerts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alerts(owner)
}

// Snapshot returns everything the owner's reports draw on from one read.
func (s *Store) Snapshot(owner int64) dashboard.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.alerts(owner)
	return dashboard.Snapshot{
		Stats: dashboard.Stats{
			TotalPatients:     s.patients.count(owner, nil),
			TotalMedications:  s.meds.count(owner, nil),
			LowStockCount:     len(a.LowStock),
			ExpiringSoonCount: len(a.ExpiringSoon),
		},
		Alerts:      a,
		Medications: s.meds.newest(owner, nil),
		Patients:    s.patients.newest(owner, nil),
	}
}

// The helpers below expect the caller to hold the read lock.

func (s *Store) today() caldate.Date {
	return caldate.Today(s.now())
}

func (s *Store) lowStock(owner int64) []*medication.Medication {
	return s.meds.scan(owner, medication.IsLowStock)
}

func (s *Store) expiringSoon(owner int64, horizonDays int) []*medication.Medication {
	if horizonDays <= 0 {
		horizonDays = s.horizon
	}
	today := s.today()
	return s.meds.scan(owner, func(m *medication.Medication) bool {
		return medication.ExpiresBefore(m, today, horizonDays)
	})
}

func (s *Store) alerts(owner int64) dashboard.Alerts {
	return dashboard.Alerts{
		LowStock:     s.lowStock(owner),
		ExpiringSoon: s.expiringSoon(owner, 0),
	}
}

func (s *Store) stats(owner int64) dashboard.Stats {
	today := s.today()
	expiring := func(m *medication.Medication) bool {
		return medication.ExpiresBefore(m, today, s.horizon)
	}
	return dashboard.Stats{
		TotalPatients:     s.patients.count(owner, nil),
		TotalMedications:  s.meds.count(owner, nil),
		LowStockCount:     s.meds.count(owner, medication.IsLowStock),
		ExpiringSoonCount: s.meds.count(owner, expiring),
	}
}

// sortByDateDesc orders treatments by treatment date, latest first. The sort
// is stable so records with equal dates keep their incoming order.
func sortByDateDesc(ts []*treatment.TreatmentHistory) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].Date.After(ts[j].Date.Time)
	})
}
