// Package dashboard serves the per-owner summary figures, stock alerts and
// exported reports.
package dashboard

import (
	"errors"
	"time"

	"github.com/medisync/medisync/internal/domain/medication"
	"github.com/medisync/medisync/internal/domain/patient"
)

var ErrUnknownReport = errors.New("unknown report type")

// Stats are the dashboard counters. LowStockCount and ExpiringSoonCount
// always equal the lengths of the matching alert lists.
type Stats struct {
	TotalPatients     int `json:"totalPatients"`
	TotalMedications  int `json:"totalMedications"`
	LowStockCount     int `json:"lowStockCount"`
	ExpiringSoonCount int `json:"expiringSoonCount"`
}

// Alerts are the medications needing attention, in inventory order.
type Alerts struct {
	LowStock     []*medication.Medication
	ExpiringSoon []*medication.Medication
}

// Snapshot is everything a report needs, read at one instant.
type Snapshot struct {
	Stats       Stats
	Alerts      Alerts
	Medications []*medication.Medication
	Patients    []*patient.Patient
}

// AlertList is the alerts response body; each medication carries its status.
type AlertList struct {
	LowStock     []medication.Item `json:"lowStock"`
	ExpiringSoon []medication.Item `json:"expiringSoon"`
}

type ReportType string

const (
	ReportOverview  ReportType = "overview"
	ReportInventory ReportType = "inventory"
	ReportPatients  ReportType = "patients"
	ReportAlerts    ReportType = "alerts"
)

// ParseReportType defaults an empty value to the overview.
func ParseReportType(s string) (ReportType, error) {
	switch t := ReportType(s); t {
	case "":
		return ReportOverview, nil
	case ReportOverview, ReportInventory, ReportPatients, ReportAlerts:
		return t, nil
	}
	return "", ErrUnknownReport
}

// Report is an exported summary. Sections not relevant to Type are omitted.
type Report struct {
	Type        ReportType         `json:"type"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Stats       *Stats             `json:"stats,omitempty"`
	Medications []medication.Item  `json:"medications,omitempty"`
	Patients    []*patient.Patient `json:"patients,omitempty"`
	NewPatients *int               `json:"newPatientsLast30Days,omitempty"`
	Alerts      *AlertList         `json:"alerts,omitempty"`
}
