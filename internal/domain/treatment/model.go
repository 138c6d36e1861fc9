package treatment

import (
	"errors"
	"time"

	"github.com/medisync/medisync/pkg/caldate"
	"github.com/medisync/medisync/pkg/patch"
)

var (
	// ErrPatientNotFound means the referenced patient is absent or owned by
	// someone else.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrMedicationNotFound is the medication counterpart.
	ErrMedicationNotFound = errors.New("medication not found")
)

// TreatmentHistory records a medication given to a patient.
type TreatmentHistory struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"userId"`
	PatientID    int64            `json:"patientId"`
	MedicationID int64            `json:"medicationId"`
	Date         caldate.DateTime `json:"date"`
	Notes        *string          `json:"notes"`
	PhotoURLs    []string         `json:"photoUrls"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// NewTreatment is the body of POST /api/patients/:patientId/treatments. The
// patient comes from the path.
type NewTreatment struct {
	MedicationID int64            `json:"medicationId"`
	Date         caldate.DateTime `json:"date"`
	Notes        *string          `json:"notes"`
	PhotoURLs    []string         `json:"photoUrls"`
}

func (n NewTreatment) Build(owner, patientID int64) *TreatmentHistory {
	return &TreatmentHistory{
		UserID:       owner,
		PatientID:    patientID,
		MedicationID: n.MedicationID,
		Date:         n.Date,
		Notes:        n.Notes,
		PhotoURLs:    copyURLs(n.PhotoURLs),
	}
}

// Patch is a partial update. A null photoUrls empties the list.
type Patch struct {
	PatientID    patch.Field[int64]            `json:"patientId"`
	MedicationID patch.Field[int64]            `json:"medicationId"`
	Date         patch.Field[caldate.DateTime] `json:"date"`
	Notes        patch.Field[string]           `json:"notes"`
	PhotoURLs    patch.Field[[]string]         `json:"photoUrls"`
}

// References reports whether p moves the treatment to another patient or
// medication.
func (p Patch) References() bool {
	return p.PatientID.IsSet() || p.MedicationID.IsSet()
}

func (t *TreatmentHistory) Apply(p Patch) {
	p.PatientID.ApplyTo(&t.PatientID)
	p.MedicationID.ApplyTo(&t.MedicationID)
	p.Date.ApplyTo(&t.Date)
	p.Notes.ApplyToPtr(&t.Notes)
	if p.PhotoURLs.Present {
		t.PhotoURLs = copyURLs(p.PhotoURLs.Value)
	}
}

func (t *TreatmentHistory) GetID() int64 { return t.ID }

func (t *TreatmentHistory) SetID(id int64) { t.ID = id }

func (t *TreatmentHistory) GetOwnerID() int64 { return t.UserID }

func (t *TreatmentHistory) SetCreated(at time.Time) {
	t.CreatedAt = at
	t.UpdatedAt = at
}

func (t *TreatmentHistory) Touch(at time.Time) { t.UpdatedAt = at }

func (t *TreatmentHistory) Clone() *TreatmentHistory {
	c := *t
	if t.Notes != nil {
		n := *t.Notes
		c.Notes = &n
	}
	c.PhotoURLs = copyURLs(t.PhotoURLs)
	return &c
}

// copyURLs never returns nil so the list always serializes as an array.
func copyURLs(urls []string) []string {
	out := make([]string, len(urls))
	copy(out, urls)
	return out
}
