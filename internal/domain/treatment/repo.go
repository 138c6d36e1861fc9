package treatment

import "github.com/medisync/medisync/internal/domain/patient"

// Repository is tenant-scoped treatment storage. RecordTreatment and
// ReviseTreatment check that the referenced patient and medication belong
// to the owner in the same critical section as the write, returning
// ErrPatientNotFound or ErrMedicationNotFound otherwise.
type Repository interface {
	RecordTreatment(t *TreatmentHistory) (*TreatmentHistory, error)
	GetTreatment(id, owner int64) (*TreatmentHistory, bool)
	ListTreatments(patientID, owner int64) []*TreatmentHistory
	ReviseTreatment(id, owner int64, p Patch) (*TreatmentHistory, bool, error)
	DeleteTreatment(id, owner int64) bool
}

// PatientLookup resolves the patient a history listing belongs to.
type PatientLookup interface {
	GetPatient(id, owner int64) (*patient.Patient, bool)
}
