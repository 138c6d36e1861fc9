package treatment

import (
	"context"
	"errors"

	"github.com/medisync/medisync/internal/domain"
)

type Service struct {
	treatments Repository
	patients   PatientLookup
}

func NewService(treatments Repository, patients PatientLookup) *Service {
	return &Service{treatments: treatments, patients: patients}
}

// Record adds a treatment to the owner's patient.
func (s *Service) Record(ctx context.Context, owner, patientID int64, in NewTreatment) (*TreatmentHistory, error) {
	var verr domain.ValidationError
	if in.MedicationID <= 0 {
		verr.Add("medicationId", "is required")
	}
	if in.Date.IsZero() {
		verr.Add("date", "is required")
	}
	checkURLs(&verr, in.PhotoURLs)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return s.treatments.RecordTreatment(in.Build(owner, patientID))
}

func (s *Service) Get(ctx context.Context, id, owner int64) (*TreatmentHistory, bool) {
	return s.treatments.GetTreatment(id, owner)
}

// History lists a patient's treatments, most recent first.
func (s *Service) History(ctx context.Context, owner, patientID int64) ([]*TreatmentHistory, error) {
	if _, ok := s.patients.GetPatient(patientID, owner); !ok {
		return nil, ErrPatientNotFound
	}
	return s.treatments.ListTreatments(patientID, owner), nil
}

func (s *Service) Revise(ctx context.Context, id, owner int64, p Patch) (*TreatmentHistory, bool, error) {
	var verr domain.ValidationError
	if p.PatientID.Present && (p.PatientID.Null || p.PatientID.Value <= 0) {
		verr.Add("patientId", "must be a valid patient ID")
	}
	if p.MedicationID.Present && (p.MedicationID.Null || p.MedicationID.Value <= 0) {
		verr.Add("medicationId", "must be a valid medication ID")
	}
	if p.Date.Present && (p.Date.Null || p.Date.Value.IsZero()) {
		verr.Add("date", "is required")
	}
	if p.PhotoURLs.IsSet() {
		checkURLs(&verr, p.PhotoURLs.Value)
	}
	if err := verr.Err(); err != nil {
		return nil, false, err
	}
	t, ok, err := s.treatments.ReviseTreatment(id, owner, p)
	if errors.Is(err, ErrPatientNotFound) {
		// The patient here comes from the body, not the path.
		verr.Add("patientId", "patient not found")
		return nil, ok, verr.Err()
	}
	return t, ok, err
}

func (s *Service) Delete(ctx context.Context, id, owner int64) bool {
	return s.treatments.DeleteTreatment(id, owner)
}

func checkURLs(verr *domain.ValidationError, urls []string) {
	for _, u := range urls {
		if domain.Blank(u) {
			verr.Add("photoUrls", "must not contain blank entries")
			return
		}
	}
}
