package treatment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/medisync/medisync/internal/domain"
	"github.com/medisync/medisync/internal/domain/patient"
	"github.com/medisync/medisync/pkg/caldate"
	"github.com/medisync/medisync/pkg/patch"
)

// -- Mock Repository --

// mockTreatmentRepo keeps treatments plus the patient and medication ids each
// owner may reference.
type mockTreatmentRepo struct {
	rows        []*TreatmentHistory
	nextID      int64
	patients    map[int64]int64 // patient id -> owner
	medications map[int64]int64 // medication id -> owner
}

func newMockTreatmentRepo() *mockTreatmentRepo {
	return &mockTreatmentRepo{
		nextID:      1,
		patients:    map[int64]int64{1: 1, 2: 1, 9: 2},
		medications: map[int64]int64{1: 1, 4: 1, 7: 2},
	}
}

func (m *mockTreatmentRepo) GetPatient(id, owner int64) (*patient.Patient, bool) {
	if o, ok := m.patients[id]; ok && o == owner {
		return &patient.Patient{ID: id, UserID: owner, Name: "p"}, true
	}
	return nil, false
}

func (m *mockTreatmentRepo) check(t *TreatmentHistory) error {
	if o, ok := m.patients[t.PatientID]; !ok || o != t.UserID {
		return ErrPatientNotFound
	}
	if o, ok := m.medications[t.MedicationID]; !ok || o != t.UserID {
		return ErrMedicationNotFound
	}
	return nil
}

func (m *mockTreatmentRepo) RecordTreatment(t *TreatmentHistory) (*TreatmentHistory, error) {
	if err := m.check(t); err != nil {
		return nil, err
	}
	t.SetID(m.nextID)
	m.nextID++
	t.SetCreated(time.Now())
	m.rows = append(m.rows, t.Clone())
	return t, nil
}

func (m *mockTreatmentRepo) find(id, owner int64) (int, bool) {
	for i, t := range m.rows {
		if t.ID == id && t.UserID == owner {
			return i, true
		}
	}
	return 0, false
}

func (m *mockTreatmentRepo) GetTreatment(id, owner int64) (*TreatmentHistory, bool) {
	i, ok := m.find(id, owner)
	if !ok {
		return nil, false
	}
	return m.rows[i].Clone(), true
}

func (m *mockTreatmentRepo) ListTreatments(patientID, owner int64) []*TreatmentHistory {
	out := []*TreatmentHistory{}
	for _, t := range m.rows {
		if t.PatientID == patientID && t.UserID == owner {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date.Time) })
	return out
}

func (m *mockTreatmentRepo) ReviseTreatment(id, owner int64, p Patch) (*TreatmentHistory, bool, error) {
	i, ok := m.find(id, owner)
	if !ok {
		return nil, false, nil
	}
	next := m.rows[i].Clone()
	next.Apply(p)
	if err := m.check(next); err != nil {
		return nil, true, err
	}
	next.Touch(time.Now())
	m.rows[i] = next
	return next.Clone(), true, nil
}

func (m *mockTreatmentRepo) DeleteTreatment(id, owner int64) bool {
	i, ok := m.find(id, owner)
	if !ok {
		return false
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return true
}

func at(s string) caldate.DateTime {
	dt, err := caldate.ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return dt
}

func strPtr(s string) *string { return &s }

func newTestService() (*Service, *mockTreatmentRepo) {
	repo := newMockTreatmentRepo()
	return NewService(repo, repo), repo
}

// -- Tests --

func TestService_Record(t *testing.T) {
	svc, _ := newTestService()
	got, err := svc.Record(context.Background(), 1, 1, NewTreatment{
		MedicationID: 4,
		Date:         at("2024-12-01T09:30:00Z"),
		Notes:        strPtr("first dose"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != 1 || got.UserID != 1 || got.PatientID != 1 {
		t.Errorf("unexpected record %+v", got)
	}
	if got.PhotoURLs == nil || len(got.PhotoURLs) != 0 {
		t.Errorf("expected empty photo list, got %#v", got.PhotoURLs)
	}
}

func TestService_Record_Validation(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Record(context.Background(), 1, 1, NewTreatment{PhotoURLs: []string{"ok", "  "}})
	ve, ok := domain.IsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"medicationId", "date", "photoUrls"} {
		if !fields[want] {
			t.Errorf("expected %s to be rejected, got %v", want, ve.Fields)
		}
	}
}

func TestService_Record_ForeignReferences(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Record(ctx, 1, 9, NewTreatment{MedicationID: 1, Date: at("2024-12-01")})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
	_, err = svc.Record(ctx, 1, 1, NewTreatment{MedicationID: 7, Date: at("2024-12-01")})
	if !errors.Is(err, ErrMedicationNotFound) {
		t.Errorf("expected ErrMedicationNotFound, got %v", err)
	}
}

func TestService_History(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, d := range []string{"2024-11-01", "2024-12-15T08:00:00Z", "2024-12-01"} {
		if _, err := svc.Record(ctx, 1, 1, NewTreatment{MedicationID: 1, Date: at(d)}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Record(ctx, 1, 2, NewTreatment{MedicationID: 1, Date: at("2025-01-01")}); err != nil {
		t.Fatal(err)
	}

	list, err := svc.History(ctx, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 treatments for patient 1, got %d", len(list))
	}
	if list[0].ID != 2 || list[2].ID != 1 {
		t.Errorf("expected newest treatment date first, got ids %d,%d,%d", list[0].ID, list[1].ID, list[2].ID)
	}

	if _, err := svc.History(ctx, 2, 1); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("another owner's patient must be not found, got %v", err)
	}
}

func TestService_Revise(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	rec, _ := svc.Record(ctx, 1, 1, NewTreatment{MedicationID: 1, Date: at("2024-12-01"), Notes: strPtr("n"), PhotoURLs: []string{"a"}})

	got, ok, err := svc.Revise(ctx, rec.ID, 1, Patch{PhotoURLs: patch.Set([]string{"a", "b"})})
	if err != nil || !ok {
		t.Fatalf("revise: %v %v", ok, err)
	}
	if len(got.PhotoURLs) != 2 || got.Notes == nil || *got.Notes != "n" || got.MedicationID != 1 {
		t.Errorf("omitted fields must be untouched: %+v", got)
	}

	got, _, _ = svc.Revise(ctx, rec.ID, 1, Patch{Notes: patch.Clear[string](), PhotoURLs: patch.Clear[[]string]()})
	if got.Notes != nil || got.PhotoURLs == nil || len(got.PhotoURLs) != 0 {
		t.Errorf("null must clear: %+v", got)
	}

	if _, _, err := svc.Revise(ctx, rec.ID, 1, Patch{Date: patch.Clear[caldate.DateTime]()}); err == nil {
		t.Error("clearing the date must be rejected")
	}
	if _, _, err := svc.Revise(ctx, rec.ID, 1, Patch{MedicationID: patch.Set[int64](7)}); !errors.Is(err, ErrMedicationNotFound) {
		t.Errorf("expected ErrMedicationNotFound, got %v", err)
	}
	_, _, err = svc.Revise(ctx, rec.ID, 1, Patch{PatientID: patch.Set[int64](9)})
	if verr, ok := domain.IsValidation(err); !ok || verr.Fields[0].Field != "patientId" {
		t.Errorf("a foreign patientId must be a field error, got %v", err)
	}
	if _, ok, _ := svc.Revise(ctx, rec.ID, 2, Patch{Notes: patch.Set("x")}); ok {
		t.Error("another owner must not revise")
	}
}

func TestService_Delete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	rec, _ := svc.Record(ctx, 1, 1, NewTreatment{MedicationID: 1, Date: at("2024-12-01")})

	if svc.Delete(ctx, rec.ID, 2) {
		t.Error("another owner must not delete")
	}
	if !svc.Delete(ctx, rec.ID, 1) {
		t.Error("expected delete")
	}
	if svc.Delete(ctx, rec.ID, 1) {
		t.Error("second delete must report false")
	}
}
