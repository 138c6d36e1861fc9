// Package store is the in-memory clinical record store. It owns the users,
// patients, medications and treatment histories of every tenant, scopes all
// tenant data by owning user id, and derives the stock alerts and dashboard
// figures from the current contents.
//
// A Store is built once at process start and passed to whatever serves
// requests. All methods are safe for concurrent use: one RWMutex guards the
// whole store, reads share it and writes (id allocation included) hold it
// exclusively.
package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/medisync/medisync/internal/domain"
	"github.com/medisync/medisync/internal/domain/dashboard"
	"github.com/medisync/medisync/internal/domain/identity"
	"github.com/medisync/medisync/internal/domain/medication"
	"github.com/medisync/medisync/internal/domain/patient"
	"github.com/medisync/medisync/internal/domain/treatment"
)

// DeletePolicy decides what happens to treatment history when the patient or
// medication it references is deleted.
type DeletePolicy string

const (
	// DeleteOrphan leaves treatments pointing at the deleted record.
	DeleteOrphan DeletePolicy = "orphan"
	// DeleteCascade removes the referencing treatments too.
	DeleteCascade DeletePolicy = "cascade"
	// DeleteRestrict refuses the delete with domain.ErrReferenced.
	DeleteRestrict DeletePolicy = "restrict"
)

// ParseDeletePolicy accepts "orphan", "cascade" or "restrict"; empty means
// orphan.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DeleteOrphan, nil
	case DeleteOrphan, DeleteCascade, DeleteRestrict:
		return p, nil
	}
	return "", fmt.Errorf("unknown delete policy %q", s)
}

var (
	_ identity.Repository     = (*Store)(nil)
	_ patient.Repository      = (*Store)(nil)
	_ medication.Repository   = (*Store)(nil)
	_ treatment.Repository    = (*Store)(nil)
	_ treatment.PatientLookup = (*Store)(nil)
	_ dashboard.Source        = (*Store)(nil)
)

type Store struct {
	mu sync.RWMutex

	seq        sequence
	users      table[*identity.User]
	patients   table[*patient.Patient]
	meds       table[*medication.Medication]
	treatments table[*treatment.TreatmentHistory]

	now     func() time.Time
	horizon int
	policy  DeletePolicy
}

type Option func(*Store)

// WithClock sets the source of creation/update stamps and of "today" for
// the expiry alerts.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithHorizon sets the default expiring-soon horizon in days.
func WithHorizon(days int) Option {
	return func(s *Store) {
		if days > 0 {
			s.horizon = days
		}
	}
}

func WithDeletePolicy(p DeletePolicy) Option {
	return func(s *Store) { s.policy = p }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		users:      newTable[*identity.User](KindUser),
		patients:   newTable[*patient.Patient](KindPatient),
		meds:       newTable[*medication.Medication](KindMedication),
		treatments: newTable[*treatment.TreatmentHistory](KindTreatment),
		now:        time.Now,
		horizon:    medication.DefaultHorizonDays,
		policy:     DeleteOrphan,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store holding the demo accounts and records.
func NewSeeded(opts ...Option) *Store {
	s := New(opts...)
	s.seed()
	return s
}

func (s *Store) Horizon() int { return s.horizon }

func (s *Store) Policy() DeletePolicy { return s.policy }

// Peek reports the id the next record of kind k will receive.
func (s *Store) Peek(k Kind) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq.Peek(k)
}

// Counts returns the number of stored records per kind, across all owners.
func (s *Store) Counts() map[Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[Kind]int{
		KindUser:       s.users.size(),
		KindPatient:    s.patients.size(),
		KindMedication: s.meds.size(),
		KindTreatment:  s.treatments.size(),
	}
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// CreateUser adds an account. Emails and usernames are unique, compared
// without regard to case.
func (s *Store) CreateUser(in identity.NewUser) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users.find(byEmail(in.Email)); ok {
		return nil, identity.ErrDuplicateEmail
	}
	if _, ok := s.users.find(byUsername(in.Username)); ok {
		return nil, identity.ErrDuplicateUsername
	}
	return s.users.insert(&s.seq, &identity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Name:         in.Name,
	}, s.now()), nil
}

func (s *Store) GetUser(id int64) (*identity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.find(func(u *identity.User) bool { return u.ID == id })
}

func (s *Store) GetUserByEmail(email string) (*identity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.find(byEmail(email))
}

func (s *Store) GetUserByUsername(username string) (*identity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.find(byUsername(username))
}

func byEmail(email string) func(*identity.User) bool {
	return func(u *identity.User) bool { return strings.EqualFold(u.Email, email) }
}

func byUsername(username string) func(*identity.User) bool {
	return func(u *identity.User) bool { return strings.EqualFold(u.Username, username) }
}

// ---------------------------------------------------------------------------
// Patients
// ---------------------------------------------------------------------------

func (s *Store) CreatePatient(p *patient.Patient) *patient.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patients.insert(&s.seq, p, s.now())
}

func (s *Store) GetPatient(id, owner int64) (*patient.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patients.get(id, owner)
}

// ListPatients returns the owner's patients, newest first.
func (s *Store) ListPatients(owner int64) []*patient.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patients.newest(owner, nil)
}

func (s *Store) UpdatePatient(id, owner int64, p patient.Patch) (*patient.Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok, _ := update(&s.patients, id, owner, p, s.now(), nil)
	return updated, ok
}

// DeletePatient removes the patient and applies the delete policy to its
// treatment history. It reports false when there was nothing to delete.
func (s *Store) DeletePatient(id, owner int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.patients.exists(id, owner) {
		return false, nil
	}
	refs := func(t *treatment.TreatmentHistory) bool { return t.UserID == owner && t.PatientID == id }
	if err := s.applyPolicy(refs); err != nil {
		return false, err
	}
	return s.patients.remove(id, owner), nil
}

// ---------------------------------------------------------------------------
// Medications
// ---------------------------------------------------------------------------

func (s *Store) CreateMedication(m *medication.Medication) *medication.Medication {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meds.insert(&s.seq, m, s.now())
}

func (s *Store) GetMedication(id, owner int64) (*medication.Medication, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meds.get(id, owner)
}

// ListMedications returns the owner's inventory, newest first.
func (s *Store) ListMedications(owner int64) []*medication.Medication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meds.newest(owner, nil)
}

func (s *Store) UpdateMedication(id, owner int64, p medication.Patch) (*medication.Medication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok, _ := update(&s.meds, id, owner, p, s.now(), nil)
	return updated, ok
}

func (s *Store) DeleteMedication(id, owner int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.meds.exists(id, owner) {
		return false, nil
	}
	refs := func(t *treatment.TreatmentHistory) bool { return t.UserID == owner && t.MedicationID == id }
	if err := s.applyPolicy(refs); err != nil {
		return false, err
	}
	return s.meds.remove(id, owner), nil
}

// applyPolicy runs before a referenced record is removed. Callers hold the
// write lock.
func (s *Store) applyPolicy(refs func(*treatment.TreatmentHistory) bool) error {
	switch s.policy {
	case DeleteCascade:
		s.treatments.removeWhere(refs)
	case DeleteRestrict:
		if _, ok := s.treatments.find(refs); ok {
			return domain.ErrReferenced
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Treatment history
// ---------------------------------------------------------------------------

// CreateTreatment inserts t as given. The patient and medication it names
// are not looked up; see RecordTreatment for the checked variant.
func (s *Store) CreateTreatment(t *treatment.TreatmentHistory) *treatment.TreatmentHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.treatments.insert(&s.seq, t, s.now())
}

// RecordTreatment inserts t after confirming, under the same lock, that its
// patient and medication belong to its owner.
func (s *Store) RecordTreatment(t *treatment.TreatmentHistory) (*treatment.TreatmentHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRefs(t); err != nil {
		return nil, err
	}
	return s.treatments.insert(&s.seq, t, s.now()), nil
}

func (s *Store) checkRefs(t *treatment.TreatmentHistory) error {
	if !s.patients.exists(t.PatientID, t.UserID) {
		return treatment.ErrPatientNotFound
	}
	if !s.meds.exists(t.MedicationID, t.UserID) {
		return treatment.ErrMedicationNotFound
	}
	return nil
}

func (s *Store) GetTreatment(id, owner int64) (*treatment.TreatmentHistory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.treatments.get(id, owner)
}

// ListTreatments returns one patient's treatments, latest treatment date
// first; equal dates keep the newer record first.
func (s *Store) ListTreatments(patientID, owner int64) []*treatment.TreatmentHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.treatments.newest(owner, func(t *treatment.TreatmentHistory) bool {
		return t.PatientID == patientID
	})
	sortByDateDesc(out)
	return out
}

// UpdateTreatment merges p without checking the references it may change.
func (s *Store) UpdateTreatment(id, owner int64, p treatment.Patch) (*treatment.TreatmentHistory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, ok, _ := update(&s.treatments, id, owner, p, s.now(), nil)
	return updated, ok
}

// ReviseTreatment merges p and, when p moves the treatment to another
// patient or medication, verifies the references p names before committing.
// A reference p leaves alone is not re-checked, so a treatment whose
// medication was deleted can still be moved to another patient.
func (s *Store) ReviseTreatment(id, owner int64, p treatment.Patch) (*treatment.TreatmentHistory, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var check func(*treatment.TreatmentHistory) error
	if p.References() {
		check = func(t *treatment.TreatmentHistory) error {
			if p.PatientID.IsSet() && !s.patients.exists(t.PatientID, t.UserID) {
				return treatment.ErrPatientNotFound
			}
			if p.MedicationID.IsSet() && !s.meds.exists(t.MedicationID, t.UserID) {
				return treatment.ErrMedicationNotFound
			}
			return nil
		}
	}
	return update(&s.treatments, id, owner, p, s.now(), check)
}

func (s *Store) DeleteTreatment(id, owner int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.treatments.remove(id, owner)
}
