package patient

import (
	"context"
	"strings"

	"github.com/medisync/medisync/internal/domain"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) Create(ctx context.Context, owner int64, in NewPatient) (*Patient, error) {
	var verr domain.ValidationError
	if domain.Blank(in.Name) {
		verr.Add("name", "is required")
	}
	if in.Email != nil && *in.Email != "" && !domain.ValidEmail(*in.Email) {
		verr.Add("email", "must be a valid email address")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return s.patients.CreatePatient(in.Build(owner)), nil
}

func (s *Service) Get(ctx context.Context, id, owner int64) (*Patient, bool) {
	return s.patients.GetPatient(id, owner)
}

// List returns the owner's patients, newest first. A non-empty query keeps
// patients whose name, phone or email contains it, ignoring case.
func (s *Service) List(ctx context.Context, owner int64, query string) []*Patient {
	all := s.patients.ListPatients(owner)
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all
	}
	out := make([]*Patient, 0, len(all))
	for _, p := range all {
		if contains(p.Name, query) || containsPtr(p.Phone, query) || containsPtr(p.Email, query) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) Update(ctx context.Context, id, owner int64, p Patch) (*Patient, bool, error) {
	var verr domain.ValidationError
	if p.Name.Present && (p.Name.Null || domain.Blank(p.Name.Value)) {
		verr.Add("name", "is required")
	}
	if p.Email.IsSet() && p.Email.Value != "" && !domain.ValidEmail(p.Email.Value) {
		verr.Add("email", "must be a valid email address")
	}
	if err := verr.Err(); err != nil {
		return nil, false, err
	}
	updated, ok := s.patients.UpdatePatient(id, owner, p)
	return updated, ok, nil
}

func (s *Service) Delete(ctx context.Context, id, owner int64) (bool, error) {
	return s.patients.DeletePatient(id, owner)
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

func containsPtr(s *string, lowerQuery string) bool {
	return s != nil && contains(*s, lowerQuery)
}
