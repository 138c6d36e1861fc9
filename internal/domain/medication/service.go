package medication

import (
	"context"
	"strings"
	"time"

	"github.com/medisync/medisync/internal/domain"
	"github.com/medisync/medisync/pkg/caldate"
	"github.com/medisync/medisync/pkg/patch"
)

type Service struct {
	meds    Repository
	horizon int
	now     func() time.Time
}

func NewService(meds Repository, horizonDays int) *Service {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &Service{meds: meds, horizon: horizonDays, now: time.Now}
}

// SetClock replaces the clock used to derive stock status.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) today() caldate.Date {
	return caldate.Today(s.now())
}

// Item wraps m with its status as of today.
func (s *Service) Item(m *Medication) Item {
	return Item{Medication: m, Status: StatusOf(m, s.today(), s.horizon)}
}

func (s *Service) Create(ctx context.Context, owner int64, in NewMedication) (*Medication, error) {
	var verr domain.ValidationError
	if domain.Blank(in.Name) {
		verr.Add("name", "is required")
	}
	if !in.Category.Valid() {
		verr.Add("category", "must be one of antibiotics, pain-relief, heart-medication, diabetes, respiratory, other")
	}
	if in.Quantity < 0 {
		verr.Add("quantity", "must not be negative")
	}
	if in.MinStock < 0 {
		verr.Add("minStock", "must not be negative")
	}
	if in.ExpirationDate.IsZero() {
		verr.Add("expirationDate", "is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return s.meds.CreateMedication(in.Build(owner)), nil
}

func (s *Service) Get(ctx context.Context, id, owner int64) (*Medication, bool) {
	return s.meds.GetMedication(id, owner)
}

// List returns the owner's inventory, newest first, narrowed by f.
func (s *Service) List(ctx context.Context, owner int64, f Filter) []Item {
	today := s.today()
	search := strings.ToLower(strings.TrimSpace(f.Search))

	all := s.meds.ListMedications(owner)
	out := make([]Item, 0, len(all))
	for _, m := range all {
		if f.Category != "" && m.Category != f.Category {
			continue
		}
		st := StatusOf(m, today, s.horizon)
		if f.Status != "" && st != f.Status {
			continue
		}
		if search != "" && !matches(m, search) {
			continue
		}
		out = append(out, Item{Medication: m, Status: st})
	}
	return out
}

func matches(m *Medication, search string) bool {
	if strings.Contains(strings.ToLower(m.Name), search) {
		return true
	}
	if m.Brand != nil && strings.Contains(strings.ToLower(*m.Brand), search) {
		return true
	}
	return strings.Contains(string(m.Category), search)
}

func (s *Service) Update(ctx context.Context, id, owner int64, p Patch) (*Medication, bool, error) {
	var verr domain.ValidationError
	if p.Name.Present && (p.Name.Null || domain.Blank(p.Name.Value)) {
		verr.Add("name", "is required")
	}
	if p.Category.Present && !p.Category.Value.Valid() {
		verr.Add("category", "must be one of antibiotics, pain-relief, heart-medication, diabetes, respiratory, other")
	}
	checkCount(&verr, "quantity", p.Quantity)
	checkCount(&verr, "minStock", p.MinStock)
	if p.ExpirationDate.Present && (p.ExpirationDate.Null || p.ExpirationDate.Value.IsZero()) {
		verr.Add("expirationDate", "is required")
	}
	if err := verr.Err(); err != nil {
		return nil, false, err
	}
	m, ok := s.meds.UpdateMedication(id, owner, p)
	return m, ok, nil
}

// checkCount rejects null or negative stock counts.
func checkCount(verr *domain.ValidationError, field string, f patch.Field[int]) {
	if !f.Present {
		return
	}
	if f.Null {
		verr.Add(field, "must not be null")
	} else if f.Value < 0 {
		verr.Add(field, "must not be negative")
	}
}

func (s *Service) Delete(ctx context.Context, id, owner int64) (bool, error) {
	return s.meds.DeleteMedication(id, owner)
}
