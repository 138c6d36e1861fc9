package patient

import (
	"time"

	"github.com/medisync/medisync/pkg/caldate"
	"github.com/medisync/medisync/pkg/patch"
)

// Patient is a person under the care of the owning user.
type Patient struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"userId"`
	Name           string        `json:"name"`
	Phone          *string       `json:"phone"`
	Email          *string       `json:"email"`
	DateOfBirth    *caldate.Date `json:"dateOfBirth"`
	MedicalHistory *string       `json:"medicalHistory"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// NewPatient is the body of POST /api/patients. The owner comes from the
// session, never from the payload.
type NewPatient struct {
	Name           string        `json:"name"`
	Phone          *string       `json:"phone"`
	Email          *string       `json:"email"`
	DateOfBirth    *caldate.Date `json:"dateOfBirth"`
	MedicalHistory *string       `json:"medicalHistory"`
}

// Build returns the record to insert for owner.
func (n NewPatient) Build(owner int64) *Patient {
	return &Patient{
		UserID:         owner,
		Name:           n.Name,
		Phone:          n.Phone,
		Email:          n.Email,
		DateOfBirth:    n.DateOfBirth,
		MedicalHistory: n.MedicalHistory,
	}
}

// Patch is a partial update. Omitted keys leave the field untouched; null
// clears an optional field.
type Patch struct {
	Name           patch.Field[string]       `json:"name"`
	Phone          patch.Field[string]       `json:"phone"`
	Email          patch.Field[string]       `json:"email"`
	DateOfBirth    patch.Field[caldate.Date] `json:"dateOfBirth"`
	MedicalHistory patch.Field[string]       `json:"medicalHistory"`
}

// Apply merges the present fields of p into the patient.
func (pt *Patient) Apply(p Patch) {
	p.Name.ApplyTo(&pt.Name)
	p.Phone.ApplyToPtr(&pt.Phone)
	p.Email.ApplyToPtr(&pt.Email)
	p.DateOfBirth.ApplyToPtr(&pt.DateOfBirth)
	p.MedicalHistory.ApplyToPtr(&pt.MedicalHistory)
}

func (pt *Patient) GetID() int64 { return pt.ID }

func (pt *Patient) SetID(id int64) { pt.ID = id }

func (pt *Patient) GetOwnerID() int64 { return pt.UserID }

func (pt *Patient) SetCreated(t time.Time) {
	pt.CreatedAt = t
	pt.UpdatedAt = t
}

func (pt *Patient) Touch(t time.Time) { pt.UpdatedAt = t }

// Clone returns a deep copy.
func (pt *Patient) Clone() *Patient {
	c := *pt
	c.Phone = cloneString(pt.Phone)
	c.Email = cloneString(pt.Email)
	c.MedicalHistory = cloneString(pt.MedicalHistory)
	if pt.DateOfBirth != nil {
		d := *pt.DateOfBirth
		c.DateOfBirth = &d
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
