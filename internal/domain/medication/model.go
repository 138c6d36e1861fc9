package medication

import (
	"time"

	"github.com/medisync/medisync/pkg/caldate"
	"github.com/medisync/medisync/pkg/patch"
)

// Category groups inventory on the shelves and in reports.
type Category string

const (
	CategoryAntibiotics     Category = "antibiotics"
	CategoryPainRelief      Category = "pain-relief"
	CategoryHeartMedication Category = "heart-medication"
	CategoryDiabetes        Category = "diabetes"
	CategoryRespiratory     Category = "respiratory"
	CategoryOther           Category = "other"
)

var validCategories = map[Category]bool{
	CategoryAntibiotics:     true,
	CategoryPainRelief:      true,
	CategoryHeartMedication: true,
	CategoryDiabetes:        true,
	CategoryRespiratory:     true,
	CategoryOther:           true,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool { return validCategories[c] }

// Medication is a stocked item in the owner's inventory.
type Medication struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"userId"`
	Name           string       `json:"name"`
	Brand          *string      `json:"brand"`
	Category       Category     `json:"category"`
	Quantity       int          `json:"quantity"`
	MinStock       int          `json:"minStock"`
	ExpirationDate caldate.Date `json:"expirationDate"`
	Notes          *string      `json:"notes"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// NewMedication is the body of POST /api/medications.
type NewMedication struct {
	Name           string       `json:"name"`
	Brand          *string      `json:"brand"`
	Category       Category     `json:"category"`
	Quantity       int          `json:"quantity"`
	MinStock       int          `json:"minStock"`
	ExpirationDate caldate.Date `json:"expirationDate"`
	Notes          *string      `json:"notes"`
}

func (n NewMedication) Build(owner int64) *Medication {
	return &Medication{
		UserID:         owner,
		Name:           n.Name,
		Brand:          n.Brand,
		Category:       n.Category,
		Quantity:       n.Quantity,
		MinStock:       n.MinStock,
		ExpirationDate: n.ExpirationDate,
		Notes:          n.Notes,
	}
}

// Patch is a partial update; see patch.Field for the presence rules.
type Patch struct {
	Name           patch.Field[string]       `json:"name"`
	Brand          patch.Field[string]       `json:"brand"`
	Category       patch.Field[Category]     `json:"category"`
	Quantity       patch.Field[int]          `json:"quantity"`
	MinStock       patch.Field[int]          `json:"minStock"`
	ExpirationDate patch.Field[caldate.Date] `json:"expirationDate"`
	Notes          patch.Field[string]       `json:"notes"`
}

func (m *Medication) Apply(p Patch) {
	p.Name.ApplyTo(&m.Name)
	p.Brand.ApplyToPtr(&m.Brand)
	p.Category.ApplyTo(&m.Category)
	p.Quantity.ApplyTo(&m.Quantity)
	p.MinStock.ApplyTo(&m.MinStock)
	p.ExpirationDate.ApplyTo(&m.ExpirationDate)
	p.Notes.ApplyToPtr(&m.Notes)
}

func (m *Medication) GetID() int64 { return m.ID }

func (m *Medication) SetID(id int64) { m.ID = id }

func (m *Medication) GetOwnerID() int64 { return m.UserID }

func (m *Medication) SetCreated(t time.Time) {
	m.CreatedAt = t
	m.UpdatedAt = t
}

func (m *Medication) Touch(t time.Time) { m.UpdatedAt = t }

func (m *Medication) Clone() *Medication {
	c := *m
	if m.Brand != nil {
		b := *m.Brand
		c.Brand = &b
	}
	if m.Notes != nil {
		n := *m.Notes
		c.Notes = &n
	}
	return &c
}

// Item is a medication as listed to clients, with its derived stock status.
type Item struct {
	*Medication
	Status Status `json:"status"`
}

// Filter narrows an inventory listing. Zero values match everything.
type Filter struct {
	Category Category
	Status   Status
	Search   string
}
