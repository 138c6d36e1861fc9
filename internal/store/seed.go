package store

import (
	"github.com/medisync/medisync/internal/domain/identity"
	"github.com/medisync/medisync/internal/domain/medication"
	"github.com/medisync/medisync/internal/domain/patient"
	"github.com/medisync/medisync/pkg/caldate"
)

// DemoPasswordHash is the bcrypt hash of "demo123" shared by the demo
// accounts.
const DemoPasswordHash = "$2b$10$sAJd1LxCiLVd1u4ex0gR3e/SXyuCaU1DEa6qA0yX3WHU29FAsUHxW"

// DemoOwnerID owns every seeded patient and medication.
const DemoOwnerID int64 = 1

func (s *Store) seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, u := range []identity.User{
		{Username: "demo_doctor", Email: "demo@medisync.com", Name: "Dr. Demo User"},
		{Username: "admin_user", Email: "admin@medisync.com", Name: "Dr. Sarah Admin"},
	} {
		u.PasswordHash = DemoPasswordHash
		s.users.insert(&s.seq, &u, now)
	}

	for _, p := range []patient.Patient{
		{Name: "John Smith", Phone: str("+1-555-0123"), Email: str("john.smith@email.com"), DateOfBirth: date("1980-05-15"),
			MedicalHistory: str("Hypertension, controlled with medication. No known allergies.")},
		{Name: "Sarah Johnson", Phone: str("+1-555-0124"), Email: str("sarah.j@email.com"), DateOfBirth: date("1975-03-22"),
			MedicalHistory: str("Type 2 diabetes, well-managed. Regular checkups required.")},
		{Name: "Michael Brown", Phone: str("+1-555-0125"), Email: str("mbrown@email.com"), DateOfBirth: date("1990-11-08"),
			MedicalHistory: str("Asthma, uses inhaler as needed. Allergic to penicillin.")},
		{Name: "Emily Davis", Phone: str("+1-555-0126"), Email: str("emily.davis@email.com"), DateOfBirth: date("1985-07-30"),
			MedicalHistory: str("Recent surgery recovery. Follow-up in 2 weeks.")},
	} {
		p.UserID = DemoOwnerID
		s.patients.insert(&s.seq, &p, now)
	}

	for _, m := range []medication.Medication{
		{Name: "Lisinopril 10mg", Brand: str("Prinivil"), Category: medication.CategoryHeartMedication,
			Quantity: 120, MinStock: 20, ExpirationDate: caldate.MustParse("2025-08-15"), Notes: str("ACE inhibitor for hypertension")},
		{Name: "Metformin 500mg", Brand: str("Glucophage"), Category: medication.CategoryDiabetes,
			Quantity: 90, MinStock: 15, ExpirationDate: caldate.MustParse("2025-06-20"), Notes: str("For type 2 diabetes management")},
		{Name: "Albuterol Inhaler", Brand: str("ProAir HFA"), Category: medication.CategoryRespiratory,
			Quantity: 5, MinStock: 2, ExpirationDate: caldate.MustParse("2025-01-10"), Notes: str("Rescue inhaler for asthma - expiring soon")},
		{Name: "Amoxicillin 500mg", Brand: str("Amoxil"), Category: medication.CategoryAntibiotics,
			Quantity: 8, MinStock: 10, ExpirationDate: caldate.MustParse("2025-05-30"), Notes: str("Broad-spectrum antibiotic - low stock")},
		{Name: "Ibuprofen 200mg", Brand: str("Advil"), Category: medication.CategoryPainRelief,
			Quantity: 150, MinStock: 25, ExpirationDate: caldate.MustParse("2026-03-15"), Notes: str("Over-the-counter pain reliever")},
	} {
		m.UserID = DemoOwnerID
		s.meds.insert(&s.seq, &m, now)
	}
}

func str(s string) *string { return &s }

func date(s string) *caldate.Date {
	d := caldate.MustParse(s)
	return &d
}
