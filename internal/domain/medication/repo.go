package medication

// Repository is tenant-scoped inventory storage.
type Repository interface {
	CreateMedication(m *Medication) *Medication
	GetMedication(id, owner int64) (*Medication, bool)
	ListMedications(owner int64) []*Medication
	UpdateMedication(id, owner int64, p Patch) (*Medication, bool)
	DeleteMedication(id, owner int64) (bool, error)
}
