package patient

// Repository is tenant-scoped patient storage. Every method filters by
// owner; a record of another owner is indistinguishable from a missing one.
type Repository interface {
	CreatePatient(p *Patient) *Patient
	GetPatient(id, owner int64) (*Patient, bool)
	ListPatients(owner int64) []*Patient
	UpdatePatient(id, owner int64, p Patch) (*Patient, bool)
	DeletePatient(id, owner int64) (bool, error)
}
