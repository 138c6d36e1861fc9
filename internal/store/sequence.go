package store

// Kind identifies a record collection.
type Kind int

const (
	KindUser Kind = iota
	KindPatient
	KindMedication
	KindTreatment
	kindCount
)

var kindNames = [kindCount]string{"user", "patient", "medication", "treatment"}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every record kind.
func Kinds() []Kind {
	return []Kind{KindUser, KindPatient, KindMedication, KindTreatment}
}

// sequence issues per-kind ids starting at 1. Ids are never handed out
// twice, deleted or not. Callers hold the store write lock.
type sequence struct {
	last [kindCount]int64
}

func (s *sequence) Next(k Kind) int64 {
	s.last[k]++
	return s.last[k]
}

// Peek returns the id Next would issue without consuming it.
func (s *sequence) Peek(k Kind) int64 {
	return s.last[k] + 1
}
