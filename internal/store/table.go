package store

import "time"

// record is what every stored kind provides. Clone must return a deep copy
// so table contents never alias caller memory.
type record[T any] interface {
	GetID() int64
	SetID(id int64)
	GetOwnerID() int64
	SetCreated(t time.Time)
	Clone() T
}

// mutable kinds support partial-merge updates.
type mutable[T any, P any] interface {
	record[T]
	Apply(p P)
	Touch(t time.Time)
}

// table holds one kind in insertion order. It has no lock of its own; the
// Store guards every table with a single RWMutex.
type table[T record[T]] struct {
	kind Kind
	rows []T
}

func newTable[T record[T]](kind Kind) table[T] {
	return table[T]{kind: kind}
}

// insert stores a copy of r under a fresh id and returns another copy.
func (t *table[T]) insert(seq *sequence, r T, now time.Time) T {
	r = r.Clone()
	r.SetID(seq.Next(t.kind))
	r.SetCreated(now)
	t.rows = append(t.rows, r)
	return r.Clone()
}

func (t *table[T]) index(id, owner int64) int {
	for i, r := range t.rows {
		if r.GetID() == id && r.GetOwnerID() == owner {
			return i
		}
	}
	return -1
}

func (t *table[T]) get(id, owner int64) (T, bool) {
	if i := t.index(id, owner); i >= 0 {
		return t.rows[i].Clone(), true
	}
	var zero T
	return zero, false
}

// find returns the first record matching match, without owner filtering.
func (t *table[T]) find(match func(T) bool) (T, bool) {
	for _, r := range t.rows {
		if match(r) {
			return r.Clone(), true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) exists(id, owner int64) bool {
	return t.index(id, owner) >= 0
}

// scan returns copies of the owner's records accepted by keep, in
// insertion order. keep may be nil. The result is never nil.
func (t *table[T]) scan(owner int64, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, r := range t.rows {
		if r.GetOwnerID() == owner && (keep == nil || keep(r)) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// newest returns the owner's records, most recently created first. Rows are
// appended as they are created, so this is insertion order reversed.
func (t *table[T]) newest(owner int64, keep func(T) bool) []T {
	out := t.scan(owner, keep)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (t *table[T]) count(owner int64, keep func(T) bool) int {
	n := 0
	for _, r := range t.rows {
		if r.GetOwnerID() == owner && (keep == nil || keep(r)) {
			n++
		}
	}
	return n
}

func (t *table[T]) remove(id, owner int64) bool {
	i := t.index(id, owner)
	if i < 0 {
		return false
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return true
}

// removeWhere drops every record matching match and reports how many went.
func (t *table[T]) removeWhere(match func(T) bool) int {
	kept := t.rows[:0]
	for _, r := range t.rows {
		if !match(r) {
			kept = append(kept, r)
		}
	}
	n := len(t.rows) - len(kept)
	var zero T
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = zero
	}
	t.rows = kept
	return n
}

func (t *table[T]) size() int { return len(t.rows) }

// update merges p into a copy of the scoped record. check, when non-nil,
// vets the merged copy before it replaces the stored row; an error leaves
// the table untouched.
func update[T mutable[T, P], P any](t *table[T], id, owner int64, p P, now time.Time, check func(T) error) (T, bool, error) {
	var zero T
	i := t.index(id, owner)
	if i < 0 {
		return zero, false, nil
	}
	next := t.rows[i].Clone()
	next.Apply(p)
	if check != nil {
		if err := check(next); err != nil {
			return zero, true, err
		}
	}
	next.Touch(now)
	t.rows[i] = next
	return next.Clone(), true, nil
}
