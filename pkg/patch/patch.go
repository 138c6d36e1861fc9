// Package patch implements partial-update fields that keep "not supplied"
// apart from "supplied as null". Decoding follows JSON Merge Patch (RFC 7386):
// an absent key leaves the target untouched, an explicit null clears it.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is an optional patch value.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Set returns a present field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// Clear returns a present field that clears its target.
func Clear[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// IsSet reports whether the field carries a non-null value.
func (f Field[T]) IsSet() bool { return f.Present && !f.Null }

// ApplyTo overwrites dst when the field carries a value. A null on a
// non-nullable target resets it to the zero value.
func (f Field[T]) ApplyTo(dst *T) {
	if !f.Present {
		return
	}
	if f.Null {
		var zero T
		*dst = zero
		return
	}
	*dst = f.Value
}

// ApplyToPtr updates a nullable target: null sets it to nil, a value
// replaces it with a fresh copy.
func (f Field[T]) ApplyToPtr(dst **T) {
	if !f.Present {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	v := f.Value
	*dst = &v
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
