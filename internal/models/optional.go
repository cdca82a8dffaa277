package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a request field that can be absent, explicitly null, or hold
// a value. Tag it with omitzero so the absent case is dropped from JSON.
type Optional[T any] struct {
	Value *T
	Set   bool
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: &v, Set: true}
}

// Null returns an Optional that encodes as JSON null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// OptionalFromPtr returns Null for nil and Some(*p) otherwise
func OptionalFromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

// IsZero reports whether the field is absent
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
