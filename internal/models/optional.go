package models

import (
	"bytes"
	"encoding/json"
)

// Optional records whether a JSON member was present at all. A member sent
// as null has Set true and a nil Value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Present returns a set Optional holding v, which may be nil.
func Present[T any](v *T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	o.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Or returns Value when the member was present, otherwise fallback.
func (o Optional[T]) Or(fallback *T) *T {
	if o.Set {
		return o.Value
	}
	return fallback
}
