package types

import (
	"bytes"
	"encoding/json"
)

var jsonNull = []byte("null")

// Optional is a value that is either unset or set. An unset field defers to
// the enclosing scope, it never means the zero value of T.
//
// JSON null and an absent field both decode to unset. Unset values encode to
// null; struct fields tagged with omitzero drop them entirely.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an unset Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr converts a nullable pointer, as produced by database scanners, into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsZero reports whether o is unset. Used by the omitzero json option.
func (o Optional[T]) IsZero() bool {
	return !o.set
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse returns the value if set, def otherwise.
func (o Optional[T]) OrElse(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// Ptr returns nil when unset, for database bindings.
func (o Optional[T]) Ptr() *T {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}

// Map applies fn to a set value. The error of fn is returned as is.
func (o Optional[T]) Map(fn func(T) (T, error)) (Optional[T], error) {
	if !o.set {
		return o, nil
	}
	v, err := fn(o.value)
	if err != nil {
		return o, err
	}
	return Some(v), nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return jsonNull, nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(input []byte) error {
	if bytes.Equal(bytes.TrimSpace(input), jsonNull) {
		*o = None[T]()
		return nil
	}

	var v T
	if err := json.Unmarshal(input, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
