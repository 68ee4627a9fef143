package model

import "encoding/json"

// Nullable is a JSON field that distinguishes three states:
//
//	absent           → Set = false
//	present, null    → Set = true, Valid = false
//	present, a value → Set = true, Valid = true
//
// encoding/json never calls UnmarshalJSON for absent fields, so Set flips to
// true only when the key appears in the payload. A plain pointer can't make
// this distinction, and patch endpoints need it: clearing website_url to null
// must not look the same as not mentioning it.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// NullableOf returns a present, non-null Nullable. Mostly used in tests.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// NullableNull returns a present-and-null Nullable.
func NullableNull[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns the value as a pointer, nil when null. Panics never; an unset
// Nullable also yields nil.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
