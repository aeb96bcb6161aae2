// Package patch tracks which JSON keys a partial update request carried, so
// that "" and 0 can be written as deliberately as any other value.
package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var null = []byte("null")

// Field is one optional member of a partial update payload. Set is true when
// the key was present in the request body; Null is true when it was null.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Of returns a Field set to v.
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null returns a Field explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), null) {
		var zero T
		f.Value = zero
		f.Null = true
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return null, nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil for an explicit null and a pointer to the value otherwise.
func (f Field[T]) Ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// Int is an integer that also accepts numeric strings and truncates
// fractional numbers, mirroring how form inputs post scores.
type Int int

func (n *Int) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if i, err := strconv.Atoi(s); err == nil {
		*n = Int(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("patch: %s is not an integer", data)
	}
	*n = Int(math.Trunc(f))
	return nil
}
