package validation

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Optional records whether a JSON field was sent at all, and if so whether
// it was null. An absent field, a null field and a zero value are distinct.
type Optional[T any] struct {
	Value   T
	Present bool
	Null    bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// HasValue reports whether the field was sent with a non-null value.
func (o Optional[T]) HasValue() bool { return o.Present && !o.Null }

// Ptr returns nil for absent or null, otherwise a pointer to the value.
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}

// Any returns nil for absent or null, otherwise the value. Suited to SQL arguments.
func (o Optional[T]) Any() any {
	if !o.HasValue() {
		return nil
	}
	return o.Value
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		// reported as a type error so the decoder attaches the field name
		return &json.UnmarshalTypeError{
			Value: jsonKind(b),
			Type:  reflect.TypeOf(o.Value),
		}
	}
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func jsonKind(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return "empty"
	}
	switch b[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "bool"
	default:
		return "number"
	}
}
