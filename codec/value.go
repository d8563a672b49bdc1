package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Value is one classified application datum. The set of implementations is
// closed: Number, String, Bool, Object, Null, *Map, *Set, Date and Unclassified.
type Value interface {
	Kind() Kind
	isValue()
}

// Number is a finite or infinite float64. NaN is never a Number; Of maps it
// to Unclassified.
type Number float64

// String is a text value.
type String string

// Bool is a boolean value.
type Bool bool

// Null is the absent value.
type Null struct{}

// Unclassified carries the string form of a value that matched no other kind.
type Unclassified string

// Object wraps a plain JSON-serializable structure (maps, slices, structs).
// Decoded objects hold the generic tree produced by encoding/json:
// map[string]any, []any, float64, string, bool and nil.
type Object struct{ v any }

// ObjectOf wraps v as an object value without inspecting it.
func ObjectOf(v any) Object { return Object{v: v} }

// Value returns the wrapped structure.
func (o Object) Value() any { return o.v }

func (Number) Kind() Kind       { return KindNumber }
func (String) Kind() Kind       { return KindString }
func (Bool) Kind() Kind         { return KindBoolean }
func (Null) Kind() Kind         { return KindNull }
func (Unclassified) Kind() Kind { return KindAny }
func (Object) Kind() Kind       { return KindObject }

func (Number) isValue()       {}
func (String) isValue()       {}
func (Bool) isValue()         {}
func (Null) isValue()         {}
func (Unclassified) isValue() {}
func (Object) isValue()       {}

// MarshalJSON renders Null as JSON null when nested inside another payload.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// MarshalJSON nests the wrapped structure directly.
func (o Object) MarshalJSON() ([]byte, error) { return marshalJSON(o.v) }

const maxDeref = 32

// Of classifies x and returns the matching variant. Precedence:
// null, set, map, date, object, string, boolean, number, any.
func Of(x any) Value {
	switch v := x.(type) {
	case nil:
		return Null{}
	case *Set:
		if v == nil {
			return Null{}
		}
		return v
	case Set:
		return &v
	case *Map:
		if v == nil {
			return Null{}
		}
		return v
	case Map:
		return &v
	case Date:
		return v
	case time.Time:
		return DateOf(v)
	case *time.Time:
		if v == nil {
			return Null{}
		}
		return DateOf(*v)
	case Number:
		return numberOf(float64(v))
	case Value:
		return v
	case json.RawMessage:
		return Object{v: v}
	case string:
		return String(v)
	case bool:
		return Bool(v)
	case float64:
		return numberOf(v)
	case float32:
		return numberOf(float64(v))
	case int:
		return Number(v)
	case int64:
		return Number(v)
	case int32:
		return Number(v)
	case uint64:
		return Number(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Unclassified(v.String())
		}
		return numberOf(f)
	}
	return reflectOf(x)
}

func reflectOf(x any) Value {
	rv := reflect.ValueOf(x)
	for i := 0; rv.Kind() == reflect.Pointer && i < maxDeref; i++ {
		if rv.IsNil() {
			return Null{}
		}
		switch rv.Elem().Kind() {
		case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
			// pointers to composites stay wrapped so marshalers on *T still apply
			return Object{v: x}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}
	}

	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return Object{v: rv.Interface()}
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return numberOf(rv.Float())
	}
	return Unclassified(fmt.Sprint(x))
}

func numberOf(f float64) Value {
	if math.IsNaN(f) {
		return Unclassified("NaN")
	}
	return Number(f)
}

// Equal reports whether a and b hold the same datum: equal numbers, strings
// and booleans, equal instants for dates (all invalid dates are equal), and
// equal canonical payloads for objects, maps and sets.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Date:
		return av.Equal(b.(Date))
	case Object, *Map, *Set:
		pa, err := payload(a)
		if err != nil {
			return false
		}
		pb, err := payload(b)
		if err != nil {
			return false
		}
		return pa == pb
	}
	return a == b
}
