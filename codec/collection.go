package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is an insertion-ordered associative structure with unique keys.
//
// Scalar keys (nil, booleans, numbers, strings and their Value variants) are
// unique by value; numbers compare as float64, so int 1 and 1.0 are the same
// key. Composite keys (objects, slices, nested maps) are unique by identity:
// every Set with a composite key appends a new entry.
// The zero value is an empty map ready to use. A Map is not safe for
// concurrent mutation.
type Map struct {
	entries []Entry
	index   map[string]int
}

var _ Value = (*Map)(nil)

func (*Map) Kind() Kind { return KindMap }
func (*Map) isValue()   {}

// NewMap builds a map from entries in order. Later duplicates overwrite the
// value but keep the first position.
func NewMap(entries ...Entry) *Map {
	m := &Map{}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Set inserts or replaces the value stored under k.
func (m *Map) Set(k, v any) {
	id, scalar := scalarKey(k)
	if scalar {
		if i, ok := m.index[id]; ok {
			m.entries[i].Value = v
			return
		}
		if m.index == nil {
			m.index = make(map[string]int)
		}
		m.index[id] = len(m.entries)
	}
	m.entries = append(m.entries, Entry{Key: k, Value: v})
}

// Get returns the value stored under a scalar key.
func (m *Map) Get(k any) (any, bool) {
	i, ok := m.find(k)
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Has reports whether a scalar key is present.
func (m *Map) Has(k any) bool {
	_, ok := m.find(k)
	return ok
}

// Delete removes a scalar key and reports whether it was present.
func (m *Map) Delete(k any) bool {
	i, ok := m.find(k)
	if !ok {
		return false
	}
	m.removeAt(i)
	return true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// pairs is the JSON shape of a map payload: [[k,v],...].
func (m *Map) pairs() [][2]any {
	out := make([][2]any, 0, m.Len())
	if m == nil {
		return out
	}
	for _, e := range m.entries {
		out = append(out, [2]any{e.Key, e.Value})
	}
	return out
}

func (m *Map) find(k any) (int, bool) {
	if m == nil || m.index == nil {
		return 0, false
	}
	id, scalar := scalarKey(k)
	if !scalar {
		return 0, false
	}
	i, ok := m.index[id]
	return i, ok
}

func (m *Map) removeAt(i int) {
	if id, scalar := scalarKey(m.entries[i].Key); scalar {
		delete(m.index, id)
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	for j := i; j < len(m.entries); j++ {
		if id, scalar := scalarKey(m.entries[j].Key); scalar {
			m.index[id] = j
		}
	}
}

// Set is an insertion-ordered collection of unique values, with the same
// uniqueness rules as Map keys. The zero value is an empty set ready to use.
type Set struct {
	m Map
}

var _ Value = (*Set)(nil)

func (*Set) Kind() Kind { return KindSet }
func (*Set) isValue()   {}

// NewSet builds a set from values in order, dropping scalar duplicates.
func NewSet(values ...any) *Set {
	s := &Set{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v unless an equal scalar is already present.
func (s *Set) Add(v any) {
	if s.m.Has(v) {
		return
	}
	s.m.Set(v, struct{}{})
}

// Has reports whether a scalar is present.
func (s *Set) Has(v any) bool { return s.m.Has(v) }

// Delete removes a scalar and reports whether it was present.
func (s *Set) Delete(v any) bool { return s.m.Delete(v) }

// Len returns the number of elements.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

// Values returns the elements in insertion order.
func (s *Set) Values() []any {
	if s == nil {
		return nil
	}
	out := make([]any, 0, len(s.m.entries))
	for _, e := range s.m.entries {
		out = append(out, e.Key)
	}
	return out
}

// scalarKey returns a value-identity for scalars. Composite values report
// false and are never deduplicated.
func scalarKey(k any) (string, bool) {
	switch v := k.(type) {
	case nil, Null:
		return "null", true
	case Number:
		return numberKey(float64(v)), true
	case String:
		return "s:" + string(v), true
	case Bool:
		return fmt.Sprintf("b:%t", bool(v)), true
	case Unclassified:
		return "u:" + string(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return numberKey(f), true
		}
		return "s:" + v.String(), true
	}

	rv := reflect.ValueOf(k)
	switch rv.Kind() {
	case reflect.String:
		return "s:" + rv.String(), true
	case reflect.Bool:
		return fmt.Sprintf("b:%t", rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberKey(float64(rv.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numberKey(float64(rv.Uint())), true
	case reflect.Float32, reflect.Float64:
		return numberKey(rv.Float()), true
	}
	return "", false
}

// numberKey treats NaN as equal to itself and -0 as equal to 0.
func numberKey(f float64) string {
	if math.IsNaN(f) {
		return "n:NaN"
	}
	return "n:" + formatNumber(f)
}
