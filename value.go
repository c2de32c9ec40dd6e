package searchparams

import (
	"iter"
	"math"
	"strconv"
)

// Value is a node in a parsed query. Concrete types:
//
//   - [Scalar] - a leaf value
//   - [List] - an ordered list of values (encoded as key[])
//   - [*Map] - an ordered map of values (encoded as key[subkey])
type Value interface {
	queryValue()
}

// Scalar is a leaf value.
type Scalar string

// List is a sequence of values. Each item is encoded with an empty
// subscript, so the list a = [x, y] becomes a[]=x&a[]=y.
type List []Value

func (Scalar) queryValue() {}
func (List) queryValue()   {}
func (*Map) queryValue()   {}

// Map is an ordered map from string keys to values.
//
// Keys keep the position at which they were first set. Keys that are
// canonical decimal integers ("0", "17", "-3") behave like the indexes of an
// array: they advance the index used by [Map.Append].
//
// The zero Map is empty and ready to use.
type Map struct {
	keys   []string
	values map[string]Value
	next   int64
	full   bool
}

// MapEntry is a convenience type for building Map values.
type MapEntry struct {
	Key   string
	Value Value
}

// NewMap creates a Map from entries. Later entries with the same key
// overwrite earlier ones.
func NewMap(entries ...MapEntry) *Map {
	m := &Map{}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Len returns the number of keys in the map.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores v under key. If key is already present its position is kept.
func (m *Map) Set(key string, v Value) {
	if m.values == nil {
		m.values = map[string]Value{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
		if i, ok := intKey(key); ok && i >= m.next && !m.full {
			if i == math.MaxInt64 {
				m.next, m.full = i, true
			} else {
				m.next = i + 1
			}
		}
	}
	m.values[key] = v
}

// Append stores v under the next free integer key. It reports false, and
// drops v, once the largest integer key has been used.
func (m *Map) Append(v Value) bool {
	if m.full {
		return false
	}
	m.Set(strconv.FormatInt(m.next, 10), v)
	return true
}

// Delete removes key from the map. The next free index is not rewound.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates over the key value pairs in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// IsList reports whether the keys of m are exactly "0", "1", ... "n-1" in
// order. An empty map is a list.
func (m *Map) IsList() bool {
	for i, k := range m.Keys() {
		if k != strconv.Itoa(i) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := &Map{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]Value, len(m.values)),
		next:   m.next,
		full:   m.full,
	}
	for k, v := range m.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

func cloneValue(v Value) Value {
	switch v := v.(type) {
	case *Map:
		return v.Clone()
	case List:
		l := make(List, len(v))
		for i, item := range v {
			l[i] = cloneValue(item)
		}
		return l
	default:
		return v
	}
}

// Normalize returns v with every nested list-like [*Map] replaced by the
// equivalent [List]. The top-level value is converted too; callers that need
// to keep a map at the top should use [Map.Normalized].
func Normalize(v Value) Value {
	switch v := v.(type) {
	case *Map:
		if v.IsList() {
			l := make(List, 0, v.Len())
			for _, item := range v.All() {
				l = append(l, Normalize(item))
			}
			return l
		}
		return v.Normalized()
	case List:
		l := make(List, len(v))
		for i, item := range v {
			l[i] = Normalize(item)
		}
		return l
	case nil:
		return Scalar("")
	default:
		return v
	}
}

// Normalized returns a copy of m whose nested list-like maps are converted
// to lists. m itself stays a map even if its own keys are list-like.
func (m *Map) Normalized() *Map {
	n := &Map{}
	for k, v := range m.All() {
		n.Set(k, Normalize(v))
	}
	return n
}

// intKey reports whether s is the canonical decimal form of an integer, the
// form in which an array index is written.
func intKey(s string) (int64, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil || strconv.FormatInt(i, 10) != s {
		return 0, false
	}
	return i, true
}
