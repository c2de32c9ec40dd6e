package searchparams

import (
	"iter"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Entry is a single flattened key value pair. Nested structure is encoded in
// the key using brackets: a[b] for maps, a[] for lists.
type Entry struct {
	Key   string
	Value string
}

// Params holds a set of query parameters.
//
// Params is read-only. The parsed tupples and the flattened entries are
// computed the first time they are needed, and then reused.
type Params struct {
	init any
	opts []Option

	tupplesOnce sync.Once
	tupples     *Map
	entriesOnce sync.Once
	entries     []Entry
	err         error
}

// New creates Params from init, which may be:
//   - nil, for no parameters
//   - a query string (any string type, or a []byte), like "a=1&b[]=2"
//   - a list of [name, value] pairs, like [][2]string{{"a", "1"}}
//   - a map or struct, like map[string]any{"a": 1, "b": []int{2}}
//   - a [*Map] or [List]
//   - another *Params, whose results are copied
//
// New does no work itself; any error is reported by the first call to
// [Params.Tupples], [Params.Entries] or [Params.Encode]. The options only
// affect the decoding of query strings.
func New(init any, opts ...Option) *Params {
	p := &Params{init: init, opts: opts}
	if src, ok := init.(*Params); ok {
		if src == nil {
			p.init = nil
			return p
		}
		tupples, err := src.cachedTupples()
		entries, _ := src.cachedEntries()
		p.tupplesOnce.Do(func() {
			p.tupples = tupples.Clone()
			p.err = err
		})
		p.entriesOnce.Do(func() {
			p.entries = slices.Clone(entries)
		})
	}
	return p
}

// Parse creates Params from a query string. A leading "?" is ignored.
func Parse(query string, opts ...Option) *Params {
	return New(strings.TrimPrefix(query, "?"), opts...)
}

func (p *Params) cachedTupples() (*Map, error) {
	p.tupplesOnce.Do(func() {
		p.tupples, p.err = makeTupples(p.init, p.opts)
	})
	return p.tupples, p.err
}

func (p *Params) cachedEntries() ([]Entry, error) {
	tupples, err := p.cachedTupples()
	if err != nil {
		return nil, err
	}
	p.entriesOnce.Do(func() {
		p.entries = makeEntries(tupples)
	})
	return p.entries, nil
}

// Tupples returns the parameters before flattening: a map from each name to
// its scalar, list or map value. The returned map is a copy.
func (p *Params) Tupples() (*Map, error) {
	tupples, err := p.cachedTupples()
	if err != nil {
		return nil, err
	}
	return tupples.Clone(), nil
}

// Entries returns the flattened key value pairs, in order.
func (p *Params) Entries() ([]Entry, error) {
	entries, err := p.cachedEntries()
	if err != nil {
		return nil, err
	}
	return slices.Clone(entries), nil
}

// Err returns the error that prevents the params from being built, if any.
func (p *Params) Err() error {
	_, err := p.cachedTupples()
	return err
}

// Encode returns the form-encoded query string, like "a=1&b%5B%5D=2".
// Keys and values are escaped with [url.QueryEscape].
func (p *Params) Encode() (string, error) {
	entries, err := p.cachedEntries()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(e.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(e.Value))
	}
	return b.String(), nil
}

// String returns the same as [Params.Encode], or "" if the params are
// invalid.
func (p *Params) String() string {
	s, _ := p.Encode()
	return s
}

// All iterates over the entries. Invalid params have no entries.
func (p *Params) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		entries, _ := p.cachedEntries()
		for _, e := range entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// Keys iterates over the key of each entry. Repeated keys are repeated.
func (p *Params) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range p.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Values iterates over the value of each entry.
func (p *Params) Values() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range p.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Get returns the value of the first entry with the given key.
func (p *Params) Get(key string) (string, bool) {
	for k, v := range p.All() {
		if k == key {
			return v, true
		}
	}
	return "", false
}

// GetAll returns the values of every entry with the given key.
func (p *Params) GetAll(key string) []string {
	var values []string
	for k, v := range p.All() {
		if k == key {
			values = append(values, v)
		}
	}
	return values
}

// Has reports whether an entry has the given key.
func (p *Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Len returns the number of entries.
func (p *Params) Len() int {
	entries, _ := p.cachedEntries()
	return len(entries)
}

// makeTupples classifies init and builds the tupples from it.
func makeTupples(init any, opts []Option) (*Map, error) {
	switch init := init.(type) {
	case nil:
		return &Map{}, nil
	case []byte:
		return Decode(string(init), opts...), nil
	}

	val := reflect.ValueOf(init)
	for val.Kind() == reflect.Pointer && !val.IsNil() && !val.Type().Implements(valueType) {
		val = val.Elem()
	}
	if val.Kind() == reflect.Pointer && val.IsNil() {
		return &Map{}, nil
	}
	if val.Kind() == reflect.String {
		return Decode(val.String(), opts...), nil
	}

	v, err := marshalValue(val)
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case *Map:
		return v, nil
	case List:
		return tupplesFromPairs(v)
	default:
		return NewMap(MapEntry{"0", v}), nil
	}
}

var valueType = reflect.TypeFor[Value]()

// tupplesFromPairs converts a list of [name, value] pairs to a map. Every item
// must have exactly two elements. Later names overwrite earlier ones.
func tupplesFromPairs(list List) (*Map, error) {
	pairs := make([][]Value, len(list))
	for i, item := range list {
		switch item := item.(type) {
		case List:
			pairs[i] = item
		case *Map:
			for _, v := range item.All() {
				pairs[i] = append(pairs[i], v)
			}
		default:
			return nil, &InvalidTupleError{Index: i}
		}
		if len(pairs[i]) != 2 {
			return nil, &InvalidTupleError{Index: i}
		}
	}

	m := &Map{}
	for _, pair := range pairs {
		m.Set(Stringify(pair[0]), pair[1])
	}
	return m, nil
}

// makeEntries flattens the tupples into entries.
func makeEntries(tupples *Map) []Entry {
	entries := []Entry{}
	for key, value := range tupples.All() {
		entries = appendEntries(entries, key, value)
	}
	return entries
}

func appendEntries(entries []Entry, prefix string, value Value) []Entry {
	switch value := value.(type) {
	case *Map:
		for key, item := range value.All() {
			entries = appendEntries(entries, prefix+"["+key+"]", item)
		}
	case List:
		for _, item := range value {
			entries = appendEntries(entries, prefix+"[]", item)
		}
	case Scalar:
		entries = append(entries, Entry{Key: prefix, Value: string(value)})
	case nil:
		entries = append(entries, Entry{Key: prefix})
	}
	return entries
}
