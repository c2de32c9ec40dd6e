package main

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ConradIrwin/searchparams-go"
	"github.com/pkg/errors"
)

// readInput converts the contents of an input file to something
// searchparams.New accepts.
func readInput(format string, data []byte) (any, error) {
	switch format {
	case "query":
		return strings.TrimRight(string(data), "\r\n"), nil
	case "json":
		return searchparams.FromJSON(data)
	case "toml":
		return fromTOML(data)
	}
	return nil, errors.Errorf("unknown input format %s", format)
}

// fromTOML decodes a TOML document, keeping keys in the order they appear in
// the document. Arrays (including arrays of tables) are converted as a whole.
func fromTOML(data []byte) (*searchparams.Map, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid TOML")
	}

	root := &searchparams.Map{}
	for _, key := range md.Keys() {
		v, ok := lookup(raw, key)
		if !ok {
			continue
		}
		parent := ensure(root, key[:len(key)-1])
		if parent == nil {
			continue
		}
		name := key[len(key)-1]
		if _, isTable := v.(map[string]any); isTable {
			if _, exists := parent.Get(name); !exists {
				parent.Set(name, &searchparams.Map{})
			}
			continue
		}
		value, err := searchparams.ValueOf(v)
		if err != nil {
			return nil, errors.Wrapf(err, "key %s", key)
		}
		parent.Set(name, value)
	}
	return root.Normalized(), nil
}

// lookup finds the value at path, only descending through tables.
func lookup(raw map[string]any, path toml.Key) (any, bool) {
	var cur any = raw
	for _, k := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// ensure returns the map at path, creating missing maps on the way. It
// returns nil if something other than a map is in the way.
func ensure(root *searchparams.Map, path toml.Key) *searchparams.Map {
	cur := root
	for _, k := range path {
		v, ok := cur.Get(k)
		if !ok {
			next := &searchparams.Map{}
			cur.Set(k, next)
			cur = next
			continue
		}
		next, ok := v.(*searchparams.Map)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
