package searchparams

// Decode parses a query string into a nested map.
//
//	a=1&b[]=2&b[]=3&c[d]=4
//
// decodes to {a: 1, b: [2, 3], c: {d: 4}}. Decoding never fails: malformed
// escapes are kept verbatim and malformed names are repaired or skipped as
// described in [Tokens].
//
// When a name is repeated the later value wins, but the key keeps its
// original position. Subscripting a key that holds a scalar replaces the
// scalar with a map. A name with more subscripts than the maximum depth
// (see [WithMaxDepth]) removes its top-level variable from the result.
//
// Maps whose keys are exactly 0..n-1 are returned as a [List].
func Decode(query string, opts ...Option) *Map {
	o := newOptions(opts)
	root := &Map{}

	var (
		name      string
		parent    *Map
		key       string
		appending bool
		depth     int
		dropped   bool
	)

	for _, token := range Tokens(query, opts...) {
		switch token.Kind {
		case Name:
			name = token.Content
			parent, key, appending = root, token.Content, false
			depth, dropped = 0, false

		case Index, Append:
			if dropped {
				continue
			}
			depth++
			if o.maxDepth > 0 && depth > o.maxDepth {
				root.Delete(name)
				dropped = true
				continue
			}
			parent = descend(parent, key, appending)
			key, appending = token.Content, token.Kind == Append

		case ValueToken, NoValue:
			if dropped {
				continue
			}
			if appending {
				parent.Append(Scalar(token.Content))
			} else {
				parent.Set(key, Scalar(token.Content))
			}

		default:
			panic("Unknown token kind")
		}
	}

	return root.Normalized()
}

// descend returns the map stored under key in parent, creating it (or
// replacing a scalar) when necessary.
func descend(parent *Map, key string, appending bool) *Map {
	if !appending {
		if existing, ok := parent.Get(key); ok {
			if m, ok := existing.(*Map); ok {
				return m
			}
		}
	}
	child := &Map{}
	if appending {
		parent.Append(child)
	} else {
		parent.Set(key, child)
	}
	return child
}
