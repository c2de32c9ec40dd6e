package searchparams

import (
	"iter"
	"strings"
)

// TokenKind represents the possible kinds of token in a query string.
type TokenKind int8

// These tokens are yielded from [Tokens].
const (
	endOfInput = TokenKind(iota)
	Name       = TokenKind(iota)
	Index
	Append
	ValueToken
	NoValue
)

func (k TokenKind) String() string {
	switch k {
	case Name:
		return "Name"
	case Index:
		return "Index"
	case Append:
		return "Append"
	case ValueToken:
		return "Value"
	case NoValue:
		return "NoValue"
	case endOfInput:
		return "EndOfInput"
	default:
		panic("Unknown TokenKind")
	}
}

func (k TokenKind) GoString() string {
	return k.String()
}

// Token is a single lexical element of a query string. Content is already
// percent-decoded.
type Token struct {
	Kind    TokenKind
	Content string
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// unescape decodes a form-encoded component. Malformed escapes are kept as
// they are.
func unescape(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '+':
			b.WriteByte(' ')
		case '%':
			if i+2 < len(s) {
				hi, ok1 := unhex(s[i+1])
				lo, ok2 := unhex(s[i+2])
				if ok1 && ok2 {
					b.WriteByte(hi<<4 | lo)
					i += 2
					continue
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// pairs iterates over the non-empty segments of query, split on any of the
// separator characters.
func pairs(query, separators string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		n := 0
		for len(query) > 0 {
			segment := query
			if i := strings.IndexAny(query, separators); i >= 0 {
				segment, query = query[:i], query[i+1:]
			} else {
				query = ""
			}
			if segment == "" {
				continue
			}
			n++
			if !yield(n, segment) {
				return
			}
		}
	}
}

type subscript struct {
	key    string
	append bool
}

// splitName splits a decoded variable name into its base name and its
// subscripts. An empty base means the pair must be ignored.
//
// Spaces and dots in the base name become underscores. A first subscript
// without a closing bracket is not a subscript: it is folded into the base
// name. Anything after the last complete subscript is dropped.
func splitName(name string) (string, []subscript) {
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimLeft(name, " ")

	open := strings.IndexByte(name, '[')
	if open < 0 {
		return replaceChars(name, " ."), nil
	}
	base := replaceChars(name[:open], " .")
	if base == "" {
		return "", nil
	}

	var subs []subscript
	rest := name[open:]
	for strings.HasPrefix(rest, "[") {
		inner := rest[1:]
		if after, ok := strings.CutPrefix(inner, "]"); ok {
			subs = append(subs, subscript{append: true})
			rest = after
			continue
		}
		key, after, ok := strings.Cut(inner, "]")
		if !ok {
			if len(subs) == 0 {
				base += "_" + replaceChars(inner, " .[")
			}
			break
		}
		subs = append(subs, subscript{key: key})
		rest = after
	}
	return base, subs
}

func replaceChars(s, chars string) string {
	if !strings.ContainsAny(s, chars) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return '_'
		}
		return r
	}, s)
}

// Tokens iterates over the tokens of a query string, together with the
// (1-based) number of the pair they belong to.
//
// Every pair yields a [Name], then an [Index] or [Append] for each subscript,
// then exactly one of [ValueToken] or [NoValue]. Pairs with an empty name are
// skipped, and at most the configured maximum number of pairs is read (see
// [WithMaxVars]).
func Tokens(query string, opts ...Option) iter.Seq2[int, Token] {
	o := newOptions(opts)
	return func(yield func(int, Token) bool) {
		count := 0
		for n, segment := range pairs(query, o.separators) {
			count++
			if o.maxVars > 0 && count > o.maxVars {
				return
			}

			rawName, rawValue, hasValue := strings.Cut(segment, "=")
			base, subs := splitName(unescape(rawName))
			if base == "" {
				continue
			}

			if !yield(n, Token{Kind: Name, Content: base}) {
				return
			}
			for _, sub := range subs {
				token := Token{Kind: Index, Content: sub.key}
				if sub.append {
					token = Token{Kind: Append}
				}
				if !yield(n, token) {
					return
				}
			}

			token := Token{Kind: NoValue}
			if hasValue {
				token = Token{Kind: ValueToken, Content: unescape(rawValue)}
			}
			if !yield(n, token) {
				return
			}
		}
	}
}
