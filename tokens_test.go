package searchparams

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type numberedToken struct {
	N     int
	Token Token
}

func collectTokens(query string, opts ...Option) []numberedToken {
	tokens := []numberedToken{}
	for n, token := range Tokens(query, opts...) {
		tokens = append(tokens, numberedToken{n, token})
	}
	return tokens
}

func TestTokens(t *testing.T) {
	got := collectTokens("a[b][]=1&&c&d.e=%20x")
	want := []numberedToken{
		{1, Token{Kind: Name, Content: "a"}},
		{1, Token{Kind: Index, Content: "b"}},
		{1, Token{Kind: Append}},
		{1, Token{Kind: ValueToken, Content: "1"}},
		{2, Token{Kind: Name, Content: "c"}},
		{2, Token{Kind: NoValue}},
		{3, Token{Kind: Name, Content: "d_e"}},
		{3, Token{Kind: ValueToken, Content: " x"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokensStop(t *testing.T) {
	count := 0
	for range Tokens("a=1&b=2&c=3") {
		count++
		if count == 3 {
			break
		}
	}
	require.Equal(t, 3, count)
}

func TestTokenKindString(t *testing.T) {
	require.Equal(t, "Append", Append.String())
	require.Equal(t, "EndOfInput", endOfInput.GoString())
	require.Panics(t, func() { _ = TokenKind(42).String() })
}

func TestUnescape(t *testing.T) {
	for in, out := range map[string]string{
		"plain":     "plain",
		"a+b":       "a b",
		"%41%42":    "AB",
		"%e2%82%AC": "€",
		"%4":        "%4",
		"%zz":       "%zz",
		"100%":      "100%",
		"%%41":      "%A",
		"%2B+":      "+ ",
	} {
		require.Equal(t, out, unescape(in), "unescape(%q)", in)
	}
}

func TestSplitName(t *testing.T) {
	for _, test := range []struct {
		in   string
		base string
		subs []subscript
	}{
		{in: "a", base: "a"},
		{in: " a b", base: "a_b"},
		{in: "a.b[c.d]", base: "a_b", subs: []subscript{{key: "c.d"}}},
		{in: "a[][x]", base: "a", subs: []subscript{{append: true}, {key: "x"}}},
		{in: "a[b", base: "a_b"},
		{in: "a[b c.d[e", base: "a_b_c_d_e"},
		{in: "a[b][c", base: "a", subs: []subscript{{key: "b"}}},
		{in: "a[b]c[d]", base: "a", subs: []subscript{{key: "b"}}},
		{in: "[a]", base: ""},
		{in: "", base: ""},
		{in: "a\x00[b]", base: "a"},
	} {
		t.Run(test.in, func(t *testing.T) {
			base, subs := splitName(test.in)
			require.Equal(t, test.base, base)
			require.Equal(t, test.subs, subs)
		})
	}
}
