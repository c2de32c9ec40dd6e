package searchparams_test

import (
	"math"
	"testing"
	"time"

	"github.com/ConradIrwin/searchparams-go"
	"github.com/stretchr/testify/require"
)

func TestStringify(t *testing.T) {
	str := "s"
	for _, test := range []struct {
		name string
		in   any
		out  string
	}{
		{"true", true, "1"},
		{"false", false, ""},
		{"nil", nil, ""},
		{"nil pointer", (*int)(nil), ""},
		{"pointer", &str, "s"},
		{"int", 42, "42"},
		{"negative", -7, "-7"},
		{"uint8", uint8(7), "7"},
		{"float", 1.5, "1.5"},
		{"float sum", 0.1 + 0.2, "0.3"},
		{"third", 1.0 / 3, "0.33333333333333"},
		{"two thirds", 2.0 / 3, "0.66666666666667"},
		{"whole float", 100.0, "100"},
		{"negative float", -2.5, "-2.5"},
		{"large", 1e13, "10000000000000"},
		{"exponent", 1e14, "1.0E+14"},
		{"large exponent", 1.5e20, "1.5E+20"},
		{"small", 0.0001, "0.0001"},
		{"small exponent", 0.00001, "1.0E-5"},
		{"zero", 0.0, "0"},
		{"negative zero", math.Copysign(0, -1), "-0"},
		{"nan", math.NaN(), "NAN"},
		{"inf", math.Inf(1), "INF"},
		{"negative inf", math.Inf(-1), "-INF"},
		{"float32", float32(0.1), "0.1"},
		{"string", "x y", "x y"},
		{"slice", []string{"x", "y"}, "x,y"},
		{"nested slice", []any{1, []int{2, 3}}, "1,2,3"},
		{"map", map[string]int{"b": 2, "a": 1}, "1,2"},
		{"scalar", searchparams.Scalar("v"), "v"},
		{"list", searchparams.List{searchparams.Scalar("a"), searchparams.Scalar("b")}, "a,b"},
		{"text marshaler", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
	} {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.out, searchparams.Stringify(test.in))
		})
	}
}
