package searchparams

import (
	"encoding"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Stringify converts v to the string used for it in a query.
//
//	true       -> "1"
//	false, nil -> ""
//	42         -> "42"
//	0.1 + 0.2  -> "0.3"
//	1e20       -> "1.0E+20"
//	[x y]      -> "x,y"
//
// Floats are rounded to 14 significant digits, and use exponent notation when
// the exponent is below -4 or above 14. Lists and maps are joined with ",".
// Values implementing [encoding.TextMarshaler] use their text form.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case Scalar:
		return string(v)
	case List:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case *Map:
		parts := make([]string, 0, v.Len())
		for _, item := range v.All() {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ",")
	}
	return stringifyValue(reflect.ValueOf(v))
}

func stringifyValue(val reflect.Value) string {
	if !val.IsValid() {
		return ""
	}
	if val.CanInterface() {
		if m, ok := val.Interface().(encoding.TextMarshaler); ok {
			if text, err := m.MarshalText(); err == nil {
				return string(text)
			}
		}
	}

	if s, ok := scalarOf(val); ok {
		return string(s)
	}

	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return ""
		}
		return stringifyValue(val.Elem())
	case reflect.Slice, reflect.Array:
		if val.Kind() == reflect.Slice && val.IsNil() {
			return ""
		}
		parts := make([]string, val.Len())
		for i := range val.Len() {
			parts[i] = stringifyValue(val.Index(i))
		}
		return strings.Join(parts, ",")
	case reflect.Map:
		keys := sortedMapKeys(val)
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = stringifyValue(val.MapIndex(key))
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// scalarOf converts basic kinds to their query form.
func scalarOf(val reflect.Value) (Scalar, bool) {
	switch val.Kind() {
	case reflect.String:
		return Scalar(val.String()), true
	case reflect.Bool:
		if val.Bool() {
			return "1", true
		}
		return "", true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar(strconv.FormatInt(val.Int(), 10)), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Scalar(strconv.FormatUint(val.Uint(), 10)), true
	case reflect.Float32:
		return Scalar(formatFloat(val.Float(), 32)), true
	case reflect.Float64:
		return Scalar(formatFloat(val.Float(), 64)), true
	}
	return "", false
}

const floatPrecision = 14

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case f == 0:
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	s := strconv.FormatFloat(f, 'e', -1, bitSize)
	mantissa, exp, _ := strings.Cut(s, "e")
	if len(mantissa) > floatPrecision+1 {
		s = strconv.FormatFloat(f, 'e', floatPrecision-1, 64)
		mantissa, exp, _ = strings.Cut(s, "e")
	}
	digits := strings.TrimRight(strings.Replace(mantissa, ".", "", 1), "0")
	if digits == "" {
		digits = "0"
	}
	e, _ := strconv.Atoi(exp)
	decpt := e + 1

	var b strings.Builder
	b.WriteString(sign)
	switch {
	case decpt < -3 || decpt > floatPrecision:
		b.WriteByte(digits[0])
		b.WriteByte('.')
		if len(digits) == 1 {
			b.WriteByte('0')
		} else {
			b.WriteString(digits[1:])
		}
		b.WriteByte('E')
		if e < 0 {
			b.WriteByte('-')
			e = -e
		} else {
			b.WriteByte('+')
		}
		b.WriteString(strconv.Itoa(e))
	case decpt <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -decpt))
		b.WriteString(digits)
	case len(digits) <= decpt:
		b.WriteString(digits)
		b.WriteString(strings.Repeat("0", decpt-len(digits)))
	default:
		b.WriteString(digits[:decpt])
		b.WriteByte('.')
		b.WriteString(digits[decpt:])
	}
	return b.String()
}
