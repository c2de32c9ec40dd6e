package searchparams

import (
	"cmp"
	"encoding"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ValueOf converts a Go value to a [Value]: maps and structs become a
// [*Map], slices and arrays a [List], everything else a [Scalar] (see
// [Stringify]). Maps and structs whose keys are exactly 0..n-1 become a
// [List].
func ValueOf(v any) (Value, error) {
	return marshalValue(reflect.ValueOf(v))
}

func marshalValue(val reflect.Value) (Value, error) {
	if !val.IsValid() {
		return Scalar(""), nil
	}

	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return Scalar(""), nil
		}
	}

	if val.CanInterface() {
		switch v := val.Interface().(type) {
		case Value:
			return Normalize(v), nil
		case encoding.TextMarshaler:
			text, err := v.MarshalText()
			if err != nil {
				return nil, err
			}
			return Scalar(text), nil
		}
	}

	if s, ok := scalarOf(val); ok {
		return s, nil
	}

	switch val.Kind() {
	case reflect.Pointer, reflect.Interface:
		return marshalValue(val.Elem())
	case reflect.Slice, reflect.Array:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			if val.Kind() == reflect.Slice {
				return Scalar(val.Bytes()), nil
			}
			b := make([]byte, val.Len())
			reflect.Copy(reflect.ValueOf(b), val)
			return Scalar(b), nil
		}
		l := make(List, 0, val.Len())
		for i := range val.Len() {
			item, err := marshalValue(val.Index(i))
			if err != nil {
				return nil, err
			}
			l = append(l, item)
		}
		return l, nil
	case reflect.Map:
		m := &Map{}
		for _, key := range sortedMapKeys(val) {
			k, err := marshalKey(key)
			if err != nil {
				return nil, err
			}
			item, err := marshalValue(val.MapIndex(key))
			if err != nil {
				return nil, err
			}
			m.Set(k, item)
		}
		return Normalize(m), nil
	case reflect.Struct:
		m := &Map{}
		for i := range val.Type().NumField() {
			field := val.Type().Field(i)
			if !field.IsExported() {
				continue
			}
			name, options := fieldName(field)
			if name == "-" {
				continue
			}
			fv := val.Field(i)
			if strings.Contains(options, "omitempty") && (!fv.IsValid() || fv.IsZero()) {
				continue
			}
			item, err := marshalValue(fv)
			if err != nil {
				return nil, err
			}
			m.Set(name, item)
		}
		return Normalize(m), nil
	}
	return nil, &UnsupportedTypeError{Type: val.Type()}
}

func marshalKey(key reflect.Value) (string, error) {
	if m, ok := key.Interface().(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		return string(text), err
	}
	switch key.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !key.IsNil() {
			return marshalKey(key.Elem())
		}
	default:
		if s, ok := scalarOf(key); ok {
			return string(s), nil
		}
	}
	return "", errors.Errorf("unsupported map key type: %s", key.Type())
}

// sortedMapKeys returns the keys of a Go map in a stable order: numbers
// numerically, everything else by its string form.
func sortedMapKeys(val reflect.Value) []reflect.Value {
	keys := val.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		for a.Kind() == reflect.Interface && !a.IsNil() {
			a = a.Elem()
		}
		for b.Kind() == reflect.Interface && !b.IsNil() {
			b = b.Elem()
		}
		switch {
		case a.CanInt() && b.CanInt():
			return cmp.Compare(a.Int(), b.Int())
		case a.CanUint() && b.CanUint():
			return cmp.Compare(a.Uint(), b.Uint())
		case a.CanFloat() && b.CanFloat():
			return cmp.Compare(a.Float(), b.Float())
		case a.Kind() == reflect.String && b.Kind() == reflect.String:
			return strings.Compare(a.String(), b.String())
		}
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
	return keys
}

// fieldName returns the query name of a struct field, looking first at the
// `query` tag, then at the `json` tag.
func fieldName(field reflect.StructField) (string, string) {
	tag, ok := field.Tag.Lookup("query")
	if !ok {
		tag, _ = field.Tag.Lookup("json")
	}
	if tag == "-" {
		return "-", ""
	}
	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, options
}

// Marshal converts a go value to a query string.
//
// Maps and structs become bracketed keys, lists repeat their key with an
// empty subscript:
//
//	Marshal(map[string]any{"a": []int{1, 2}, "b": map[string]string{"c": "d"}})
//	// a%5B%5D=1&a%5B%5D=2&b%5Bc%5D=d
//
// Go maps are encoded in sorted key order; use a [*Map] to control the order.
// Struct fields are named by their `query` tag, then their `json` tag, and
// finally the field name; the omitempty option skips zero values.
// Marshal accepts anything [New] does.
func Marshal(v any, opts ...Option) (string, error) {
	return New(v, opts...).Encode()
}

// Unmarshal decodes the query string into v, which should be a non-nil
// pointer to a struct, map, slice, array, interface or scalar.
//
// For struct fields the name is looked up in a `query:"name"` tag, then in a
// `json:"name"` tag; untagged fields match either their name or its
// snake_case form. Unknown keys are an error.
//
// When unmarshalling into an interface, maps become map[string]any, lists
// become []any and scalars become string. A scalar assigned to a slice
// becomes its single element.
func Unmarshal(query string, v any, opts ...Option) error {
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return errors.New("invalid target, must be a non-nil pointer")
	}
	return unmarshalValue("", Decode(query, opts...), value.Elem())
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "[" + key + "]"
}

func wrap(err error, path string) error {
	if path == "" {
		return err
	}
	return errors.Wrap(err, path)
}

func kindOf(v Value) string {
	switch v.(type) {
	case *Map:
		return "map"
	case List:
		return "list"
	default:
		return "value"
	}
}

func unmarshalValue(path string, src Value, v reflect.Value) error {
	if !v.CanSet() {
		panic(fmt.Errorf("cannot set value of type: %v", v.Type()))
	}

	if tu, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
		s, ok := src.(Scalar)
		if !ok {
			return wrap(errors.Errorf("expected value, got %s", kindOf(src)), path)
		}
		return wrap(tu.UnmarshalText([]byte(s)), path)
	}

	switch v.Kind() {
	case reflect.Struct:
		return unmarshalStruct(path, src, v)
	case reflect.Map:
		return unmarshalMap(path, src, v)
	case reflect.Interface:
		if v.NumMethod() != 0 {
			return wrap(errors.Errorf("unsupported type: %v", v.Type()), path)
		}
		v.Set(reflect.ValueOf(toInterface(src)))
		return nil
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return unmarshalValue(path, src, v.Elem())
	case reflect.Slice:
		return unmarshalSlice(path, src, v)
	case reflect.Array:
		return unmarshalArray(path, src, v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.Bool,
		reflect.String:
		s, ok := src.(Scalar)
		if !ok {
			return wrap(errors.Errorf("expected value, got %s", kindOf(src)), path)
		}
		return wrap(setBasicValue(string(s), v), path)
	}

	return wrap(errors.Errorf("unsupported type: %v", v.Type()), path)
}

func toInterface(src Value) any {
	switch src := src.(type) {
	case *Map:
		m := make(map[string]any, src.Len())
		for k, item := range src.All() {
			m[k] = toInterface(item)
		}
		return m
	case List:
		l := make([]any, len(src))
		for i, item := range src {
			l[i] = toInterface(item)
		}
		return l
	case Scalar:
		return string(src)
	}
	return nil
}

// items returns the key value pairs of a map or list.
func items(src Value) (iter.Seq2[string, Value], bool) {
	switch src := src.(type) {
	case *Map:
		return src.All(), true
	case List:
		return func(yield func(string, Value) bool) {
			for i, item := range src {
				if !yield(strconv.Itoa(i), item) {
					return
				}
			}
		}, true
	}
	return nil, false
}

func unmarshalStruct(path string, src Value, v reflect.Value) error {
	all, ok := items(src)
	if !ok {
		return wrap(errors.Errorf("expected map, got %s", kindOf(src)), path)
	}

	t := v.Type()
	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		fieldType := t.Field(i)
		if fieldType.PkgPath != "" {
			continue
		}
		_, hasQuery := fieldType.Tag.Lookup("query")
		_, hasJSON := fieldType.Tag.Lookup("json")
		name, _ := fieldName(fieldType)
		if name == "-" {
			continue
		}
		fieldMap[name] = v.Field(i)
		if !hasQuery && !hasJSON {
			fieldMap[toSnakeCase(fieldType.Name)] = v.Field(i)
		}
	}

	for key, item := range all {
		field, ok := fieldMap[key]
		if !ok {
			return wrap(errors.Errorf("unknown field %s", key), path)
		}
		if err := unmarshalValue(childPath(path, key), item, field); err != nil {
			return err
		}
	}
	return nil
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			result.WriteRune('_')
		}
		result.WriteRune(unicode.ToLower(r))
	}
	return result.String()
}

func unmarshalMap(path string, src Value, v reflect.Value) error {
	all, ok := items(src)
	if !ok {
		return wrap(errors.Errorf("expected map, got %s", kindOf(src)), path)
	}
	keyType := v.Type().Key()
	valueType := v.Type().Elem()

	if v.IsNil() {
		v.Set(reflect.MakeMap(v.Type()))
	}
	for k, item := range all {
		key := reflect.New(keyType).Elem()
		if err := setBasicValue(k, key); err != nil {
			return wrap(errors.Wrapf(err, "invalid key %s", k), path)
		}
		value := reflect.New(valueType).Elem()
		if err := unmarshalValue(childPath(path, k), item, value); err != nil {
			return err
		}
		v.SetMapIndex(key, value)
	}
	return nil
}

func unmarshalSlice(path string, src Value, v reflect.Value) error {
	elemType := v.Type().Elem()

	if s, ok := src.(Scalar); ok {
		if elemType.Kind() == reflect.Uint8 {
			v.SetBytes([]byte(s))
			return nil
		}
		elem := reflect.New(elemType).Elem()
		if err := unmarshalValue(childPath(path, ""), s, elem); err != nil {
			return err
		}
		v.Set(reflect.Append(v, elem))
		return nil
	}

	all, _ := items(src)
	for k, item := range all {
		elem := reflect.New(elemType).Elem()
		if err := unmarshalValue(childPath(path, subscriptOf(src, k)), item, elem); err != nil {
			return err
		}
		v.Set(reflect.Append(v, elem))
	}
	return nil
}

func unmarshalArray(path string, src Value, v reflect.Value) error {
	all, ok := items(src)
	if !ok {
		return wrap(errors.Errorf("expected list, got %s", kindOf(src)), path)
	}

	i := 0
	for k, item := range all {
		if v.Len() <= i {
			return wrap(errors.Errorf("too many elements, limit %d", v.Len()), path)
		}
		if err := unmarshalValue(childPath(path, subscriptOf(src, k)), item, v.Index(i)); err != nil {
			return err
		}
		i += 1
	}
	return nil
}

// subscriptOf returns the subscript used for k in error paths: list items
// are written key[] as in the query itself.
func subscriptOf(src Value, k string) string {
	if _, ok := src.(List); ok {
		return ""
	}
	return k
}

func setBasicValue(s string, v reflect.Value) error {
	if v.CanAddr() {
		if tu, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return tu.UnmarshalText([]byte(s))
		}
	}
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		if v.OverflowInt(i) {
			return errors.Errorf("invalid %s: %v", v.Type(), i)
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		if v.OverflowUint(u) {
			return errors.Errorf("invalid %s: %v", v.Type(), u)
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		if v.OverflowFloat(f) {
			return errors.Errorf("invalid %s: %v", v.Type(), f)
		}
		v.SetFloat(f)
	case reflect.Complex64, reflect.Complex128:
		c, err := strconv.ParseComplex(s, 128)
		if err != nil {
			return err
		}
		if v.OverflowComplex(c) {
			return errors.Errorf("invalid %s: %v", v.Type(), c)
		}
		v.SetComplex(c)
	case reflect.Bool:
		// "" and "1" are how false and true are written by Marshal.
		if s == "" {
			v.SetBool(false)
			return nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	default:
		return errors.Errorf("unsupported type %s", v.Type())
	}
	return nil
}
