package searchparams_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/ConradIrwin/searchparams-go"
)

func TestMarshal(t *testing.T) {
	str := "a"

	for _, test := range []struct {
		name string
		in   any
		out  string
	}{
		{
			name: "map",
			in: map[string]any{
				"a": 1,
				"b": 2,
			},
			out: "a=1&b=2",
		},
		{
			name: "mixed",
			in: map[string]any{
				"a": []int{1, 2, 3},
				"b": "wow there",
			},
			out: "a%5B%5D=1&a%5B%5D=2&a%5B%5D=3&b=wow+there",
		},
		{
			name: "iface",
			in: struct {
				A any
				B *string
				C *string
			}{
				A: any("wow"),
				B: &str,
			},
			out: "A=wow&B=a&C=",
		},
		{
			name: "struct",
			in: struct {
				A int  `query:"a"`
				B bool `query:"b,omitempty"`
				c string
				D []int `query:"-"`
				E bool  `json:",omitempty"`
				F []byte
				G struct {
					H string
				}
			}{
				A: 1,
				B: false,
				c: "hi",
				D: []int{1},
				E: true,
				F: []byte("xyz"),
			},
			out: "a=1&E=1&F=xyz&G%5BH%5D=",
		},
		{
			name: "int keys",
			in:   map[int]string{10: "x", 2: "y"},
			out:  "2=y&10=x",
		},
		{
			name: "ordered map",
			in: searchparams.NewMap(
				searchparams.MapEntry{Key: "z", Value: searchparams.Scalar("1")},
				searchparams.MapEntry{Key: "a", Value: searchparams.List{searchparams.Scalar("2")}},
			),
			out: "z=1&a%5B%5D=2",
		},
		{
			name: "floats",
			in:   map[string]float64{"a": 0.1, "b": 1e15, "c": 100},
			out:  "a=0.1&b=1.0E%2B15&c=100",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			out, err := searchparams.Marshal(test.in)
			if err != nil {
				t.Fatalf("failed to marshal: %v", err)
			}
			if out != test.out {
				t.Fatalf("expected\n%s\ngot\n%s", test.out, out)
			}
		})
	}
}

func TestMarshalListLikeMap(t *testing.T) {
	_, err := searchparams.Marshal(map[int]string{0: "x", 1: "y"})
	var tupleErr *searchparams.InvalidTupleError
	if !errors.As(err, &tupleErr) {
		t.Fatalf("expected InvalidTupleError, got %v", err)
	}
}

type name struct {
	First string `query:"first"`
	Last  string `query:"last"`
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		target   any
		expected any
		wantErr  string
	}{
		{
			name:     "basic string map",
			input:    "name=John&age=30",
			target:   &map[string]string{},
			expected: map[string]string{"name": "John", "age": "30"},
		},
		{
			name:  "struct",
			input: "name=John&age=30",
			target: &struct {
				Name string `query:"name"`
				Age  int    `json:"age"`
			}{},
			expected: struct {
				Name string `query:"name"`
				Age  int    `json:"age"`
			}{Name: "John", Age: 30},
		},
		{
			name:     "nested map",
			input:    "a[b]=1&a[c]=2",
			target:   &map[string]map[string]int{},
			expected: map[string]map[string]int{"a": {"b": 1, "c": 2}},
		},
		{
			name:     "int keys",
			input:    "a[2]=x&a[5]=y&b[0]=z",
			target:   &map[string]map[int]string{},
			expected: map[string]map[int]string{"a": {2: "x", 5: "y"}, "b": {0: "z"}},
		},
		{
			name:     "list",
			input:    "tags[]=a&tags[]=b",
			target:   &struct{ Tags []string }{},
			expected: struct{ Tags []string }{Tags: []string{"a", "b"}},
		},
		{
			name:     "scalar into list",
			input:    "tags=a",
			target:   &struct{ Tags []string }{},
			expected: struct{ Tags []string }{Tags: []string{"a"}},
		},
		{
			name:     "array",
			input:    "a[]=1&a[]=2",
			target:   &map[string][2]int{},
			expected: map[string][2]int{"a": {1, 2}},
		},
		{
			name:   "interface",
			input:  "a[b]=1&c[]=2&d=3",
			target: new(any),
			expected: map[string]any{
				"a": map[string]any{"b": "1"},
				"c": []any{"2"},
				"d": "3",
			},
		},
		{
			name:     "snake case",
			input:    "first_name=Ada&LastName=Lovelace",
			target:   &struct{ FirstName, LastName string }{},
			expected: struct{ FirstName, LastName string }{FirstName: "Ada", LastName: "Lovelace"},
		},
		{
			name:  "bools and pointers",
			input: "on=1&off=&p=3&n[first]=Ada",
			target: &struct {
				On  bool  `query:"on"`
				Off bool  `query:"off"`
				P   *int  `query:"p"`
				N   *name `query:"n"`
			}{},
			expected: struct {
				On  bool  `query:"on"`
				Off bool  `query:"off"`
				P   *int  `query:"p"`
				N   *name `query:"n"`
			}{On: true, P: func() *int { i := 3; return &i }(), N: &name{First: "Ada"}},
		},
		{
			name:     "decoded names",
			input:    "first+name=Ada&last.name=Lovelace",
			target:   &map[string]string{},
			expected: map[string]string{"first_name": "Ada", "last_name": "Lovelace"},
		},
		{
			name:    "invalid int",
			input:   "age=x",
			target:  &struct{ Age int }{},
			wantErr: `age: strconv.ParseInt: parsing "x": invalid syntax`,
		},
		{
			name:    "nested invalid int",
			input:   "a[b]=x",
			target:  &map[string]map[string]int{},
			wantErr: `a[b]: strconv.ParseInt: parsing "x": invalid syntax`,
		},
		{
			name:    "unknown field",
			input:   "x=1",
			target:  &struct{ Y int }{},
			wantErr: "unknown field x",
		},
		{
			name:    "map for value",
			input:   "age[a]=1",
			target:  &struct{ Age int }{},
			wantErr: "age: expected value, got map",
		},
		{
			name:    "value for map",
			input:   "n=1",
			target:  &struct{ N name }{},
			wantErr: "n: expected map, got value",
		},
		{
			name:    "too many elements",
			input:   "a[]=1&a[]=2&a[]=3",
			target:  &map[string][2]int{},
			wantErr: "a: too many elements, limit 2",
		},
		{
			name:    "overflow",
			input:   "a=300",
			target:  &map[string]uint8{},
			wantErr: "a: invalid uint8: 300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := searchparams.Unmarshal(tt.input, tt.target)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("expected error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			actual := reflect.ValueOf(tt.target).Elem().Interface()
			if !reflect.DeepEqual(actual, tt.expected) {
				t.Errorf("got %+v, want %+v", actual, tt.expected)
			}
		})
	}
}

func TestUnmarshalInvalidTarget(t *testing.T) {
	var m map[string]string
	for _, target := range []any{m, nil, (*map[string]string)(nil)} {
		err := searchparams.Unmarshal("a=1", target)
		if err == nil || err.Error() != "invalid target, must be a non-nil pointer" {
			t.Errorf("expected invalid target error, got %v", err)
		}
	}
}

type script struct {
	s string
}

func (s script) MarshalText() ([]byte, error) {
	return []byte(strings.TrimSpace(s.s)), nil
}

func (s *script) UnmarshalText(b []byte) error {
	s.s = string(b) + "\n"
	return nil
}

func TestTextMarshal(t *testing.T) {
	type Test struct {
		Time   time.Time `query:"time"`
		Script script    `query:"script"`
	}

	input := Test{
		Time:   time.Date(2024, time.November, 1, 16, 0, 0, 0, time.UTC),
		Script: script{s: "echo hello\n"},
	}
	out, err := searchparams.Marshal(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "time=2024-11-01T16%3A00%3A00Z&script=echo+hello"
	if out != expected {
		t.Errorf("expected %#v, got %#v", expected, out)
	}

	output := Test{}
	if err := searchparams.Unmarshal(out, &output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(input, output) {
		t.Errorf("got %+v, want %+v", output, input)
	}

	output = Test{}
	err = searchparams.Unmarshal("tyme=2024-11-01T16:00:00Z", &output)
	if err == nil || err.Error() != "unknown field tyme" {
		t.Errorf("expected error message 'unknown field tyme', got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	type record struct {
		Name   string            `query:"name"`
		Tags   []string          `query:"tags"`
		Meta   map[string]string `query:"meta"`
		Person name              `query:"person"`
		Score  float64           `query:"score"`
	}

	input := record{
		Name:   "a & b",
		Tags:   []string{"x", "y"},
		Meta:   map[string]string{"k": "v", "x y": "]["},
		Person: name{First: "Ada", Last: "Lovelace"},
		Score:  2.5,
	}
	out, err := searchparams.Marshal(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := record{}
	if err := searchparams.Unmarshal(out, &output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(input, output) {
		t.Errorf("got %+v, want %+v", output, input)
	}
}
