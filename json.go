package searchparams

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonConfig = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON encodes the map as a JSON object, keeping the key order.
func (m *Map) MarshalJSON() ([]byte, error) {
	stream := jsonConfig.BorrowStream(nil)
	defer jsonConfig.ReturnStream(stream)

	writeJSON(stream, m)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeJSON(stream *jsoniter.Stream, v Value) {
	switch v := v.(type) {
	case *Map:
		stream.WriteObjectStart()
		first := true
		for k, item := range v.All() {
			if !first {
				stream.WriteMore()
			}
			first = false
			stream.WriteObjectField(k)
			writeJSON(stream, item)
		}
		stream.WriteObjectEnd()
	case List:
		stream.WriteArrayStart()
		for i, item := range v {
			if i > 0 {
				stream.WriteMore()
			}
			writeJSON(stream, item)
		}
		stream.WriteArrayEnd()
	case Scalar:
		stream.WriteString(string(v))
	default:
		stream.WriteNil()
	}
}

// FromJSON reads a JSON document into a [Value], keeping the order of object
// keys. Scalars are converted as by [Stringify]: true becomes "1", false and
// null become "", and numbers use their shortest query form.
func FromJSON(data []byte) (Value, error) {
	iter := jsonConfig.BorrowIterator(data)
	defer jsonConfig.ReturnIterator(iter)

	v := readJSON(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, errors.Wrap(iter.Error, "invalid JSON")
	}
	// Only the end of input may follow the value.
	if iter.WhatIsNext() != jsoniter.InvalidValue || iter.Error != io.EOF {
		return nil, errors.New("invalid JSON: unexpected data after top-level value")
	}
	return v, nil
}

func readJSON(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		m := &Map{}
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
			m.Set(field, readJSON(iter))
			return readOK(iter)
		})
		return Normalize(m)
	case jsoniter.ArrayValue:
		l := List{}
		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			l = append(l, readJSON(iter))
			return readOK(iter)
		})
		return l
	case jsoniter.StringValue:
		return Scalar(iter.ReadString())
	case jsoniter.NumberValue:
		return Scalar(jsonNumber(iter.ReadNumber()))
	case jsoniter.BoolValue:
		return Scalar(Stringify(iter.ReadBool()))
	case jsoniter.NilValue:
		iter.ReadNil()
		return Scalar("")
	default:
		iter.ReportError("FromJSON", "unexpected value")
		return nil
	}
}

// readOK reports whether reading can go on. A number at the very end of the
// input leaves io.EOF behind; the enclosing array or object then reports the
// missing bracket itself.
func readOK(iter *jsoniter.Iterator) bool {
	return iter.Error == nil || iter.Error == io.EOF
}

// jsonNumber formats integers exactly and everything else as a float.
func jsonNumber(n json.Number) string {
	s := string(n)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return formatFloat(f, 64)
}
