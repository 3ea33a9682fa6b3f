// Package codec converts caller-supplied passwords, salts and option bags
// into the bytes and integers the key derivation needs, and renders derived
// keys as hex.
package codec

import (
	"reflect"

	"golang.org/x/text/encoding/unicode"

	"github.com/TheMichaelB/scryptbridge/internal/models"
)

// Coerce returns the raw bytes denoted by in. Text is encoded as UTF-8 with
// ill-formed sequences replaced by U+FFFD. ByteList values keep their low
// 8 bits, so 256 becomes 0 and -1 becomes 255.
func Coerce(in models.RawInput) ([]byte, error) {
	switch in.Kind() {
	case models.InputText:
		s, _ := in.TextValue()
		b, err := unicode.UTF8.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, &models.Error{Kind: models.ErrCodeEncoding, Message: "encode text as UTF-8", Err: err}
		}
		if b == nil {
			b = []byte{}
		}
		return b, nil

	case models.InputByteList:
		values, _ := in.ByteValues()
		out := make([]byte, len(values))
		for i, v := range values {
			out[i] = byte(v)
		}
		return out, nil
	}

	return nil, models.NewEncodingError("unsupported input shape")
}

// ParseRawInput converts a loosely typed value into a RawInput. Strings
// become Text. Slices and arrays become ByteList, each element converted
// like an option value; elements that are not integer-like count as 0.
// Every other shape fails with an EncodingError.
func ParseRawInput(v interface{}) (models.RawInput, error) {
	switch val := v.(type) {
	case models.RawInput:
		if val.Kind() == models.InputUnknown {
			return models.RawInput{}, models.NewEncodingError("unsupported input shape")
		}
		return val, nil
	case string:
		return models.Text(val), nil
	case []byte:
		values := make([]int64, len(val))
		for i, b := range val {
			values[i] = int64(b)
		}
		return models.ByteList(values), nil
	case nil:
		return models.RawInput{}, models.NewEncodingError("unsupported input shape")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return models.RawInput{}, models.NewEncodingError("unsupported input shape")
	}

	values := make([]int64, rv.Len())
	for i := range values {
		n, _ := looseInt(rv.Index(i).Interface())
		values[i] = int64(n)
	}
	return models.ByteList(values), nil
}
