package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
)

var (
	// ErrUnexpectedEnd is returned when the input stops in the middle of a value.
	ErrUnexpectedEnd = errors.New("unexpected end of JSON input")
	// ErrTrailingData is returned when anything follows the top-level value.
	ErrTrailingData = errors.New("invalid character after top-level value")
)

// DecodeReader parses exactly one JSON document from r.
func DecodeReader(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, err
	}
	return Decode(data)
}

// Decode parses exactly one JSON document. The input is checked against
// the JSON grammar before it is walked, so any syntax error is reported
// rather than repaired.
func Decode(data []byte) (Value, error) {
	if err := checkSyntax(data); err != nil {
		return Value{}, err
	}

	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := next(dec)
	if err != nil {
		return Value{}, err
	}
	v, err := decodeValue(dec, tok)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, err
		}
		return Value{}, ErrTrailingData
	}
	return v, nil
}

// checkSyntax reports whether data is exactly one well-formed JSON value.
// The token stream below does not enforce separators or literal spelling.
func checkSyntax(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEnd
		}
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

// next reads one token; running out of input is always an error here
// because callers only ask for a token when a value is expected.
func next(dec *gojson.Decoder) (gojson.Token, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, ErrUnexpectedEnd
	}
	return tok, err
}

func decodeValue(dec *gojson.Decoder, tok gojson.Token) (Value, error) {
	switch t := tok.(type) {
	case gojson.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
	case string:
		return String(t), nil
	case gojson.Number:
		return Number(string(t)), nil
	case float64:
		return Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("unexpected token %v (%T)", tok, tok)
}

func decodeObject(dec *gojson.Decoder) (Value, error) {
	var members []Member
	for {
		tok, err := next(dec)
		if err != nil {
			return Value{}, err
		}
		if d, ok := tok.(gojson.Delim); ok && d == '}' {
			return Object(members...), nil
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key must be a string, got %v", tok)
		}

		tok, err = next(dec)
		if err != nil {
			return Value{}, err
		}
		val, err := decodeValue(dec, tok)
		if err != nil {
			return Value{}, fmt.Errorf("decoding member %q: %w", key, err)
		}
		members = append(members, Member{Key: key, Value: val})
	}
}

func decodeArray(dec *gojson.Decoder) (Value, error) {
	var items []Value
	for {
		tok, err := next(dec)
		if err != nil {
			return Value{}, err
		}
		if d, ok := tok.(gojson.Delim); ok && d == ']' {
			return Array(items...), nil
		}
		val, err := decodeValue(dec, tok)
		if err != nil {
			return Value{}, fmt.Errorf("decoding item %d: %w", len(items), err)
		}
		items = append(items, val)
	}
}
