package wiki

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// Response is a decoded JSON envelope returned by a successful call.
// Accessors take a key path ("query", "tokens", "csrftoken"); array elements
// are addressed as "[0]". A path that does not resolve yields a KindParse
// *Error naming the path and carrying the nearest enclosing fragment.
type Response struct {
	raw []byte
	op  string
}

func newResponse(raw []byte, op string) *Response {
	return &Response{raw: raw, op: op}
}

// NewResponse wraps a JSON document, e.g. a record yielded by a Query
func NewResponse(raw []byte) (*Response, error) {
	if !json.Valid(raw) {
		return nil, &Error{Kind: KindParse, Err: errors.New("invalid JSON"), Body: raw}
	}
	return newResponse(raw, ""), nil
}

// Bytes returns the raw JSON body
func (r *Response) Bytes() []byte {
	return r.raw
}

func (r *Response) String() string {
	return string(r.raw)
}

// Has reports whether path resolves to a value (null included)
func (r *Response) Has(path ...string) bool {
	_, _, _, err := jsonparser.Get(r.raw, path...)
	return err == nil
}

// Lookup returns the raw value at path and its JSON type.
// String values are returned without quotes and still escaped.
func (r *Response) Lookup(path ...string) ([]byte, jsonparser.ValueType, error) {
	value, dataType, _, err := jsonparser.Get(r.raw, path...)
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, jsonparser.NotExist, r.parseError(path, "missing field")
		}
		return nil, jsonparser.NotExist, r.parseError(path, err.Error())
	}
	return value, dataType, nil
}

// GetString returns the unescaped string at path
func (r *Response) GetString(path ...string) (string, error) {
	value, dataType, err := r.Lookup(path...)
	if err != nil {
		return "", err
	}
	if dataType != jsonparser.String {
		return "", r.typeError(path, "string", dataType, value)
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return "", r.parseError(path, err.Error())
	}
	return s, nil
}

// GetInt returns the integer at path
func (r *Response) GetInt(path ...string) (int64, error) {
	value, dataType, err := r.Lookup(path...)
	if err != nil {
		return 0, err
	}
	if dataType != jsonparser.Number {
		return 0, r.typeError(path, "number", dataType, value)
	}
	n, err := jsonparser.ParseInt(value)
	if err != nil {
		return 0, r.parseError(path, err.Error())
	}
	return n, nil
}

// GetArray returns the elements of the array at path, in document order
func (r *Response) GetArray(path ...string) ([]json.RawMessage, error) {
	value, dataType, err := r.Lookup(path...)
	if err != nil {
		return nil, err
	}
	if dataType != jsonparser.Array {
		return nil, r.typeError(path, "array", dataType, value)
	}

	var (
		records []json.RawMessage
		walkErr error
	)
	_, err = jsonparser.ArrayEach(value, func(v []byte, dt jsonparser.ValueType, _ int, err error) {
		if err != nil {
			walkErr = err
			return
		}
		records = append(records, rawValue(v, dt))
	})
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return nil, r.parseError(path, err.Error())
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// EachString walks the flat object at path, passing every member as a string.
// Numbers and booleans are passed in their JSON text form; nested values are a parse error.
func (r *Response) EachString(fn func(key, value string) error, path ...string) error {
	value, dataType, err := r.Lookup(path...)
	if err != nil {
		return err
	}
	if dataType != jsonparser.Object {
		return r.typeError(path, "object", dataType, value)
	}

	return jsonparser.ObjectEach(value, func(k, v []byte, dt jsonparser.ValueType, _ int) error {
		key, err := jsonparser.ParseString(k)
		if err != nil {
			return r.parseError(path, err.Error())
		}

		var s string
		switch dt {
		case jsonparser.String:
			if s, err = jsonparser.ParseString(v); err != nil {
				return r.parseError(append(path, key), err.Error())
			}
		case jsonparser.Number, jsonparser.Boolean:
			s = string(v)
		case jsonparser.Null:
		default:
			return r.typeError(append(path, key), "flat value", dt, v)
		}
		return fn(key, s)
	})
}

// Decode unmarshals the value at path into v
func (r *Response) Decode(v any, path ...string) error {
	value, dataType, err := r.Lookup(path...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(rawValue(value, dataType), v); err != nil {
		return r.parseError(path, err.Error())
	}
	return nil
}

// DecodeRecord unmarshals one record yielded by a Query into T
func DecodeRecord[T any](record json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(record, &v); err != nil {
		return v, &Error{Kind: KindParse, Err: fmt.Errorf("decode %T: %w", v, err), Body: record}
	}
	return v, nil
}

func (r *Response) parseError(path []string, msg string) *Error {
	return &Error{
		Kind: KindParse,
		Op:   r.op,
		Path: strings.Join(path, "."),
		Err:  errors.New(msg),
		Body: r.nearest(path),
	}
}

func (r *Response) typeError(path []string, want string, got jsonparser.ValueType, value []byte) *Error {
	return &Error{
		Kind: KindParse,
		Op:   r.op,
		Path: strings.Join(path, "."),
		Err:  fmt.Errorf("expected %s, got %s", want, got),
		Body: rawValue(value, got),
	}
}

// nearest returns the deepest fragment along path that exists
func (r *Response) nearest(path []string) []byte {
	for i := len(path) - 1; i > 0; i-- {
		if v, dt, _, err := jsonparser.Get(r.raw, path[:i]...); err == nil {
			return rawValue(v, dt)
		}
	}
	return r.raw
}

// rawValue restores a standalone JSON document from a jsonparser value
func rawValue(v []byte, dt jsonparser.ValueType) json.RawMessage {
	if dt == jsonparser.String {
		out := make([]byte, 0, len(v)+2)
		out = append(out, '"')
		out = append(out, v...)
		return append(out, '"')
	}
	return append(json.RawMessage(nil), v...)
}
