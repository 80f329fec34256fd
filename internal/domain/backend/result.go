package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Result is what a successful call returns: a parsed JSON value when the body was JSON,
// otherwise the raw body text unchanged.
type Result struct {
	Value any    // *Object, []any, string, json.Number, bool or nil
	Raw   string // response body as received
	JSON  bool   // false when the body did not parse and Value is Raw

	Status int // HTTP status, set by the client
}

// ParseResult decodes a response body, falling back to the raw text.
// POST: Result.JSON reports whether the body parsed
func ParseResult(body []byte) Result {
	v, err := DecodeJSON(body)
	if err != nil {
		return Result{Value: string(body), Raw: string(body)}
	}
	return Result{Value: v, Raw: string(body), JSON: true}
}

// Array returns the elements when the value is a JSON array.
func (r Result) Array() ([]any, bool) {
	arr, ok := r.Value.([]any)
	return arr, ok
}

// Message returns the value as a plain string when it is one (raw text or a JSON string).
func (r Result) Message() (string, bool) {
	s, ok := r.Value.(string)
	return s, ok
}

// Object is a JSON object that remembers key order.
// Table columns follow the order the backend emits, so map iteration is not enough.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores a value. A repeated key keeps its first position and takes the last value.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value for key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON encodes the object with its original key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errTrailingData = errors.New("unexpected data after top-level JSON value")

// DecodeJSON parses a complete JSON document, keeping object key order and number text.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", keyTok)
			}
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}
