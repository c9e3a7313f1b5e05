package intx

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Result is a decoded JSON response. It keeps the raw document so object
// keys can be walked in the order the server sent them.
type Result struct {
	raw  []byte
	root gjson.Result
}

// ParseResult validates body as JSON. path only labels the error.
func ParseResult(path string, body []byte) (Result, error) {
	if !gjson.ValidBytes(body) {
		return Result{}, &DecodeError{Path: path, Body: string(body)}
	}
	return Result{raw: body, root: gjson.ParseBytes(body)}, nil
}

// Raw returns the response body exactly as received.
func (r Result) Raw() []byte {
	return r.raw
}

// JSON returns the parsed document.
func (r Result) JSON() gjson.Result {
	return r.root
}

// Records returns the elements of the list found at key. An empty key means
// the document itself must be a list. A missing or null list yields no
// records.
func (r Result) Records(key string) ([]gjson.Result, error) {
	list := r.root
	if key != "" {
		if !r.root.IsObject() {
			return nil, fmt.Errorf("expected an object with %q, got %s", key, describe(r.root))
		}
		list = r.root.Get(gjson.Escape(key))
		if !list.Exists() || list.Type == gjson.Null {
			return nil, nil
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("expected a list, got %s", describe(list))
	}
	return list.Array(), nil
}

// Object returns the document when it is a single JSON object.
func (r Result) Object() (gjson.Result, error) {
	if !r.root.IsObject() {
		return gjson.Result{}, fmt.Errorf("expected an object, got %s", describe(r.root))
	}
	return r.root, nil
}

func describe(v gjson.Result) string {
	switch {
	case !v.Exists():
		return "nothing"
	case v.IsArray():
		return "a list"
	case v.IsObject():
		return "an object"
	default:
		return v.Type.String()
	}
}
