// Package decode turns model output into typed values. Decoding is strict:
// the text must be exactly one JSON value matching the target type, with
// every non-omitempty field present and no unknown fields.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rohankatakam/autogippity/internal/errors"
)

var resolvedCache sync.Map // reflect.Type → cached

// cached holds the resolved schema of a type; rs is nil when no schema can
// be inferred and decoding relies on encoding/json alone
type cached struct {
	rs *jsonschema.Resolved
}

// Schema returns the JSON Schema inferred for T. Slices and maps also accept
// null, which is how encoding/json writes their nil values.
func Schema[T any]() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityHigh,
			fmt.Sprintf("cannot infer schema for %s", typeName[T]()))
	}
	allowNil(s)
	return s, nil
}

// allowNil adds "null" to every slice and map schema below s
func allowNil(s *jsonschema.Schema) {
	if s == nil {
		return
	}
	if isSlice(s) || isMap(s) {
		s.Types = []string{"null", s.Type}
		s.Type = ""
	}
	for _, p := range s.Properties {
		allowNil(p)
	}
	allowNil(s.Items)
	allowNil(s.AdditionalProperties)
}

// Go arrays carry fixed bounds; slices do not
func isSlice(s *jsonschema.Schema) bool {
	return s.Type == "array" && s.MinItems == nil && s.MaxItems == nil
}

// struct schemas forbid additional properties with a false schema
func isMap(s *jsonschema.Schema) bool {
	return s.Type == "object" && s.Properties == nil &&
		s.AdditionalProperties != nil && s.AdditionalProperties.Not == nil
}

func resolved[T any]() (*jsonschema.Resolved, error) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if c, ok := resolvedCache.Load(key); ok {
		return c.(cached).rs, nil
	}

	var rs *jsonschema.Resolved
	s, err := Schema[T]()
	if err == nil {
		rs, err = s.Resolve(nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityHigh,
				fmt.Sprintf("cannot resolve schema for %s", typeName[T]()))
		}
	} else {
		slog.Default().With("component", "decode").
			Debug("no schema for type, decoding without validation", "type", typeName[T](), "error", err)
	}

	actual, _ := resolvedCache.LoadOrStore(key, cached{rs: rs})
	return actual.(cached).rs, nil
}

// Decode parses text as exactly one JSON value and decodes it into T.
// On failure the zero T and a DecodeError are returned. Types that have no
// JSON Schema (e.g. maps with integer keys) skip schema validation; unknown
// fields and trailing data are still rejected.
func Decode[T any](text string) (T, error) {
	var zero T

	rs, err := resolved[T]()
	if err != nil {
		return zero, err
	}

	instance, err := parseSingle(text)
	if err != nil {
		return zero, errors.DecodeErrorf(err, "response is not a single JSON value")
	}

	if rs != nil {
		if err := rs.Validate(instance); err != nil {
			return zero, errors.DecodeErrorf(err, "response does not match %s", typeName[T]())
		}
	}

	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return zero, errors.DecodeErrorf(err, "cannot decode response into %s", typeName[T]())
	}
	return out, nil
}

func parseSingle(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
