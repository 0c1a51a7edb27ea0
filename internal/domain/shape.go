package domain

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Extra holds the JSON object members a type does not declare, keyed by
// member name. Legacy fields written by older releases and fields written by
// newer ones both end up here, so a read/write cycle never drops them.
type Extra map[string]json.RawMessage

// Has reports whether the member is present.
func (x Extra) Has(name string) bool {
	_, ok := x[name]
	return ok
}

// Delete removes the member and reports whether it was present.
func (x Extra) Delete(name string) bool {
	if _, ok := x[name]; !ok {
		return false
	}
	delete(x, name)
	return true
}

// Decode unmarshals the member into v. It returns false when the member is
// absent.
func (x Extra) Decode(name string, v any) (bool, error) {
	raw, ok := x[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// DecodeObject is Decode restricted to members holding a JSON object; any
// other member kind is treated as absent.
func (x Extra) DecodeObject(name string, v any) (bool, error) {
	raw, ok := x[name]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// IsNumber reports whether the member is present and holds a JSON number.
func (x Extra) IsNumber(name string) bool {
	raw, ok := x[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false
	}
	var n float64
	return json.Unmarshal(raw, &n) == nil
}

// Set stores v under name, allocating the map when needed.
func (x *Extra) Set(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if *x == nil {
		*x = Extra{}
	}
	(*x)[name] = raw
	return nil
}

// decodeObject unmarshals data into v (a pointer to a struct without custom
// JSON methods) and returns the members v does not declare.
func decodeObject(data []byte, v any) (Extra, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for _, name := range jsonNames(reflect.TypeOf(v).Elem()) {
		delete(members, name)
	}
	if len(members) == 0 {
		return nil, nil
	}
	return Extra(members), nil
}

// encodeObject marshals v and merges in the extra members. Declared members
// win over extras of the same name.
func encodeObject(v any, extra Extra) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := members[name]; !ok {
			members[name] = raw
		}
	}
	return json.Marshal(members)
}

func jsonNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}

func ptr[T any](v T) *T {
	return &v
}
