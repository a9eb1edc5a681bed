package models

import (
	"bytes"
	"encoding/json"
)

// fieldSet names the JSON keys a type decodes itself.
type fieldSet map[string]struct{}

func newFieldSet(names ...string) fieldSet {
	fs := make(fieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// unknownFields returns the members of the JSON object in data whose keys
// are not in known, or nil when there are none.
func unknownFields(data []byte, known fieldSet) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	var extra map[string]json.RawMessage
	for k, v := range fields {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra, nil
}

// withUnknownFields adds extra to the encoded object in known. Keys already
// present in known win.
func withUnknownFields(known []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return known, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

func cloneUnknownFields(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		raw := make(json.RawMessage, len(v))
		copy(raw, v)
		out[k] = raw
	}
	return out
}
