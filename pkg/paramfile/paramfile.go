// Package paramfile reads parameter files into form construction input and
// writes collected values back out.
//
// A file is a YAML or JSON (comments allowed) mapping. Nested mappings become
// groups, sequences of mappings become arrays of records and every other
// value is typed from its content. A mapping holding exactly the keys "type"
// and "value" declares the type of its value explicitly:
//
//	timeout: {type: duration, value: 1.5}
package paramfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
	"github.com/goliatone/go-paramform/pkg/paramtype"
)

// Load reads the parameter file at path.
func Load(path string) (form.Params, error) {
	raw, err := Read(path)
	if err != nil {
		return nil, err
	}
	return ToParams(raw)
}

// Read decodes the parameter file at path into plain values.
func Read(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("paramfile: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes data. The source name picks the syntax by extension; unknown
// extensions are tried as JSON and then as YAML.
func Parse(data []byte, source string) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var (
		raw map[string]any
		err error
	)
	switch strings.ToLower(filepath.Ext(source)) {
	case ".json", ".jsonc":
		raw, err = parseJSON(data)
	case ".yaml", ".yml":
		raw, err = parseYAML(data)
	default:
		if raw, err = parseJSON(data); err != nil {
			raw, err = parseYAML(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("paramfile: parse %s: %w", source, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return codec.Normalize(raw).(map[string]any), nil
}

func parseJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func parseYAML(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ToParams converts decoded values into construction input.
func ToParams(raw map[string]any) (form.Params, error) {
	out := make(form.Params, len(raw))
	for key, value := range raw {
		entry, err := toEntry(key, value)
		if err != nil {
			return nil, err
		}
		out[key] = entry
	}
	return out, nil
}

func toEntry(key string, value any) (form.Entry, error) {
	switch v := value.(type) {
	case map[string]any:
		if tag, typed, ok := declared(v); ok {
			return form.Entry{Type: tag, Value: typed}, nil
		}
		group, err := ToParams(v)
		if err != nil {
			return form.Entry{}, err
		}
		return form.Entry{Type: groupTag(key), Value: group}, nil
	case []any:
		if records, ok := recordList(v); ok {
			out := make([]form.Params, len(records))
			for i, record := range records {
				params, err := ToParams(record)
				if err != nil {
					return form.Entry{}, err
				}
				out[i] = params
			}
			return form.Entry{Type: paramtype.TagList, Value: out}, nil
		}
		return form.Entry{Type: sequenceTag(v), Value: v}, nil
	default:
		tag, typed := paramtype.Infer(value)
		return form.Entry{Type: tag, Value: typed}, nil
	}
}

// groupTag names a group after its key unless the key would read as a
// field type.
func groupTag(key string) string {
	if desc := paramtype.Classify(key); desc.Primitive || desc.Array || key == paramtype.TagList {
		return paramtype.TagDict
	}
	return key
}

func declared(m map[string]any) (string, any, bool) {
	if len(m) != 2 {
		return "", nil, false
	}
	tag, ok := m["type"].(string)
	if !ok || tag == "" {
		return "", nil, false
	}
	value, ok := m["value"]
	if !ok {
		return "", nil, false
	}
	return tag, value, true
}

func recordList(items []any) ([]map[string]any, bool) {
	if len(items) == 0 {
		return nil, false
	}
	out := make([]map[string]any, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		out[i] = record
	}
	return out, true
}

// sequenceTag types a sequence of scalars after its first element.
func sequenceTag(items []any) string {
	if len(items) == 0 {
		return paramtype.TagString + "[]"
	}
	tag, _ := paramtype.Infer(items[0])
	return tag + "[]"
}

// Plain strips explicit type declarations, leaving the bare values.
func Plain(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for key, value := range raw {
		out[key] = plain(value)
	}
	return out
}

func plain(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if _, typed, ok := declared(v); ok {
			return typed
		}
		return Plain(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	default:
		return value
	}
}

// Write encodes values as YAML with keys in sorted order.
func Write(w io.Writer, values map[string]any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(values); err != nil {
		return fmt.Errorf("paramfile: encode: %w", err)
	}
	return enc.Close()
}
