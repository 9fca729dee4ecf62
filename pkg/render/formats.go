package render

import (
	"bytes"
	"context"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

type jsonRenderer struct{}

// JSON renders values as indented JSON.
func JSON() Renderer { return jsonRenderer{} }

func (jsonRenderer) Name() string        { return FormatJSON }
func (jsonRenderer) ContentType() string { return "application/json" }

func (jsonRenderer) Render(_ context.Context, values map[string]any, _ Options) ([]byte, error) {
	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

type yamlRenderer struct{}

// YAML renders values as a YAML document.
func YAML() Renderer { return yamlRenderer{} }

func (yamlRenderer) Name() string        { return FormatYAML }
func (yamlRenderer) ContentType() string { return "application/yaml" }

func (yamlRenderer) Render(_ context.Context, values map[string]any, _ Options) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(values); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
