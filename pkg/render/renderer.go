// Package render serialises collected parameter values for output.
package render

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/names"
)

// Format names of the built-in renderers.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatPretty = "pretty"
	FormatTable  = "table"
)

// Renderer converts collected values into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, values map[string]any, options Options) ([]byte, error)
}

// Options describe per-call settings shared by every renderer.
type Options struct {
	// Namespace prefixes the qualified names of flattened output.
	Namespace string
}

// Row is one flattened parameter.
type Row struct {
	Name  string
	Value string
}

// Flatten turns nested values into rows of qualified name and display text,
// sorted by name. Sequences of records are indexed by position.
func Flatten(namespace string, values map[string]any) []Row {
	if namespace == "" {
		namespace = names.Sep
	}
	var rows []Row
	flatten(namespace, values, &rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

func flatten(prefix string, values map[string]any, rows *[]Row) {
	for key, value := range values {
		name := names.Join(prefix, key)
		switch v := value.(type) {
		case map[string]any:
			flatten(name, v, rows)
		case []any:
			if !allRecords(v) {
				*rows = append(*rows, Row{Name: name, Value: form.FormatValue(v)})
				continue
			}
			for i, item := range v {
				flatten(names.Join(name, strconv.Itoa(i)), item.(map[string]any), rows)
			}
		default:
			*rows = append(*rows, Row{Name: name, Value: form.FormatValue(v)})
		}
	}
}

func allRecords(items []any) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(JSON())
	r.MustRegister(YAML(), "yml")
	r.MustRegister(MustPretty(), "text", "txt")
	r.MustRegister(Table(), "grid")
	return r
}

// Default returns the registry holding the built-in renderers.
func Default() *Registry {
	return defaultRegistry
}

// Formats lists the built-in format names.
func Formats() []string {
	return defaultRegistry.List()
}

// Values renders values with the built-in renderer for format or one of its
// aliases.
func Values(ctx context.Context, format string, values map[string]any, options Options) ([]byte, error) {
	r, err := defaultRegistry.Lookup(format)
	if err != nil {
		return nil, err
	}
	out, err := r.Render(ctx, values, options)
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", format, err)
	}
	return out, nil
}
