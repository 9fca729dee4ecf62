package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var templateFS embed.FS

// PrettyTemplate is the template used by the pretty renderer.
const PrettyTemplate = "templates/pretty.tpl"

type prettyRenderer struct {
	tmpl *pongo2.Template
}

// Pretty renders one "name = value" line per flattened parameter.
func Pretty() (Renderer, error) {
	set := pongo2.NewSet("paramform", pongo2.NewFSLoader(templateFS))
	tmpl, err := set.FromFile(PrettyTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: load %s: %w", PrettyTemplate, err)
	}
	return &prettyRenderer{tmpl: tmpl}, nil
}

// MustPretty panics when the embedded template cannot be parsed.
func MustPretty() Renderer {
	r, err := Pretty()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *prettyRenderer) Name() string        { return FormatPretty }
func (r *prettyRenderer) ContentType() string { return "text/plain" }

func (r *prettyRenderer) Render(_ context.Context, values map[string]any, options Options) ([]byte, error) {
	var buf bytes.Buffer
	ctx := pongo2.Context{"rows": Flatten(options.Namespace, values)}
	if err := r.tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
