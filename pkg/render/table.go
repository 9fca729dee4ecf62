package render

import (
	"context"

	"github.com/bndr/gotabulate"
)

type tableRenderer struct{}

// Table renders flattened parameters as a grid of name and value.
func Table() Renderer { return tableRenderer{} }

func (tableRenderer) Name() string        { return FormatTable }
func (tableRenderer) ContentType() string { return "text/plain" }

func (tableRenderer) Render(_ context.Context, values map[string]any, options Options) ([]byte, error) {
	rows := Flatten(options.Namespace, values)
	if len(rows) == 0 {
		return nil, nil
	}
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = []string{row.Name, row.Value}
	}
	t := gotabulate.Create(cells)
	t.SetHeaders([]string{"Parameter", "Value"})
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(85)
	return []byte(t.Render("grid")), nil
}
