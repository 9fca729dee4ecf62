package form

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-paramform/pkg/names"
	"github.com/goliatone/go-paramform/pkg/paramtype"
	"github.com/goliatone/go-paramform/pkg/widgets"
)

// Box is a container of parameter nodes. The root of a tree is a main box;
// nested records are group boxes and arrays of records are array boxes.
type Box struct {
	name    string
	typeTag string
	array   bool
	parent  *Box
	widget  Container
	cfg     *config

	params  []*Node
	index   map[string]*Node
	records []*Box
}

// NewMainBox creates the root container of a tree rendered by r. The name is
// the namespace every full parameter name starts with.
func NewMainBox(r Renderer, name string, options ...Option) (*Box, error) {
	if r == nil {
		return nil, errors.New("form: renderer is required")
	}
	cfg := &config{
		renderer: r,
		registry: widgets.NewRegistry(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	box := newBox(name, paramtype.TagString, false, nil, cfg)
	box.widget = r.NewRoot(name)
	return box, nil
}

func newBox(name, typeTag string, array bool, parent *Box, cfg *config) *Box {
	return &Box{
		name:    name,
		typeTag: typeTag,
		array:   array,
		parent:  parent,
		cfg:     cfg,
		index:   make(map[string]*Node),
	}
}

// Name returns the container name.
func (b *Box) Name() string { return b.name }

// TypeTag returns the container's type tag.
func (b *Box) TypeTag() string { return b.typeTag }

// IsArray reports whether the box holds an array of records.
func (b *Box) IsArray() bool { return b.array }

// Widget returns the rendered container.
func (b *Box) Widget() Container { return b.widget }

// Params returns the child nodes in insertion order.
func (b *Box) Params() []*Node {
	return append([]*Node(nil), b.params...)
}

// Field returns the direct child called name.
func (b *Box) Field(name string) (*Node, bool) {
	node, ok := b.index[name]
	return node, ok
}

// Lookup resolves a slash-separated path relative to the box.
func (b *Box) Lookup(path string) (*Node, bool) {
	segments := names.Split(path)
	if len(segments) == 0 {
		return nil, false
	}
	current := b
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		node, ok := current.index[segment]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return node, true
		}
		if node.box == nil {
			return nil, false
		}
		current = node.box
		if current.array && i+1 < len(segments)-1 {
			if idx, err := strconv.Atoi(segments[i+1]); err == nil && idx >= 0 && idx < len(current.records) {
				current = current.records[idx]
				segments[i+1] = ""
			}
		}
	}
	return nil, false
}

// FullName returns the namespace-joined path from the root to the box.
func (b *Box) FullName() string {
	result := b.name
	for box := b.parent; box != nil; box = box.parent {
		result = names.Join(box.name, result)
	}
	return result
}

// Populate adds fields for value. A record adds one field per entry, in
// case-insensitive name order; a sequence of records adds each record in
// turn, separated. An array box keeps every record of a sequence apart and
// collects them all back, rather than wrapping a single record; other boxes
// merge them. Entries naming an existing group merge into it,
// entries naming an existing leaf fail with DuplicateFieldError.
func (b *Box) Populate(value any) error {
	if record, ok := asParams(value); ok {
		return b.populateRecord(record)
	}
	for _, record := range recordsOf(value) {
		target := b
		if b.array {
			target = newBox("", b.typeTag, false, b, b.cfg)
			target.widget = b.widget
			b.records = append(b.records, target)
		}
		if err := target.populateRecord(record); err != nil {
			return err
		}
		b.cfg.renderer.AddSeparator(b.widget)
	}
	return nil
}

func recordsOf(value any) []Params {
	if records, ok := value.([]Params); ok {
		return records
	}
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	var out []Params
	for _, item := range items {
		if record, ok := asParams(item); ok {
			out = append(out, record)
		}
	}
	return out
}

func (b *Box) populateRecord(record Params) error {
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if li == lj {
			return keys[i] < keys[j]
		}
		return li < lj
	})

	for _, name := range keys {
		entry := record[name]
		node, exists := b.index[name]
		if !exists {
			node = newNode(b, name, entry)
			b.params = append(b.params, node)
			b.index[name] = node
			if err := node.attach(); err != nil {
				return err
			}
			continue
		}
		if node.box != nil {
			if err := node.box.Populate(entry.Value); err != nil {
				return err
			}
			continue
		}
		return &DuplicateFieldError{Name: name, Container: b.FullName()}
	}
	return nil
}

// Values reads every field back and returns the current record. Nested
// groups become nested mappings; array boxes become sequences of records.
func (b *Box) Values() (map[string]any, error) {
	out := make(map[string]any, len(b.params))
	for _, node := range b.params {
		if node.box != nil {
			value, err := node.box.collect()
			if err != nil {
				return nil, err
			}
			out[node.name] = value
			continue
		}
		if err := node.UpdateValueFromField(); err != nil {
			return nil, err
		}
		out[node.name] = node.value
	}
	return out, nil
}

// collect returns the value a box contributes to its parent record. An array
// box yields one element per kept record, so a populated sequence comes back
// with its length; fields merged straight into the box form one more record.
// A box filled with a single record yields a one-element sequence.
func (b *Box) collect() (any, error) {
	if !b.array {
		return b.Values()
	}
	out := make([]any, 0, len(b.records)+1)
	if len(b.params) > 0 || len(b.records) == 0 {
		record, err := b.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	for _, rec := range b.records {
		record, err := rec.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Records returns the separately kept records of an array box.
func (b *Box) Records() []*Box {
	return append([]*Box(nil), b.records...)
}

// Walk visits every node depth-first in layout order. Returning an error
// from fn stops the walk.
func (b *Box) Walk(fn func(*Node) error) error {
	for _, node := range b.params {
		if err := fn(node); err != nil {
			return err
		}
		if node.box != nil {
			if err := node.box.Walk(fn); err != nil {
				return err
			}
		}
	}
	for _, rec := range b.records {
		if err := rec.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}
