package form

import (
	"strconv"

	"github.com/goliatone/go-paramform/pkg/history"
	"github.com/goliatone/go-paramform/pkg/names"
	"github.com/goliatone/go-paramform/pkg/paramtype"
	"github.com/goliatone/go-paramform/pkg/widgets"
)

// Node is one named, typed parameter in the tree. Leaf nodes own a rendered
// field; nested nodes own a child Box.
type Node struct {
	name    string
	typeTag string
	desc    paramtype.Descriptor
	value   any

	// parent is a non-owning back-reference used to derive the full name.
	parent *Box

	kind   widgets.Kind
	widget Widget
	read   func() string
	box    *Box
}

func newNode(parent *Box, name string, entry Entry) *Node {
	tag := entry.Type
	if tag == "" {
		tag = markerFor(entry.Value)
	}
	return &Node{
		name:    name,
		typeTag: tag,
		desc:    paramtype.Classify(tag),
		value:   entry.Value,
		parent:  parent,
	}
}

func markerFor(value any) string {
	if _, ok := asParams(value); ok {
		return paramtype.TagDict
	}
	if _, ok := value.([]Params); ok {
		return paramtype.TagList
	}
	if items, ok := sequence(value); ok {
		for _, item := range items {
			if _, ok := asParams(item); ok {
				return paramtype.TagList
			}
		}
	}
	tag, _ := paramtype.Infer(value)
	return tag
}

// Name returns the node name, unique among its siblings.
func (n *Node) Name() string { return n.name }

// TypeTag returns the declared type tag or a nested-structure marker.
func (n *Node) TypeTag() string { return n.typeTag }

// Descriptor returns the classification of the node's type tag.
func (n *Node) Descriptor() paramtype.Descriptor { return n.desc }

// Kind returns the rendered field variant chosen at attach time.
func (n *Node) Kind() widgets.Kind { return n.kind }

// Widget returns the rendered field, nil before the node is attached.
func (n *Node) Widget() Widget { return n.widget }

// Box returns the child container of a nested node.
func (n *Node) Box() *Box { return n.box }

// Value returns the current stored value.
func (n *Node) Value() any { return n.value }

// Leaf reports whether the node is rendered as a single input field.
func (n *Node) Leaf() bool { return n.box == nil }

// FullName joins the names of every enclosing container with the node name.
func (n *Node) FullName() string {
	result := n.name
	for box := n.parent; box != nil; box = box.parent {
		result = names.Join(box.name, result)
	}
	return result
}

// Label is the text shown next to a leaf field.
func (n *Node) Label() string {
	if n.typeTag == paramtype.TagString {
		return n.name
	}
	return n.name + " (" + n.typeTag + ")"
}

// SetValue stores raw. Structured values are kept as they are; text is
// coerced according to the node type. Before a non-empty text replaces the
// current value, the current value is remembered in the history cache.
func (n *Node) SetValue(raw any) error {
	if isStructured(raw) {
		n.value = raw
		return nil
	}

	text, ok := raw.(string)
	if !ok {
		text = FormatValue(raw)
	}
	if text != "" {
		n.rememberCurrent()
	}

	value, err := coerce(n.desc, text)
	if err != nil {
		return &ValueCoercionError{Name: n.FullName(), Input: text, Err: err}
	}
	n.value = value
	return nil
}

// Validate reports whether text would be accepted as the node's value
// without storing it.
func (n *Node) Validate(text string) error {
	if n.box != nil {
		return nil
	}
	if _, err := coerce(n.desc, text); err != nil {
		return &ValueCoercionError{Name: n.FullName(), Input: text, Err: err}
	}
	return nil
}

// CachedValues returns the values previously recorded for this parameter.
func (n *Node) CachedValues() []string {
	cache := n.historyCache()
	if cache == nil {
		return []string{}
	}
	return cache.Lookup(n.FullName())
}

// UpdateValueFromField reads the rendered field back into the node.
func (n *Node) UpdateValueFromField() error {
	if n.read == nil {
		return nil
	}
	return n.SetValue(n.read())
}

func (n *Node) rememberCurrent() {
	if isEmptyValue(n.value) {
		return
	}
	if cache := n.historyCache(); cache != nil {
		cache.Record(n.FullName(), FormatValue(n.value))
	}
}

func (n *Node) historyCache() *history.Cache {
	if n.parent == nil || n.parent.cfg == nil || n.parent.cfg.history == nil {
		return nil
	}
	return n.parent.cfg.history
}

// attach creates the rendered field for the node inside its parent and, for
// nested nodes, populates the child container with the node value.
func (n *Node) attach() error {
	cfg := n.parent.cfg
	n.kind = cfg.registry.Resolve(n.desc)
	spec := FieldSpec{Name: n.name, Label: n.Label(), TypeTag: n.typeTag}

	switch n.kind {
	case widgets.KindCheckbox:
		cb := cfg.renderer.NewCheckbox(n.parent.widget, spec, truthy(n.value))
		n.widget = cb
		n.read = func() string { return strconv.FormatBool(cb.Checked()) }
		return nil
	case widgets.KindGroup, widgets.KindArray:
		spec.Label = n.name + " (" + n.typeTag + ")"
		child := newBox(n.name, n.typeTag, n.kind == widgets.KindArray, n.parent, cfg)
		if n.kind == widgets.KindArray {
			child.widget = cfg.renderer.NewArrayGroup(n.parent.widget, spec)
		} else {
			child.widget = cfg.renderer.NewGroup(n.parent.widget, spec)
		}
		n.box = child
		n.widget = child.widget
		return child.Populate(n.value)
	default:
		cf := cfg.renderer.NewChoiceField(n.parent.widget, spec, n.choiceItems())
		n.widget = cf
		n.read = cf.CurrentText
		return nil
	}
}

// choiceItems seeds a choice field: the current value first, then values
// remembered for this parameter.
func (n *Node) choiceItems() []string {
	var items []string
	if !n.desc.Array {
		if seq, ok := sequence(n.value); ok {
			for _, item := range seq {
				items = append(items, FormatValue(item))
			}
		}
	}
	if items == nil {
		if text := FormatValue(n.value); text != "" {
			items = []string{text}
		} else if n.desc.Time {
			items = []string{TimeNow}
		}
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item] = struct{}{}
	}
	for _, cached := range n.CachedValues() {
		if _, ok := seen[cached]; ok {
			continue
		}
		seen[cached] = struct{}{}
		items = append(items, cached)
	}
	return items
}
