// Package headless renders parameter trees into plain in-memory widgets. It
// backs the terminal session and lets callers drive a form programmatically.
package headless

import (
	"strings"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/names"
)

// Element is any widget placed in a Group.
type Element interface {
	form.Widget
	Name() string
}

type base struct {
	spec    form.FieldSpec
	visible bool
	parent  *Group
}

func (b *base) Name() string         { return b.spec.Name }
func (b *base) Label() string        { return b.spec.Label }
func (b *base) TypeTag() string      { return b.spec.TypeTag }
func (b *base) SetVisible(v bool)    { b.visible = v }
func (b *base) Visible() bool        { return b.visible }
func (b *base) Parent() *Group       { return b.parent }
func (b *base) Spec() form.FieldSpec { return b.spec }

// Shown reports whether the widget and all of its ancestors are visible.
func (b *base) Shown() bool {
	if !b.visible {
		return false
	}
	for g := b.parent; g != nil; g = g.parent {
		if !g.visible {
			return false
		}
	}
	return true
}

// Group hosts child widgets. Array groups hold records split by separators.
type Group struct {
	base
	array    bool
	children []Element
}

// IsArray reports whether the group was created for an array of records.
func (g *Group) IsArray() bool { return g.array }

// Children returns the direct children in layout order.
func (g *Group) Children() []Element {
	return append([]Element(nil), g.children...)
}

// Find resolves a slash-separated path of widget names below the group. The
// first match wins when an array group repeats a name.
func (g *Group) Find(path string) (Element, bool) {
	segments := names.Split(path)
	if len(segments) == 0 {
		return nil, false
	}
	current := g
	for i, segment := range segments {
		var found Element
		for _, child := range current.children {
			if child.Name() == segment {
				found = child
				break
			}
		}
		if found == nil {
			return nil, false
		}
		if i == len(segments)-1 {
			return found, true
		}
		next, ok := found.(*Group)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

func (g *Group) add(el Element) {
	g.children = append(g.children, el)
}

// Checkbox is a two-state field.
type Checkbox struct {
	base
	checked bool
}

// Checked reports the toggle state.
func (c *Checkbox) Checked() bool { return c.checked }

// SetChecked changes the toggle state.
func (c *Checkbox) SetChecked(v bool) { c.checked = v }

// ChoiceField is an editable list of choices whose current text may be any
// string.
type ChoiceField struct {
	base
	items []string
	text  string
}

// Items returns the seeded choices.
func (c *ChoiceField) Items() []string { return append([]string(nil), c.items...) }

// CurrentText returns the edited text.
func (c *ChoiceField) CurrentText() string { return c.text }

// SetText replaces the edited text.
func (c *ChoiceField) SetText(text string) { c.text = text }

// Select makes the item at index the current text. Out of range indices are
// ignored.
func (c *ChoiceField) Select(index int) {
	if index >= 0 && index < len(c.items) {
		c.text = c.items[index]
	}
}

// Separator divides records inside an array group.
type Separator struct {
	base
}

// Renderer implements form.Renderer with in-memory widgets.
type Renderer struct {
	roots []*Group
}

// New returns an empty renderer.
func New() *Renderer {
	return &Renderer{}
}

// Root returns the most recently created root group, or nil.
func (r *Renderer) Root() *Group {
	if len(r.roots) == 0 {
		return nil
	}
	return r.roots[len(r.roots)-1]
}

func (r *Renderer) NewRoot(name string) form.Container {
	g := &Group{base: base{spec: form.FieldSpec{Name: name, Label: name}, visible: true}}
	r.roots = append(r.roots, g)
	return g
}

func (r *Renderer) NewCheckbox(parent form.Container, spec form.FieldSpec, checked bool) form.Checkbox {
	cb := &Checkbox{checked: checked}
	cb.base = r.attach(parent, spec, cb)
	return cb
}

func (r *Renderer) NewChoiceField(parent form.Container, spec form.FieldSpec, items []string) form.ChoiceField {
	cf := &ChoiceField{items: append([]string(nil), items...)}
	if len(items) > 0 {
		cf.text = items[0]
	}
	cf.base = r.attach(parent, spec, cf)
	return cf
}

func (r *Renderer) NewGroup(parent form.Container, spec form.FieldSpec) form.Container {
	g := &Group{}
	g.base = r.attach(parent, spec, g)
	return g
}

func (r *Renderer) NewArrayGroup(parent form.Container, spec form.FieldSpec) form.Container {
	g := &Group{array: true}
	g.base = r.attach(parent, spec, g)
	return g
}

func (r *Renderer) AddSeparator(parent form.Container) {
	sep := &Separator{}
	sep.base = r.attach(parent, form.FieldSpec{}, sep)
}

func (r *Renderer) attach(parent form.Container, spec form.FieldSpec, el Element) base {
	b := base{spec: spec, visible: true}
	if g, ok := parent.(*Group); ok {
		b.parent = g
		g.add(el)
	}
	return b
}

// Outline renders the visible widgets under g as indented text, one widget
// per line.
func Outline(g *Group) string {
	var sb strings.Builder
	outline(&sb, g, 0)
	return sb.String()
}

func outline(sb *strings.Builder, g *Group, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, child := range g.children {
		if !child.Visible() {
			continue
		}
		switch el := child.(type) {
		case *Group:
			sb.WriteString(indent + el.Label() + "\n")
			outline(sb, el, depth+1)
		case *Checkbox:
			mark := "[ ]"
			if el.checked {
				mark = "[x]"
			}
			sb.WriteString(indent + mark + " " + el.Label() + "\n")
		case *ChoiceField:
			sb.WriteString(indent + el.Label() + ": " + el.text + "\n")
		case *Separator:
			sb.WriteString(indent + "--\n")
		}
	}
}
