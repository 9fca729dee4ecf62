package form

// Widget is the part of a rendered field the tree needs for filtering.
type Widget interface {
	SetVisible(visible bool)
	Visible() bool
}

// Container is a rendered widget that hosts child fields.
type Container interface {
	Widget
}

// Checkbox is a rendered two-state field.
type Checkbox interface {
	Widget
	Checked() bool
}

// ChoiceField is a rendered editable choice list.
type ChoiceField interface {
	Widget
	CurrentText() string
}

// FieldSpec describes a field to the renderer.
type FieldSpec struct {
	Name    string
	Label   string
	TypeTag string
}

// Renderer is the capability set a widget toolkit must offer to host a tree.
// Every constructor attaches the new widget to parent's layout.
type Renderer interface {
	NewRoot(name string) Container
	NewCheckbox(parent Container, spec FieldSpec, checked bool) Checkbox
	NewChoiceField(parent Container, spec FieldSpec, items []string) ChoiceField
	NewGroup(parent Container, spec FieldSpec) Container
	NewArrayGroup(parent Container, spec FieldSpec) Container
	AddSeparator(parent Container)
}
