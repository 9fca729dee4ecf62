package form

import "strings"

// Filter shows the leaves whose name contains text, ignoring case, and hides
// the others. A group stays visible while any leaf below it is visible. An
// empty text shows every leaf. It reports whether anything is visible.
func (b *Box) Filter(text string) bool {
	return b.filter(strings.ToLower(text))
}

func (b *Box) filter(needle string) bool {
	visible := false
	for _, node := range b.params {
		var show bool
		if node.box != nil {
			show = node.box.filter(needle)
		} else {
			show = strings.Contains(strings.ToLower(node.name), needle)
		}
		if node.widget != nil {
			node.widget.SetVisible(show)
		}
		visible = visible || show
	}
	for _, rec := range b.records {
		if rec.filter(needle) {
			visible = true
		}
	}
	return visible
}
