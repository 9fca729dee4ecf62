package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/renderers/headless"
)

// DoneOption ends the field selection loop of Editor.Edit.
const DoneOption = "Done"

type shown interface {
	Shown() bool
}

// Editor edits the leaf fields of a form rendered with the headless renderer
// through a PromptDriver.
type Editor struct {
	driver PromptDriver
}

// NewEditor returns an editor prompting through driver.
func NewEditor(driver PromptDriver) *Editor {
	return &Editor{driver: driver}
}

// Fields returns the visible leaf nodes of box in layout order.
func (e *Editor) Fields(box *form.Box) []*form.Node {
	var out []*form.Node
	_ = box.Walk(func(node *form.Node) error {
		if !node.Leaf() || !visible(node.Widget()) {
			return nil
		}
		out = append(out, node)
		return nil
	})
	return out
}

// Edit lets the user pick fields to edit until DoneOption is chosen.
func (e *Editor) Edit(ctx context.Context, box *form.Box) error {
	for {
		fields := e.Fields(box)
		options := make([]string, 0, len(fields)+1)
		for _, node := range fields {
			options = append(options, summary(node))
		}
		options = append(options, DoneOption)

		idx, err := e.driver.Select(ctx, SelectConfig{
			Message:      "Parameter",
			Options:      options,
			DefaultIndex: len(options) - 1,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(fields) {
			return nil
		}
		if err := e.EditField(ctx, fields[idx]); err != nil {
			return err
		}
	}
}

// EditAll prompts for every visible field once, in layout order.
func (e *Editor) EditAll(ctx context.Context, box *form.Box) error {
	for _, node := range e.Fields(box) {
		if err := e.EditField(ctx, node); err != nil {
			return err
		}
	}
	return nil
}

// EditField prompts for a single leaf. Checkboxes become confirmations;
// fields whose value is a list of choices become selections; every other
// field is free text validated against the field type, with the seeded
// choices offered as suggestions.
func (e *Editor) EditField(ctx context.Context, node *form.Node) error {
	label := strings.TrimPrefix(node.FullName(), "/")
	switch w := node.Widget().(type) {
	case *headless.Checkbox:
		checked, err := e.driver.Confirm(ctx, ConfirmConfig{
			Message: label,
			Default: w.Checked(),
		})
		if err != nil {
			return err
		}
		w.SetChecked(checked)
		return nil
	case *headless.ChoiceField:
		items := w.Items()
		if _, fixed := node.Value().([]string); fixed && len(items) > 0 {
			idx, err := e.driver.Select(ctx, SelectConfig{
				Message:      label,
				Options:      items,
				DefaultIndex: indexOf(items, w.CurrentText()),
			})
			if err != nil {
				return err
			}
			w.Select(idx)
			return nil
		}
		text, err := e.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   w.CurrentText(),
			Help:      help(node, items),
			Suggest:   items,
			Validator: node.Validate,
		})
		if err != nil {
			return err
		}
		w.SetText(text)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedWidget, node.FullName())
	}
}

func visible(w form.Widget) bool {
	if s, ok := w.(shown); ok {
		return s.Shown()
	}
	return w != nil && w.Visible()
}

func summary(node *form.Node) string {
	name := strings.TrimPrefix(node.FullName(), "/")
	switch w := node.Widget().(type) {
	case *headless.Checkbox:
		return fmt.Sprintf("%s = %t", name, w.Checked())
	case *headless.ChoiceField:
		return fmt.Sprintf("%s = %s", name, w.CurrentText())
	default:
		return name
	}
}

func help(node *form.Node, items []string) string {
	out := "type: " + node.TypeTag()
	if len(items) > 0 {
		out += "; known values: " + strings.Join(items, ", ")
	}
	return out
}
