// Package tui drives a parameter dialog from a terminal. Fields are rendered
// with the headless renderer and edited through survey prompts.
package tui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-paramform/pkg/dialog"
	"github.com/goliatone/go-paramform/pkg/renderers/headless"
)

// Menu entries offered between edits.
const (
	MenuEdit   = "Edit parameters"
	MenuFilter = "Filter"
	MenuAdd    = "Add parameter"
	MenuAccept = "Accept"
	MenuCancel = "Cancel"
)

// Session runs one dialog to completion.
type Session struct {
	dialog *dialog.Dialog
	driver PromptDriver
	editor *Editor
	theme  Theme
	out    io.Writer
	filter bool
}

// NewSession prepares a terminal session for d. The dialog must render into a
// headless.Renderer.
func NewSession(d *dialog.Dialog, options ...Option) (*Session, error) {
	if d == nil {
		return nil, errors.New("tui: dialog is required")
	}
	if _, ok := d.Box().Widget().(*headless.Group); !ok {
		return nil, ErrUnsupportedWidget
	}
	s := &Session{
		dialog: d,
		theme:  DefaultTheme(),
		filter: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = newSurveyDriver(s.out, s.theme)
	}
	s.editor = NewEditor(s.driver)
	return s, nil
}

// Dialog returns the dialog driven by the session.
func (s *Session) Dialog() *dialog.Dialog { return s.dialog }

// Run loads the dialog when it is bound to a server and then offers the menu
// until the dialog is accepted or cancelled. It reports whether the dialog
// was accepted. Aborting a prompt rejects the dialog.
func (s *Session) Run(ctx context.Context) (bool, error) {
	d := s.dialog
	if d.Remote() {
		if err := s.driver.Info(ctx, dialog.LoadingText(d.Endpoint())); err != nil {
			return false, err
		}
		if err := d.Load(ctx); err != nil {
			if d.State() == dialog.Failed {
				if err := s.driver.Error(ctx, d.Text()); err != nil {
					return false, err
				}
			} else if err := s.reportWarning(ctx); err != nil {
				return false, err
			}
		}
	}

	for !d.State().Done() {
		if err := s.step(ctx); err != nil {
			d.Reject()
			return false, err
		}
	}
	return d.Accepted(), nil
}

func (s *Session) step(ctx context.Context) error {
	d := s.dialog
	if !d.InfoActive() {
		outline := strings.TrimRight(headless.Outline(d.Box().Widget().(*headless.Group)), "\n")
		if outline != "" {
			if err := s.driver.Info(ctx, outline); err != nil {
				return err
			}
		}
	}

	menu := s.menu()
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Action", Options: menu})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(menu) {
		return nil
	}

	switch menu[idx] {
	case MenuEdit:
		return s.editor.Edit(ctx, d.Box())
	case MenuFilter:
		text, err := s.driver.Input(ctx, InputConfig{
			Message: "Filter",
			Help:    "show only parameters whose name contains the text",
		})
		if err != nil {
			return err
		}
		d.Filter(text)
		return nil
	case MenuAdd:
		return s.addParameter(ctx)
	case MenuAccept:
		return s.accept(ctx)
	case MenuCancel:
		d.Reject()
	}
	return nil
}

func (s *Session) menu() []string {
	out := []string{MenuEdit}
	if s.filter {
		out = append(out, MenuFilter)
	}
	return append(out, MenuAdd, MenuAccept, MenuCancel)
}

func (s *Session) addParameter(ctx context.Context) error {
	sub, err := dialog.New(headless.New(), dialog.WithParams(dialog.AddParameterTemplate(s.dialog.Namespace())))
	if err != nil {
		return err
	}
	if err := s.editor.EditAll(ctx, sub.Box()); err != nil {
		return err
	}
	values, err := sub.Values()
	if err != nil {
		return s.driver.Error(ctx, err.Error())
	}
	if err := s.dialog.AddParameterFrom(values); err != nil {
		return s.reportWarning(ctx)
	}
	return nil
}

func (s *Session) accept(ctx context.Context) error {
	d := s.dialog
	if d.Remote() {
		if err := s.driver.Info(ctx, dialog.SendingMessage); err != nil {
			return err
		}
	}
	if _, err := d.Accept(ctx); err != nil {
		return s.reportWarning(ctx)
	}
	return nil
}

func (s *Session) reportWarning(ctx context.Context) error {
	msg := s.dialog.Warning()
	if msg == "" {
		return nil
	}
	s.dialog.ClearWarning()
	return s.driver.Error(ctx, msg)
}
