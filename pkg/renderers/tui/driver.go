package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a free text prompt for one parameter value.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Suggest   []string
	Validator func(string) error
}

// ConfirmConfig describes a checkbox prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Help         string
	PageSize     int
}

// PromptDriver is the terminal surface a Session talks to. Select returns the
// chosen option index.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	Info(ctx context.Context, msg string) error
	Error(ctx context.Context, msg string) error
}

// surveyDriver prompts on the controlling terminal. Info and error lines go to
// out so they can be captured independently of the prompts.
type surveyDriver struct {
	out   io.Writer
	theme Theme
}

func newSurveyDriver(out io.Writer, theme Theme) *surveyDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out, theme: theme}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	prompt := &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}
	if items := cfg.Suggest; len(items) > 0 {
		prompt.Suggest = func(typed string) []string { return suggestions(items, typed) }
	}
	var opts []survey.AskOpt
	if check := cfg.Validator; check != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return check(text)
		}))
	}
	var text string
	err := ask(ctx, prompt, &text, opts...)
	return text, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var yes bool
	err := ask(ctx, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &yes)
	return yes, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	index := -1
	if err := ask(ctx, prompt, &index); err != nil {
		return -1, err
	}
	return index, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	return d.println(ctx, d.theme.info(msg))
}

func (d *surveyDriver) Error(ctx context.Context, msg string) error {
	return d.println(ctx, d.theme.error(msg))
}

func (d *surveyDriver) println(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, line)
	return err
}

// ask runs one survey prompt. Ctrl-C surfaces as ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, response, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// suggestions returns the items starting with prefix, ignoring case. An empty
// prefix offers every item.
func suggestions(items []string, prefix string) []string {
	needle := strings.ToLower(prefix)
	var out []string
	for _, item := range items {
		if strings.HasPrefix(strings.ToLower(item), needle) {
			out = append(out, item)
		}
	}
	return out
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}
