package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Theme captures the styles and prefixes the survey driver applies when
// printing messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
	InfoStyle   lipgloss.Style
	ErrorStyle  lipgloss.Style
}

// DefaultTheme renders information dimmed and errors in bold red.
func DefaultTheme() Theme {
	return Theme{
		ErrorPrefix: "error: ",
		InfoStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		ErrorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

func (t Theme) info(msg string) string {
	return t.InfoStyle.Render(t.InfoPrefix + msg)
}

func (t Theme) error(msg string) string {
	return t.ErrorStyle.Render(t.ErrorPrefix + msg)
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies message styles to the default survey driver.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithOutput sets where the default survey driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(s *Session) {
		s.out = out
	}
}

// WithFilter enables or disables the filter menu entry. Enabled by default.
func WithFilter(enabled bool) Option {
	return func(s *Session) {
		s.filter = enabled
	}
}
