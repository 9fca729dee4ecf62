package dialog

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/history"
	"github.com/goliatone/go-paramform/pkg/paramservice"
	"github.com/goliatone/go-paramform/pkg/widgets"
)

// Option configures a Dialog.
type Option func(*Dialog)

// WithParams populates the form with params when the dialog is created.
func WithParams(params form.Params) Option {
	return func(d *Dialog) {
		d.params = params
	}
}

// WithRemote binds the dialog to the parameter server at endpoint. Load then
// fetches every parameter below namespace and Accept delivers the edits.
func WithRemote(service paramservice.Service, endpoint string) Option {
	return func(d *Dialog) {
		d.service = service
		d.endpoint = endpoint
	}
}

// WithNamespace sets the namespace the form is rooted at. Defaults to "/".
func WithNamespace(namespace string) Option {
	return func(d *Dialog) {
		if namespace != "" {
			d.namespace = namespace
		}
	}
}

// WithHistory shares a value history cache with the form.
func WithHistory(cache *history.Cache) Option {
	return func(d *Dialog) {
		d.history = cache
	}
}

// WithRegistry overrides the field kind registry.
func WithRegistry(registry *widgets.Registry) Option {
	return func(d *Dialog) {
		d.registry = registry
	}
}

// WithLogger sets the logger for protocol transitions.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dialog) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTimeout bounds every remote request. Zero means no bound beyond the
// caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dialog) {
		d.timeout = timeout
	}
}
