// Package dialog drives a parameter form through its lifecycle: building it
// from supplied parameters or from a remote parameter server, editing, and
// delivering accepted values back to the server.
package dialog

import (
	"context"
	"errors"
	"html"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/history"
	"github.com/goliatone/go-paramform/pkg/names"
	"github.com/goliatone/go-paramform/pkg/paramservice"
	"github.com/goliatone/go-paramform/pkg/paramtype"
	"github.com/goliatone/go-paramform/pkg/widgets"
)

// Messages shown while requests are in flight.
const (
	LoadingMessage = "Obtaining parameters from the parameter server"
	SendingMessage = "Send the parameter into server..."
)

// LoadingText is the text shown while parameters are requested from endpoint.
func LoadingText(endpoint string) string {
	return strings.Join([]string{LoadingMessage, endpoint, "..."}, " ")
}

// AddTypes are the types offered when adding a parameter by hand.
var AddTypes = []string{paramtype.TagString, paramtype.TagInt, paramtype.TagFloat, paramtype.TagBool}

// Dialog owns a parameter form and its remote protocol state. It is meant to
// be driven by a single goroutine.
type Dialog struct {
	box       *form.Box
	params    form.Params
	service   paramservice.Service
	endpoint  string
	namespace string
	history   *history.Cache
	registry  *widgets.Registry
	logger    *zap.Logger
	timeout   time.Duration
	policy    *bluemonday.Policy

	state      State
	accepted   bool
	text       string
	infoActive bool
	warning    string
}

// New creates a dialog rendering into r. Supplied parameters are populated
// immediately; a remote dialog stays idle until Load.
func New(r form.Renderer, options ...Option) (*Dialog, error) {
	d := &Dialog{
		namespace: names.Sep,
		logger:    zap.NewNop(),
		policy:    bluemonday.StrictPolicy(),
		state:     Idle,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}

	formOpts := []form.Option{form.WithHistory(d.history)}
	if d.registry != nil {
		formOpts = append(formOpts, form.WithRegistry(d.registry))
	}
	box, err := form.NewMainBox(r, d.namespace, formOpts...)
	if err != nil {
		return nil, err
	}
	d.box = box

	if len(d.params) > 0 {
		if err := d.box.Populate(d.params); err != nil {
			return nil, err
		}
		d.state = Populated
	}
	return d, nil
}

// Box returns the form tree.
func (d *Dialog) Box() *form.Box { return d.box }

// State returns the current lifecycle state.
func (d *Dialog) State() State { return d.state }

// Remote reports whether the dialog is bound to a parameter server.
func (d *Dialog) Remote() bool { return d.service != nil }

// Endpoint returns the bound parameter server address.
func (d *Dialog) Endpoint() string { return d.endpoint }

// Namespace returns the namespace the form is rooted at.
func (d *Dialog) Namespace() string { return d.namespace }

// Accepted reports whether the dialog finished by accepting.
func (d *Dialog) Accepted() bool { return d.accepted && d.state.Done() }

// Text returns the informational text shown instead of the form.
func (d *Dialog) Text() string { return d.text }

// InfoActive reports whether the informational text replaces the form.
func (d *Dialog) InfoActive() bool { return d.infoActive }

// Warning returns the last failure message raised over the form, or "".
func (d *Dialog) Warning() string { return d.warning }

// ClearWarning dismisses the current warning.
func (d *Dialog) ClearWarning() { d.warning = "" }

// SetText shows text instead of the form.
func (d *Dialog) SetText(text string) {
	d.text = d.sanitize(text)
	d.infoActive = true
}

// SetInfoActive switches between the informational text and the form.
func (d *Dialog) SetInfoActive(active bool) {
	d.infoActive = active
}

// Filter limits the visible fields to those whose name contains text.
func (d *Dialog) Filter(text string) bool {
	return d.box.Filter(text)
}

// Values collects the current form values.
func (d *Dialog) Values() (map[string]any, error) {
	return d.box.Values()
}

// Load requests the parameters of the bound namespace and populates the form
// with them. Unbound dialogs return immediately.
func (d *Dialog) Load(ctx context.Context) error {
	if d.service == nil {
		return nil
	}
	d.state = AwaitingList
	d.SetText(LoadingText(d.endpoint))
	d.logger.Info("requesting parameter list",
		zap.String("endpoint", d.endpoint),
		zap.String("namespace", d.namespace))

	callCtx, cancel := d.callContext(ctx)
	list, err := d.service.ListParameters(callCtx, d.endpoint, d.namespace)
	cancel()
	if err != nil {
		list = paramservice.ListResult{Code: paramservice.CodeError, Message: err.Error()}
	}
	requested, err := d.HandleList(list)
	if err != nil {
		return err
	}

	callCtx, cancel = d.callContext(ctx)
	values, err := d.service.ParameterValues(callCtx, d.endpoint, requested)
	cancel()
	if err != nil {
		values = paramservice.ValuesResult{Code: paramservice.CodeError, Message: err.Error()}
	}
	return d.HandleValues(values)
}

// HandleList applies a list response and returns the sorted names to request
// values for.
func (d *Dialog) HandleList(res paramservice.ListResult) ([]string, error) {
	if err := res.Err(); err != nil {
		d.fail(res.Message, err)
		return nil, err
	}
	sorted := append([]string(nil), res.Names...)
	sort.Strings(sorted)
	d.state = AwaitingValues
	d.logger.Debug("parameter list received", zap.Int("count", len(sorted)))
	return sorted, nil
}

// HandleValues applies a values response: every returned parameter is typed
// from its value, grouped by namespace relative to the dialog's namespace
// and merged into the form. Parameters with a failed status get an empty
// value. A name nested under another parameter's name is skipped and
// reported as a warning.
func (d *Dialog) HandleValues(res paramservice.ValuesResult) error {
	if err := res.Err(); err != nil {
		d.fail(res.Message, err)
		return err
	}
	d.SetText("")

	ordered := make([]string, 0, len(res.Params))
	for name := range res.Params {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	params := form.Params{}
	var conflicts []error
	for _, name := range ordered {
		result := res.Params[name]
		value := result.Value
		if !result.Code.OK() {
			value = ""
		}
		tag, typed := paramtype.Infer(value)
		segments := names.Split(names.Relative(d.namespace, name))
		if len(segments) == 0 {
			continue
		}
		if err := d.nest(params, segments, form.Entry{Type: tag, Value: typed}); err != nil {
			d.logger.Warn("parameter skipped", zap.String("name", name), zap.Error(err))
			conflicts = append(conflicts, err)
		}
	}

	err := d.box.Populate(params)
	d.state = Populated
	d.infoActive = false
	if err != nil {
		d.warn(err)
		return err
	}
	if len(conflicts) > 0 {
		d.warn(errors.Join(conflicts...))
	}
	d.logger.Debug("parameters populated", zap.Int("count", len(res.Params)))
	return nil
}

// nest places entry at segments below params, adding dict groups on the way.
// Names arrive sorted, so a leaf is always placed before the names nested
// under it; those are refused, as is a leaf landing on an existing group.
func (d *Dialog) nest(params form.Params, segments []string, entry form.Entry) error {
	group, container := params, d.namespace
	for _, segment := range segments[:len(segments)-1] {
		existing, ok := group[segment]
		if !ok {
			child := form.Params{}
			group[segment] = form.Entry{Type: paramtype.TagDict, Value: child}
			group, container = child, names.Join(container, segment)
			continue
		}
		child, isGroup := existing.Value.(form.Params)
		if !isGroup {
			return &form.DuplicateFieldError{Name: segment, Container: container}
		}
		group, container = child, names.Join(container, segment)
	}
	leaf := segments[len(segments)-1]
	if _, taken := group[leaf]; taken {
		return &form.DuplicateFieldError{Name: leaf, Container: container}
	}
	group[leaf] = entry
	return nil
}

// Accept collects the form. Unbound dialogs close right away. Bound dialogs
// deliver the namespace-qualified values and only close once the server
// stored all of them; it reports whether the dialog closed.
func (d *Dialog) Accept(ctx context.Context) (bool, error) {
	if d.state == AwaitingDelivery || d.state.Done() {
		return d.state.Done(), nil
	}
	values, err := d.box.Values()
	if err != nil {
		d.warn(err)
		return false, err
	}
	if d.service == nil {
		d.close(true)
		return true, nil
	}

	qualified := make(map[string]any, len(values))
	for name, value := range values {
		qualified[names.Join(d.namespace, name)] = value
	}
	if len(qualified) == 0 {
		d.close(true)
		return true, nil
	}

	previous := d.state
	d.state = AwaitingDelivery
	d.SetText(SendingMessage)
	d.logger.Info("delivering parameters",
		zap.String("endpoint", d.endpoint),
		zap.Int("count", len(qualified)))

	callCtx, cancel := d.callContext(ctx)
	res, err := d.service.DeliverParameters(callCtx, d.endpoint, qualified)
	cancel()
	if err != nil {
		res = paramservice.DeliveryResult{Code: paramservice.CodeError, Message: err.Error()}
	}
	if err := d.HandleDelivery(res); err != nil {
		if previous == Failed {
			d.state = Failed
		}
		return false, err
	}
	return true, nil
}

// HandleDelivery applies a delivery response. Any failure is raised as a
// warning and returns the dialog to the editable form.
func (d *Dialog) HandleDelivery(res paramservice.DeliveryResult) error {
	if err := res.Err(); err != nil {
		var (
			partial *paramservice.DeliveryPartialError
			remote  *paramservice.RemoteRequestError
		)
		switch {
		case errors.As(err, &partial):
			d.warning = d.sanitize(strings.Join(partial.Messages(), "\n"))
		case errors.As(err, &remote):
			d.warning = d.sanitize(remote.Message)
		default:
			d.warn(err)
		}
		d.state = Populated
		d.infoActive = false
		d.logger.Warn("parameter delivery failed", zap.Error(err))
		return err
	}
	d.state = Delivered
	d.accepted = true
	d.logger.Info("parameters delivered", zap.String("endpoint", d.endpoint))
	return nil
}

// Reject closes the dialog without delivering anything.
func (d *Dialog) Reject() {
	d.close(false)
}

// AddParameterTemplate returns the fields of the form used to add a single
// parameter below namespace.
func AddParameterTemplate(namespace string) form.Params {
	return form.Params{
		"namespace": {Type: paramtype.TagString, Value: namespace},
		"name":      {Type: paramtype.TagString, Value: ""},
		"type":      {Type: paramtype.TagString, Value: append([]string(nil), AddTypes...)},
		"value":     {Type: paramtype.TagString, Value: ""},
	}
}

// AddParameter converts value to typ and merges the parameter into the form
// as if the server had returned it.
func (d *Dialog) AddParameter(namespace, name, typ, value string) error {
	if strings.TrimSpace(name) == "" {
		err := errors.New("dialog: parameter name is required")
		d.warn(err)
		return err
	}
	var (
		converted any
		err       error
	)
	switch typ {
	case paramtype.TagInt:
		converted, err = strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	case paramtype.TagFloat:
		converted, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
	case paramtype.TagBool:
		converted, err = strconv.ParseBool(strings.TrimSpace(value))
	default:
		converted = value
	}
	if err != nil {
		err = &form.ValueCoercionError{Name: names.Join(namespace, name), Input: value, Err: err}
		d.warn(err)
		return err
	}
	return d.HandleValues(paramservice.ValuesResult{
		Code: paramservice.CodeSuccess,
		Params: map[string]paramservice.ParamResult{
			names.Join(namespace, name): {Code: paramservice.CodeSuccess, Value: converted},
		},
	})
}

// AddParameterFrom reads a form built from AddParameterTemplate and adds the
// parameter it describes.
func (d *Dialog) AddParameterFrom(values map[string]any) error {
	text := func(key string) string { return form.FormatValue(values[key]) }
	return d.AddParameter(text("namespace"), text("name"), text("type"), text("value"))
}

func (d *Dialog) fail(message string, err error) {
	if message == "" {
		message = err.Error()
	}
	d.SetText(message)
	d.state = Failed
	d.logger.Warn("parameter request failed", zap.Error(err))
}

func (d *Dialog) warn(err error) {
	d.warning = d.sanitize(err.Error())
}

func (d *Dialog) close(accepted bool) {
	d.accepted = accepted
	d.state = Closed
}

// sanitize reduces server or error text to plain text.
func (d *Dialog) sanitize(text string) string {
	return html.UnescapeString(d.policy.Sanitize(text))
}

func (d *Dialog) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout > 0 {
		return context.WithTimeout(ctx, d.timeout)
	}
	return context.WithCancel(ctx)
}
