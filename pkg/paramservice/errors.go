package paramservice

import (
	"fmt"
	"sort"
	"strings"
)

// Operation names used in RemoteRequestError.
const (
	OpList     = "list"
	OpValues   = "values"
	OpDelivery = "delivery"
)

// DefaultDeliveryMessage is reported when a delivery fails without a message.
const DefaultDeliveryMessage = "Unknown error on set parameter"

// RemoteRequestError wraps a non-success response to a whole request.
type RemoteRequestError struct {
	Op      string
	Code    Code
	Message string
}

func (e *RemoteRequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("paramservice: %s request failed with %s", e.Op, e.Code)
	}
	return fmt.Sprintf("paramservice: %s request failed with %s: %s", e.Op, e.Code, e.Message)
}

// ParamFailure is the failed outcome for a single parameter.
type ParamFailure struct {
	Name    string
	Code    Code
	Message string
}

// DeliveryPartialError collects the parameters a delivery could not set.
type DeliveryPartialError struct {
	Failures []ParamFailure
}

func (e *DeliveryPartialError) Error() string {
	return "paramservice: delivery failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns one message per failure in name order.
func (e *DeliveryPartialError) Messages() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msg := f.Message
		if msg == "" {
			msg = fmt.Sprintf("%s: %s", f.Name, f.Code)
		}
		out = append(out, msg)
	}
	return out
}

// Err returns a RemoteRequestError when the list request failed.
func (r ListResult) Err() error {
	if r.Code.OK() {
		return nil
	}
	return &RemoteRequestError{Op: OpList, Code: r.Code, Message: r.Message}
}

// Err returns a RemoteRequestError when the values request failed. Failures
// of single parameters are not errors.
func (r ValuesResult) Err() error {
	if r.Code.OK() {
		return nil
	}
	return &RemoteRequestError{Op: OpValues, Code: r.Code, Message: r.Message}
}

// Err returns a RemoteRequestError when the delivery request failed and a
// DeliveryPartialError when any parameter could not be set.
func (r DeliveryResult) Err() error {
	if !r.Code.OK() {
		msg := r.Message
		if msg == "" {
			msg = DefaultDeliveryMessage
		}
		return &RemoteRequestError{Op: OpDelivery, Code: r.Code, Message: msg}
	}
	var failures []ParamFailure
	for name, res := range r.Params {
		if res.Code.OK() {
			continue
		}
		failures = append(failures, ParamFailure{Name: name, Code: res.Code, Message: res.Message})
	}
	if len(failures) == 0 {
		return nil
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Name < failures[j].Name })
	return &DeliveryPartialError{Failures: failures}
}
