// Package paramservice defines the request/response contract of a remote
// parameter server: listing the names below a namespace, reading their
// values and writing new ones.
package paramservice

import "context"

// Code is the status of a request or of a single parameter within one.
type Code int

const (
	// CodeError marks a request the server could not process.
	CodeError Code = -1
	// CodeFailure marks a request the server rejected.
	CodeFailure Code = 0
	// CodeSuccess marks a completed request.
	CodeSuccess Code = 1
)

// OK reports whether c is CodeSuccess.
func (c Code) OK() bool { return c == CodeSuccess }

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeFailure:
		return "failure"
	case CodeError:
		return "error"
	default:
		return "unknown"
	}
}

// ListResult answers a list request.
type ListResult struct {
	Code    Code     `json:"code" msgpack:"code" cbor:"code" yaml:"code"`
	Message string   `json:"message" msgpack:"message" cbor:"message" yaml:"message"`
	Names   []string `json:"names" msgpack:"names" cbor:"names" yaml:"names"`
}

// ParamResult is the outcome for one parameter of a values or delivery
// request. Value is only meaningful in values responses.
type ParamResult struct {
	Code    Code   `json:"code" msgpack:"code" cbor:"code" yaml:"code"`
	Message string `json:"message" msgpack:"message" cbor:"message" yaml:"message"`
	Value   any    `json:"value,omitempty" msgpack:"value,omitempty" cbor:"value,omitempty" yaml:"value,omitempty"`
}

// ValuesResult answers a values request, keyed by fully-qualified name.
type ValuesResult struct {
	Code    Code                   `json:"code" msgpack:"code" cbor:"code" yaml:"code"`
	Message string                 `json:"message" msgpack:"message" cbor:"message" yaml:"message"`
	Params  map[string]ParamResult `json:"params" msgpack:"params" cbor:"params" yaml:"params"`
}

// DeliveryResult answers a delivery request, keyed by fully-qualified name.
type DeliveryResult struct {
	Code    Code                   `json:"code" msgpack:"code" cbor:"code" yaml:"code"`
	Message string                 `json:"message" msgpack:"message" cbor:"message" yaml:"message"`
	Params  map[string]ParamResult `json:"params" msgpack:"params" cbor:"params" yaml:"params"`
}

// Service is a parameter server reachable at an endpoint. A returned error
// means the request never produced a response; a response with a non-success
// code is returned without error.
type Service interface {
	ListParameters(ctx context.Context, endpoint, namespace string) (ListResult, error)
	ParameterValues(ctx context.Context, endpoint string, names []string) (ValuesResult, error)
	DeliverParameters(ctx context.Context, endpoint string, params map[string]any) (DeliveryResult, error)
}

// ListRequest is the wire form of a list request.
type ListRequest struct {
	Namespace string `json:"namespace" msgpack:"namespace" cbor:"namespace"`
}

// ValuesRequest is the wire form of a values request.
type ValuesRequest struct {
	Names []string `json:"names" msgpack:"names" cbor:"names"`
}

// DeliveryRequest is the wire form of a delivery request.
type DeliveryRequest struct {
	Params map[string]any `json:"params" msgpack:"params" cbor:"params"`
}
