// Package httpclient talks to a parameter server over HTTP. The endpoint of
// every call is the server's base URL, for example "http://localhost:11311".
package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	version "github.com/hashicorp/go-version"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/paramservice"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
)

// DefaultVersionConstraint is the range of server API versions Ping accepts.
const DefaultVersionConstraint = ">= 1.0, < 2.0"

// HeaderRequestID carries the id generated for every request.
const HeaderRequestID = "X-Request-ID"

// ErrIncompatibleServer is returned by Ping when the server API version is
// outside the accepted range.
var ErrIncompatibleServer = errors.New("httpclient: incompatible server version")

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s request to %s returned status code %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCodec selects the request encoding.
func WithCodec(cd codec.Codec) Option {
	return func(c *Client) {
		if cd != nil {
			c.codec = cd
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithVersionConstraint replaces DefaultVersionConstraint.
func WithVersionConstraint(constraint string) Option {
	return func(c *Client) {
		c.constraint = constraint
	}
}

// Client implements paramservice.Service over HTTP.
type Client struct {
	http        *http.Client
	codec       codec.Codec
	logger      *zap.Logger
	constraint  string
	constraints version.Constraints
}

var _ paramservice.Service = (*Client)(nil)

// New builds a client. It fails when the version constraint does not parse.
func New(options ...Option) (*Client, error) {
	c := &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		codec:      codec.JSON(),
		logger:     zap.NewNop(),
		constraint: DefaultVersionConstraint,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	constraints, err := version.NewConstraint(c.constraint)
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse version constraint: %w", err)
	}
	c.constraints = constraints
	return c, nil
}

func (c *Client) ListParameters(ctx context.Context, endpoint, namespace string) (paramservice.ListResult, error) {
	var res paramservice.ListResult
	query := url.Values{"namespace": []string{namespace}}
	err := c.do(ctx, http.MethodGet, endpoint, "/api/params?"+query.Encode(), nil, &res)
	return res, err
}

func (c *Client) ParameterValues(ctx context.Context, endpoint string, names []string) (paramservice.ValuesResult, error) {
	var res paramservice.ValuesResult
	err := c.do(ctx, http.MethodPost, endpoint, "/api/params/values", paramservice.ValuesRequest{Names: names}, &res)
	if err != nil {
		return res, err
	}
	for name, param := range res.Params {
		param.Value = codec.Normalize(param.Value)
		res.Params[name] = param
	}
	return res, nil
}

func (c *Client) DeliverParameters(ctx context.Context, endpoint string, params map[string]any) (paramservice.DeliveryResult, error) {
	var res paramservice.DeliveryResult
	err := c.do(ctx, http.MethodPut, endpoint, "/api/params", paramservice.DeliveryRequest{Params: params}, &res)
	return res, err
}

// Ping fetches the server API version and checks it against the configured
// constraint.
func (c *Client) Ping(ctx context.Context, endpoint string) (*version.Version, error) {
	var body struct {
		Version string `json:"version" msgpack:"version" cbor:"version"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, "/api/version", nil, &body); err != nil {
		return nil, err
	}
	v, err := version.NewVersion(body.Version)
	if err != nil {
		return nil, fmt.Errorf("httpclient: parse server version %q: %w", body.Version, err)
	}
	if !c.constraints.Check(v.Core()) {
		return v, fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleServer, v, c.constraint)
	}
	return v, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, payload, out any) error {
	target := strings.TrimRight(endpoint, "/") + path
	var body io.Reader
	if payload != nil {
		data, err := c.codec.Marshal(payload)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("httpclient: build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", c.codec.ContentType())
	if payload != nil {
		req.Header.Set("Content-Type", c.codec.ContentType())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("parameter request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.String("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("httpclient: %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read response: %w", err)
	}
	c.logger.Debug("parameter request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	cd, ok := codec.ForContentType(resp.Header.Get("Content-Type"))
	if !ok {
		cd = c.codec
	}
	if err := cd.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s response: %w", cd.Name(), err)
	}
	return nil
}
