// Package paramform wires the form, dialog, terminal session and parameter
// service packages into the flows used by the commands.
package paramform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/config"
	"github.com/goliatone/go-paramform/pkg/dialog"
	"github.com/goliatone/go-paramform/pkg/form"
	"github.com/goliatone/go-paramform/pkg/history"
	"github.com/goliatone/go-paramform/pkg/history/sqlstore"
	"github.com/goliatone/go-paramform/pkg/paramfile"
	"github.com/goliatone/go-paramform/pkg/paramservice"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
	"github.com/goliatone/go-paramform/pkg/paramservice/httpclient"
	"github.com/goliatone/go-paramform/pkg/paramservice/httpserver"
	"github.com/goliatone/go-paramform/pkg/paramservice/memory"
	"github.com/goliatone/go-paramform/pkg/render"
	"github.com/goliatone/go-paramform/pkg/renderers/headless"
	"github.com/goliatone/go-paramform/pkg/renderers/tui"
)

// Result is the outcome of an interactive session.
type Result struct {
	Accepted  bool
	Delivered bool
	Values    map[string]any
}

// Option configures Collect.
type Option func(*collectConfig)

type collectConfig struct {
	service paramservice.Service
	history *history.Cache
	logger  *zap.Logger
	session []tui.Option
}

// WithService talks to service instead of an HTTP client built from the
// configuration.
func WithService(service paramservice.Service) Option {
	return func(c *collectConfig) {
		c.service = service
	}
}

// WithHistory shares a value history cache with the form.
func WithHistory(cache *history.Cache) Option {
	return func(c *collectConfig) {
		c.history = cache
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *zap.Logger) Option {
	return func(c *collectConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSessionOptions forwards options to the terminal session.
func WithSessionOptions(options ...tui.Option) Option {
	return func(c *collectConfig) {
		c.session = append(c.session, options...)
	}
}

// NewClient builds the HTTP parameter client described by cfg.
func NewClient(cfg config.Config, logger *zap.Logger) (*httpclient.Client, error) {
	cd, err := codec.ByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return httpclient.New(
		httpclient.WithCodec(cd),
		httpclient.WithLogger(logger),
		httpclient.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

// OpenHistory returns a history cache persisted in the sqlite database at
// path and restored from it. An empty path gives an in-memory cache. The
// returned close function releases the database.
func OpenHistory(ctx context.Context, path string, logger *zap.Logger) (*history.Cache, func() error, error) {
	if path == "" {
		return history.New(history.WithLogger(logger)), func() error { return nil }, nil
	}
	store, err := sqlstore.Open(path, sqlstore.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	cache := history.New(history.WithStore(store), history.WithLogger(logger))
	if err := cache.Restore(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("paramform: restore history: %w", err)
	}
	return cache, store.Close, nil
}

// Collect runs a terminal session over params, or over the parameters of
// cfg.Namespace on cfg.Endpoint when an endpoint is configured, and returns
// what the user accepted.
func Collect(ctx context.Context, cfg config.Config, params form.Params, options ...Option) (Result, error) {
	cc := &collectConfig{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cc)
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return Result{}, err
	}
	dialogOpts := []dialog.Option{
		dialog.WithParams(params),
		dialog.WithNamespace(cfg.Namespace),
		dialog.WithHistory(cc.history),
		dialog.WithLogger(cc.logger),
		dialog.WithTimeout(timeout),
	}
	if cfg.Endpoint != "" {
		service := cc.service
		if service == nil {
			client, err := NewClient(cfg, cc.logger)
			if err != nil {
				return Result{}, err
			}
			if _, err := client.Ping(ctx, cfg.Endpoint); errors.Is(err, httpclient.ErrIncompatibleServer) {
				return Result{}, err
			} else if err != nil {
				cc.logger.Warn("parameter server version check failed", zap.Error(err))
			}
			service = client
		}
		dialogOpts = append(dialogOpts, dialog.WithRemote(service, cfg.Endpoint))
	}

	d, err := dialog.New(headless.New(), dialogOpts...)
	if err != nil {
		return Result{}, err
	}
	session, err := tui.NewSession(d, append([]tui.Option{tui.WithFilter(cfg.Filter)}, cc.session...)...)
	if err != nil {
		return Result{}, err
	}
	accepted, err := session.Run(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Accepted: accepted, Delivered: d.State() == dialog.Delivered}
	if accepted {
		if res.Values, err = d.Values(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// WriteValues renders values in the configured output format.
func WriteValues(ctx context.Context, w io.Writer, cfg config.Config, values map[string]any) error {
	out, err := render.Values(ctx, cfg.Output, values, render.Options{Namespace: cfg.Namespace})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// NewServer builds a parameter server over an in-memory store seeded from the
// configured parameter file.
func NewServer(cfg config.Config, logger *zap.Logger) (*httpserver.Server, *memory.Store, error) {
	store := memory.New()
	if cfg.Server.Seed != "" {
		raw, err := paramfile.Read(cfg.Server.Seed)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Seed(paramfile.Plain(raw)); err != nil {
			return nil, nil, fmt.Errorf("paramform: seed: %w", err)
		}
	}
	srv, err := httpserver.New(store,
		httpserver.WithLogger(logger),
		httpserver.WithBodyLimit(cfg.Server.BodyLimit),
		httpserver.WithEndpoint(cfg.Server.Addr),
	)
	if err != nil {
		return nil, nil, err
	}
	return srv, store, nil
}
