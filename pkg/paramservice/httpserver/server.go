// Package httpserver exposes a paramservice.Service over HTTP. Bodies are
// encoded as JSON, MessagePack or CBOR according to the request headers.
package httpserver

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-paramform/pkg/paramservice"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
)

// APIVersion is the version reported by GET /api/version.
const APIVersion = "1.0.0"

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = echo.HeaderXRequestID

//go:embed openapi.yaml
var openapiYAML []byte

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBodyLimit caps request bodies, in echo's size notation ("4M").
func WithBodyLimit(limit string) Option {
	return func(s *Server) {
		if limit != "" {
			s.bodyLimit = limit
		}
	}
}

// WithEndpoint sets the endpoint passed to the service on every call.
func WithEndpoint(endpoint string) Option {
	return func(s *Server) {
		s.endpoint = endpoint
	}
}

// Server routes HTTP requests to a parameter service.
type Server struct {
	echo      *echo.Echo
	service   paramservice.Service
	logger    *zap.Logger
	bodyLimit string
	endpoint  string
	doc       *openapi3.T
}

// New builds a server for service.
func New(service paramservice.Service, options ...Option) (*Server, error) {
	if service == nil {
		return nil, errors.New("httpserver: service is required")
	}
	s := &Server{
		service:   service,
		logger:    zap.NewNop(),
		bodyLimit: "4M",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	doc, err := loadDocument(context.Background())
	if err != nil {
		return nil, err
	}
	s.doc = doc

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(s.bodyLimit))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID))
			return nil
		},
	}))

	api := e.Group("/api")
	api.GET("/params", s.HandleList)
	api.POST("/params/values", s.HandleValues)
	api.PUT("/params", s.HandleDeliver)
	api.GET("/version", s.HandleVersion)
	api.GET("/openapi.json", s.HandleOpenAPI)

	s.echo = e
	return s, nil
}

func loadDocument(ctx context.Context) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(openapiYAML)
	if err != nil {
		return nil, fmt.Errorf("httpserver: load api document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("httpserver: validate api document: %w", err)
	}
	return doc, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Document returns the OpenAPI description of the routes.
func (s *Server) Document() *openapi3.T {
	return s.doc
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("parameter server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// HandleList answers GET /api/params?namespace=NS.
func (s *Server) HandleList(c echo.Context) error {
	res, err := s.service.ListParameters(c.Request().Context(), s.endpoint, c.QueryParam("namespace"))
	if err != nil {
		res = paramservice.ListResult{Code: paramservice.CodeError, Message: err.Error()}
	}
	return s.respond(c, res)
}

// HandleValues answers POST /api/params/values.
func (s *Server) HandleValues(c echo.Context) error {
	var req paramservice.ValuesRequest
	if err := s.decode(c, &req); err != nil {
		return err
	}
	res, err := s.service.ParameterValues(c.Request().Context(), s.endpoint, req.Names)
	if err != nil {
		res = paramservice.ValuesResult{Code: paramservice.CodeError, Message: err.Error()}
	}
	return s.respond(c, res)
}

// HandleDeliver answers PUT /api/params.
func (s *Server) HandleDeliver(c echo.Context) error {
	var req paramservice.DeliveryRequest
	if err := s.decode(c, &req); err != nil {
		return err
	}
	params := make(map[string]any, len(req.Params))
	for name, value := range req.Params {
		params[name] = codec.Normalize(value)
	}
	res, err := s.service.DeliverParameters(c.Request().Context(), s.endpoint, params)
	if err != nil {
		res = paramservice.DeliveryResult{Code: paramservice.CodeError, Message: err.Error()}
	}
	return s.respond(c, res)
}

// HandleVersion answers GET /api/version.
func (s *Server) HandleVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"version": APIVersion,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleOpenAPI serves the OpenAPI document.
func (s *Server) HandleOpenAPI(c echo.Context) error {
	return c.JSON(http.StatusOK, s.doc)
}

func (s *Server) decode(c echo.Context, v any) error {
	header := c.Request().Header.Get(echo.HeaderContentType)
	cd := codec.JSON()
	if header != "" {
		var ok bool
		if cd, ok = codec.ForContentType(header); !ok {
			return NewUnsupportedMediaError(header)
		}
	}
	body, err := readBody(c)
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}
	if err := cd.Unmarshal(body, v); err != nil {
		return NewBadRequestError("malformed request body", err)
	}
	return nil
}

// respond encodes v with the codec named by Accept, falling back to the
// request codec and then JSON.
func (s *Server) respond(c echo.Context, v any) error {
	cd, ok := codec.ForContentType(c.Request().Header.Get(echo.HeaderAccept))
	if !ok {
		if cd, ok = codec.ForContentType(c.Request().Header.Get(echo.HeaderContentType)); !ok {
			cd = codec.JSON()
		}
	}
	data, err := cd.Marshal(v)
	if err != nil {
		return NewInternalError("failed to encode response", err)
	}
	return c.Blob(http.StatusOK, cd.ContentType(), data)
}

func readBody(c echo.Context) ([]byte, error) {
	body := c.Request().Body
	if body == nil {
		return nil, nil
	}
	defer body.Close()
	return io.ReadAll(body)
}
