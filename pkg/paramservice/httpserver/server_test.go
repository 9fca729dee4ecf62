package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-paramform/pkg/paramservice"
	"github.com/goliatone/go-paramform/pkg/paramservice/codec"
	"github.com/goliatone/go-paramform/pkg/paramservice/memory"
)

func newServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Seed(map[string]any{
		"robot": map[string]any{"speed": 1.5, "name": "r2"},
	}))
	srv, err := New(store)
	require.NoError(t, err)
	return srv, store
}

func TestHandleList(t *testing.T) {
	srv, _ := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/params?namespace=/robot", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	var res paramservice.ListResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, paramservice.CodeSuccess, res.Code)
	assert.Equal(t, []string{"/robot/name", "/robot/speed"}, res.Names)
}

func TestHandleValues_EchoContext(t *testing.T) {
	srv, _ := newServer(t)
	e := echo.New()
	body := bytes.NewBufferString(`{"names":["/robot/speed","/nope"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/params/values", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if assert.NoError(t, srv.HandleValues(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"value":1.5`)
		assert.Contains(t, rec.Body.String(), `Parameter [/nope] is not set`)
	}
}

func TestHandleDeliver_MsgPack(t *testing.T) {
	srv, store := newServer(t)
	mp := codec.MsgPack()
	payload, err := mp.Marshal(paramservice.DeliveryRequest{Params: map[string]any{
		"/robot/speed": 2.5,
		"/robot/limits": map[string]any{
			"max": int64(10),
		},
	}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/params", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, codec.ContentTypeMsgPack)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, codec.ContentTypeMsgPack, rec.Header().Get(echo.HeaderContentType))

	var res paramservice.DeliveryResult
	require.NoError(t, mp.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, paramservice.CodeSuccess, res.Code)
	assert.NoError(t, res.Err())

	speed, ok := store.Get("/robot/speed")
	assert.True(t, ok)
	assert.Equal(t, 2.5, speed)
	limit, ok := store.Get("/robot/limits/max")
	assert.True(t, ok)
	assert.Equal(t, int64(10), limit)
}

func TestHandleValues_CBORAccept(t *testing.T) {
	srv, _ := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/params/values", bytes.NewBufferString(`{"names":["/robot/name"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAccept, codec.ContentTypeCBOR)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res paramservice.ValuesResult
	require.NoError(t, codec.CBOR().Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "r2", res.Params["/robot/name"].Value)
}

func TestHandleValues_Errors(t *testing.T) {
	srv, _ := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/params/values", bytes.NewBufferString(`{"names":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"BAD_REQUEST"`)

	req = httptest.NewRequest(http.MethodPost, "/api/params/values", bytes.NewBufferString(`<names/>`))
	req.Header.Set(echo.HeaderContentType, "application/xml")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestVersionAndOpenAPI(t *testing.T) {
	srv, _ := newServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"`+APIVersion+`"`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/api/params/values"`)

	doc := srv.Document()
	require.NotNil(t, doc.Paths.Value("/api/params"))
	assert.NotNil(t, doc.Paths.Value("/api/params").Put)
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
