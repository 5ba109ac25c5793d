package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-reviews/internal/shared/eventbus"
	"restaurant-reviews/internal/shared/storage"
	"restaurant-reviews/internal/shared/storage/filestore"
	"restaurant-reviews/pkg/logging"
)

// plainHasher 测试用哈希器，避免 bcrypt 开销
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain:" + password, nil }

// loadingProvider 始终处于加载中的后端
type loadingProvider struct {
	storage.DataProvider
}

func (loadingProvider) State() storage.State { return storage.StateLoading }

type testEnv struct {
	handler *Handler
	router  http.Handler
	hub     *eventbus.Hub
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()
	fs, err := filestore.Open(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)

	hub := eventbus.NewHub(16)
	metrics := NewMetrics("test")
	provider := storage.Instrument(fs, storage.Hooks{Notifier: hub, Observe: metrics.RecordStoreOp})
	t.Cleanup(func() {
		hub.Close()
		provider.Close()
	})

	logs := &bytes.Buffer{}
	opts := Options{
		Provider:  provider,
		Changes:   hub,
		Metrics:   metrics,
		Logger:    logging.NewWithWriter(logs, logging.Config{Level: "info", Format: "json"}),
		Hasher:    plainHasher{},
		APIPrefix: "/api",
	}
	if mutate != nil {
		mutate(&opts)
	}
	h := NewHandler(opts)
	return &testEnv{handler: h, router: h.Router(), hub: hub, logs: logs}
}

func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

const restaurantBody = `{"name":"Kang Ho Dong Baekjeong","neighborhood":"Manhattan","type":"Asian","latlng":{"lat":40.747143,"lng":-73.985414}}`

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())

	loading := newTestEnv(t, func(o *Options) { o.Provider = loadingProvider{} })
	w = loading.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"loading"}`, w.Body.String())
}

func TestRouter_Prefix(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.APIPrefix = "/v2" })

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/v2/restaurants", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/restaurants", "").Code)
}

func TestRouter_UnmatchedJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		allow  string
	}{
		{"unknown path", http.MethodGet, "/api/nothing", http.StatusNotFound, ""},
		{"unknown root", http.MethodGet, "/", http.StatusNotFound, ""},
		{"wrong method", http.MethodPatch, "/api/users", http.StatusMethodNotAllowed, "GET, HEAD, POST"},
		{"ws wrong method", http.MethodPost, "/ws/changes", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"error":"`+http.StatusText(tt.status)+`"}`, w.Body.String())
			if tt.allow != "" {
				assert.Equal(t, tt.allow, w.Header().Get("Allow"))
			}
		})
	}
}

func TestRouter_EndToEnd(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/restaurants", restaurantBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = env.do(http.MethodPost, "/api/reviews", `{"restaurant":1,"user":"u-1","rating":5,"comments":"Best galbi"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/reviews/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
	assert.Len(t, reviews, 1)

	w = env.do(http.MethodPost, "/api/users", `{"email":"a@b.com","password":"x","firstName":"A","lastName":"B","phone":"1","gender":"f","dob":"2000-01-01","address":{"city":"c","state":"s","country":"n"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "plain:x")
}

func TestRouter_LegacyErrorStatus(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.LegacyErrorStatus = true })

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/restaurants/abc", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/restaurants", `{}`).Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(http.MethodOptions, "/api/users", "", "Origin", "http://example.com")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	restricted := newTestEnv(t, func(o *Options) { o.AllowedOrigins = []string{"http://app.local"} })
	w = restricted.do(http.MethodGet, "/api/users", "", "Origin", "http://app.local")
	assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))

	w = restricted.do(http.MethodGet, "/api/users", "", "Origin", "http://evil.local")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogging(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/users/missing", "", RequestIDHeader, "req-42")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	logs := env.logs.String()
	assert.Contains(t, logs, `"request_id":"req-42"`)
	assert.Contains(t, logs, `"status":404`)

	w = env.do(http.MethodGet, "/health", "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRecoverMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewWithWriter(&logs, logging.Config{Level: "info", Format: "json"})
	h := recoverMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Contains(t, logs.String(), "Handler panic")
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.handler.GetMetrics().WatchHub("test", env.hub)

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/restaurants", restaurantBody).Code)
	env.do(http.MethodGet, "/api/restaurants/99", "")
	env.do(http.MethodGet, "/no/such/route", "")

	w := env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `test_http_requests_total{method="POST",path="/api/restaurants",status="200"} 1`)
	assert.Contains(t, text, `test_http_requests_total{method="GET",path="/api/restaurants/{id}",status="404"} 1`)
	assert.Contains(t, text, `path="unmatched"`)
	assert.Contains(t, text, `test_store_operations_total{collection="restaurants",operation="CreateRestaurant",result="ok"} 1`)
	assert.Contains(t, text, `test_store_operations_total{collection="restaurants",operation="GetRestaurant",result="not_found"} 1`)
	assert.Contains(t, text, "test_change_feed_subscribers 0")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", resultLabel(nil))
	assert.Equal(t, "not_found", resultLabel(storage.ErrNotFound))
	assert.Equal(t, "duplicate", resultLabel(storage.ErrDuplicate))
	assert.Equal(t, "unavailable", resultLabel(storage.ErrUnavailable))
	assert.Equal(t, "error", resultLabel(storage.ErrPersistence))
}
