package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/marketlens/internal/api/response"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(GetRequestID(r)))
}

func TestRequestID_Generated(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestID(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Len(t, id, 36)
	assert.Equal(t, id, rec.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rec := httptest.NewRecorder()

	RequestID(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)
	assert.Equal(t, "client-id", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "client-id", rec.Body.String())

	req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
	rec = httptest.NewRecorder()
	RequestID(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1, 2)(http.HandlerFunc(okHandler))

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lowdi", nil))
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0, 0)(http.HandlerFunc(okHandler))
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestLogging_WritesAccessLine(t *testing.T) {
	var buf strings.Builder
	access := zerolog.New(&buf)

	h := RequestID(Logging(LoggingConfig{AccessLogger: &access, SkipPaths: []string{"/health"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/returns?market=kospi50", nil))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `/api/returns?market=kospi50`)
	assert.Contains(t, buf.String(), `"level":"warn"`)

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String())
}

func TestRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	var got string
	r.HandleFunc("/api/stocks/{ticker}", func(w http.ResponseWriter, req *http.Request) {
		got = routeTemplate(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stocks/AAPL", nil))
	assert.Equal(t, "/api/stocks/{ticker}", got)

	assert.Equal(t, "unmatched", routeTemplate(httptest.NewRequest(http.MethodGet, "/x", nil)))
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"https://dash.example"})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/lowdi", nil)
	req.Header.Set("Origin", "https://dash.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://dash.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

type headerCounter struct {
	*httptest.ResponseRecorder
	writes int
}

func (h *headerCounter) WriteHeader(code int) {
	h.writes++
	h.ResponseRecorder.WriteHeader(code)
}

func TestTimeout_SingleGatewayTimeout(t *testing.T) {
	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		response.FromError(w, r, r.Context().Err())
	}))

	rec := &headerCounter{ResponseRecorder: httptest.NewRecorder()}
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lowdi", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, 1, rec.writes)

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, response.ErrCodeRequestTimeout, body.Error.Code)
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Timeout(time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
