package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/kart-io/naughty-assistant/internal/assistant/handler"
	mwopts "github.com/kart-io/naughty-assistant/pkg/options/middleware"
)

type echoChat struct{}

func (echoChat) Route(_ context.Context, text string, _ bool) (string, error) { return text, nil }

type loadedModel struct{}

func (loadedModel) Available() bool { return true }
func (loadedModel) Model() string   { return "llama3" }

func newTestEngine(mw *mwopts.Options) *gin.Engine {
	reg := prometheus.NewRegistry()
	h := handler.New(handler.Config{Chat: echoChat{}, Model: loadedModel{}})
	return New(h, Config{
		Mode:       gin.TestMode,
		Middleware: mw,
		Registerer: reg,
		Gatherer:   reg,
		Namespace:  "naughty_assistant",
	})
}

func TestRoutes(t *testing.T) {
	r := newTestEngine(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"response":"hi"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `naughty_assistant_http_requests_total{method="POST",path="/chat",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestEngine(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	mw := mwopts.NewOptions()
	mw.RateLimit.Enabled = true
	mw.RateLimit.RPS = 1
	mw.RateLimit.Burst = 1
	r := newTestEngine(mw)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		codes = append(codes, w.Code)
	}
	// healthz is in the default skip list
	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plugins", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plugins", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
