package automation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/naughty-assistant/pkg/errors"
)

func TestWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "k3y", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"name":"Paris","main":{"temp":18.25,"feels_like":17.9,"humidity":60},"weather":[{"description":"light rain"}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{WeatherBaseURL: srv.URL, WeatherAPIKey: "k3y", Timeout: time.Second})
	report, err := c.Weather(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Weather in Paris: light rain, 18.2°C (feels like 17.9°C), humidity 60%", report.String())
}

func TestFetchAPIDataError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{Timeout: time.Second})
	_, err := c.FetchAPIData(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAutomationFailed))
	assert.Equal(t, "Error fetching API data: 401 Unauthorized", errors.FromError(err).Message("en"))
}

func TestTriggerWorkflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"job":"build"}`, string(body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"queued"}`)
	}))
	defer srv.Close()

	c := NewClient(Config{Timeout: time.Second})
	out, err := c.TriggerWorkflow(context.Background(), srv.URL, map[string]string{"job": "build"})
	require.NoError(t, err)
	assert.Equal(t, "queued", out["status"])
}
