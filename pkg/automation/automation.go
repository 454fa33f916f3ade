// Package automation wraps outbound JSON API calls used by chat intents:
// generic GET fetches, workflow webhooks and the weather lookup.
package automation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/utils/json"
)

// Config configures the automation client.
type Config struct {
	// WeatherBaseURL is the OpenWeatherMap API root.
	WeatherBaseURL string
	// WeatherAPIKey is sent as appid.
	WeatherAPIKey string
	// Units is passed through to the weather API (metric, imperial, standard).
	Units string
	// Timeout bounds every request.
	Timeout time.Duration
}

// Client performs automation requests.
type Client struct {
	cfg   Config
	resty *resty.Client
}

// NewClient creates an automation client.
func NewClient(cfg Config) *Client {
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	r := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{cfg: cfg, resty: r}
}

// FetchAPIData GETs url with query params and decodes the JSON body.
func (c *Client) FetchAPIData(ctx context.Context, url string, params map[string]string) (map[string]any, error) {
	var out map[string]any
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&out).
		Get(url)
	if err != nil {
		return nil, errors.ErrAutomationFailed.WithMessagef("Error fetching API data: %v", err).WithCause(err)
	}
	if resp.IsError() {
		return nil, errors.ErrAutomationFailed.WithMessagef("Error fetching API data: %s", resp.Status())
	}
	return out, nil
}

// TriggerWorkflow POSTs data as JSON to endpoint and decodes the reply.
func (c *Client) TriggerWorkflow(ctx context.Context, endpoint string, data any) (map[string]any, error) {
	var out map[string]any
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(data).
		SetResult(&out).
		Post(endpoint)
	if err != nil {
		return nil, errors.ErrAutomationFailed.WithMessagef("Error triggering workflow: %v", err).WithCause(err)
	}
	if resp.IsError() {
		return nil, errors.ErrAutomationFailed.WithMessagef("Error triggering workflow: %s", resp.Status())
	}
	return out, nil
}

// WeatherReport is the subset of the current weather payload we render.
type WeatherReport struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// String renders the report for chat.
func (w *WeatherReport) String() string {
	desc := "unknown conditions"
	if len(w.Weather) > 0 {
		desc = w.Weather[0].Description
	}
	return fmt.Sprintf("Weather in %s: %s, %.1f°C (feels like %.1f°C), humidity %d%%",
		w.Name, desc, w.Main.Temp, w.Main.FeelsLike, w.Main.Humidity)
}

// Weather fetches current weather for city.
func (c *Client) Weather(ctx context.Context, city string) (*WeatherReport, error) {
	url := strings.TrimRight(c.cfg.WeatherBaseURL, "/") + "/data/2.5/weather"

	var report WeatherReport
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": c.cfg.WeatherAPIKey,
			"units": c.cfg.Units,
		}).
		SetResult(&report).
		Get(url)
	if err != nil {
		return nil, errors.ErrAutomationFailed.WithMessagef("Error fetching API data: %v", err).WithCause(err)
	}
	if resp.IsError() {
		return nil, errors.ErrAutomationFailed.WithMessagef("Error fetching API data: %s", resp.Status())
	}
	return &report, nil
}
