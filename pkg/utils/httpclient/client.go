// Package httpclient is the JSON client shared by the model providers and
// the analysis sidecars. It retries transport failures and 5xx replies and
// forwards the caller's trace context.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kart-io/naughty-assistant/pkg/utils/json"
)

// Client issues JSON requests.
type Client struct {
	r *resty.Client
}

// NewClient bounds every attempt by timeout and makes up to maxRetries
// extra attempts after a transport error or a 5xx reply.
func NewClient(timeout time.Duration, maxRetries int) *Client {
	r := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetRetryCount(max(maxRetries, 0)).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= 500
		}).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
			return nil
		})
	return &Client{r: r}
}

// PostJSON sends in as a JSON body and decodes the reply into out, which
// may be nil.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	req := c.r.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(in)
	if out != nil {
		req.SetResult(out).ForceContentType("application/json")
	}
	resp, err := req.Post(url)
	return check(resp, err)
}

// GetJSON decodes the reply of a GET into out, which may be nil.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req := c.r.R().SetContext(ctx)
	if out != nil {
		req.SetResult(out).ForceContentType("application/json")
	}
	resp, err := req.Get(url)
	return check(resp, err)
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

// StatusError is a reply with status >= 400 that survived the retries.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}
