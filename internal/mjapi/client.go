// Package mjapi is the HTTP client for the Midjourney proxy's task
// submission API.
package mjapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/soyeahso/mjrelay/internal/logging"
)

const submitTimeout = 60 * time.Second

// serviceFailureText is reported to the user when the proxy is unreachable
// or returned garbage. The proxy's own descriptions are passed through
// verbatim in all other cases.
const serviceFailureText = "image service unavailable, please try again later"

// Client submits tasks to the proxy. Failures are reported once through the
// returned Result; there are no retries.
type Client struct {
	endpoint   string
	notifyHook string
	httpClient *http.Client
	log        *logging.Logger
}

// NewClient creates a task client for the given proxy base endpoint.
// notifyHook, if non-empty, is attached to every submission so the proxy
// calls back to our /notify listener.
func NewClient(endpoint, notifyHook string, log *logging.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		notifyHook: notifyHook,
		httpClient: &http.Client{Timeout: submitTimeout},
		log:        log.Sub("mjapi"),
	}
}

// Submit sends one task request and returns the proxy's synchronous result.
// Failure tiers: a non-2xx response surfaces the HTTP status and status
// text; a transport or decode error surfaces CodeInternal with a generic
// message. The error return is always nil — every failure is a Result so
// the router has one reporting path.
func (c *Client) Submit(ctx context.Context, req Request) Result {
	body := req.Payload()
	body["state"] = req.Key()
	if c.notifyHook != "" {
		body["notifyHook"] = c.notifyHook
	}

	payload, err := json.Marshal(body)
	if err != nil {
		c.log.Error().Err(err).Str("path", req.Path()).Msg("marshal task request failed")
		return Result{Code: CodeInternal, Description: serviceFailureText}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+req.Path(), bytes.NewReader(payload))
	if err != nil {
		c.log.Error().Err(err).Str("path", req.Path()).Msg("build task request failed")
		return Result{Code: CodeInternal, Description: serviceFailureText}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("path", req.Path()).Msg("submit task failed")
		return Result{Code: CodeInternal, Description: serviceFailureText}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error().
			Int("status", resp.StatusCode).
			Str("path", req.Path()).
			Msg("submit task rejected")
		return Result{
			Code:        resp.StatusCode,
			Description: fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.log.Error().Err(err).Str("path", req.Path()).Msg("decode task result failed")
		return Result{Code: CodeInternal, Description: serviceFailureText}
	}

	c.log.Debug().
		Int("code", result.Code).
		Str("path", req.Path()).
		Str("state", req.Key()).
		Msg("task submitted")
	return result
}
