// Package servicenow talks to the work system's Table and Standard Change
// REST APIs.
package servicenow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/telemetry"
)

const serviceName = "servicenow"

// Config holds what the client needs to reach an instance.
type Config struct {
	Instance string
	// BaseURL overrides https://<Instance>.service-now.com when set.
	BaseURL  string
	Username string
	Password string
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return InstanceURL(c.Instance)
}

// Client is a work-system client using basic auth.
type Client struct {
	cfg      Config
	http     *http.Client
	observer telemetry.Observer
}

// NewClient creates a Client for cfg.
func NewClient(cfg Config, observer telemetry.Observer) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: telemetry.OrNoop(observer),
	}
}

// result is the envelope every Table API response is wrapped in.
type result[T any] struct {
	Result T `json:"result"`
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	u := c.cfg.baseURL() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.do(ctx, op, http.MethodGet, u, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, c.cfg.baseURL()+path, body, out)
}

func (c *Client) do(ctx context.Context, op, method, u string, body, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, op, method, u, body, out)
	c.observer.OnCallComplete(telemetry.CallEvent{
		Service: serviceName,
		Op:      op,
		Status:  status,
		Latency: time.Since(start),
		Success: err == nil,
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, u string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, &domain.BackendError{Service: serviceName, Op: op, Err: fmt.Errorf("marshaling request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, &domain.BackendError{Service: serviceName, Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &domain.BackendError{Service: serviceName, Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &domain.BackendError{Service: serviceName, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &domain.BackendError{Service: serviceName, Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, &domain.BackendError{Service: serviceName, Op: op, Body: strings.TrimSpace(string(respBody)), Err: fmt.Errorf("decoding response: %w", err)}
	}
	return resp.StatusCode, nil
}
