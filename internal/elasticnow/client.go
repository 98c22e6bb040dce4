// Package elasticnow is a client for the ticket-index keyword search service.
package elasticnow

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
	"sync"
	"time"

	"github.com/elasticnow/elasticnow/internal/domain"
	"github.com/elasticnow/elasticnow/internal/telemetry"
)

const (
	serviceName = "elasticnow"
	cookieName  = "id"
)

// Client searches the ticket index using a session cookie.
type Client struct {
	instance string
	http     *http.Client
	observer telemetry.Observer

	mu      sync.Mutex
	session string
}

// NewClient creates a Client for the index at instance (a base URL such as
// https://elasticnow.example.edu) authenticated by session.
func NewClient(instance, session string, observer telemetry.Observer) *Client {
	return &Client{
		instance: strings.TrimRight(instance, "/"),
		session:  session,
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

// Instance returns the index base URL.
func (c *Client) Instance() string { return c.instance }

// SetSession replaces the session used for subsequent requests.
func (c *Client) SetSession(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

func (c *Client) currentSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

type term map[string]map[string]string

type searchResult struct {
	Score  float64 `json:"_score"`
	Source struct {
		ID               string `json:"id"`
		Number           string `json:"number"`
		ShortDescription string `json:"short_description"`
		AssignmentGroup  string `json:"assignment_group"`
		Active           string `json:"active"`
	} `json:"_source"`
}

// Search returns active tickets in bin matching keyword. An empty keyword
// matches every active ticket in the bin.
func (c *Client) Search(ctx context.Context, keyword, bin string) ([]domain.SearchHit, error) {
	filters := []term{
		{"term": {"assignment_group": bin}},
		{"term": {"active": "true"}},
	}
	var results []searchResult
	path := "/tickets/" + url.PathEscape(keyword)
	if err := c.do(ctx, "search", http.MethodPost, path, filters, &results); err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, domain.SearchHit{
			ID:               r.Source.ID,
			Number:           r.Source.Number,
			ShortDescription: r.Source.ShortDescription,
			Score:            r.Score,
		})
	}
	return hits, nil
}

// CheckAuth probes whether the current session is accepted.
func (c *Client) CheckAuth(ctx context.Context) error {
	return c.do(ctx, "check_auth", http.MethodGet, "/cli/login/check", nil, nil)
}

// LoginURL is the page that logs the user in and redirects the session to a
// local callback on port.
func (c *Client) LoginURL(port int) string {
	return fmt.Sprintf("%s/cli/login/redirect/%d", c.instance, port)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, op, method, path, body, out)
	c.observer.OnCallComplete(telemetry.CallEvent{
		Service: serviceName,
		Op:      op,
		Status:  status,
		Latency: time.Since(start),
		Success: err == nil,
	})
	return err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, &domain.BackendError{Service: serviceName, Op: op, Err: fmt.Errorf("marshaling request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.instance+path, reader)
	if err != nil {
		return 0, &domain.BackendError{Service: serviceName, Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: c.currentSession()})
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
		return resp.StatusCode, &domain.BackendError{Service: serviceName, Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return resp.StatusCode, nil
}
