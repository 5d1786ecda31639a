package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/salat/internal/prayer"
)

// Fetcher retrieves the prayer timings for one day and place.
// It is implemented by *Client and can be replaced in tests.
type Fetcher interface {
	FetchTimings(ctx context.Context, q Query) (Timings, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Query identifies one day at one coordinate.
type Query struct {
	Date       prayer.Date
	Coordinate prayer.Coordinate
}

// Timings maps each canonical prayer to its "HH:MM" time. Names the service
// omitted are absent.
type Timings map[prayer.Name]string

// Options tune the calculation parameters sent with every request.
type Options struct {
	Method    int
	School    *int
	Timezone  string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the Aladhan timings API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	method    int
	school    *int
	timezone  string
}

const (
	defaultBaseURL   = "https://api.aladhan.com"
	defaultUserAgent = "salat/0.1"
	defaultMethod    = 2
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for the service at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	method := opts.Method
	if method <= 0 {
		method = defaultMethod
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: ua,
		method:    method,
		school:    opts.School,
		timezone:  strings.TrimSpace(opts.Timezone),
	}, nil
}

// FetchTimings calls GET /v1/timings/{DD-MM-YYYY}.
func (c *Client) FetchTimings(ctx context.Context, q Query) (Timings, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if q.Date.IsZero() {
		return nil, fmt.Errorf("date required")
	}
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(q.Coordinate.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(q.Coordinate.Longitude, 'f', -1, 64))
	values.Set("method", strconv.Itoa(c.method))
	if c.timezone != "" {
		values.Set("timezonestring", c.timezone)
	}
	if c.school != nil {
		values.Set("school", strconv.Itoa(*c.school))
	}
	path := fmt.Sprintf("/v1/timings/%02d-%02d-%04d", q.Date.Day, int(q.Date.Month), q.Date.Year)
	rel := &url.URL{Path: path, RawQuery: values.Encode()}

	var payload timingsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return nil, err
	}
	raw := payload.Timings
	if raw == nil && payload.Data != nil {
		raw = payload.Data.Timings
	}
	if raw == nil {
		return nil, fmt.Errorf("decode response: no timings object")
	}
	return parseTimings(raw), nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
