package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/five82/salat/internal/prayer"
)

const (
	defaultEndpoint  = "http://ip-api.com/json/"
	defaultUserAgent = "salat/0.1"
	lookupTimeout    = 5 * time.Second
)

// IPLookup estimates the position from the public IP address using an
// ip-api.com compatible endpoint.
type IPLookup struct {
	Endpoint   string
	Allow      bool
	HTTPClient *http.Client
}

type ipResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

func (l IPLookup) RequestPermission(context.Context) (Permission, error) {
	if l.Allow {
		return Granted, nil
	}
	return Denied, nil
}

func (l IPLookup) CurrentPosition(ctx context.Context) (prayer.Coordinate, error) {
	endpoint := strings.TrimSpace(l.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: lookupTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return prayer.Coordinate{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return prayer.Coordinate{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return prayer.Coordinate{}, fmt.Errorf("geolocation returned status %d", resp.StatusCode)
	}
	var payload ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return prayer.Coordinate{}, fmt.Errorf("decode geolocation response: %w", err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return prayer.Coordinate{}, fmt.Errorf("geolocation failed: %s", payload.Message)
	}
	if payload.Lat == nil || payload.Lon == nil {
		return prayer.Coordinate{}, fmt.Errorf("geolocation response missing lat/lon")
	}
	return prayer.Coordinate{Latitude: *payload.Lat, Longitude: *payload.Lon}, nil
}
