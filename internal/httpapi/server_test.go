package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/salat/internal/aladhan"
	"github.com/five82/salat/internal/cache"
	"github.com/five82/salat/internal/completion"
	"github.com/five82/salat/internal/kv"
	"github.com/five82/salat/internal/prayer"
	"github.com/five82/salat/internal/syncer"
)

var march1 = prayer.Date{Year: 2024, Month: time.March, Day: 1}

func newAPI(t *testing.T, status int) (http.Handler, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"timings":{"Fajr":"05:12","Dhuhr":"12:30","Asr":"15:45","Maghrib":"18:50","Isha":"20:10"}}}`))
	}))
	t.Cleanup(upstream.Close)

	client, err := aladhan.NewClient(upstream.URL, aladhan.Options{})
	require.NoError(t, err)
	store := kv.NewMemory()
	engine := syncer.NewEngine(syncer.Deps{
		Fetcher:    client,
		Cache:      cache.New(store, 0),
		Completion: completion.New(store, completion.ScopeGlobal),
	})
	session := syncer.NewSession(context.Background(), engine, march1)
	_ = session.LocationResolved(prayer.Coordinate{Latitude: 60.1699, Longitude: 24.9384}, nil)
	return NewServer(session).Router(), hits
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	h, _ := newAPI(t, http.StatusOK)
	rec, body := do(t, h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestGetDay(t *testing.T) {
	h, hits := newAPI(t, http.StatusOK)
	rec, body := do(t, h, http.MethodGet, "/api/day")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "2024-03-01", body["date"])
	assert.Equal(t, false, body["loading"])
	assert.Equal(t, float64(5), body["total"])
	prayers := body["prayers"].([]any)
	require.Len(t, prayers, 5)
	first := prayers[0].(map[string]any)
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, "Fajr", first["name"])
	assert.Equal(t, "05:12", first["time"])
	assert.Equal(t, false, first["checked"])
	assert.Equal(t, "2024-03-01", first["date"])
	assert.Equal(t, int32(1), hits.Load())
}

func TestNavigate(t *testing.T) {
	h, hits := newAPI(t, http.StatusOK)

	_, body := do(t, h, http.MethodPost, "/api/day/next")
	assert.Equal(t, "2024-03-02", body["date"])
	_, body = do(t, h, http.MethodPost, "/api/day/previous")
	assert.Equal(t, "2024-03-01", body["date"])
	assert.Equal(t, int32(2), hits.Load(), "the start day comes from the cache")

	_, body = do(t, h, http.MethodPost, "/api/day/2024-12-25")
	assert.Equal(t, "2024-12-25", body["date"])

	rec, _ := do(t, h, http.MethodPost, "/api/day/christmas")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggle(t *testing.T) {
	h, _ := newAPI(t, http.StatusOK)

	rec, body := do(t, h, http.MethodPost, "/api/prayers/2/toggle")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["completed"])
	second := body["prayers"].([]any)[1].(map[string]any)
	assert.Equal(t, true, second["checked"])

	for _, bad := range []string{"0", "6", "fajr"} {
		rec, _ := do(t, h, http.MethodPost, fmt.Sprintf("/api/prayers/%s/toggle", bad))
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestFetchFailureIsReported(t *testing.T) {
	h, _ := newAPI(t, http.StatusInternalServerError)

	_, body := do(t, h, http.MethodGet, "/api/day")
	assert.Equal(t, "fetch failed", body["error"])
	assert.Empty(t, body["prayers"])

	rec, _ := do(t, h, http.MethodPost, "/api/prayers/1/toggle")
	assert.Equal(t, http.StatusConflict, rec.Code, "nothing to toggle")

	_, body = do(t, h, http.MethodPost, "/api/day/reload")
	assert.Equal(t, "fetch failed", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newAPI(t, http.StatusOK)
	do(t, h, http.MethodGet, "/api/day")

	rec, _ := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "salat_day_loads_total")
	assert.Contains(t, rec.Body.String(), "salat_http_requests_total")
}

func TestMetricsUnmatchedRoutesShareOneSeries(t *testing.T) {
	h, _ := newAPI(t, http.StatusOK)
	for _, path := range []string{"/nope-a", "/nope-b", "/nope-c"} {
		rec, _ := do(t, h, http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec, _ := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, `route="unmatched"`)
	assert.Contains(t, out, `status="404"`)
	assert.NotContains(t, out, `route="/nope-a"`)
	assert.NotContains(t, out, `route="/nope-b"`)
}
