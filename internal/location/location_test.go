package location

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/five82/salat/internal/config"
	"github.com/five82/salat/internal/prayer"
)

type countingProvider struct {
	perm      Permission
	permErr   error
	posErr    error
	asked     int
	positions int
}

func (p *countingProvider) RequestPermission(context.Context) (Permission, error) {
	p.asked++
	return p.perm, p.permErr
}

func (p *countingProvider) CurrentPosition(context.Context) (prayer.Coordinate, error) {
	p.positions++
	if p.posErr != nil {
		return prayer.Coordinate{}, p.posErr
	}
	return prayer.Coordinate{Latitude: 1, Longitude: 2}, nil
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	p := &countingProvider{perm: Granted}
	coord, err := Resolve(ctx, p)
	if err != nil || coord.Latitude != 1 || coord.Longitude != 2 {
		t.Fatalf("Resolve = %v, %v", coord, err)
	}
	if p.asked != 1 || p.positions != 1 {
		t.Fatalf("asked=%d positions=%d, want 1/1", p.asked, p.positions)
	}

	p = &countingProvider{perm: Denied}
	if _, err := Resolve(ctx, p); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if p.positions != 0 {
		t.Fatal("position read after denial")
	}

	p = &countingProvider{perm: Granted, posErr: errors.New("no fix")}
	if _, err := Resolve(ctx, p); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}

	p = &countingProvider{permErr: errors.New("prompt crashed")}
	if _, err := Resolve(ctx, p); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}

	if _, err := Resolve(ctx, nil); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	coord := &prayer.Coordinate{Latitude: 24.8607, Longitude: 67.0011}

	got, err := Resolve(ctx, Static{Coordinate: coord, Allow: true})
	if err != nil || got != *coord {
		t.Fatalf("Resolve = %v, %v", got, err)
	}
	if _, err := Resolve(ctx, Static{Coordinate: coord}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if _, err := Resolve(ctx, Static{Allow: true}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestIPLookup(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    prayer.Coordinate
		wantErr bool
	}{
		{"success", http.StatusOK, `{"status":"success","lat":60.17,"lon":24.94,"city":"Helsinki"}`, prayer.Coordinate{Latitude: 60.17, Longitude: 24.94}, false},
		{"fail status", http.StatusOK, `{"status":"fail","message":"reserved range"}`, prayer.Coordinate{}, true},
		{"missing lat", http.StatusOK, `{"status":"success","lon":24.94}`, prayer.Coordinate{}, true},
		{"http error", http.StatusTooManyRequests, `{}`, prayer.Coordinate{}, true},
		{"bad json", http.StatusOK, `{`, prayer.Coordinate{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			l := IPLookup{Endpoint: srv.URL, Allow: true}
			got, err := Resolve(context.Background(), l)
			if tt.wantErr {
				if !errors.Is(err, ErrUnavailable) {
					t.Fatalf("err = %v, want ErrUnavailable", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("Resolve = %v, %v, want %v", got, err, tt.want)
			}
		})
	}
}

func TestIPLookup_DeniedSkipsNetwork(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	if _, err := Resolve(context.Background(), IPLookup{Endpoint: srv.URL}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if hits != 0 {
		t.Fatalf("hits = %d, want 0", hits)
	}
}

func TestFromConfig(t *testing.T) {
	lat, lon := 1.5, 2.5
	p, err := FromConfig(config.Location{Provider: "static", Latitude: &lat, Longitude: &lon, Allow: true})
	if err != nil {
		t.Fatalf("FromConfig returned error: %v", err)
	}
	got, err := Resolve(context.Background(), p)
	if err != nil || got.Latitude != lat || got.Longitude != lon {
		t.Fatalf("Resolve = %v, %v", got, err)
	}

	p, err = FromConfig(config.Location{Provider: "ip", Endpoint: "http://example.invalid"})
	if err != nil {
		t.Fatalf("FromConfig returned error: %v", err)
	}
	if _, ok := p.(IPLookup); !ok {
		t.Fatalf("provider = %T, want IPLookup", p)
	}

	if _, err := FromConfig(config.Location{Provider: "gps"}); err == nil {
		t.Fatal("unknown provider accepted")
	}
}
