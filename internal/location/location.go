package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/salat/internal/config"
	"github.com/five82/salat/internal/prayer"
)

// Permission is the outcome of a permission request.
type Permission int

const (
	Denied Permission = iota
	Granted
)

func (p Permission) String() string {
	if p == Granted {
		return "granted"
	}
	return "denied"
}

var (
	// ErrPermissionDenied is returned by Resolve when the user refused access.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrUnavailable is returned by Resolve when no position could be obtained.
	ErrUnavailable = errors.New("location unavailable")
)

// Provider yields the device position after a permission handshake.
type Provider interface {
	RequestPermission(ctx context.Context) (Permission, error)
	CurrentPosition(ctx context.Context) (prayer.Coordinate, error)
}

// Resolve performs the one-shot handshake: ask once, then read the position
// once. A denial is final for the session.
func Resolve(ctx context.Context, p Provider) (prayer.Coordinate, error) {
	if p == nil {
		return prayer.Coordinate{}, fmt.Errorf("%w: no provider", ErrUnavailable)
	}
	perm, err := p.RequestPermission(ctx)
	if err != nil {
		return prayer.Coordinate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if perm != Granted {
		return prayer.Coordinate{}, ErrPermissionDenied
	}
	coord, err := p.CurrentPosition(ctx)
	if err != nil {
		return prayer.Coordinate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return coord, nil
}

// Static returns a fixed coordinate.
type Static struct {
	Coordinate *prayer.Coordinate
	Allow      bool
}

func (s Static) RequestPermission(context.Context) (Permission, error) {
	if s.Allow {
		return Granted, nil
	}
	return Denied, nil
}

func (s Static) CurrentPosition(context.Context) (prayer.Coordinate, error) {
	if s.Coordinate == nil {
		return prayer.Coordinate{}, errors.New("no coordinate configured")
	}
	return *s.Coordinate, nil
}

// FromConfig builds the provider selected by cfg.Provider.
func FromConfig(cfg config.Location) (Provider, error) {
	switch cfg.Provider {
	case "", "static":
		var coord *prayer.Coordinate
		if cfg.Latitude != nil && cfg.Longitude != nil {
			coord = &prayer.Coordinate{Latitude: *cfg.Latitude, Longitude: *cfg.Longitude}
		}
		return Static{Coordinate: coord, Allow: cfg.Allow}, nil
	case "ip":
		return IPLookup{Endpoint: cfg.Endpoint, Allow: cfg.Allow}, nil
	default:
		return nil, fmt.Errorf("unknown location provider %q", cfg.Provider)
	}
}
