package syncer

import (
	"errors"
	"fmt"

	"github.com/five82/salat/internal/kv"
	"github.com/five82/salat/internal/location"
)

// Kind classifies the failures a day load or toggle can surface.
type Kind int

const (
	KindUnknown Kind = iota
	LocationPermissionDenied
	LocationUnavailable
	FetchFailed
	StorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case LocationPermissionDenied:
		return "LocationPermissionDenied"
	case LocationUnavailable:
		return "LocationUnavailable"
	case FetchFailed:
		return "FetchFailed"
	case StorageUnavailable:
		return "StorageUnavailable"
	default:
		return "Unknown"
	}
}

// Message is the text shown to the user.
func (k Kind) Message() string {
	switch k {
	case LocationPermissionDenied, LocationUnavailable:
		return "location unavailable"
	case FetchFailed:
		return "fetch failed"
	case StorageUnavailable:
		return "storage unavailable"
	default:
		return "something went wrong"
	}
}

// Error carries a Kind and the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Message()
	}
	return fmt.Sprintf("%s: %v", e.Kind.Message(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrSuperseded is returned by loads whose result was dropped because a
// newer load started first. It is not shown to the user.
var ErrSuperseded = errors.New("load superseded by a newer day")

// KindOf extracts the Kind of err. Location and storage sentinels from the
// lower layers are recognised too.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, location.ErrPermissionDenied):
		return LocationPermissionDenied
	case errors.Is(err, location.ErrUnavailable):
		return LocationUnavailable
	case errors.Is(err, kv.ErrUnavailable):
		return StorageUnavailable
	}
	return KindUnknown
}
