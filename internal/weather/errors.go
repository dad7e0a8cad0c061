package weather

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnavailable Kind = iota
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unavailable"
	}
}

// Message is the text shown to the user for this kind of failure.
func (k Kind) Message() string {
	switch k {
	case KindNotFound:
		return "City not found. Please check the spelling and try again."
	case KindUnauthorized:
		return "API key is invalid. Please contact support."
	default:
		return "Failed to fetch weather data. Please try again later."
	}
}

// Error is a provider failure classified into the dashboard's taxonomy.
// Error() is the user-facing message; the cause is available via Unwrap.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrUnavailable  = &Error{Kind: KindUnavailable}
)

func (e *Error) Error() string {
	return e.Kind.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Detail describes the underlying cause for logs.
func (e *Error) Detail() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func unavailable(status int, err error) *Error {
	return &Error{Kind: KindUnavailable, StatusCode: status, Err: err}
}

// classifyStatus maps a non-2xx provider status. 404 only means "city not
// found" for name lookups.
func classifyStatus(status int, byName bool, cause error) *Error {
	switch {
	case status == http.StatusNotFound && byName:
		return &Error{Kind: KindNotFound, StatusCode: status, Err: cause}
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, StatusCode: status, Err: cause}
	default:
		return unavailable(status, cause)
	}
}

// KindOf returns the kind of err, or KindUnavailable for foreign errors.
func KindOf(err error) Kind {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return KindUnavailable
}
