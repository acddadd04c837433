// pkg/problems/problems.go
package problems

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies every failure the service can surface to a caller.
type Kind int

const (
	KindInvalidPayload Kind = iota + 1
	KindInvalidCredentials
	KindTenantDisabled
	KindUnauthorized
	KindConfiguration
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPayload:
		return "invalid_payload"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindTenantDisabled:
		return "tenant_disabled"
	case KindUnauthorized:
		return "unauthorized"
	case KindConfiguration:
		return "configuration_error"
	case KindInfrastructure:
		return "infrastructure_error"
	default:
		return "unknown"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInvalidPayload:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized:
		return http.StatusUnauthorized
	case KindTenantDisabled:
		return http.StatusForbidden
	case KindConfiguration, KindInfrastructure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ClientFault reports whether the kind is an expected authentication decision
// rather than an operational fault.
func (k Kind) ClientFault() bool {
	return k.Status() < http.StatusInternalServerError
}

// Error is the concrete failure value. Message is safe to show to callers;
// Err carries internal detail and is never rendered outside development.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so callers can compare against the
// sentinels below regardless of wrapped detail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidPayload     = &Error{Kind: KindInvalidPayload, Message: "Invalid login payload"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid credentials"}
	ErrTenantDisabled     = &Error{Kind: KindTenantDisabled, Message: "Tenant account is disabled"}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Message: "Invalid or expired token"}
)

// Configuration wraps a misconfiguration detected at startup or first use.
func Configuration(msg string, err error) *Error {
	return &Error{Kind: KindConfiguration, Message: msg, Err: err}
}

// Infrastructure wraps a storage or other operational failure.
func Infrastructure(msg string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: msg, Err: err}
}

// Invalid returns an InvalidPayload error carrying validation detail.
func Invalid(err error) *Error {
	return &Error{Kind: KindInvalidPayload, Message: ErrInvalidPayload.Message, Err: err}
}

// KindOf extracts the kind from err. Errors that are not *Error are treated as
// infrastructure faults.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInfrastructure
}

// Type builds a full problem type URL for the given kind under base.
func Type(base string, k Kind) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		base = "https://example.com/problems"
	}
	return base + "/" + strings.ReplaceAll(k.String(), "_", "-")
}
