// Package banchoerr distinguishes client-attributable (External) errors
// from server-attributable (Internal) ones, per the propagation policy in
// spec §7: External surfaces as 400 with its reason, Internal surfaces as
// 500 with a fixed body while the real cause is logged.
package banchoerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind distinguishes the two error classes.
type Kind int

const (
	KindExternal Kind = iota
	KindInternal
)

// Error is a request-scoped failure tagged with a Kind.
type Error struct {
	Kind   Kind
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status code this error should surface as.
func (e *Error) Status() int {
	if e.Kind == KindExternal {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Body returns what should be written to the HTTP response: the reason
// itself for External errors, a fixed opaque string for Internal ones so
// detail is never leaked to the client.
func (e *Error) Body() string {
	if e.Kind == KindExternal {
		return e.Reason
	}
	return "internal server error"
}

// External wraps reason as a client-attributable error.
func External(reason string) error {
	return &Error{Kind: KindExternal, Reason: reason}
}

// Externalf is External with fmt.Sprintf-style formatting.
func Externalf(format string, args ...any) error {
	return &Error{Kind: KindExternal, Reason: fmt.Sprintf(format, args...)}
}

// InvalidToken is the External error for a missing or unrecognized session
// token (§4.5, §7).
func InvalidToken() error {
	return &Error{Kind: KindExternal, Reason: "invalid token"}
}

// MalformedPacket is the External error for an ill-formed login blob or
// truncated frame (§4.3, §7).
func MalformedPacket(reason string) error {
	return &Error{Kind: KindExternal, Reason: fmt.Sprintf("malformed packet: %s", reason)}
}

// Internal wraps cause as a server-attributable error. reason is a short
// description of what was being attempted; cause is logged, never
// returned to the client.
func Internal(reason string, cause error) error {
	return &Error{Kind: KindInternal, Reason: reason, Cause: cause}
}

// As is a thin re-export of errors.As for call sites that only import this
// package.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsExternal reports whether err is (or wraps) a KindExternal *Error.
func IsExternal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindExternal
	}
	return false
}
