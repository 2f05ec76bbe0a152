// Package serviceerr defines the gateway error taxonomy: every failure a
// handler can surface maps onto one of these codes and from there onto an
// HTTP status.
package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeUnauthenticated Code = "unauthenticated"
	CodeUpstream        Code = "upstream_error"
	CodeConfiguration   Code = "configuration_error"
	CodeTransport       Code = "transport_error"
	CodeUnknown         Code = "unknown"
)

// Error is a classified gateway failure. Status is only meaningful for
// CodeUpstream, where it carries the verbatim upstream status.
type Error struct {
	Code    Code
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// HTTPStatus maps the error onto the response status the browser sees.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUpstream:
		if e.Status != 0 {
			return e.Status
		}
		return http.StatusBadGateway
	case CodeConfiguration:
		return http.StatusInternalServerError
	case CodeTransport:
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated, Message: "not authenticated"}
	ErrMisconfigured   = &Error{Code: CodeConfiguration, Message: "server misconfigured"}
	ErrUpstreamDown    = &Error{Code: CodeTransport, Message: "upstream unavailable"}
)

// Upstream wraps a non-2xx upstream response, preserving its status and
// message for verbatim passthrough.
func Upstream(status int, message string) *Error {
	return &Error{Code: CodeUpstream, Status: status, Message: message}
}

// AsError classifies err, degrading anything unrecognised to a transport
// error so raw failures never leak to the browser.
func AsError(err error) *Error {
	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}

	return ErrUpstreamDown
}
