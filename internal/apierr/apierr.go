// Package apierr defines the API error taxonomy. Every handler renders
// errors through Respond so the wire shape stays uniform:
// {"error":{"code":"...","message":"..."}}.
package apierr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeNotFound           = "NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeUpstreamError      = "UPSTREAM_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func BadRequest(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeInvalidParameter, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}
}

// ServiceUnavailable is the uniform degraded-mode error returned when a
// backing store is not configured.
func ServiceUnavailable(msg string) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: CodeServiceUnavailable, Message: msg}
}

func Upstream(msg string, cause error) *Error {
	e := &Error{Status: http.StatusBadGateway, Code: CodeUpstreamError, Message: msg}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func Internal(cause error) *Error {
	e := &Error{Status: http.StatusInternalServerError, Code: CodeInternalError, Message: "internal error"}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Respond writes err as the JSON error envelope. Non-*Error values are
// wrapped as INTERNAL_ERROR.
func Respond(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}
	c.JSON(apiErr.Status, gin.H{"error": apiErr})
}
