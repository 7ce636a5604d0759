package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds are the machine-readable half of every error response.
const (
	KindValidation   = "VALIDATION_ERROR"
	KindUnauthorized = "UNAUTHORIZED"
	KindForbidden    = "FORBIDDEN"
	KindNotFound     = "NOT_FOUND"
	KindConflict     = "CONFLICT"
	KindInternal     = "INTERNAL"
)

var kindStatus = map[string]int{
	KindValidation:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindInternal:     http.StatusInternalServerError,
}

// Error pairs a kind with a human-readable message and an optional
// detail payload (stock conflicts carry product/available/requested).
type Error struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

func Validation(message string) *Error   { return NewError(KindValidation, message) }
func Unauthorized(message string) *Error { return NewError(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return NewError(KindForbidden, message) }
func NotFound(message string) *Error     { return NewError(KindNotFound, message) }
func Conflict(message string) *Error     { return NewError(KindConflict, message) }
func Internal(message string) *Error     { return NewError(KindInternal, message) }

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Fail writes err with the HTTP status its kind maps to. Unknown error
// types are reported as internal without leaking their message chain.
func Fail(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal("internal server error")
	}

	status, ok := kindStatus[appErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": appErr})
}

// FailKind is shorthand for Fail with a fresh error.
func FailKind(c *gin.Context, kind, message string) {
	Fail(c, NewError(kind, message))
}
