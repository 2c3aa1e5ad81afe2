package apperror

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an error for the client-facing response.
type Kind int

const (
	Internal Kind = iota
	Unauthenticated
	Forbidden
	InvalidInput
	InvalidReference
	MissingFields
	Conflict
	NotFound
	UpstreamUnavailable
)

var kindInfo = map[Kind]struct {
	status int
	code   string
}{
	Internal:            {http.StatusInternalServerError, "INTERNAL"},
	Unauthenticated:     {http.StatusUnauthorized, "UNAUTHENTICATED"},
	Forbidden:           {http.StatusForbidden, "FORBIDDEN"},
	InvalidInput:        {http.StatusBadRequest, "INVALID_INPUT"},
	InvalidReference:    {http.StatusBadRequest, "INVALID_REFERENCE"},
	MissingFields:       {http.StatusBadRequest, "MISSING_FIELDS"},
	Conflict:            {http.StatusConflict, "CONFLICT"},
	NotFound:            {http.StatusNotFound, "NOT_FOUND"},
	UpstreamUnavailable: {http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"},
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	return kindInfo[k].status
}

// Code returns the machine-readable code for the kind.
func (k Kind) Code() string {
	return kindInfo[k].code
}

func (k Kind) String() string {
	return k.Code()
}

// Error is an application error carrying a Kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, apperror.New(apperror.NotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
// The cause is logged but never sent to clients.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Respond writes err as {"error": ..., "code": ...} and aborts the gin chain.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(Internal, "Server error", err)
	}

	if appErr.Kind == Internal {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	message := appErr.Message
	if appErr.Kind == Internal {
		message = "Server error"
	}

	c.AbortWithStatusJSON(appErr.Kind.Status(), gin.H{
		"error": message,
		"code":  appErr.Kind.Code(),
	})
}
