package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mobapp/internal/common"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Status codes used when no HTTP status exists.
const (
	StatusNoResponse = 0
	StatusBadRequest = -1
)

const (
	MsgSessionExpired = "Authentication expired. Please login again."
	MsgNetwork        = "Network error. Please check your connection."
	MsgTimeout        = "The server took too long to respond."
	MsgBadResponse    = "Unexpected response from server."
)

// ErrorKind classifies an ApiError.
type ErrorKind int

const (
	// KindTransport: no response was received (includes timeouts).
	KindTransport ErrorKind = iota
	// KindBackend: the backend answered with a non-2xx status.
	KindBackend
	// KindSessionExpired: a 401 could not be recovered from.
	KindSessionExpired
	// KindRequest: the request could not be built.
	KindRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBackend:
		return "backend"
	case KindSessionExpired:
		return "session_expired"
	case KindRequest:
		return "request"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ApiError is the normalized failure of a gateway call.
//
// FieldErrors is never nil; it is empty when the backend sent no per-field
// messages.
type ApiError struct {
	Message     string
	StatusCode  int
	FieldErrors map[string][]string
	Kind        ErrorKind
	Err         error
}

func (e *ApiError) Error() string {
	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func (e *ApiError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindTransport
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case common.ErrSessionExpired:
		return e.Kind == KindSessionExpired
	}
	return false
}

// FirstFieldError returns the first message reported for field, if any.
func (e *ApiError) FirstFieldError(field string) string {
	if msgs := e.FieldErrors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func newTransportError(msg string, cause error) *ApiError {
	return &ApiError{Message: msg, StatusCode: StatusNoResponse, FieldErrors: map[string][]string{}, Kind: KindTransport, Err: cause}
}

func newRequestError(cause error) *ApiError {
	return &ApiError{
		Message:     fmt.Sprintf("could not build request: %v", cause),
		StatusCode:  StatusBadRequest,
		FieldErrors: map[string][]string{},
		Kind:        KindRequest,
		Err:         cause,
	}
}

func newSessionExpiredError(cause error) *ApiError {
	return &ApiError{
		Message:     MsgSessionExpired,
		StatusCode:  http.StatusUnauthorized,
		FieldErrors: map[string][]string{},
		Kind:        KindSessionExpired,
		Err:         cause,
	}
}

func isUnauthorized(err error) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr) && apiErr.Kind == KindBackend && apiErr.StatusCode == http.StatusUnauthorized
}
