package api

import (
	"errors"
	"net/http"

	"github.com/okian/expenses/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrInternal   = errors.New("internal error")
)

// Response messages.
const (
	msgInvalid  = "Invalid expense data"
	msgNotFound = "Expense not found"
	msgInternal = "An internal error occurred."
	msgDeleted  = "Expense deleted"
)

// KindError tags a failed operation with one of the sentinel kinds.
// errors.Is matches both the kind and the cause.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes the kind and the cause.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// WrapKind tags err with kind.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// NewKind returns a bare error of kind.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// classify tags an upstream error with the kind its cause implies.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, model.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	default:
		return WrapKind(op, ErrInternal, err)
	}
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func errorBody(status int, err error) errorResponse {
	switch status {
	case http.StatusBadRequest:
		return errorResponse{Message: msgInvalid, Error: cause(err)}
	case http.StatusNotFound:
		return errorResponse{Message: msgNotFound}
	default:
		return errorResponse{Message: msgInternal, Error: cause(err)}
	}
}

// cause returns the error text without the operation prefix.
func cause(err error) string {
	var ke *KindError
	if errors.As(err, &ke) {
		if ke.Err != nil {
			return ke.Err.Error()
		}
		return ke.Kind.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// errorType and severity label error metrics by status.
func errorType(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "server_error"
	case statusCode == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode >= http.StatusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

func errorSeverity(statusCode int) string {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return "high"
	case statusCode >= http.StatusBadRequest:
		return "medium"
	default:
		return "low"
	}
}
