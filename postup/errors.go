package postup

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid postup configuration")
	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("postup validation failed")
	// ErrConnection matches every *ConnectionError via errors.Is
	ErrConnection = errors.New("unable to connect to PostUp")
)

// connectionErrorCode is the server-error class code carried by ConnectionError.
const connectionErrorCode = http.StatusInternalServerError

// ValidationKind classifies a ValidationError
type ValidationKind int

const (
	// KindNotAllowed means a present value is not in the allowed set
	KindNotAllowed ValidationKind = iota
	// KindMissing means a required value is absent
	KindMissing
	// KindType means a value has a type outside the allowed set
	KindType
	// KindDate means a value is not a usable date/time
	KindDate
	// KindNull covers NotAllNull and NoNull failures
	KindNull
	// KindJSON means a response body is not well-formed JSON
	KindJSON
)

// String returns the string representation of a ValidationKind
func (k ValidationKind) String() string {
	switch k {
	case KindNotAllowed:
		return "not_allowed"
	case KindMissing:
		return "missing"
	case KindType:
		return "type"
	case KindDate:
		return "date"
	case KindNull:
		return "null"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// JSONErrorKind names the class of a JSON parse failure
type JSONErrorKind int

const (
	// JSONErrorNone is used for validation errors unrelated to JSON
	JSONErrorNone JSONErrorKind = iota
	// JSONErrorDepth means the maximum nesting depth was exceeded
	JSONErrorDepth
	// JSONErrorStateMismatch means a closing delimiter did not match its opener
	JSONErrorStateMismatch
	// JSONErrorCtrlChar means an unescaped control character was found
	JSONErrorCtrlChar
	// JSONErrorSyntax covers all other malformed input
	JSONErrorSyntax
	// JSONErrorUTF8 means the input is not valid UTF-8
	JSONErrorUTF8
)

// String returns the message used for a JSONErrorKind
func (k JSONErrorKind) String() string {
	switch k {
	case JSONErrorNone:
		return "none"
	case JSONErrorDepth:
		return "maximum stack depth exceeded"
	case JSONErrorStateMismatch:
		return "underflow or the modes mismatch"
	case JSONErrorCtrlChar:
		return "unexpected control character found"
	case JSONErrorSyntax:
		return "syntax error, malformed JSON"
	case JSONErrorUTF8:
		return "malformed UTF-8 characters"
	default:
		return "unknown error"
	}
}

// ValidationError is returned when a parameter violates a local constraint
// or when a response body is not well-formed JSON.
type ValidationError struct {
	Field    string
	Kind     ValidationKind
	JSONKind JSONErrorKind
	Message  string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("postup validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("postup validation error: %s", e.Message)
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConnectionError is returned when the HTTP transport could not complete.
// It is never retried by the client.
type ConnectionError struct {
	Message string
	Code    int
	Err     error
}

func newConnectionError(err error) *ConnectionError {
	return &ConnectionError{
		Message: ErrConnection.Error(),
		Code:    connectionErrorCode,
		Err:     err,
	}
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (code %d): %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// Unwrap returns the underlying transport error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConnection
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// APIError represents a PostUp API error response (status >= 400)
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("postup API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// IsConnectionError reports whether err is or wraps a *ConnectionError.
func IsConnectionError(err error) bool {
	var cErr *ConnectionError
	return errors.As(err, &cErr)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsNotFound()
	}
	return false
}

// IsUnauthorized reports whether err is an APIError with status 401 or 403.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsUnauthorized()
	}
	return false
}
