package errx

import (
	"errors"
	"fmt"
)

// Type classifies an error for transport-agnostic handling
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeBusiness      Type = "BUSINESS"
	TypeRateLimit     Type = "RATE_LIMIT"
	TypeTimeout       Type = "TIMEOUT"
	TypeUnavailable   Type = "UNAVAILABLE"
	TypeInternal      Type = "INTERNAL"
)

// ErrorCode is a registered error identifier, unique within its registry
type ErrorCode string

type definition struct {
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error definitions for one domain package.
// Register all codes at init time; New/NewWithCause create instances.
type Registry struct {
	prefix      string
	definitions map[ErrorCode]definition
}

// NewRegistry creates a registry whose codes are prefixed with the given domain name
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:      prefix,
		definitions: make(map[ErrorCode]definition),
	}
}

// Register adds an error definition and returns its full code
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) ErrorCode {
	full := ErrorCode(r.prefix + "_" + code)
	r.definitions[full] = definition{
		errType:    errType,
		httpStatus: httpStatus,
		message:    message,
	}
	return full
}

// New creates an error instance for a registered code
func (r *Registry) New(code ErrorCode) *Error {
	def, ok := r.definitions[code]
	if !ok {
		return &Error{
			Type:       TypeInternal,
			Code:       code,
			Message:    "Unregistered error code",
			HTTPStatus: 500,
		}
	}
	return &Error{
		Type:       def.errType,
		Code:       code,
		Message:    def.message,
		HTTPStatus: def.httpStatus,
	}
}

// NewWithCause creates an error instance wrapping an underlying cause
func (r *Registry) NewWithCause(code ErrorCode, cause error) *Error {
	e := r.New(code)
	e.Cause = cause
	return e
}

// Error is the concrete error carried across layers and rendered at the edge
type Error struct {
	Type       Type           `json:"type"`
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithDetail attaches a single detail key/value and returns the error for chaining
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails attaches multiple details at once
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithMessage overrides the registered message for this instance
func (e *Error) WithMessage(message string) *Error {
	e.Message = message
	return e
}

// ToHTTPResponse returns the JSON body rendered by the HTTP error handler
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"type":    e.Type,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// IsCode reports whether err is (or wraps) an *Error with the given code
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsType reports whether err is (or wraps) an *Error of the given type
func IsType(err error, t Type) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}
