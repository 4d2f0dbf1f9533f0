package payments

import (
	"errors"
	"net/http"
)

// Code classifies a payment failure. Codes are stable and surface in logs.
type Code string

const (
	CodeInvalidRequest     Code = "invalid_request"
	CodeConfiguration      Code = "configuration_error"
	CodeGateway            Code = "gateway_error"
	CodeInvalidSignature   Code = "invalid_signature"
	CodePersistenceWarning Code = "persistence_warning"
	CodeSessionMismatch    Code = "session_mismatch"
)

// Error is the payment domain error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus maps the code to the response status. Every client-facing
// failure of the payment endpoints is a 400 except an identity mismatch.
func (e *Error) HTTPStatus() int {
	if e.Code == CodeSessionMismatch {
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidRequest   = New(CodeInvalidRequest, "invalid request")
	ErrConfiguration    = New(CodeConfiguration, "configuration error")
	ErrGateway          = New(CodeGateway, "gateway error")
	ErrInvalidSignature = New(CodeInvalidSignature, "invalid signature")
	ErrSessionMismatch  = New(CodeSessionMismatch, "session does not match user")
)

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}
