package llm

import (
	"errors"
	"net/http"
)

// ErrorKind classifies model and pipeline failures into the small set of
// machine-readable categories surfaced to clients.
type ErrorKind string

const (
	KindModelUnavailable   ErrorKind = "model_unavailable"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindQuotaExhausted     ErrorKind = "quota_exhausted"
	KindIndexUnavailable   ErrorKind = "index_unavailable"
	KindParseError         ErrorKind = "parse_error"
	KindTransportError     ErrorKind = "transport_error"
	KindValidationError    ErrorKind = "validation_error"
)

// ModelError wraps a failure with its kind. Cause keeps the underlying
// error reachable through errors.Is/As.
type ModelError struct {
	Kind  ErrorKind
	Cause error
}

func (e *ModelError) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Cause.Error()
}

func (e *ModelError) Unwrap() error { return e.Cause }

// KindOf extracts the kind of err, defaulting to model_unavailable for
// errors raised outside the taxonomy.
func KindOf(err error) ErrorKind {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindModelUnavailable
}

func kindFromStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindInvalidCredentials
	case status == http.StatusTooManyRequests:
		return KindQuotaExhausted
	case status >= 500:
		return KindModelUnavailable
	default:
		return KindTransportError
	}
}
