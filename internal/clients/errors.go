package clients

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindUnavailable  Kind = "unavailable"
	KindNetwork      Kind = "network"
	KindRejected     Kind = "rejected"
)

// Backend error codes that mean the caller (or the store's payout account)
// is not authorized for the requested operation.
var unauthorizedCodes = map[string]bool{
	"unauthorized":             true,
	"no_token":                 true,
	"no_subaccount":            true,
	"invalid_store_subaccount": true,
}

// UpstreamError is a failed call to a backend service.
type UpstreamError struct {
	Service string
	Status  int
	Code    string
	Message string
	Kind    Kind
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func newUpstreamError(service string, status int, code, message string) *UpstreamError {
	if message == "" {
		message = http.StatusText(status)
	}
	code = strings.ToLower(strings.TrimSpace(code))
	return &UpstreamError{
		Service: service,
		Status:  status,
		Code:    code,
		Message: message,
		Kind:    classify(status, code, message),
	}
}

func classify(status int, code, message string) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case unauthorizedCodes[code]:
		return KindUnauthorized
	case code == "" && legacyUnauthorizedMessage(message):
		return KindUnauthorized
	case status >= 500:
		return KindUnavailable
	default:
		return KindRejected
	}
}

// legacyUnauthorizedMessage covers older backend builds that return
// authorization failures with no status or code, only a message.
func legacyUnauthorizedMessage(msg string) bool {
	m := strings.ToLower(msg)
	for _, s := range []string{"unauthorized", "no token", "no subaccount", "invalid store subaccount"} {
		if strings.Contains(m, s) {
			return true
		}
	}
	return false
}

// IsUnauthorized reports whether err is an authorization-kind upstream failure.
func IsUnauthorized(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == KindUnauthorized
}

// AsUpstream unwraps err into an *UpstreamError.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
