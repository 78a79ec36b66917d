package usecase

import "fmt"

// Error codes surfaced to HTTP handlers for status mapping.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeMissingContactID   = "MISSING_CONTACT_ID"
	CodeLeadNotCrmLinked   = "LEAD_NOT_CRM_LINKED"
	CodeLeadNotFound       = "LEAD_NOT_FOUND"
	CodeNoActiveConnection = "NO_ACTIVE_CONNECTION"
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// UpstreamError wraps a non-2xx answer from an external service. Status and
// body are kept verbatim so callers can persist or surface what the service
// said. These are never retried automatically.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.Status, e.Body)
}

func IsUpstreamError(err error) bool {
	_, ok := err.(*UpstreamError)
	return ok
}
