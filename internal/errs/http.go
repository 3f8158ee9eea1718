package errs

import (
	"errors"
	"net/http"
)

// HTTPStatus maps an error from the taxonomy to a status code and the
// machine-readable code written in the error envelope.
func HTTPStatus(err error) (int, string) {
	var (
		notFound    *NotFoundError
		validation  *ValidationError
		unauth      *UnauthenticatedError
		integration *IntegrationNotConfiguredError
		unsupported *UnsupportedBankError
		upstream    *UpstreamAuthError
		external    *ExternalServiceError
	)

	switch {
	case errors.As(err, &unauth):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &validation):
		return http.StatusBadRequest, "invalid_input"
	case errors.As(err, &integration):
		return http.StatusBadRequest, integration.Reason
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, "unsupported_bank"
	case errors.As(err, &upstream):
		return http.StatusUnauthorized, "bank_auth_failed"
	case errors.As(err, &external):
		return http.StatusBadGateway, "upstream_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
