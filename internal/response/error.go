package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/GregMSThompson/wallet-sync/internal/errs"
	"github.com/GregMSThompson/wallet-sync/pkg/logger"
)

type ErrorResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func (h *responseHandler) WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeError(w, r, status, ErrorResponse{Code: code, Message: message})
}

func (h *responseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Use context logger if encoding fails
		log := logger.FromContext(r.Context())
		log.Error("failed to encode error response", "error", err, "status", status, "code", body.Code)
	}
}

// HandleError logs err with the request logger and writes the matching
// error envelope. Internal failures never leak their message.
func (h *responseHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	status, code := errs.HTTPStatus(err)
	body := ErrorResponse{Code: code, Message: err.Error()}

	var (
		integration *errs.IntegrationNotConfiguredError
		upstream    *errs.UpstreamAuthError
		external    *errs.ExternalServiceError
		dbErr       *errs.DatabaseError
		encErr      *errs.EncryptionError
	)

	switch {
	case errors.As(err, &integration):
		log.Warn("bank integration not configured", "reason", integration.Reason, "missing", integration.Missing)
		body.Message = integration.Message
		body.Missing = integration.Missing

	case errors.As(err, &upstream):
		log.Warn("bank rejected credentials", "upstream_status", upstream.Status, "error", upstream.Message)
		body.Message = upstream.Message

	case errors.As(err, &external):
		log.Warn("external service error",
			"service", external.Service,
			"transient", external.Transient,
			"error", err)
		body.Message = "Bank service unavailable"

	case errors.As(err, &dbErr):
		log.Error("database error",
			"operation", dbErr.Operation,
			"error", err)
		body.Message = "An error occurred"

	case errors.As(err, &encErr):
		log.Error("encryption error", "error", err)
		body.Message = "An error occurred"

	case status == http.StatusInternalServerError:
		log.Error("unexpected error",
			"error", err,
			"type", fmt.Sprintf("%T", err))
		body.Message = "An unexpected error occurred"

	default:
		log.Warn("request failed", "status", status, "code", code, "error", err)
	}

	h.writeError(w, r, status, body)
}
