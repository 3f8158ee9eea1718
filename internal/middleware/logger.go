package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/wallet-sync/pkg/logger"
)

type loggerMiddleware struct {
	Log       *slog.Logger
	ProjectID string
}

func NewLoggerMiddleware(log *slog.Logger, projectID string) *loggerMiddleware {
	return &loggerMiddleware{Log: log, ProjectID: projectID}
}

// LoggerMiddleware initializes a request-scoped logger with request context.
// This should be one of the first middlewares in the chain.
func (m *loggerMiddleware) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract request ID from Chi middleware (if present)
		requestID := chimiddleware.GetReqID(r.Context())

		// Create logger with request-level attributes
		enrichedLogger := m.Log.With(
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
		)

		if trace := m.trace(r); trace != "" {
			enrichedLogger = enrichedLogger.With(logger.TraceKey, trace)
		}

		// Add logger to context
		ctx := logger.ToContext(r.Context(), enrichedLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// trace turns X-Cloud-Trace-Context ("TRACE_ID/SPAN_ID;o=1") into the
// resource name Cloud Logging correlates on.
func (m *loggerMiddleware) trace(r *http.Request) string {
	header := r.Header.Get("X-Cloud-Trace-Context")
	if header == "" || m.ProjectID == "" {
		return ""
	}
	traceID, _, _ := strings.Cut(header, "/")
	return fmt.Sprintf("projects/%s/traces/%s", m.ProjectID, traceID)
}
