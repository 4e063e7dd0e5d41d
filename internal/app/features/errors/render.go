// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Message writes {"message": msg} with 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, map[string]string{"message": msg})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ErrorLogger renders service errors and logs the ones the client is not
// told about.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger creates an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Render writes err to the client. Classified errors keep their status and
// message; validation errors are rendered as {"errors": [...]}. Anything
// else is logged with op and answered with a generic 500.
func (e *ErrorLogger) Render(w http.ResponseWriter, r *http.Request, op string, err error) {
	if ae, ok := apperr.As(err); ok {
		if ae.Kind == apperr.KindValidation {
			JSON(w, ae.Status(), map[string][]string{"errors": ae.Fields.FullMessages()})
			return
		}
		Error(w, ae.Status(), ae.Message)
		return
	}
	e.log.Error(op,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	Error(w, http.StatusInternalServerError, "Internal server error")
}
