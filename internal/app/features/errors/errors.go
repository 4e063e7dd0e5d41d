// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
)

// Handler serves the router-level fallbacks.
// No DB needed; it only writes JSON.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers routes that do not exist.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers known paths hit with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
