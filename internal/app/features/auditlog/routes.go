// internal/app/features/auditlog/routes.go
package auditlog

import "github.com/go-chi/chi/v5"

// Routes serves the audit trail where mounted (typically "/audit"). The
// caller applies the bearer-token middleware; admin access is checked per
// request.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
