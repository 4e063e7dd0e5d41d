// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// MountRoutes registers DELETE /logout on the supplied router. No auth
// middleware: the handler validates the token itself.
func MountRoutes(r chi.Router, h *Handler) {
	r.Delete("/logout", h.HandleLogout)
}
