// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /profile. The caller mounts it behind the
// bearer-token middleware.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/profile", h.ServeProfile)
}
