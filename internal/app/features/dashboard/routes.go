// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// Routes mounts the dashboard (typically at "/dashboard") behind the
// caller's bearer-token middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeDashboard)
	r.Get("/system", h.ServeSystem)
	return r
}
