// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Routes mounts the user endpoints. The caller applies the bearer-token
// middleware. Typically: r.Mount("/users", users.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Delete("/", h.HandleDeleteSelf)
	r.Get("/{id}", h.ServeShow)
	r.Put("/{id}", h.HandleUpdate)
	r.Patch("/{id}", h.HandleUpdate)
	return r
}
