// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// Mount registers the membership routes on a per-project router, under
// both /members and the older /project_memberships path.
// Typically passed to projects.Routes.
func (h *Handler) Mount(r chi.Router) {
	for _, prefix := range []string{"/members", "/project_memberships"} {
		r.Route(prefix, func(mr chi.Router) {
			mr.Get("/", h.ServeList)
			mr.Post("/", h.HandleInvite)
			mr.Delete("/", h.HandleLeave)
			mr.Delete("/leave", h.HandleLeave)
			mr.Delete("/{id}", h.HandleRemove)
		})
	}
}
