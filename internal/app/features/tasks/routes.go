// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// Mount registers the task routes on a per-project router.
// Typically passed to projects.Routes.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/my_tasks", h.ServeMyTasks)
	r.Route("/tasks", func(tr chi.Router) {
		tr.Get("/", h.ServeList)
		tr.Post("/", h.HandleCreate)
		tr.Get("/{id}", h.ServeShow)
		tr.Put("/{id}", h.HandleUpdate)
		tr.Patch("/{id}", h.HandleUpdate)
		tr.Delete("/{id}", h.HandleDelete)
	})
}
