// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes mounts the project registry endpoints. nested mounts further
// per-project routes (members, tasks) under /{project_id}.
// Typically: r.Mount("/projects", projects.Routes(handler, members.Mount, tasks.Mount))
func Routes(h *Handler, nested ...func(chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/owned", h.ServeOwned)
	r.Get("/joined", h.ServeJoined)

	r.Route("/{project_id}", func(pr chi.Router) {
		pr.Get("/", h.ServeShow)
		pr.Put("/", h.HandleUpdate)
		pr.Patch("/", h.HandleUpdate)
		pr.Delete("/", h.HandleDelete)
		for _, mount := range nested {
			mount(pr)
		}
	})
	return r
}
