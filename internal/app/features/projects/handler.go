// internal/app/features/projects/handler.go
package projects

import (
	"net/http"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	projectsvc "github.com/dalemusser/taskhub/internal/app/services/projects"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/formutil"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Projects *projectsvc.Service
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(svc *projectsvc.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Projects: svc,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type projectRequest struct {
	Project struct {
		Name *string `json:"name"`
	} `json:"project"`
}

// ServeList returns the caller's projects. ?type=owned|joined narrows the
// list; anything else returns both.
// GET /projects
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, projectpolicy.ParseListType(query.Get(r, "type")))
}

// ServeOwned is GET /projects/owned.
func (h *Handler) ServeOwned(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, projectpolicy.ListOwned)
}

// ServeJoined is GET /projects/joined.
func (h *Handler) ServeJoined(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, projectpolicy.ListJoined)
}

func (h *Handler) serveList(w http.ResponseWriter, r *http.Request, lt projectpolicy.ListType) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list projects")
	defer cancel()

	list, err := h.Projects.List(ctx, actor, lt)
	if err != nil {
		h.ErrLog.Render(w, r, "list projects", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, list)
}

// HandleCreate makes the caller the owner of a new project.
// POST /projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req projectRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "create project: decode", err)
		return
	}
	name := ""
	if req.Project.Name != nil {
		name = *req.Project.Name
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create project")
	defer cancel()

	p, err := h.Projects.Create(ctx, actor, name)
	if err != nil {
		h.ErrLog.Render(w, r, "create project", err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, p)
}

// ServeShow returns a project the caller owns or belongs to.
// GET /projects/{project_id}
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "show project")
	defer cancel()

	p, err := h.Projects.Get(ctx, actor, id)
	if err != nil {
		h.ErrLog.Render(w, r, "show project", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, p)
}

// HandleUpdate renames a project. Only name is read from the body.
// PUT/PATCH /projects/{project_id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	var req projectRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "update project: decode", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update project")
	defer cancel()

	p, err := h.Projects.Update(ctx, actor, id, req.Project.Name)
	if err != nil {
		h.ErrLog.Render(w, r, "update project", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, p)
}

// HandleDelete removes a project with its tasks and memberships.
// DELETE /projects/{project_id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.target(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete project")
	defer cancel()

	if err := h.Projects.Destroy(ctx, actor, id); err != nil {
		h.ErrLog.Render(w, r, "delete project", err)
		return
	}
	uierrors.NoContent(w)
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (authz.Actor, primitive.ObjectID, bool) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return authz.Actor{}, primitive.NilObjectID, false
	}
	id, ok := formutil.PathID(r, "project_id")
	if !ok {
		uierrors.Error(w, http.StatusNotFound, projectpolicy.MsgNotVisible)
		return authz.Actor{}, primitive.NilObjectID, false
	}
	return actor, id, true
}
