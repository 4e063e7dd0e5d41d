// internal/app/features/tasks/handler.go
package tasks

import (
	"encoding/json"
	"net/http"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	tasksvc "github.com/dalemusser/taskhub/internal/app/services/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/formutil"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Tasks          *tasksvc.Service
	DefaultPerPage int
	ErrLog         *uierrors.ErrorLogger
	Log            *zap.Logger
}

func NewHandler(svc *tasksvc.Service, defaultPerPage int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if defaultPerPage <= 0 {
		defaultPerPage = paging.DefaultPerPage
	}
	return &Handler{
		Tasks:          svc,
		DefaultPerPage: defaultPerPage,
		ErrLog:         errLog,
		Log:            logger,
	}
}

type createRequest struct {
	Task struct {
		Title      string              `json:"title"`
		Status     string              `json:"status"`
		AssigneeID formutil.OptionalID `json:"assignee_id"`
	} `json:"task"`
}

type updateRequest struct {
	Task json.RawMessage `json:"task"`
}

type taskUpdate struct {
	Title      *string             `json:"title"`
	Status     *string             `json:"status"`
	AssigneeID formutil.OptionalID `json:"assignee_id"`
}

func (h *Handler) project(w http.ResponseWriter, r *http.Request) (authz.Actor, primitive.ObjectID, bool) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return authz.Actor{}, primitive.NilObjectID, false
	}
	pid, ok := formutil.PathID(r, "project_id")
	if !ok {
		uierrors.Error(w, http.StatusNotFound, taskpolicy.MsgProjectNotVisible)
		return authz.Actor{}, primitive.NilObjectID, false
	}
	return actor, pid, true
}

func (h *Handler) task(w http.ResponseWriter, r *http.Request) (authz.Actor, primitive.ObjectID, primitive.ObjectID, bool) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return authz.Actor{}, primitive.NilObjectID, primitive.NilObjectID, false
	}
	id, ok := formutil.PathID(r, "id")
	if !ok {
		uierrors.Error(w, http.StatusNotFound, taskpolicy.MsgTaskNotFound)
		return authz.Actor{}, primitive.NilObjectID, primitive.NilObjectID, false
	}
	return actor, pid, id, true
}

// ServeList returns a page of the project's tasks, optionally filtered by
// ?user_id and ?status.
// GET /projects/{project_id}/tasks
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return
	}
	q := tasksvc.ListQuery{
		Status: query.Get(r, "status"),
		Page:   paging.Parse(r, h.DefaultPerPage),
	}
	if raw := query.Get(r, "user_id"); raw != "" {
		uid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			uierrors.JSON(w, http.StatusOK, paging.NewPage[models.Task](nil, q.Page, 0))
			return
		}
		q.AssigneeID = &uid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list tasks")
	defer cancel()

	page, err := h.Tasks.List(ctx, actor, pid, q)
	if err != nil {
		h.ErrLog.Render(w, r, "list tasks", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, page)
}

// ServeMyTasks returns the caller's assignments in the project.
// GET /projects/{project_id}/my_tasks
func (h *Handler) ServeMyTasks(w http.ResponseWriter, r *http.Request) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my tasks")
	defer cancel()

	page, err := h.Tasks.MyTasks(ctx, actor, pid, query.Get(r, "status"), paging.Parse(r, h.DefaultPerPage))
	if err != nil {
		h.ErrLog.Render(w, r, "my tasks", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, page)
}

// HandleCreate adds a task to the project.
// POST /projects/{project_id}/tasks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "create task: decode", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create task")
	defer cancel()

	t, err := h.Tasks.Create(ctx, actor, pid, tasksvc.CreateInput{
		Title:    req.Task.Title,
		Status:   req.Task.Status,
		Assignee: req.Task.AssigneeID,
	})
	if err != nil {
		h.ErrLog.Render(w, r, "create task", err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, t)
}

// ServeShow returns one task.
// GET /projects/{project_id}/tasks/{id}
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	actor, pid, id, ok := h.task(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "show task")
	defer cancel()

	t, err := h.Tasks.Get(ctx, actor, pid, id)
	if err != nil {
		h.ErrLog.Render(w, r, "show task", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, t)
}

// HandleUpdate changes the fields present in the body.
// PUT/PATCH /projects/{project_id}/tasks/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, pid, id, ok := h.task(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "update task: decode", err)
		return
	}
	var upd taskUpdate
	keys, err := formutil.DecodeFields(req.Task, &upd)
	if err != nil {
		h.ErrLog.Render(w, r, "update task: decode", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update task")
	defer cancel()

	t, err := h.Tasks.Update(ctx, actor, pid, id, tasksvc.UpdateInput{
		Title:    upd.Title,
		Status:   upd.Status,
		Assignee: upd.AssigneeID,
		Keys:     keys,
	})
	if err != nil {
		h.ErrLog.Render(w, r, "update task", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, t)
}

// HandleDelete removes a task.
// DELETE /projects/{project_id}/tasks/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, pid, id, ok := h.task(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete task")
	defer cancel()

	if err := h.Tasks.Destroy(ctx, actor, pid, id); err != nil {
		h.ErrLog.Render(w, r, "delete task", err)
		return
	}
	uierrors.NoContent(w)
}
