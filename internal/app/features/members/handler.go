// internal/app/features/members/handler.go
package members

import (
	"net/http"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/policy/membershippolicy"
	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	membershipsvc "github.com/dalemusser/taskhub/internal/app/services/memberships"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/formutil"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Members *membershipsvc.Service
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(svc *membershipsvc.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Members: svc,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type inviteResponse struct {
	Message string         `json:"message"`
	Project models.Project `json:"project"`
}

// project resolves the actor and the {project_id} path parameter.
func (h *Handler) project(w http.ResponseWriter, r *http.Request) (authz.Actor, primitive.ObjectID, bool) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return authz.Actor{}, primitive.NilObjectID, false
	}
	pid, ok := formutil.PathID(r, "project_id")
	if !ok {
		uierrors.Error(w, http.StatusNotFound, projectpolicy.MsgNotFound)
		return authz.Actor{}, primitive.NilObjectID, false
	}
	return actor, pid, true
}

// ServeList returns the members of a project.
// GET /projects/{project_id}/members
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list members")
	defer cancel()

	users, err := h.Members.List(ctx, actor, pid)
	if err != nil {
		h.ErrLog.Render(w, r, "list members", err)
		return
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	uierrors.JSON(w, http.StatusOK, out)
}

type inviteRequest struct {
	Email string `json:"email"`
}

// HandleInvite adds a user, found by email, to the project.
// POST /projects/{project_id}/members
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return
	}
	var req inviteRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "invite member: decode", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "invite member")
	defer cancel()

	p, _, err := h.Members.Invite(ctx, actor, pid, req.Email)
	if err != nil {
		h.ErrLog.Render(w, r, "invite member", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, inviteResponse{Message: membershippolicy.MsgUserAdded, Project: p})
}

// HandleRemove removes the member named by {id}.
// DELETE /projects/{project_id}/members/{id}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return
	}
	uid, ok := formutil.PathID(r, "id")
	if !ok {
		uierrors.Error(w, http.StatusNotFound, membershippolicy.MsgUserNotFound)
		return
	}
	h.remove(w, r, actor, pid, &uid)
}

// HandleLeave removes the caller from the project.
// DELETE /projects/{project_id}/members and .../members/leave
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	actor, pid, ok := h.project(w, r)
	if !ok {
		return
	}
	h.remove(w, r, actor, pid, nil)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request, actor authz.Actor, pid primitive.ObjectID, uid *primitive.ObjectID) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove member")
	defer cancel()

	rm, err := h.Members.Remove(ctx, actor, pid, uid)
	if err != nil {
		h.ErrLog.Render(w, r, "remove member", err)
		return
	}
	uierrors.Message(w, rm.Message)
}
