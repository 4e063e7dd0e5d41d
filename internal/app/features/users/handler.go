// internal/app/features/users/handler.go
package users

import (
	"net/http"
	"time"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	accountsvc "github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/formutil"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgUserNotFound = "User not found"

type Handler struct {
	Accounts       *accountsvc.Service
	DefaultPerPage int
	ErrLog         *uierrors.ErrorLogger
	Log            *zap.Logger
}

func NewHandler(accounts *accountsvc.Service, defaultPerPage int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if defaultPerPage <= 0 {
		defaultPerPage = paging.DefaultPerPage
	}
	return &Handler{
		Accounts:       accounts,
		DefaultPerPage: defaultPerPage,
		ErrLog:         errLog,
		Log:            logger,
	}
}

// userView is the public shape of a user record.
type userView struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toView(u models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func actorOrDeny(w http.ResponseWriter, r *http.Request) (authz.Actor, bool) {
	a, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
	}
	return a, ok
}

// ServeList returns a page of users.
// GET /users?page=&per_page=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()

	p := paging.Parse(r, h.DefaultPerPage)
	page, err := h.Accounts.List(ctx, p)
	if err != nil {
		h.ErrLog.Render(w, r, "list users", err)
		return
	}
	views := make([]userView, 0, len(page.Items))
	for _, u := range page.Items {
		views = append(views, toView(u))
	}
	uierrors.JSON(w, http.StatusOK, paging.Page[userView]{Items: views, Meta: page.Meta})
}

// ServeShow returns one user.
// GET /users/{id}
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	id, ok := formutil.PathID(r, "id")
	if !ok {
		uierrors.Error(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "show user")
	defer cancel()

	u, err := h.Accounts.Get(ctx, id)
	if err != nil {
		h.ErrLog.Render(w, r, "show user", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, toView(u))
}

type updateRequest struct {
	User struct {
		Name                 *string `json:"name"`
		Email                *string `json:"email"`
		Password             *string `json:"password"`
		PasswordConfirmation *string `json:"password_confirmation"`
	} `json:"user"`
}

// HandleUpdate edits a user's profile. Users may edit themselves; admins
// may edit anyone.
// PUT/PATCH /users/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrDeny(w, r)
	if !ok {
		return
	}
	id, ok := formutil.PathID(r, "id")
	if !ok {
		uierrors.Error(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	var req updateRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "update user: decode", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update user")
	defer cancel()

	u, err := h.Accounts.Update(ctx, actor, id, accountsvc.UpdateInput{
		Name:                 req.User.Name,
		Email:                req.User.Email,
		Password:             req.User.Password,
		PasswordConfirmation: req.User.PasswordConfirmation,
	})
	if err != nil {
		h.ErrLog.Render(w, r, "update user", err)
		return
	}
	uierrors.JSON(w, http.StatusOK, toView(u))
}

// HandleDeleteSelf deletes the caller's account and everything it owns.
// DELETE /users
func (h *Handler) HandleDeleteSelf(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrDeny(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete user")
	defer cancel()

	if err := h.Accounts.DeleteSelf(ctx, actor); err != nil {
		h.ErrLog.Render(w, r, "delete user", err)
		return
	}
	uierrors.NoContent(w)
}
