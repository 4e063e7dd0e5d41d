// internal/app/features/profile/handler.go
package profile

import (
	"net/http"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
)

// Handler serves the signed-in user's own profile.
// It needs no store: the auth middleware has already loaded the user.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ServeProfile returns {id, name, email} for the caller.
// GET /profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, auth.UnauthorizedMessage)
		return
	}
	uierrors.JSON(w, http.StatusOK, models.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
}
