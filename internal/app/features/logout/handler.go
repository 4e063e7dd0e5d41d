// internal/app/features/logout/handler.go
package logout

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	accountsvc "github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	MsgLoggedOut    = "Successfully logged out. Please discard your token."
	MsgInvalidToken = "Missing or invalid token"
)

type Handler struct {
	Accounts *accountsvc.Service
	Auth     *auth.Authenticator
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(accounts *accountsvc.Service, authn *auth.Authenticator, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accounts,
		Auth:     authn,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// HandleLogout revokes the presented token. The token is resolved here
// rather than by the auth middleware so a bad token gets its own message.
// DELETE /auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "logout")
	defer cancel()

	u, err := h.Auth.Resolve(ctx, auth.BearerToken(r))
	if errors.Is(err, auth.ErrInvalidToken) {
		uierrors.Error(w, http.StatusUnauthorized, MsgInvalidToken)
		return
	}
	if err != nil {
		h.ErrLog.Render(w, r, "logout: resolve token", err)
		return
	}

	if err := h.Accounts.Logout(ctx, u.ID, u.TokenID, u.ExpiresAt); err != nil {
		h.ErrLog.Render(w, r, "logout", err)
		return
	}
	uierrors.Message(w, MsgLoggedOut)
}
