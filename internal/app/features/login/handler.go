// internal/app/features/login/handler.go
package login

import (
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	accountsvc "github.com/dalemusser/taskhub/internal/app/services/accounts"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/formutil"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.uber.org/zap"
)

// RemainingHeader reports how many login attempts the client has left in
// the current window.
const RemainingHeader = "X-RateLimit-Remaining"

type Handler struct {
	Accounts *accountsvc.Service
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(accounts *accountsvc.Service, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts: accounts,
		Limiter:  limiter,
		AuditLog: audit,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type sessionResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

type registerRequest struct {
	User struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	} `json:"user"`
}

// HandleRegister creates an account and returns a token for it.
// POST /auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "register: decode", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register")
	defer cancel()

	sess, err := h.Accounts.Register(ctx, accountsvc.RegisterInput{
		Name:                 req.User.Name,
		Email:                req.User.Email,
		Password:             req.User.Password,
		PasswordConfirmation: req.User.PasswordConfirmation,
	})
	if err != nil {
		h.ErrLog.Render(w, r, "register", err)
		return
	}
	uierrors.JSON(w, http.StatusCreated, sessionResponse{Token: sess.Token, User: sess.User.Summary()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin exchanges credentials for a token. Repeated failures for the
// same client and email are throttled.
// POST /auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := formutil.Decode(w, r, &req); err != nil {
		h.ErrLog.Render(w, r, "login: decode", err)
		return
	}

	if h.Limiter != nil {
		if !h.Limiter.Allow(r, req.Email) {
			h.AuditLog.LoginRateLimited(r.Context(), req.Email)
			w.Header().Set(RemainingHeader, "0")
			uierrors.Error(w, http.StatusTooManyRequests, ratelimit.LoginMessage)
			return
		}
		w.Header().Set(RemainingHeader, strconv.Itoa(h.Limiter.Remaining(r, req.Email)))
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "login")
	defer cancel()

	sess, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.ErrLog.Render(w, r, "login", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(r, req.Email)
	}
	uierrors.JSON(w, http.StatusOK, sessionResponse{Token: sess.Token, User: sess.User.Summary()})
}
