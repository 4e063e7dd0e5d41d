// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/policy/adminpolicy"
	metricsstore "github.com/dalemusser/taskhub/internal/app/store/metrics"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		ErrLog: errLog,
		Log:    logger,
	}
}

type dashboardResponse struct {
	Me     metricsstore.UserCounts    `json:"me"`
	System *metricsstore.SystemCounts `json:"system,omitempty"`
}

// ServeDashboard returns the caller's own totals. Admins also get the
// system-wide totals.
// GET /dashboard
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard")
	defer cancel()

	resp := dashboardResponse{Me: metricsstore.FetchUserCounts(ctx, h.DB, actor.ID)}
	if actor.IsAdmin() {
		sys := metricsstore.FetchSystemCounts(ctx, h.DB)
		resp.System = &sys
	}
	uierrors.JSON(w, http.StatusOK, resp)
}

// ServeSystem returns the system-wide totals to admins.
// GET /dashboard/system
func (h *Handler) ServeSystem(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := adminpolicy.CanViewSystemStats(actor).Err(); err != nil {
		h.ErrLog.Render(w, r, "system dashboard", err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "system dashboard")
	defer cancel()

	uierrors.JSON(w, http.StatusOK, metricsstore.FetchSystemCounts(ctx, h.DB))
}
