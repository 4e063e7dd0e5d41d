// internal/app/features/health/handler.go
package health

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type Handler struct {
	Client  *mongo.Client
	Version string
	Started time.Time
	Log     *zap.Logger
}

func NewHandler(client *mongo.Client, version string, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Version: version,
		Started: time.Now(),
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
	Uptime   int64  `json:"uptime_seconds"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health. It answers 200 when MongoDB responds to a
// ping and 503 otherwise. No authentication is required.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Version:  h.Version,
		Uptime:   int64(time.Since(h.Started).Seconds()),
	}
	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		uierrors.JSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	uierrors.JSON(w, http.StatusOK, resp)
}
