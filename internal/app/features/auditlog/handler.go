// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/dalemusser/taskhub/internal/app/features/errors"
	"github.com/dalemusser/taskhub/internal/app/store/audit"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events         *audit.Store
	DefaultPerPage int
	Log            *zap.Logger
	ErrLog         *uierrors.ErrorLogger
}

// NewHandler constructs the audit log viewer over db's audit_events.
func NewHandler(db *mongo.Database, defaultPerPage int, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if defaultPerPage <= 0 {
		defaultPerPage = paging.DefaultPerPage
	}
	return &Handler{
		Events:         audit.New(db),
		DefaultPerPage: defaultPerPage,
		Log:            logger,
		ErrLog:         errLog,
	}
}
