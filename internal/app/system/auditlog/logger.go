// Package auditlog records security and project-management events to the
// audit_events collection and/or the structured log.
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/taskhub/internal/app/store/audit"
	"github.com/dalemusser/taskhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config selects the destination for each event category.
type Config struct {
	Auth  string
	Admin string
}

// Logger writes audit events. A nil *Logger is a no-op.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

type requestInfo struct {
	ip        string
	userAgent string
}

type ctxKey struct{}

// Middleware stashes the client IP and user agent in the request context so
// events recorded deeper in the stack carry them. The user agent is stored
// with any markup stripped.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := requestInfo{ip: ratelimit.ClientIP(r), userAgent: htmlsanitize.PlainText(r.UserAgent())}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, info)))
	})
}

func fromContext(ctx context.Context) requestInfo {
	info, _ := ctx.Value(ctxKey{}).(requestInfo)
	return info
}

func (l *Logger) setting(category string) string {
	switch category {
	case audit.CategoryAuth:
		return l.config.Auth
	case audit.CategoryAdmin:
		return l.config.Admin
	default:
		return DestAll
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ProjectID != nil {
		fields = append(fields, zap.String("project_id", event.ProjectID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to its category's destination. Store errors
// are logged, not returned.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	dest := l.setting(event.Category)
	if dest == DestOff {
		return
	}
	if event.IP == "" && event.UserAgent == "" {
		info := fromContext(ctx)
		event.IP, event.UserAgent = info.ip, info.userAgent
	}

	if dest == DestAll || dest == DestLog || dest == "" {
		l.logToZap(event)
	}
	if (dest == DestAll || dest == DestDB || dest == "") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func oid(id primitive.ObjectID) *primitive.ObjectID { return &id }

// --- Authentication events ---

func (l *Logger) Registered(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventRegistered,
		UserID:    oid(userID),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

func (l *Logger) LoginSuccess(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    oid(userID),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

func (l *Logger) LoginFailedUserNotFound(ctx context.Context, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		FailureReason: "user not found",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	})
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        oid(userID),
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	})
}

func (l *Logger) LoginRateLimited(ctx context.Context, attemptedEmail string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limited",
		Details:       map[string]string{"attempted_email": attemptedEmail},
	})
}

func (l *Logger) Logout(ctx context.Context, userID primitive.ObjectID, tokenID string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    oid(userID),
		Success:   true,
		Details:   map[string]string{"token_id": tokenID},
	})
}

// --- Admin events ---

func (l *Logger) admin(ctx context.Context, eventType string, actorID primitive.ObjectID, projectID, userID *primitive.ObjectID, details map[string]string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: eventType,
		ActorID:   oid(actorID),
		ProjectID: projectID,
		UserID:    userID,
		Success:   true,
		Details:   details,
	})
}

func (l *Logger) UserUpdated(ctx context.Context, actorID, userID primitive.ObjectID, fields string) {
	l.admin(ctx, audit.EventUserUpdated, actorID, nil, oid(userID), map[string]string{"fields": fields})
}

func (l *Logger) UserDeleted(ctx context.Context, userID primitive.ObjectID, email string) {
	l.admin(ctx, audit.EventUserDeleted, userID, nil, oid(userID), map[string]string{"email": email})
}

func (l *Logger) ProjectCreated(ctx context.Context, actorID, projectID primitive.ObjectID, name string) {
	l.admin(ctx, audit.EventProjectCreated, actorID, oid(projectID), nil, map[string]string{"name": name})
}

func (l *Logger) ProjectUpdated(ctx context.Context, actorID, projectID primitive.ObjectID, name string) {
	l.admin(ctx, audit.EventProjectUpdated, actorID, oid(projectID), nil, map[string]string{"name": name})
}

func (l *Logger) ProjectDeleted(ctx context.Context, actorID, projectID primitive.ObjectID, name string) {
	l.admin(ctx, audit.EventProjectDeleted, actorID, oid(projectID), nil, map[string]string{"name": name})
}

func (l *Logger) MemberAdded(ctx context.Context, actorID, projectID, userID primitive.ObjectID) {
	l.admin(ctx, audit.EventMemberAdded, actorID, oid(projectID), oid(userID), nil)
}

func (l *Logger) MemberRemoved(ctx context.Context, actorID, projectID, userID primitive.ObjectID, unassigned int64) {
	l.admin(ctx, audit.EventMemberRemoved, actorID, oid(projectID), oid(userID), map[string]string{"tasks_unassigned": strconv.FormatInt(unassigned, 10)})
}

func (l *Logger) MemberLeft(ctx context.Context, projectID, userID primitive.ObjectID, unassigned int64) {
	l.admin(ctx, audit.EventMemberLeft, userID, oid(projectID), oid(userID), map[string]string{"tasks_unassigned": strconv.FormatInt(unassigned, 10)})
}

func (l *Logger) TaskCreated(ctx context.Context, actorID, projectID, taskID primitive.ObjectID) {
	l.admin(ctx, audit.EventTaskCreated, actorID, oid(projectID), nil, map[string]string{"task_id": taskID.Hex()})
}

func (l *Logger) TaskUpdated(ctx context.Context, actorID, projectID, taskID primitive.ObjectID, fields string) {
	l.admin(ctx, audit.EventTaskUpdated, actorID, oid(projectID), nil, map[string]string{"task_id": taskID.Hex(), "fields": fields})
}

func (l *Logger) TaskDeleted(ctx context.Context, actorID, projectID, taskID primitive.ObjectID) {
	l.admin(ctx, audit.EventTaskDeleted, actorID, oid(projectID), nil, map[string]string{"task_id": taskID.Hex()})
}
