// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is accepted outside prod only.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minProdSecretLen is the shortest jwt_secret accepted in prod.
const minProdSecretLen = 32

// appConfigKeys are read from config files, TASKHUB_* environment variables
// and --flags, in WAFFLE's usual precedence.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "taskhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HMAC secret for bearer tokens (must be strong in production)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 24h, 90m)"},

	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated origins allowed to call the API"},

	{Name: "login_rate_limit", Default: 5, Desc: "Login attempts allowed per IP+email within the window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Login throttling window"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Project/task event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "audit_retention", Default: "2160h", Desc: "Delete audit events older than this (0 keeps them forever)"},
	{Name: "audit_retention_interval", Default: "1h", Desc: "How often expired audit events are swept"},

	{Name: "admin_email", Default: "", Desc: "Email of an existing user to promote to admin on startup"},
	{Name: "default_per_page", Default: paging.DefaultPerPage, Desc: "Default page size for paginated lists"},

	{Name: "timeout_short", Default: "", Desc: "Deadline for single-document database work"},
	{Name: "timeout_medium", Default: "", Desc: "Deadline for lists and counts"},
	{Name: "timeout_long", Default: "", Desc: "Deadline for cascading writes"},

	{Name: "version", Default: "dev", Desc: "Build version reported by /health"},
}

// LoadConfig loads WAFFLE core config and the TaskHub keys.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TASKHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		AuditRetention:         appValues.Duration("audit_retention", 90*24*time.Hour),
		AuditRetentionInterval: appValues.Duration("audit_retention_interval", time.Hour),

		AdminEmail:     appValues.String("admin_email"),
		DefaultPerPage: appValues.Int("default_per_page"),

		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),

		Version: appValues.String("version"),
	}
	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig rejects settings that would fail later or run insecurely.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must be set")
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.JWTSecret == devJWTSecret || len(appCfg.JWTSecret) < minProdSecretLen {
			return fmt.Errorf("jwt_secret must be at least %d characters and not the development default in prod", minProdSecretLen)
		}
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive, got %s", appCfg.JWTTTL)
	}

	if appCfg.LoginRateLimit <= 0 || appCfg.LoginRateWindow <= 0 {
		return fmt.Errorf("login_rate_limit and login_rate_window must be positive")
	}
	if appCfg.DefaultPerPage <= 0 {
		return fmt.Errorf("default_per_page must be positive, got %d", appCfg.DefaultPerPage)
	}

	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative, got %s", appCfg.AuditRetention)
	}
	if appCfg.AuditRetention > 0 && appCfg.AuditRetentionInterval <= 0 {
		return fmt.Errorf("audit_retention_interval must be positive when audit_retention is set")
	}

	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch v {
		case auditlog.DestAll, auditlog.DestDB, auditlog.DestLog, auditlog.DestOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, v)
		}
	}
	return nil
}
