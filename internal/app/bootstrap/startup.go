// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/timeouts"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup applies configured deadlines, promotes the admin user and starts
// the audit retention worker. It runs after EnsureSchema and before
// BuildHandler.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})
	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	if deps.AuditRetention != nil {
		deps.AuditRetention.Start()
	}
	return nil
}

// ensureAdmin gives the admin role to the user registered with email. A
// missing user is not an error: the role is applied on a later start, once
// the account exists.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	found, err := userstore.New(deps.MongoDatabase).SetRoleByEmail(ctx, email, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("promote admin %s: %w", email, err)
	}
	if !found {
		logger.Warn("admin_email does not match any user yet", zap.String("email", email))
		return nil
	}
	logger.Info("admin role ensured", zap.String("email", email))
	return nil
}
