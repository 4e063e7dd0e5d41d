// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/taskhub/internal/app/features/auditlog"
	dashboardfeature "github.com/dalemusser/taskhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/taskhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/taskhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/taskhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/taskhub/internal/app/features/logout"
	membersfeature "github.com/dalemusser/taskhub/internal/app/features/members"
	profilefeature "github.com/dalemusser/taskhub/internal/app/features/profile"
	projectsfeature "github.com/dalemusser/taskhub/internal/app/features/projects"
	tasksfeature "github.com/dalemusser/taskhub/internal/app/features/tasks"
	usersfeature "github.com/dalemusser/taskhub/internal/app/features/users"
	accountsvc "github.com/dalemusser/taskhub/internal/app/services/accounts"
	membershipsvc "github.com/dalemusser/taskhub/internal/app/services/memberships"
	projectsvc "github.com/dalemusser/taskhub/internal/app/services/projects"
	tasksvc "github.com/dalemusser/taskhub/internal/app/services/tasks"
	auditstore "github.com/dalemusser/taskhub/internal/app/store/audit"
	tokenstore "github.com/dalemusser/taskhub/internal/app/store/tokens"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// APIPrefix is where the JSON API is mounted.
const APIPrefix = "/api/v1"

// BuildHandler constructs the root router. WAFFLE calls it once config,
// MongoDB, indexes and Startup are ready.
//
// Layout:
//
//	/health                       public
//	/api/v1/auth/*                register, login, logout (token checked by handler)
//	/api/v1/profile, /users/*     bearer token required
//	/api/v1/projects/*            bearer token required; members and tasks nested
//	/api/v1/dashboard/*           bearer token required; /system for admins
//	/api/v1/audit                 bearer token required; admins only
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	issuer, err := auth.NewIssuer(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}
	authn := auth.NewAuthenticator(issuer, userstore.New(db), tokenstore.New(db), logger)

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	errLog := errorsfeature.NewErrorLogger(logger)

	accounts := accountsvc.New(db, issuer, audit, logger)
	projects := projectsvc.New(db, audit, logger)
	memberships := membershipsvc.New(db, audit, logger)
	tasks := tasksvc.New(db, audit, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if len(appCfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: appCfg.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	r.Use(auditlog.Middleware)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, appCfg.Version, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route(APIPrefix, func(api chi.Router) {
		// Credentials
		authRoutes := loginfeature.Routes(loginfeature.NewHandler(accounts, deps.LoginLimiter, audit, errLog, logger))
		logoutfeature.MountRoutes(authRoutes, logoutfeature.NewHandler(accounts, authn, errLog, logger))
		api.Mount("/auth", authRoutes)

		api.Group(func(pr chi.Router) {
			pr.Use(authn.RequireUser)

			profilefeature.MountRoutes(pr, profilefeature.NewHandler())
			pr.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(accounts, appCfg.DefaultPerPage, errLog, logger)))

			membersHandler := membersfeature.NewHandler(memberships, errLog, logger)
			tasksHandler := tasksfeature.NewHandler(tasks, appCfg.DefaultPerPage, errLog, logger)
			projectsHandler := projectsfeature.NewHandler(projects, errLog, logger)
			pr.Mount("/projects", projectsfeature.Routes(projectsHandler, membersHandler.Mount, tasksHandler.Mount))

			pr.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(db, errLog, logger)))
			pr.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(db, appCfg.DefaultPerPage, errLog, logger)))
		})
	})

	return r, nil
}
