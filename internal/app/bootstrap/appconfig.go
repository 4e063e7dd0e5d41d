// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds TaskHub's own settings, loaded alongside WAFFLE's
// CoreConfig in LoadConfig. CoreConfig covers ports, TLS and log level;
// everything specific to the task service lives here and is passed to every
// lifecycle hook.
type AppConfig struct {
	// MongoDB connection
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string
	JWTTTL    time.Duration

	// Browser clients allowed to call the API. Empty disables CORS.
	CORSAllowedOrigins []string

	// Login throttling per client IP and email
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Audit destinations: all, db, log or off
	AuditLogAuth  string
	AuditLogAdmin string

	// Audit events older than AuditRetention are swept every
	// AuditRetentionInterval. Zero retention keeps events forever.
	AuditRetention         time.Duration
	AuditRetentionInterval time.Duration

	// User promoted to admin at startup (blank disables)
	AdminEmail string

	// Page size when a list request has no per_page
	DefaultPerPage int

	// Database deadlines. Zero keeps the built-in default.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration

	Version string
}
