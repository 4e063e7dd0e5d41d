// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/taskhub/internal/app/system/ratelimit"
	"github.com/dalemusser/taskhub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends shared by every request: the MongoDB client and
// database, the in-process login throttle, and the audit retention worker
// (nil when retention is disabled).
type DBDeps struct {
	MongoClient    *mongo.Client
	MongoDatabase  *mongo.Database
	LoginLimiter   *ratelimit.LoginLimiter
	AuditRetention *workers.AuditRetention
}
