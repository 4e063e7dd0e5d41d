// Package indexes reconciles the MongoDB indexes the stores rely on.
//
// Uniqueness of users.email and of (project_id, user_id) memberships is
// enforced here, not in application code; stores translate the resulting
// duplicate-key errors into sentinel errors.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each collection's set is idempotent;
// errors are aggregated so every problem is reported at once.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, set := range collectionSets() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	collection string
	models     []mongo.IndexModel
}

func collectionSets() []indexSet {
	return []indexSet{
		{"users", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
			},
			// users index ordering
			{
				Keys:    bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_users_nameci_id"),
			},
		}},
		{"projects", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
				Options: options.Index().SetName("idx_projects_owner_created_id"),
			},
		}},
		{"project_memberships", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_pm_project_user"),
			},
			// "projects I joined" and cascade on user delete
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetName("idx_pm_user"),
			},
		}},
		{"tasks", []mongo.IndexModel{
			// Covers list by project with optional assignee/status filters.
			{
				Keys: bson.D{
					{Key: "project_id", Value: 1},
					{Key: "assignee_id", Value: 1},
					{Key: "status", Value: 1},
					{Key: "created_at", Value: 1},
				},
				Options: options.Index().SetName("idx_tasks_project_assignee_status_created"),
			},
			{
				Keys:    bson.D{{Key: "assignee_id", Value: 1}},
				Options: options.Index().SetName("idx_tasks_assignee"),
			},
		}},
		{"revoked_tokens", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "jti", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_revoked_jti"),
			},
			// Mongo removes entries once the token would have expired anyway.
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_revoked_expires"),
			},
		}},
		{"audit_events", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_audit_created"),
			},
			{
				Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_audit_project_created"),
			},
		}},
	}
}

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int64 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func ttlVal(v *int64) int64 {
	if v == nil {
		return -1
	}
	return *v
}

// sameOptions compares the options we manage: unique and TTL.
func sameOptions(want *options.IndexOptions, have existingIndex) bool {
	var wantUnique *bool
	var wantTTL *int64
	if want != nil {
		wantUnique = want.Unique
		if want.ExpireAfterSeconds != nil {
			v := int64(*want.ExpireAfterSeconds)
			wantTTL = &v
		}
	}
	return boolVal(wantUnique) == boolVal(have.Unique) && ttlVal(wantTTL) == ttlVal(have.ExpireAfterSeconds)
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

// ensureIndexSet creates each desired index, reusing an existing index with
// the same keys and options, renaming one whose name differs, and rebuilding
// one whose options differ.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range models {
		desiredName := ""
		if m.Options != nil && m.Options.Name != nil {
			desiredName = *m.Options.Name
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
		}

		if ex, ok := existing[sig]; ok {
			if sameOptions(m.Options, ex) && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Debug("reusing existing index", fields...)
				continue
			}
			zap.L().Info("rebuilding index", append(fields, zap.String("existing", ex.Name))...)
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", desiredName, ex.Name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", desiredName, err))
			}
			zap.L().Warn("index ensure failed", append(fields, zap.Error(err))...)
			continue
		}
		zap.L().Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
