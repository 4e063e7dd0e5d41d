// Package metricsstore computes the totals shown on dashboards.
package metricsstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SystemCounts is the set of totals on the admin dashboard.
type SystemCounts struct {
	Users         int64            `json:"users"`
	Admins        int64            `json:"admins"`
	Projects      int64            `json:"projects"`
	Memberships   int64            `json:"memberships"`
	Tasks         int64            `json:"tasks"`
	Unassigned    int64            `json:"unassigned_tasks"`
	TasksByStatus map[string]int64 `json:"tasks_by_status"`
}

// UserCounts is the set of totals on a user's own dashboard.
type UserCounts struct {
	ProjectsOwned  int64            `json:"projects_owned"`
	ProjectsJoined int64            `json:"projects_joined"`
	AssignedTasks  int64            `json:"assigned_tasks"`
	TasksByStatus  map[string]int64 `json:"tasks_by_status"`
}

// FetchSystemCounts returns system-wide totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchSystemCounts(ctx context.Context, db *mongo.Database) SystemCounts {
	out := SystemCounts{
		Users:       count(ctx, db, "users", bson.M{}),
		Admins:      count(ctx, db, "users", bson.M{"role": "admin"}),
		Projects:    count(ctx, db, "projects", bson.M{}),
		Memberships: count(ctx, db, "project_memberships", bson.M{}),
		Tasks:       count(ctx, db, "tasks", bson.M{}),
		Unassigned:  count(ctx, db, "tasks", bson.M{"assignee_id": nil}),
	}
	out.TasksByStatus = byStatus(ctx, db, bson.M{})
	return out
}

// FetchUserCounts returns the totals for one user. Same error tolerance as
// FetchSystemCounts.
func FetchUserCounts(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) UserCounts {
	assigned := bson.M{"assignee_id": userID}
	out := UserCounts{
		ProjectsOwned:  count(ctx, db, "projects", bson.M{"owner_id": userID}),
		ProjectsJoined: count(ctx, db, "project_memberships", bson.M{"user_id": userID}),
		AssignedTasks:  count(ctx, db, "tasks", assigned),
	}
	out.TasksByStatus = byStatus(ctx, db, assigned)
	return out
}

func count(ctx context.Context, db *mongo.Database, coll string, filter bson.M) int64 {
	n, err := db.Collection(coll).CountDocuments(ctx, filter)
	if err != nil {
		return 0
	}
	return n
}

// byStatus groups matching tasks by status. Never nil.
func byStatus(ctx context.Context, db *mongo.Database, match bson.M) map[string]int64 {
	out := map[string]int64{}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	}
	cur, err := db.Collection("tasks").Aggregate(ctx, pipeline)
	if err != nil {
		return out
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return out
	}
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out
}
