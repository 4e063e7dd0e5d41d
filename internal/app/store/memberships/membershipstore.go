// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateMembership is returned when the (project, user) pair already
// exists. The unique index uniq_pm_project_user is the authority.
var ErrDuplicateMembership = errors.New("user is already a member of this project")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("project_memberships")}
}

// Add creates a membership row.
func (s *Store) Add(ctx context.Context, projectID, userID primitive.ObjectID) (models.ProjectMembership, error) {
	m := models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) || mongo.IsDuplicateKeyError(err) {
			return models.ProjectMembership{}, ErrDuplicateMembership
		}
		return models.ProjectMembership{}, err
	}
	return m, nil
}

// Remove deletes the membership for (projectID, userID) and returns how many
// rows were deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IsMember reports whether a membership row exists. It says nothing about
// ownership; owners have no row.
func (s *Store) IsMember(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx,
		bson.M{"project_id": projectID, "user_id": userID},
		options.FindOne().SetProjection(bson.M{"_id": 1}),
	).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemberIDs returns the member user ids of a project in join order.
func (s *Store) MemberIDs(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctField(ctx, bson.M{"project_id": projectID}, "user_id")
}

// ProjectIDsFor returns the ids of projects userID has joined.
func (s *Store) ProjectIDsFor(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctField(ctx, bson.M{"user_id": userID}, "project_id")
}

func (s *Store) distinctField(ctx context.Context, filter bson.M, field string) ([]primitive.ObjectID, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{field: 1})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.ProjectMembership
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		if field == "user_id" {
			ids = append(ids, r.UserID)
		} else {
			ids = append(ids, r.ProjectID)
		}
	}
	return ids, nil
}

// DeleteByProjects removes every membership of the given projects.
func (s *Store) DeleteByProjects(ctx context.Context, projectIDs []primitive.ObjectID) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": bson.M{"$in": projectIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes every membership userID holds.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
