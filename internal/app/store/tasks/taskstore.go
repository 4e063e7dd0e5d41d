package taskstore

import (
	"context"
	"time"

	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tasks")}
}

// Create inserts t, assigning ID and timestamps.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetInProject loads a task scoped to its project. Returns
// mongo.ErrNoDocuments when the task does not exist or belongs elsewhere.
func (s *Store) GetInProject(ctx context.Context, projectID, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "project_id": projectID}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update lists the task fields to change. Nil pointers are left alone;
// SetAssignee with a nil AssigneeID clears the assignee.
type Update struct {
	Title       *string
	Status      *string
	SetAssignee bool
	AssigneeID  *primitive.ObjectID
}

// Update applies upd to the task and returns the stored result.
func (s *Store) Update(ctx context.Context, projectID, id primitive.ObjectID, upd Update) (*models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.SetAssignee {
		if upd.AssigneeID == nil {
			set["assignee_id"] = nil
		} else {
			set["assignee_id"] = *upd.AssigneeID
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "project_id": projectID}, bson.M{"$set": set}, opts).Decode(&t)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes one task from a project.
func (s *Store) Delete(ctx context.Context, projectID, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListFilter narrows a project's tasks. A nil AssigneeID and empty Status
// do not filter.
type ListFilter struct {
	ProjectID  primitive.ObjectID
	AssigneeID *primitive.ObjectID
	Status     string
}

func (f ListFilter) bson() bson.M {
	q := bson.M{"project_id": f.ProjectID}
	if f.AssigneeID != nil {
		q["assignee_id"] = *f.AssigneeID
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	return q
}

// List returns one page of matching tasks, oldest first, and the count of
// the whole filtered set.
func (s *Store) List(ctx context.Context, f ListFilter, p paging.Params) ([]models.Task, int64, error) {
	q := f.bson()
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.c.Find(ctx, q, p.FindOptions(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	out := []models.Task{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UnassignInProject clears assignee_id on userID's tasks in one project.
func (s *Store) UnassignInProject(ctx context.Context, projectID, userID primitive.ObjectID) (int64, error) {
	return s.unassign(ctx, bson.M{"project_id": projectID, "assignee_id": userID})
}

// UnassignEverywhere clears assignee_id on every task assigned to userID.
func (s *Store) UnassignEverywhere(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.unassign(ctx, bson.M{"assignee_id": userID})
}

func (s *Store) unassign(ctx context.Context, filter bson.M) (int64, error) {
	res, err := s.c.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"assignee_id": nil, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteByProjects removes every task of the given projects.
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
