// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conventional task statuses. Status is free-form (max 20 chars) and these
// are not enforced.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
)

// Task belongs to a project and may be delegated to one assignee.
//
// NOTE:
//   - AssigneeID is a non-owning reference. It is validated against the
//     project's owner/members when written, and cleared (never deleted) when
//     the assignee leaves or is removed from the project.
//   - assignee_id is stored as an explicit null when unassigned so that the
//     field can be filtered on.
type Task struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	Title      string              `bson:"title" json:"title"`
	Status     string              `bson:"status" json:"status"`
	ProjectID  primitive.ObjectID  `bson:"project_id" json:"project_id"`
	AssigneeID *primitive.ObjectID `bson:"assignee_id" json:"assignee_id"`
	CreatorID  primitive.ObjectID  `bson:"creator_id" json:"creator_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAssignee reports whether userID is the task's current assignee.
func (t Task) IsAssignee(userID primitive.ObjectID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
