// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is owned by exactly one user. OwnerID is set at creation and never
// changes; there is no transfer operation.
//
// NOTE:
//   - The owner is NOT recorded in project_memberships. Owner and member are
//     distinct concepts; policies treat the owner as an implicit member.
type Project struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Name    string             `bson:"name" json:"name"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsOwner reports whether userID owns the project.
func (p Project) IsOwner(userID primitive.ObjectID) bool {
	return p.OwnerID == userID
}
