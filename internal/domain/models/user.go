// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles. Every registered account is a plain user; the admin role is
// only granted through the admin_email bootstrap setting.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account.
//
// NOTE:
//   - Project membership is not embedded on User.
//     Use the project_memberships collection to discover a user's projects.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"`
	Email        string             `bson:"email" json:"email"` // normalized (trimmed, lowercased), unique
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user carries the administrative capability.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the public shape of a user returned alongside tokens and
// in member lists.
type UserSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// Summary returns the id/name/email projection of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
