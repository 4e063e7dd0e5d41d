// internal/app/policy/userpolicy/userpolicy.go
package userpolicy

import (
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MsgUpdateDenied = "You are not authorized to update this user"

// CanUpdate lets users edit their own account; admins may edit anyone.
func CanUpdate(actor authz.Actor, targetID primitive.ObjectID) authz.Decision {
	if actor.Is(targetID) || actor.IsAdmin() {
		return authz.Allow()
	}
	return authz.Forbid(MsgUpdateDenied)
}
