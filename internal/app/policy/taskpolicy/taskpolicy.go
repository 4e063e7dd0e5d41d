// internal/app/policy/taskpolicy/taskpolicy.go
package taskpolicy

import (
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MsgProjectNotVisible = "Project not found or access denied"
	MsgTaskNotFound      = "Task not found"
	MsgOwnerCreate       = "Only the project owner can create tasks"
	MsgOwnerDelete       = "Only the project owner can delete tasks"
	MsgUpdateDenied      = "You are not authorized to update this task"
	MsgStatusOnly        = "You can only update the status of this task"
)

// ListScope is the outcome of CanList. When AssigneeOnly is set the list
// must be restricted to tasks assigned to the actor.
type ListScope struct {
	AssigneeOnly bool
	AssigneeID   primitive.ObjectID
}

// CanList lets the owner see every task in the project and a member see the
// tasks assigned to them. Non-members are told the project does not exist.
func CanList(actor authz.Actor, p models.Project, actorIsMember bool) (authz.Decision, ListScope) {
	if p.IsOwner(actor.ID) {
		return authz.Allow(), ListScope{}
	}
	if actorIsMember {
		return authz.Allow(), ListScope{AssigneeOnly: true, AssigneeID: actor.ID}
	}
	return authz.Hide(MsgProjectNotVisible), ListScope{}
}

// CanView allows the owner and the task's assignee. The project itself must
// already be visible to the actor.
func CanView(actor authz.Actor, p models.Project, t models.Task) authz.Decision {
	if p.IsOwner(actor.ID) || t.IsAssignee(actor.ID) {
		return authz.Allow()
	}
	return authz.Hide(MsgTaskNotFound)
}

// CanCreate allows only the project owner.
func CanCreate(actor authz.Actor, p models.Project) authz.Decision {
	if p.IsOwner(actor.ID) {
		return authz.Allow()
	}
	return authz.Forbid(MsgOwnerCreate)
}

// Fields lists which task attributes an update request carries. Other is
// set when the request names any attribute besides title, status and
// assignee_id.
type Fields struct {
	Title    bool
	Status   bool
	Assignee bool
	Other    bool
}

// CanUpdate allows the owner to change anything. The assignee may send
// only the status.
func CanUpdate(actor authz.Actor, p models.Project, t models.Task, f Fields) authz.Decision {
	if p.IsOwner(actor.ID) {
		return authz.Allow()
	}
	if !t.IsAssignee(actor.ID) {
		return authz.Forbid(MsgUpdateDenied)
	}
	if f.Title || f.Assignee || f.Other {
		return authz.Forbid(MsgStatusOnly)
	}
	return authz.Allow()
}

// CanDelete allows only the project owner.
func CanDelete(actor authz.Actor, p models.Project) authz.Decision {
	if p.IsOwner(actor.ID) {
		return authz.Allow()
	}
	return authz.Forbid(MsgOwnerDelete)
}

// ValidAssignee reports whether userID may hold tasks in p: the owner or a
// current member.
func ValidAssignee(p models.Project, userID primitive.ObjectID, isMember bool) bool {
	return p.IsOwner(userID) || isMember
}
