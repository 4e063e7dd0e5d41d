// internal/app/policy/membershippolicy/membershippolicy.go
package membershippolicy

import (
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
)

const (
	MsgNotAuthorized = "Not authorized"
	MsgOwnerInvite   = "Only the project owner can invite users"
	MsgOwnerRemove   = "Only the project owner can remove users"
	MsgUserNotFound  = "User not found"
	MsgInviteSelf    = "You cannot add yourself to your own project"
	MsgAlreadyMember = "User is already a member of this project"
	MsgNotMember     = "User is not a member"
	MsgUserAdded     = "User added successfully"
	suffixRemoved    = " was removed from the project"
	suffixLeft       = " left the project"
)

// CanList allows the owner and current members to see the member list.
func CanList(actor authz.Actor, p models.Project, actorIsMember bool) authz.Decision {
	if p.IsOwner(actor.ID) || actorIsMember {
		return authz.Allow()
	}
	return authz.Forbid(MsgNotAuthorized)
}

// CanInvite allows only the owner.
func CanInvite(actor authz.Actor, p models.Project) authz.Decision {
	if p.IsOwner(actor.ID) {
		return authz.Allow()
	}
	return authz.Forbid(MsgOwnerInvite)
}

// CheckInviteTarget validates the invited user after CanInvite passed.
// target is nil when no user has the requested email.
func CheckInviteTarget(p models.Project, target *models.User, targetIsMember bool) authz.Decision {
	switch {
	case target == nil:
		return authz.Hide(MsgUserNotFound)
	case p.IsOwner(target.ID):
		return authz.Reject(MsgInviteSelf)
	case targetIsMember:
		return authz.Reject(MsgAlreadyMember)
	}
	return authz.Allow()
}

// Removal describes an approved membership removal.
type Removal struct {
	SelfLeave bool
	Message   string
}

// CanRemove decides a removal of target from p. target is nil when the
// requested user does not exist. A member may always remove themself; only
// the owner may remove someone else.
func CanRemove(actor authz.Actor, p models.Project, target *models.User, targetIsMember bool) (authz.Decision, Removal) {
	if target == nil {
		return authz.Hide(MsgUserNotFound), Removal{}
	}
	if !targetIsMember {
		return authz.Reject(MsgNotMember), Removal{}
	}
	if actor.Is(target.ID) {
		return authz.Allow(), Removal{SelfLeave: true, Message: target.Name + suffixLeft}
	}
	if !p.IsOwner(actor.ID) {
		return authz.Forbid(MsgOwnerRemove), Removal{}
	}
	return authz.Allow(), Removal{Message: target.Name + suffixRemoved}
}
