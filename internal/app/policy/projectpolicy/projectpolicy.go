// internal/app/policy/projectpolicy/projectpolicy.go
package projectpolicy

import (
	"strings"

	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
)

const (
	MsgNotVisible  = "Project not found or access denied"
	MsgNotFound    = "Project not found"
	MsgOwnerUpdate = "Only the project owner can update"
	MsgOwnerDelete = "Only the project owner can delete"
)

// CanView allows the owner and current members. Everyone else is told the
// project does not exist.
func CanView(actor authz.Actor, p models.Project, actorIsMember bool) authz.Decision {
	if p.IsOwner(actor.ID) || actorIsMember {
		return authz.Allow()
	}
	return authz.Hide(MsgNotVisible)
}

// CanUpdate allows only the owner.
func CanUpdate(actor authz.Actor, p models.Project) authz.Decision {
	if p.IsOwner(actor.ID) {
		return authz.Allow()
	}
	return authz.Forbid(MsgOwnerUpdate)
}

// CanDelete allows only the owner.
func CanDelete(actor authz.Actor, p models.Project) authz.Decision {
	if p.IsOwner(actor.ID) {
		return authz.Allow()
	}
	return authz.Forbid(MsgOwnerDelete)
}

// ListType selects which of the actor's projects a list returns.
type ListType int

const (
	// ListAll is the union of owned and joined projects.
	ListAll ListType = iota
	ListOwned
	ListJoined
)

// ParseListType maps the ?type= query value; anything unrecognized is ListAll.
func ParseListType(s string) ListType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "owned":
		return ListOwned
	case "joined":
		return ListJoined
	default:
		return ListAll
	}
}
