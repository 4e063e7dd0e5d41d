// Package authz carries the acting user into policy checks and defines the
// Decision type the policy packages return.
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated user performing an action. Services and
// policies receive it as an explicit argument.
type Actor struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return strings.EqualFold(a.Role, models.RoleAdmin) }

// Is reports whether the actor is the user with id.
func (a Actor) Is(id primitive.ObjectID) bool { return !a.ID.IsZero() && a.ID == id }

// ActorFromUser builds an Actor from a stored user.
func ActorFromUser(u models.User) Actor {
	return Actor{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserCtx returns the request's actor and whether one is present. ok=true
// guarantees a non-zero ID.
func UserCtx(r *http.Request) (Actor, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.ID.IsZero() {
		return Actor{}, false
	}
	return Actor{ID: u.ID, Name: u.Name, Email: u.Email, Role: strings.ToLower(u.Role)}, true
}

// DenyKind says how a denial is reported to the client.
type DenyKind int

const (
	// DenyForbidden: the resource is visible but the action is not allowed.
	DenyForbidden DenyKind = iota + 1
	// DenyNotFound: the actor may not learn the resource exists.
	DenyNotFound
	// DenyInvalid: the request is well-formed but violates a membership rule.
	DenyInvalid
)

// Decision is a policy outcome. The zero value denies.
type Decision struct {
	Allowed bool
	Kind    DenyKind
	Reason  string
}

// Allow permits the action.
func Allow() Decision { return Decision{Allowed: true} }

// Forbid denies with 403 semantics.
func Forbid(reason string) Decision { return Decision{Kind: DenyForbidden, Reason: reason} }

// Hide denies with 404 semantics.
func Hide(reason string) Decision { return Decision{Kind: DenyNotFound, Reason: reason} }

// Reject denies with 422 semantics.
func Reject(reason string) Decision { return Decision{Kind: DenyInvalid, Reason: reason} }

// Err converts the decision to an error, nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Kind {
	case DenyNotFound:
		return apperr.NotFound(d.Reason)
	case DenyInvalid:
		return apperr.Invalid(d.Reason)
	default:
		reason := d.Reason
		if reason == "" {
			reason = "Not authorized"
		}
		return apperr.Forbidden(reason)
	}
}
