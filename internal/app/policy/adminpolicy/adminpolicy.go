// internal/app/policy/adminpolicy/adminpolicy.go
package adminpolicy

import (
	"github.com/dalemusser/taskhub/internal/app/system/authz"
)

const MsgAdminOnly = "Administrator access required"

// CanViewAudit allows admins only. The trail spans every project, so
// project owners get no partial view.
func CanViewAudit(actor authz.Actor) authz.Decision {
	return adminOnly(actor)
}

// CanViewSystemStats allows admins only. Everyone else gets their personal
// dashboard instead.
func CanViewSystemStats(actor authz.Actor) authz.Decision {
	return adminOnly(actor)
}

func adminOnly(actor authz.Actor) authz.Decision {
	if actor.IsAdmin() {
		return authz.Allow()
	}
	return authz.Forbid(MsgAdminOnly)
}
