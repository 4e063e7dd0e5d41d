package adminpolicy

import (
	"testing"

	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdminOnly(t *testing.T) {
	admin := authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	user := authz.Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}

	checks := map[string]func(authz.Actor) authz.Decision{
		"audit": CanViewAudit,
		"stats": CanViewSystemStats,
	}
	for name, check := range checks {
		if d := check(admin); !d.Allowed {
			t.Errorf("%s: admin should be allowed", name)
		}
		d := check(user)
		if d.Allowed || d.Kind != authz.DenyForbidden || d.Reason != MsgAdminOnly {
			t.Errorf("%s: user decision = %+v", name, d)
		}
	}
}
