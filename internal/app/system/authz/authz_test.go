package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	if _, ok := authz.UserCtx(req); ok {
		t.Error("expected no actor")
	}
}

func TestUserCtx_WithUser(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithUser(req, &auth.CurrentUserInfo{ID: id, Name: "Alice", Role: "ADMIN"})

	a, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected actor")
	}
	if a.ID != id || a.Name != "Alice" {
		t.Errorf("actor = %+v", a)
	}
	if !a.IsAdmin() {
		t.Error("role should be normalized to admin")
	}
}

func TestUserCtx_ZeroID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithUser(req, &auth.CurrentUserInfo{Name: "ghost"})
	if _, ok := authz.UserCtx(req); ok {
		t.Error("zero id must not produce an actor")
	}
}

func TestActor_Is(t *testing.T) {
	id := primitive.NewObjectID()
	a := authz.Actor{ID: id}
	if !a.Is(id) {
		t.Error("expected Is to match own id")
	}
	if a.Is(primitive.NewObjectID()) {
		t.Error("expected Is to reject other id")
	}
	if (authz.Actor{}).Is(primitive.NilObjectID) {
		t.Error("zero actor must not match nil id")
	}
}

func TestDecision_Err(t *testing.T) {
	tests := []struct {
		name   string
		d      authz.Decision
		status int
		msg    string
	}{
		{"forbid", authz.Forbid("Only the project owner can delete"), 403, "Only the project owner can delete"},
		{"hide", authz.Hide("Project not found or access denied"), 404, "Project not found or access denied"},
		{"reject", authz.Reject("User is not a member"), 422, "User is not a member"},
		{"zero value", authz.Decision{}, 403, "Not authorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := apperr.As(tt.d.Err())
			if !ok {
				t.Fatalf("expected *apperr.Error, got %v", tt.d.Err())
			}
			if e.Status() != tt.status || e.Message != tt.msg {
				t.Errorf("got %d %q, want %d %q", e.Status(), e.Message, tt.status, tt.msg)
			}
		})
	}

	if err := authz.Allow().Err(); err != nil {
		t.Errorf("Allow().Err() = %v", err)
	}
}
