package membershipsvc_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	membershipsvc "github.com/dalemusser/taskhub/internal/app/services/memberships"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func wantErr(t *testing.T, err error, status int, msg string) {
	t.Helper()
	e, ok := apperr.As(err)
	if !ok {
		t.Fatalf("error = %v, want %d %q", err, status, msg)
	}
	if e.Status() != status || e.Message != msg {
		t.Fatalf("error = %d %q, want %d %q", e.Status(), e.Message, status, msg)
	}
}

type world struct {
	svc                     *membershipsvc.Service
	fx                      *testutil.Fixtures
	owner, member, outsider models.User
	project                 models.Project
}

func setup(t *testing.T, ctx context.Context) world {
	t.Helper()
	db := testutil.SetupIndexedDB(t)
	fx := testutil.NewFixtures(t, db)
	w := world{svc: membershipsvc.New(db, nil, zap.NewNop()), fx: fx}
	w.owner = fx.CreateUser(ctx, "Olive", "olive@example.com")
	w.member = fx.CreateUser(ctx, "Max", "max@example.com")
	w.outsider = fx.CreateUser(ctx, "Nina", "nina@example.com")
	w.project = fx.CreateProject(ctx, w.owner, "Apollo")
	fx.AddMember(ctx, w.project, w.member)
	return w
}

func TestList(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx)

	for _, u := range []models.User{w.owner, w.member} {
		users, err := w.svc.List(ctx, authz.ActorFromUser(u), w.project.ID)
		if err != nil {
			t.Fatalf("List as %s: %v", u.Name, err)
		}
		if len(users) != 1 || users[0].ID != w.member.ID {
			t.Errorf("List as %s = %v", u.Name, users)
		}
	}

	_, err := w.svc.List(ctx, authz.ActorFromUser(w.outsider), w.project.ID)
	wantErr(t, err, http.StatusForbidden, "Not authorized")

	_, err = w.svc.List(ctx, authz.ActorFromUser(w.owner), primitive.NewObjectID())
	wantErr(t, err, http.StatusNotFound, "Project not found")
}

func TestInvite(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx)
	owner := authz.ActorFromUser(w.owner)

	p, u, err := w.svc.Invite(ctx, owner, w.project.ID, " NINA@example.com ")
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if p.ID != w.project.ID || u.ID != w.outsider.ID {
		t.Errorf("Invite returned %v %v", p.ID, u.ID)
	}

	tests := []struct {
		name   string
		actor  authz.Actor
		email  string
		status int
		msg    string
	}{
		{"non-owner", authz.ActorFromUser(w.member), "nina@example.com", http.StatusForbidden, "Only the project owner can invite users"},
		{"unknown email", owner, "ghost@example.com", http.StatusNotFound, "User not found"},
		{"empty email", owner, "", http.StatusNotFound, "User not found"},
		{"self", owner, "olive@example.com", http.StatusUnprocessableEntity, "You cannot add yourself to your own project"},
		{"already member", owner, "max@example.com", http.StatusUnprocessableEntity, "User is already a member of this project"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := w.svc.Invite(ctx, tt.actor, w.project.ID, tt.email)
			wantErr(t, err, tt.status, tt.msg)
		})
	}

	n, err := w.fx.DB().Collection("project_memberships").CountDocuments(ctx, bson.M{"project_id": w.project.ID})
	if err != nil || n != 2 {
		t.Errorf("memberships = %d, %v; want 2", n, err)
	}
}

func TestRemove_UnassignsTasks(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx)

	other := w.fx.CreateProject(ctx, w.outsider, "Gemini")
	w.fx.AddMember(ctx, other, w.member)
	w.fx.CreateTask(ctx, w.project, "Draft release notes", "pending", &w.member)
	w.fx.CreateTask(ctx, w.project, "Review budget", "pending", &w.owner)
	keep := w.fx.CreateTask(ctx, other, "Untouched elsewhere", "pending", &w.member)

	rm, err := w.svc.Remove(ctx, authz.ActorFromUser(w.owner), w.project.ID, &w.member.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if rm.SelfLeave || rm.Message != "Max was removed from the project" {
		t.Errorf("removal = %+v", rm)
	}

	tasks := w.fx.DB().Collection("tasks")
	if n, _ := tasks.CountDocuments(ctx, bson.M{"project_id": w.project.ID, "assignee_id": w.member.ID}); n != 0 {
		t.Errorf("tasks still assigned to removed member = %d", n)
	}
	if n, _ := tasks.CountDocuments(ctx, bson.M{"project_id": w.project.ID, "assignee_id": w.owner.ID}); n != 1 {
		t.Errorf("owner's assignment lost")
	}
	var got models.Task
	if err := tasks.FindOne(ctx, bson.M{"_id": keep.ID}).Decode(&got); err != nil || !got.IsAssignee(w.member.ID) {
		t.Errorf("task in other project changed: %+v, %v", got, err)
	}

	_, err = w.svc.Remove(ctx, authz.ActorFromUser(w.owner), w.project.ID, &w.member.ID)
	wantErr(t, err, http.StatusUnprocessableEntity, "User is not a member")
}

func TestRemove_SelfLeaveAndDenials(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx)

	third := w.fx.CreateUser(ctx, "Ivy", "ivy@example.com")
	w.fx.AddMember(ctx, w.project, third)

	_, err := w.svc.Remove(ctx, authz.ActorFromUser(third), w.project.ID, &w.member.ID)
	wantErr(t, err, http.StatusForbidden, "Only the project owner can remove users")

	ghost := primitive.NewObjectID()
	_, err = w.svc.Remove(ctx, authz.ActorFromUser(w.owner), w.project.ID, &ghost)
	wantErr(t, err, http.StatusNotFound, "User not found")

	_, err = w.svc.Remove(ctx, authz.ActorFromUser(w.owner), w.project.ID, nil)
	wantErr(t, err, http.StatusUnprocessableEntity, "User is not a member")

	w.fx.CreateTask(ctx, w.project, "Draft release notes", "pending", &w.member)
	w.fx.CreateTask(ctx, w.project, "Review the budget", "In-Progress", &w.member)
	ivys := w.fx.CreateTask(ctx, w.project, "Assigned to Ivy", "pending", &third)

	rm, err := w.svc.Remove(ctx, authz.ActorFromUser(w.member), w.project.ID, nil)
	if err != nil {
		t.Fatalf("self leave: %v", err)
	}
	if !rm.SelfLeave || rm.Message != "Max left the project" {
		t.Errorf("removal = %+v", rm)
	}

	tasks := w.fx.DB().Collection("tasks")
	if n, _ := tasks.CountDocuments(ctx, bson.M{"project_id": w.project.ID, "assignee_id": w.member.ID}); n != 0 {
		t.Errorf("tasks still assigned to leaver = %d", n)
	}
	if n, _ := tasks.CountDocuments(ctx, bson.M{"project_id": w.project.ID, "assignee_id": nil}); n != 2 {
		t.Errorf("unassigned tasks = %d, want 2", n)
	}
	var got models.Task
	if err := tasks.FindOne(ctx, bson.M{"_id": ivys.ID}).Decode(&got); err != nil || !got.IsAssignee(third.ID) {
		t.Errorf("other member's task changed: %+v, %v", got, err)
	}
	if member, _ := w.svc.Members.IsMember(ctx, w.project.ID, w.member.ID); member {
		t.Error("leaver is still a member")
	}
}

func TestInvite_ConcurrentDuplicates(t *testing.T) {
	ctx, cancel := testutil.TestContext()
	defer cancel()
	w := setup(t, ctx)
	owner := authz.ActorFromUser(w.owner)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := w.svc.Invite(ctx, owner, w.project.ID, "nina@example.com")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	added := 0
	for err := range errs {
		if err == nil {
			added++
			continue
		}
		e, ok := apperr.As(err)
		if !ok || e.Message != "User is already a member of this project" {
			t.Fatalf("err = %v", err)
		}
		if e.Status() != http.StatusConflict && e.Status() != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 409 or 422", e.Status())
		}
	}
	if added != 1 {
		t.Errorf("successful invites = %d, want 1", added)
	}
	count, err := w.fx.DB().Collection("project_memberships").CountDocuments(ctx, bson.M{"project_id": w.project.ID, "user_id": w.outsider.ID})
	if err != nil || count != 1 {
		t.Errorf("membership rows = %d, %v; want 1", count, err)
	}
}
