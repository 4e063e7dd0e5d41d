package projectstore_test

import (
	"errors"
	"testing"

	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	"github.com/dalemusser/taskhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateGetRename(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	p, err := store.Create(ctx, owner.ID, "Apollo")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Apollo" || got.OwnerID != owner.ID {
		t.Errorf("got %+v", got)
	}

	renamed, err := store.Rename(ctx, p.ID, "Gemini")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Name != "Gemini" || renamed.OwnerID != owner.ID {
		t.Errorf("after rename %+v", renamed)
	}

	if _, err := store.Rename(ctx, primitive.NewObjectID(), "x"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("Rename missing = %v, want ErrNoDocuments", err)
	}
}

func TestStore_List_UnionIsDistinct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fixtures.CreateUser(ctx, "Me", "me@example.com")
	other := fixtures.CreateUser(ctx, "Other", "other@example.com")
	mine := fixtures.CreateProject(ctx, me, "Mine")
	joined := fixtures.CreateProject(ctx, other, "Joined")
	fixtures.CreateProject(ctx, other, "Unrelated")

	// "mine" appears in both arms of the union.
	got, err := store.List(ctx, projectstore.ListFilter{OwnerID: &me.ID, IDs: []primitive.ObjectID{mine.ID, joined.ID}})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(got))
	}

	none, err := store.List(ctx, projectstore.ListFilter{})
	if err != nil || len(none) != 0 {
		t.Errorf("empty filter = %v, %v", none, err)
	}
}

func TestStore_IDsOwnedByAndDeleteMany(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fixtures.CreateUser(ctx, "Me", "me@example.com")
	other := fixtures.CreateUser(ctx, "Other", "other@example.com")
	fixtures.CreateProject(ctx, me, "One")
	fixtures.CreateProject(ctx, me, "Two")
	keep := fixtures.CreateProject(ctx, other, "Keep")

	ids, err := store.IDsOwnedBy(ctx, me.ID)
	if err != nil {
		t.Fatalf("IDsOwnedBy failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	n, err := store.DeleteMany(ctx, ids)
	if err != nil || n != 2 {
		t.Fatalf("DeleteMany = %d, %v", n, err)
	}
	if _, err := store.GetByID(ctx, keep.ID); err != nil {
		t.Errorf("unrelated project deleted: %v", err)
	}
}
