package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the plaintext password of every fixture user.
const FixturePassword = "password123"

// Fixtures inserts seed documents directly, bypassing services.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures bound to db.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, name, email, models.RoleUser)
}

// CreateAdmin inserts a user with the admin role.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, name, email, models.RoleAdmin)
}

func (f *Fixtures) createUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateProject inserts a project owned by owner.
func (f *Fixtures) CreateProject(ctx context.Context, owner models.User, name string) models.Project {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// AddMember inserts a membership of user in project.
func (f *Fixtures) AddMember(ctx context.Context, project models.Project, user models.User) models.ProjectMembership {
	f.t.Helper()
	m := models.ProjectMembership{
		ID:        primitive.NewObjectID(),
		ProjectID: project.ID,
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("project_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateTask inserts a task in project created by its owner. assignee may
// be nil.
func (f *Fixtures) CreateTask(ctx context.Context, project models.Project, title, status string, assignee *models.User) models.Task {
	f.t.Helper()
	now := time.Now().UTC()
	task := models.Task{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Status:    status,
		ProjectID: project.ID,
		CreatorID: project.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if assignee != nil {
		id := assignee.ID
		task.AssigneeID = &id
	}
	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}
