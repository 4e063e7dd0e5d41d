// Package projectsvc implements the project registry: create, read, rename,
// delete and list projects on behalf of an authenticated actor.
package projectsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	membershipstore "github.com/dalemusser/taskhub/internal/app/store/memberships"
	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/inputval"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	DB       *mongo.Database
	Projects *projectstore.Store
	Members  *membershipstore.Store
	Tasks    *taskstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func New(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Service {
	return &Service{
		DB:       db,
		Projects: projectstore.New(db),
		Members:  membershipstore.New(db),
		Tasks:    taskstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
}

// Access is what the policies need to know about a project and an actor.
type Access struct {
	Project  models.Project
	IsMember bool
}

// LoadAccess loads the project and the actor's membership flag. It returns
// mongo.ErrNoDocuments when the project does not exist. The owner never has
// a membership row, so the lookup is skipped for them.
func LoadAccess(ctx context.Context, projects *projectstore.Store, members *membershipstore.Store, actor authz.Actor, projectID primitive.ObjectID) (Access, error) {
	p, err := projects.GetByID(ctx, projectID)
	if err != nil {
		return Access{}, err
	}
	if p.IsOwner(actor.ID) {
		return Access{Project: *p}, nil
	}
	ok, err := members.IsMember(ctx, projectID, actor.ID)
	if err != nil {
		return Access{}, fmt.Errorf("membership lookup: %w", err)
	}
	return Access{Project: *p, IsMember: ok}, nil
}

// visible loads a project the actor can see, or reports it as not found.
func (s *Service) visible(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (Access, error) {
	acc, err := LoadAccess(ctx, s.Projects, s.Members, actor, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Access{}, apperr.NotFound(projectpolicy.MsgNotVisible)
	}
	if err != nil {
		return Access{}, fmt.Errorf("load project: %w", err)
	}
	if err := projectpolicy.CanView(actor, acc.Project, acc.IsMember).Err(); err != nil {
		return Access{}, err
	}
	return acc, nil
}

func cleanName(name string) (string, error) {
	name = normalize.Name(name)
	if errs := inputval.Project(name); !errs.Empty() {
		return "", apperr.Validation(errs)
	}
	return name, nil
}

// Create makes actor the owner of a new project.
func (s *Service) Create(ctx context.Context, actor authz.Actor, name string) (models.Project, error) {
	name, err := cleanName(name)
	if err != nil {
		return models.Project{}, err
	}
	p, err := s.Projects.Create(ctx, actor.ID, name)
	if err != nil {
		return models.Project{}, fmt.Errorf("create project: %w", err)
	}
	s.Audit.ProjectCreated(ctx, actor.ID, p.ID, p.Name)
	return p, nil
}

// Get returns a project visible to actor.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id primitive.ObjectID) (models.Project, error) {
	acc, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.Project{}, err
	}
	return acc.Project, nil
}

// Update renames the project. A nil name leaves the project unchanged.
// Ownership is not an updatable field.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id primitive.ObjectID, name *string) (models.Project, error) {
	acc, err := s.visible(ctx, actor, id)
	if err != nil {
		return models.Project{}, err
	}
	if err := projectpolicy.CanUpdate(actor, acc.Project).Err(); err != nil {
		return models.Project{}, err
	}
	if name == nil {
		return acc.Project, nil
	}
	clean, err := cleanName(*name)
	if err != nil {
		return models.Project{}, err
	}
	p, err := s.Projects.Rename(ctx, id, clean)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Project{}, apperr.NotFound(projectpolicy.MsgNotVisible)
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("rename project: %w", err)
	}
	s.Audit.ProjectUpdated(ctx, actor.ID, p.ID, p.Name)
	return *p, nil
}

// Destroy deletes the project with its tasks and memberships in one
// transaction.
func (s *Service) Destroy(ctx context.Context, actor authz.Actor, id primitive.ObjectID) error {
	acc, err := s.visible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := projectpolicy.CanDelete(actor, acc.Project).Err(); err != nil {
		return err
	}
	ids := []primitive.ObjectID{id}
	err = txn.Run(ctx, s.DB, s.Log, func(ctx context.Context) error {
		if _, err := s.Tasks.DeleteByProjects(ctx, ids); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if _, err := s.Members.DeleteByProjects(ctx, ids); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if _, err := s.Projects.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Audit.ProjectDeleted(ctx, actor.ID, id, acc.Project.Name)
	return nil
}

// List returns the projects actor owns, has joined, or both.
func (s *Service) List(ctx context.Context, actor authz.Actor, lt projectpolicy.ListType) ([]models.Project, error) {
	var f projectstore.ListFilter
	if lt != projectpolicy.ListJoined {
		owner := actor.ID
		f.OwnerID = &owner
	}
	if lt != projectpolicy.ListOwned {
		ids, err := s.Members.ProjectIDsFor(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("joined projects: %w", err)
		}
		if lt == projectpolicy.ListJoined && len(ids) == 0 {
			return []models.Project{}, nil
		}
		f.IDs = ids
	}
	out, err := s.Projects.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}
