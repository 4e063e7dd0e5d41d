// Package membershipsvc implements the membership ledger: listing,
// inviting and removing the members of a project.
package membershipsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/taskhub/internal/app/policy/membershippolicy"
	"github.com/dalemusser/taskhub/internal/app/policy/projectpolicy"
	projectsvc "github.com/dalemusser/taskhub/internal/app/services/projects"
	membershipstore "github.com/dalemusser/taskhub/internal/app/store/memberships"
	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
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
	Users    *userstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func New(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Service {
	return &Service{
		DB:       db,
		Projects: projectstore.New(db),
		Members:  membershipstore.New(db),
		Tasks:    taskstore.New(db),
		Users:    userstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
}

func (s *Service) load(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID) (projectsvc.Access, error) {
	acc, err := projectsvc.LoadAccess(ctx, s.Projects, s.Members, actor, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return projectsvc.Access{}, apperr.NotFound(projectpolicy.MsgNotFound)
	}
	if err != nil {
		return projectsvc.Access{}, fmt.Errorf("load project: %w", err)
	}
	return acc, nil
}

// findUser returns nil, nil when the user does not exist.
func (s *Service) findUser(ctx context.Context, find func() (*models.User, error)) (*models.User, error) {
	u, err := find()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// List returns the members of a project ordered by name. The owner is not
// part of the list.
func (s *Service) List(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID) ([]models.User, error) {
	acc, err := s.load(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if err := membershippolicy.CanList(actor, acc.Project, acc.IsMember).Err(); err != nil {
		return nil, err
	}
	ids, err := s.Members.MemberIDs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("member ids: %w", err)
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	return users, nil
}

// Invite adds the user with email to the project. It returns the project
// and the added user.
func (s *Service) Invite(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID, email string) (models.Project, models.User, error) {
	acc, err := s.load(ctx, actor, projectID)
	if err != nil {
		return models.Project{}, models.User{}, err
	}
	if err := membershippolicy.CanInvite(actor, acc.Project).Err(); err != nil {
		return models.Project{}, models.User{}, err
	}

	var target *models.User
	if email = normalize.Email(email); email != "" {
		target, err = s.findUser(ctx, func() (*models.User, error) { return s.Users.GetByEmail(ctx, email) })
		if err != nil {
			return models.Project{}, models.User{}, err
		}
	}
	already := false
	if target != nil && !acc.Project.IsOwner(target.ID) {
		already, err = s.Members.IsMember(ctx, projectID, target.ID)
		if err != nil {
			return models.Project{}, models.User{}, fmt.Errorf("membership lookup: %w", err)
		}
	}
	if err := membershippolicy.CheckInviteTarget(acc.Project, target, already).Err(); err != nil {
		return models.Project{}, models.User{}, err
	}

	if err := s.add(ctx, projectID, target.ID); err != nil {
		return models.Project{}, models.User{}, err
	}
	s.Audit.MemberAdded(ctx, actor.ID, projectID, target.ID)
	return acc.Project, *target, nil
}

// add writes the membership row. A concurrent invite that got past the
// IsMember check loses on the unique index and is reported as a conflict.
func (s *Service) add(ctx context.Context, projectID, userID primitive.ObjectID) error {
	if _, err := s.Members.Add(ctx, projectID, userID); err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			return apperr.Conflict(membershippolicy.MsgAlreadyMember)
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// Remove takes targetID out of the project, or the actor when targetID is
// nil. The member's tasks in the project are unassigned in the same
// transaction as the membership delete.
func (s *Service) Remove(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID, targetID *primitive.ObjectID) (membershippolicy.Removal, error) {
	acc, err := s.load(ctx, actor, projectID)
	if err != nil {
		return membershippolicy.Removal{}, err
	}
	uid := actor.ID
	if targetID != nil {
		uid = *targetID
	}
	target, err := s.findUser(ctx, func() (*models.User, error) { return s.Users.GetByID(ctx, uid) })
	if err != nil {
		return membershippolicy.Removal{}, err
	}
	isMember := false
	if target != nil {
		isMember, err = s.Members.IsMember(ctx, projectID, target.ID)
		if err != nil {
			return membershippolicy.Removal{}, fmt.Errorf("membership lookup: %w", err)
		}
	}
	d, rm := membershippolicy.CanRemove(actor, acc.Project, target, isMember)
	if err := d.Err(); err != nil {
		return membershippolicy.Removal{}, err
	}

	var unassigned int64
	err = txn.Run(ctx, s.DB, s.Log, func(ctx context.Context) error {
		n, err := s.Members.Remove(ctx, projectID, target.ID)
		if err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
		if n == 0 {
			return apperr.Invalid(membershippolicy.MsgNotMember)
		}
		unassigned, err = s.Tasks.UnassignInProject(ctx, projectID, target.ID)
		if err != nil {
			return fmt.Errorf("unassign tasks: %w", err)
		}
		return nil
	})
	if err != nil {
		return membershippolicy.Removal{}, err
	}

	if rm.SelfLeave {
		s.Audit.MemberLeft(ctx, projectID, target.ID, unassigned)
	} else {
		s.Audit.MemberRemoved(ctx, actor.ID, projectID, target.ID, unassigned)
	}
	return rm, nil
}
