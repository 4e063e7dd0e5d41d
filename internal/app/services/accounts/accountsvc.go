// Package accountsvc handles user accounts: registration, credential login,
// token revocation, profile edits and self-deletion.
package accountsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/taskhub/internal/app/policy/userpolicy"
	membershipstore "github.com/dalemusser/taskhub/internal/app/store/memberships"
	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	tokenstore "github.com/dalemusser/taskhub/internal/app/store/tokens"
	userstore "github.com/dalemusser/taskhub/internal/app/store/users"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/auth"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/inputval"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/taskhub/internal/app/system/txn"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgUserNotFound       = "User not found"
)

type Service struct {
	DB       *mongo.Database
	Users    *userstore.Store
	Projects *projectstore.Store
	Members  *membershipstore.Store
	Tasks    *taskstore.Store
	Tokens   *tokenstore.Store
	Issuer   *auth.Issuer
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func New(db *mongo.Database, issuer *auth.Issuer, audit *auditlog.Logger, logger *zap.Logger) *Service {
	return &Service{
		DB:       db,
		Users:    userstore.New(db),
		Projects: projectstore.New(db),
		Members:  membershipstore.New(db),
		Tasks:    taskstore.New(db),
		Tokens:   tokenstore.New(db),
		Issuer:   issuer,
		Audit:    audit,
		Log:      logger,
	}
}

// Session is a freshly issued token and the user it belongs to.
type Session struct {
	Token string
	User  models.User
}

func (s *Service) issue(u models.User) (Session, error) {
	tok, _, err := s.Issuer.Issue(u.ID.Hex())
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: tok, User: u}, nil
}

func emailTaken() error {
	var errs inputval.Errors
	errs.Add("email", inputval.MsgTaken)
	return apperr.Validation(errs)
}

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Register creates an account and signs the new user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name := normalize.Name(in.Name)
	email := normalize.Email(in.Email)
	if errs := inputval.Registration(name, email, in.Password, in.PasswordConfirmation); !errs.Empty() {
		return Session{}, apperr.Validation(errs)
	}
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return Session{}, emailTaken()
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return Session{}, fmt.Errorf("email lookup: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}
	u, err := s.Users.Create(ctx, models.User{Name: name, Email: email, PasswordHash: hash})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return Session{}, emailTaken()
	}
	if err != nil {
		return Session{}, fmt.Errorf("create user: %w", err)
	}
	s.Audit.Registered(ctx, u.ID, u.Email)
	return s.issue(u)
}

// Login checks email and password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalize.Email(email)
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		s.Audit.LoginFailedUserNotFound(ctx, email)
		return Session{}, apperr.Unauthenticated(MsgInvalidCredentials)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		s.Audit.LoginFailedWrongPassword(ctx, u.ID, u.Email)
		return Session{}, apperr.Unauthenticated(MsgInvalidCredentials)
	}
	s.Audit.LoginSuccess(ctx, u.ID, u.Email)
	return s.issue(*u)
}

// Logout revokes the token id until the token would have expired anyway.
func (s *Service) Logout(ctx context.Context, userID primitive.ObjectID, tokenID string, expiresAt time.Time) error {
	if err := s.Tokens.Revoke(ctx, tokenID, userID, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.Audit.Logout(ctx, userID, tokenID)
	return nil
}

// Get loads one user.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	u, err := s.Users.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return *u, nil
}

// List returns a page of users ordered by name.
func (s *Service) List(ctx context.Context, p paging.Params) (paging.Page[models.User], error) {
	users, total, err := s.Users.List(ctx, p)
	if err != nil {
		return paging.Page[models.User]{}, fmt.Errorf("list users: %w", err)
	}
	return paging.NewPage(users, p, total), nil
}

// UpdateInput is a partial profile update. Nil fields were not sent.
type UpdateInput struct {
	Name                 *string
	Email                *string
	Password             *string
	PasswordConfirmation *string
}

// Update edits the profile of targetID. Users may edit themselves; admins
// may edit anyone.
func (s *Service) Update(ctx context.Context, actor authz.Actor, targetID primitive.ObjectID, in UpdateInput) (models.User, error) {
	if err := userpolicy.CanUpdate(actor, targetID).Err(); err != nil {
		return models.User{}, err
	}
	if _, err := s.Get(ctx, targetID); err != nil {
		return models.User{}, err
	}

	var upd userstore.Update
	var changed []string
	if in.Name != nil {
		name := normalize.Name(*in.Name)
		upd.Name = &name
		changed = append(changed, "name")
	}
	if in.Email != nil {
		email := normalize.Email(*in.Email)
		upd.Email = &email
		changed = append(changed, "email")
	}
	if errs := inputval.UserUpdate(upd.Name, upd.Email, in.Password, in.PasswordConfirmation); !errs.Empty() {
		return models.User{}, apperr.Validation(errs)
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return models.User{}, err
		}
		upd.PasswordHash = &hash
		changed = append(changed, "password")
	}

	u, err := s.Users.Update(ctx, targetID, upd)
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return models.User{}, emailTaken()
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.User{}, apperr.NotFound(MsgUserNotFound)
	case err != nil:
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	s.Audit.UserUpdated(ctx, actor.ID, targetID, strings.Join(changed, ","))
	return *u, nil
}

// DeleteSelf removes the actor's account. Owned projects go with their
// tasks and memberships; the actor's memberships elsewhere are dropped and
// tasks assigned to them elsewhere are unassigned.
func (s *Service) DeleteSelf(ctx context.Context, actor authz.Actor) error {
	err := txn.Run(ctx, s.DB, s.Log, func(ctx context.Context) error {
		owned, err := s.Projects.IDsOwnedBy(ctx, actor.ID)
		if err != nil {
			return fmt.Errorf("owned projects: %w", err)
		}
		if _, err := s.Tasks.DeleteByProjects(ctx, owned); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if _, err := s.Members.DeleteByProjects(ctx, owned); err != nil {
			return fmt.Errorf("delete project memberships: %w", err)
		}
		if _, err := s.Projects.DeleteMany(ctx, owned); err != nil {
			return fmt.Errorf("delete projects: %w", err)
		}
		if _, err := s.Members.DeleteByUser(ctx, actor.ID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if _, err := s.Tasks.UnassignEverywhere(ctx, actor.ID); err != nil {
			return fmt.Errorf("unassign tasks: %w", err)
		}
		if _, err := s.Tokens.DeleteByUser(ctx, actor.ID); err != nil {
			return fmt.Errorf("delete revoked tokens: %w", err)
		}
		n, err := s.Users.Delete(ctx, actor.ID)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if n == 0 {
			return apperr.NotFound(MsgUserNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Audit.UserDeleted(ctx, actor.ID, actor.Email)
	return nil
}
