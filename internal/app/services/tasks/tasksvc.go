// Package tasksvc implements the task board of a project.
package tasksvc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/taskhub/internal/app/policy/taskpolicy"
	projectsvc "github.com/dalemusser/taskhub/internal/app/services/projects"
	membershipstore "github.com/dalemusser/taskhub/internal/app/store/memberships"
	projectstore "github.com/dalemusser/taskhub/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskhub/internal/app/store/tasks"
	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"github.com/dalemusser/taskhub/internal/app/system/auditlog"
	"github.com/dalemusser/taskhub/internal/app/system/authz"
	"github.com/dalemusser/taskhub/internal/app/system/formutil"
	"github.com/dalemusser/taskhub/internal/app/system/inputval"
	"github.com/dalemusser/taskhub/internal/app/system/normalize"
	"github.com/dalemusser/taskhub/internal/app/system/paging"
	"github.com/dalemusser/taskhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	Projects *projectstore.Store
	Members  *membershipstore.Store
	Tasks    *taskstore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func New(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Service {
	return &Service{
		Projects: projectstore.New(db),
		Members:  membershipstore.New(db),
		Tasks:    taskstore.New(db),
		Audit:    audit,
		Log:      logger,
	}
}

// visible loads the project and fails with 404 unless actor is its owner
// or a member.
func (s *Service) visible(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID) (projectsvc.Access, error) {
	acc, err := projectsvc.LoadAccess(ctx, s.Projects, s.Members, actor, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return projectsvc.Access{}, apperr.NotFound(taskpolicy.MsgProjectNotVisible)
	}
	if err != nil {
		return projectsvc.Access{}, fmt.Errorf("load project: %w", err)
	}
	if !acc.Project.IsOwner(actor.ID) && !acc.IsMember {
		return projectsvc.Access{}, apperr.NotFound(taskpolicy.MsgProjectNotVisible)
	}
	return acc, nil
}

func (s *Service) task(ctx context.Context, projectID, id primitive.ObjectID) (models.Task, error) {
	t, err := s.Tasks.GetInProject(ctx, projectID, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, apperr.NotFound(taskpolicy.MsgTaskNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("load task: %w", err)
	}
	return *t, nil
}

// checkAssignee adds a field error when a present assignee is neither the
// owner nor a member. An explicit null is always acceptable.
func (s *Service) checkAssignee(ctx context.Context, p models.Project, a formutil.OptionalID, errs *inputval.Errors) error {
	if !a.Set || a.Null {
		return nil
	}
	if a.Malformed {
		errs.Add("assignee", inputval.MsgNotMember)
		return nil
	}
	member := false
	if !p.IsOwner(a.ID) {
		var err error
		if member, err = s.Members.IsMember(ctx, p.ID, a.ID); err != nil {
			return fmt.Errorf("assignee lookup: %w", err)
		}
	}
	if !taskpolicy.ValidAssignee(p, a.ID, member) {
		errs.Add("assignee", inputval.MsgNotMember)
	}
	return nil
}

func assigneePtr(a formutil.OptionalID) *primitive.ObjectID {
	if !a.Set || a.Null {
		return nil
	}
	id := a.ID
	return &id
}

// ListQuery narrows a task listing.
type ListQuery struct {
	AssigneeID *primitive.ObjectID
	Status     string
	Page       paging.Params
}

// List returns a page of the project's tasks. Non-owners only ever see the
// tasks assigned to them; an AssigneeID naming someone else yields nothing.
func (s *Service) List(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID, q ListQuery) (paging.Page[models.Task], error) {
	acc, err := projectsvc.LoadAccess(ctx, s.Projects, s.Members, actor, projectID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return paging.Page[models.Task]{}, apperr.NotFound(taskpolicy.MsgProjectNotVisible)
	}
	if err != nil {
		return paging.Page[models.Task]{}, fmt.Errorf("load project: %w", err)
	}
	d, scope := taskpolicy.CanList(actor, acc.Project, acc.IsMember)
	if err := d.Err(); err != nil {
		return paging.Page[models.Task]{}, err
	}

	f := taskstore.ListFilter{ProjectID: projectID, AssigneeID: q.AssigneeID, Status: normalize.Status(q.Status)}
	if scope.AssigneeOnly {
		if q.AssigneeID != nil && *q.AssigneeID != scope.AssigneeID {
			return paging.NewPage[models.Task](nil, q.Page, 0), nil
		}
		self := scope.AssigneeID
		f.AssigneeID = &self
	}
	return s.list(ctx, f, q.Page)
}

// MyTasks returns the tasks in the project assigned to actor.
func (s *Service) MyTasks(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID, status string, p paging.Params) (paging.Page[models.Task], error) {
	if _, err := s.visible(ctx, actor, projectID); err != nil {
		return paging.Page[models.Task]{}, err
	}
	self := actor.ID
	return s.list(ctx, taskstore.ListFilter{ProjectID: projectID, AssigneeID: &self, Status: normalize.Status(status)}, p)
}

func (s *Service) list(ctx context.Context, f taskstore.ListFilter, p paging.Params) (paging.Page[models.Task], error) {
	items, total, err := s.Tasks.List(ctx, f, p)
	if err != nil {
		return paging.Page[models.Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	return paging.NewPage(items, p, total), nil
}

// Get returns a task the actor may see: the owner sees every task, anyone
// else only their own assignments.
func (s *Service) Get(ctx context.Context, actor authz.Actor, projectID, id primitive.ObjectID) (models.Task, error) {
	acc, err := s.visible(ctx, actor, projectID)
	if err != nil {
		return models.Task{}, err
	}
	t, err := s.task(ctx, projectID, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := taskpolicy.CanView(actor, acc.Project, t).Err(); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// CreateInput carries a new task's fields.
type CreateInput struct {
	Title    string
	Status   string
	Assignee formutil.OptionalID
}

// Create adds a task to the project. Only the owner may create tasks.
func (s *Service) Create(ctx context.Context, actor authz.Actor, projectID primitive.ObjectID, in CreateInput) (models.Task, error) {
	acc, err := s.visible(ctx, actor, projectID)
	if err != nil {
		return models.Task{}, err
	}
	if err := taskpolicy.CanCreate(actor, acc.Project).Err(); err != nil {
		return models.Task{}, err
	}

	title := normalize.Title(in.Title)
	status := normalize.Status(in.Status)
	errs := inputval.Task(title, status)
	if err := s.checkAssignee(ctx, acc.Project, in.Assignee, &errs); err != nil {
		return models.Task{}, err
	}
	if !errs.Empty() {
		return models.Task{}, apperr.Validation(errs)
	}

	t, err := s.Tasks.Create(ctx, models.Task{
		Title:      title,
		Status:     status,
		ProjectID:  projectID,
		AssigneeID: assigneePtr(in.Assignee),
		CreatorID:  actor.ID,
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.Audit.TaskCreated(ctx, actor.ID, projectID, t.ID)
	return t, nil
}

// UpdateInput carries the fields a task update sends. Nil or unset fields
// were not sent. Keys lists every key of the request's task object,
// including keys sent as null and keys the service does not know.
type UpdateInput struct {
	Title    *string
	Status   *string
	Assignee formutil.OptionalID
	Keys     []string
}

func (in UpdateInput) fields() taskpolicy.Fields {
	f := taskpolicy.Fields{Title: in.Title != nil, Status: in.Status != nil, Assignee: in.Assignee.Set}
	for _, k := range in.Keys {
		switch k {
		case "title":
			f.Title = true
		case "status":
			f.Status = true
		case "assignee_id":
			f.Assignee = true
		default:
			f.Other = true
		}
	}
	return f
}

// Update changes a task. The owner may change any field; the assignee may
// only change the status.
func (s *Service) Update(ctx context.Context, actor authz.Actor, projectID, id primitive.ObjectID, in UpdateInput) (models.Task, error) {
	acc, err := s.visible(ctx, actor, projectID)
	if err != nil {
		return models.Task{}, err
	}
	t, err := s.task(ctx, projectID, id)
	if err != nil {
		return models.Task{}, err
	}
	if err := taskpolicy.CanUpdate(actor, acc.Project, t, in.fields()).Err(); err != nil {
		return models.Task{}, err
	}

	upd := taskstore.Update{}
	title, status := t.Title, t.Status
	var changed []string
	if in.Title != nil {
		title = normalize.Title(*in.Title)
		upd.Title = &title
		changed = append(changed, "title")
	}
	if in.Status != nil {
		status = normalize.Status(*in.Status)
		upd.Status = &status
		changed = append(changed, "status")
	}
	errs := inputval.Task(title, status)
	if err := s.checkAssignee(ctx, acc.Project, in.Assignee, &errs); err != nil {
		return models.Task{}, err
	}
	if !errs.Empty() {
		return models.Task{}, apperr.Validation(errs)
	}
	if in.Assignee.Set {
		upd.SetAssignee = true
		upd.AssigneeID = assigneePtr(in.Assignee)
		changed = append(changed, "assignee_id")
	}

	out, err := s.Tasks.Update(ctx, projectID, id, upd)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, apperr.NotFound(taskpolicy.MsgTaskNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	sort.Strings(changed)
	s.Audit.TaskUpdated(ctx, actor.ID, projectID, id, strings.Join(changed, ","))
	return *out, nil
}

// Destroy deletes a task. Only the owner may delete tasks.
func (s *Service) Destroy(ctx context.Context, actor authz.Actor, projectID, id primitive.ObjectID) error {
	acc, err := s.visible(ctx, actor, projectID)
	if err != nil {
		return err
	}
	if _, err := s.task(ctx, projectID, id); err != nil {
		return err
	}
	if err := taskpolicy.CanDelete(actor, acc.Project).Err(); err != nil {
		return err
	}
	if _, err := s.Tasks.Delete(ctx, projectID, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.Audit.TaskDeleted(ctx, actor.ID, projectID, id)
	return nil
}
