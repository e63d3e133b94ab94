package task

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	appLogger "github.com/fastygo/daybook/pkg/logger"
	"github.com/fastygo/daybook/repository"
	"github.com/fastygo/daybook/usecase"
	"github.com/fastygo/daybook/usecase/filter"
)

const MaxTitleLength = 200

// Step names reported in partial failures.
const (
	StepSubTasks = "sub-tasks"
)

type SubTaskInput struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Input is the editable part of a task. Version is only read by Update.
type Input struct {
	Title       string
	Description string
	Priority    string
	Deadline    *time.Time
	SubTasks    []SubTaskInput
	Version     int
}

type UseCase struct {
	tasks  repository.TaskRepository
	loc    *time.Location
	now    usecase.Clock
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, loc *time.Location, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = localtime.Default()
	}
	return &UseCase{
		tasks:  tasks,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source; used by tests.
func (uc *UseCase) WithClock(now usecase.Clock) *UseCase {
	uc.now = now
	return uc
}

// List returns the user's tasks matching the named filter. Unknown names list everything.
func (uc *UseCase) List(ctx context.Context, session *domain.Session, filterName string, page usecase.Page) ([]domain.Task, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	query := repository.TaskFilter{UserID: userID, Limit: page.Limit, Offset: page.Offset}
	filter.ResolveTaskFilter(filterName, uc.now(), uc.loc).ApplyTask(&query)

	tasks, err := uc.tasks.List(ctx, query)
	if err != nil {
		return nil, usecase.Internal("failed to load tasks", err)
	}
	return tasks, nil
}

func (uc *UseCase) Get(ctx context.Context, session *domain.Session, id string) (*domain.Task, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, usecase.Internal("failed to load task", err)
	}
	return task, nil
}

// Create inserts the task row and then its sub-tasks. When only the sub-task
// insert fails the saved task is returned together with a PartialError.
func (uc *UseCase) Create(ctx context.Context, session *domain.Session, in Input) (*domain.Task, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	priority, subTasks, err := validate(in)
	if err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, &domain.Task{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Deadline:    in.Deadline,
	})
	if err != nil {
		return nil, usecase.Internal("failed to create task", err)
	}

	partial := &domain.PartialError{Subject: "task saved"}
	created.SubTasks, err = uc.insertSubTasks(ctx, created.ID, subTasks)
	partial.Add(StepSubTasks, err)
	if err := partial.OrNil(); err != nil {
		appLogger.FromContext(ctx, uc.logger).Warn("task created with failed steps", zap.String("task_id", created.ID), zap.Error(err))
		return created, err
	}
	return created, nil
}

// Update rewrites the task row and replaces its sub-tasks wholesale.
// A positive in.Version must match the stored version.
func (uc *UseCase) Update(ctx context.Context, session *domain.Session, id string, in Input) (*domain.Task, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	priority, subTasks, err := validate(in)
	if err != nil {
		return nil, err
	}

	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, usecase.Internal("failed to load task", err)
	}
	task.Title = strings.TrimSpace(in.Title)
	task.Description = strings.TrimSpace(in.Description)
	task.Priority = priority
	task.Deadline = in.Deadline
	task.Version = in.Version

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, usecase.Internal("failed to update task", err)
	}

	partial := &domain.PartialError{Subject: "task saved"}
	if err := uc.tasks.DeleteSubTasks(ctx, task.ID); err != nil {
		partial.Add(StepSubTasks, err)
	} else {
		task.SubTasks, err = uc.insertSubTasks(ctx, task.ID, subTasks)
		partial.Add(StepSubTasks, err)
	}
	if err := partial.OrNil(); err != nil {
		appLogger.FromContext(ctx, uc.logger).Warn("task updated with failed steps", zap.String("task_id", task.ID), zap.Error(err))
		return task, err
	}
	return task, nil
}

// Delete removes sub-tasks first, best effort, then always attempts the task row.
func (uc *UseCase) Delete(ctx context.Context, session *domain.Session, id string) error {
	userID, err := session.RequireUser()
	if err != nil {
		return err
	}
	if _, err := uc.tasks.GetByID(ctx, userID, id); err != nil {
		return usecase.Internal("failed to load task", err)
	}

	partial := &domain.PartialError{Subject: "task deleted"}
	if err := uc.tasks.DeleteSubTasks(ctx, id); err != nil {
		appLogger.FromContext(ctx, uc.logger).Warn("failed to delete sub-tasks", zap.String("task_id", id), zap.Error(err))
		partial.Add(StepSubTasks, err)
	}
	if err := uc.tasks.Delete(ctx, userID, id); err != nil {
		return usecase.Internal("failed to delete task", err)
	}
	return partial.OrNil()
}

// ToggleStatus flips the completion flag, stamping or clearing completed_at.
func (uc *UseCase) ToggleStatus(ctx context.Context, session *domain.Session, id string) (*domain.Task, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	current, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, usecase.Internal("failed to load task", err)
	}

	current.SetCompleted(!current.Completed, uc.now())
	updated, err := uc.tasks.SetCompleted(ctx, userID, id, current.Completed, current.CompletedAt)
	if err != nil {
		return nil, usecase.Internal("failed to update task status", err)
	}
	return updated, nil
}

func (uc *UseCase) ToggleSubTask(ctx context.Context, session *domain.Session, taskID, subTaskID string) (*domain.Task, error) {
	userID, err := session.RequireUser()
	if err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, usecase.Internal("failed to load task", err)
	}

	idx := -1
	for i := range task.SubTasks {
		if task.SubTasks[i].ID == subTaskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrSubTaskNotFound
	}

	next := !task.SubTasks[idx].Completed
	if err := uc.tasks.SetSubTaskCompleted(ctx, taskID, subTaskID, next); err != nil {
		return nil, usecase.Internal("failed to update sub-task", err)
	}
	task.SubTasks[idx].Completed = next
	return task, nil
}

func (uc *UseCase) insertSubTasks(ctx context.Context, taskID string, in []domain.SubTask) ([]domain.SubTask, error) {
	if len(in) == 0 {
		return nil, nil
	}
	return uc.tasks.InsertSubTasks(ctx, taskID, in)
}

func validate(in Input) (domain.Priority, []domain.SubTask, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", nil, domain.NewError(domain.ErrCodeInvalid, "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", nil, domain.NewError(domain.ErrCodeInvalid, "title must be at most 200 characters")
	}

	priority := domain.PriorityMedium
	if strings.TrimSpace(in.Priority) != "" {
		p, err := domain.ParsePriority(in.Priority)
		if err != nil {
			return "", nil, err
		}
		priority = p
	}

	subTasks := make([]domain.SubTask, 0, len(in.SubTasks))
	for i, st := range in.SubTasks {
		title := strings.TrimSpace(st.Title)
		if title == "" {
			return "", nil, domain.NewError(domain.ErrCodeInvalid, "sub-task title is required")
		}
		subTasks = append(subTasks, domain.SubTask{Title: title, Completed: st.Completed, Position: i})
	}
	return priority, subTasks, nil
}
