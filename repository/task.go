package repository

import (
	"context"
	"time"

	"github.com/fastygo/daybook/domain"
)

// NoLimit disables pagination for callers that need every matching row (analytics).
const NoLimit = -1

type TaskFilter struct {
	UserID       string
	Completed    *bool
	DeadlineFrom *time.Time
	DeadlineTo   *time.Time
	// ActiveSince keeps tasks created or completed at or after the instant.
	ActiveSince *time.Time
	Limit       int
	Offset      int
}

type TaskRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// Update writes the task row. A positive task.Version must match the stored version.
	Update(ctx context.Context, task *domain.Task) error
	SetCompleted(ctx context.Context, userID, id string, completed bool, completedAt *time.Time) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error

	InsertSubTasks(ctx context.Context, taskID string, subTasks []domain.SubTask) ([]domain.SubTask, error)
	DeleteSubTasks(ctx context.Context, taskID string) error
	SetSubTaskCompleted(ctx context.Context, taskID, subTaskID string, completed bool) error
}
