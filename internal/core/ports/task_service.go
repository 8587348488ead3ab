package ports

import (
	"context"
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// CreateTaskInput carries the client-supplied fields of a new task. Zero
// values for Status and Priority mean "use the default".
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// ListTasksInput carries all parameters for the list endpoint.
type ListTasksInput struct {
	OwnerID  int64
	Status   string
	Priority string
	Search   string
	Page     int
	PageSize int
}

// ListTasksResult is returned by ListTasks.
type ListTasksResult struct {
	Items      []*domain.Task
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// TaskService defines use-case operations for tasks. Every operation is
// scoped to the calling user.
type TaskService interface {
	CreateTask(ctx context.Context, in CreateTaskInput, ownerID int64) (*domain.Task, error)
	GetTask(ctx context.Context, taskID, ownerID int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID int64, patch domain.TaskPatch, ownerID int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID, ownerID int64) error
	ListTasks(ctx context.Context, in ListTasksInput) (*ListTasksResult, error)
}
