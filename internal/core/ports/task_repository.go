package ports

import (
	"context"
	"math"
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// OwnerID is always set by the service layer; it is never optional.
type ListTasksFilter struct {
	OwnerID  int64
	Status   string // optional: exact match
	Priority string // optional: exact match
	Search   string // optional: case-insensitive substring of title or description
	Page     int    // 1-based
	PageSize int
}

// Offset is the number of rows skipped before the requested page. It
// saturates at math.MaxInt instead of overflowing for absurd page numbers,
// which stores answer with an empty page.
func (f ListTasksFilter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PageSize {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PageSize
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	// FindByID returns domain.ErrTaskNotFound when no task has that id,
	// whoever owns it.
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	// Update applies patch atomically: the row is read, patched and written
	// inside one store operation. updated_at is set to now.
	Update(ctx context.Context, id int64, patch domain.TaskPatch, now time.Time) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	// List returns one page ordered by created_at DESC, id DESC, plus the
	// number of rows matching the filter before pagination.
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
	// Stats counts the owner's tasks in a single read.
	Stats(ctx context.Context, ownerID int64, now time.Time) (*domain.TaskStats, error)
}
