package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

const MaxPageSize = 100

type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
	now    func() time.Time
}

var _ ports.TaskService = (*TaskService)(nil)

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger, now: time.Now}
}

// CreateTask stores a new task owned by ownerID. The owner always comes from
// the authenticated caller, never from the request body.
func (s *TaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput, ownerID int64) (*domain.Task, error) {
	if err := domain.ValidateTitle(in.Title); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.DefaultStatus
	}
	if !status.Valid() {
		return nil, domain.BadRequest("status must be one of: todo in_progress done")
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	if !priority.Valid() {
		return nil, domain.BadRequest("priority must be one of: low medium high")
	}

	now := s.now().UTC()
	task, err := s.repo.Create(ctx, &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Int64("task_id", task.ID).Int64("owner_id", ownerID).Msg("task created")
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID, ownerID int64) (*domain.Task, error) {
	return s.resolveOwnedTask(ctx, taskID, ownerID)
}

// UpdateTask applies a partial update after the ownership check. Fields absent
// from the patch are left untouched; updated_at is always bumped.
func (s *TaskService) UpdateTask(ctx context.Context, taskID int64, patch domain.TaskPatch, ownerID int64) (*domain.Task, error) {
	if _, err := s.resolveOwnedTask(ctx, taskID, ownerID); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, taskID, patch, s.now().UTC())
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			// Deleted between the ownership check and the write.
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task %d: %w", taskID, err)
	}

	s.logger.Info().Int64("task_id", taskID).Int64("owner_id", ownerID).Msg("task updated")
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID, ownerID int64) error {
	if _, err := s.resolveOwnedTask(ctx, taskID, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("delete task %d: %w", taskID, err)
	}

	s.logger.Info().Int64("task_id", taskID).Int64("owner_id", ownerID).Msg("task deleted")
	return nil
}

// ListTasks returns one page of the caller's tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, in ports.ListTasksInput) (*ports.ListTasksResult, error) {
	if in.Page < 1 {
		return nil, domain.BadRequest("page must be at least 1")
	}
	if in.PageSize < 1 || in.PageSize > MaxPageSize {
		return nil, domain.BadRequest("page_size must be between 1 and %d", MaxPageSize)
	}
	if in.Status != "" && !domain.TaskStatus(in.Status).Valid() {
		return nil, domain.BadRequest("status must be one of: todo in_progress done")
	}
	if in.Priority != "" && !domain.TaskPriority(in.Priority).Valid() {
		return nil, domain.BadRequest("priority must be one of: low medium high")
	}

	filter := ports.ListTasksFilter{
		OwnerID:  in.OwnerID,
		Status:   in.Status,
		Priority: in.Priority,
		Search:   in.Search,
		Page:     in.Page,
		PageSize: in.PageSize,
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Int64("owner_id", in.OwnerID).Msg("failed to list tasks")
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if items == nil {
		items = []*domain.Task{}
	}

	return &ports.ListTasksResult{
		Items:      items,
		Total:      total,
		Page:       in.Page,
		PageSize:   in.PageSize,
		TotalPages: totalPages(total, in.PageSize),
	}, nil
}

// resolveOwnedTask distinguishes a missing task (404) from one owned by
// someone else (403).
func (s *TaskService) resolveOwnedTask(ctx context.Context, taskID, ownerID int64) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task %d: %w", taskID, err)
	}
	if task.OwnerID != ownerID {
		s.logger.Warn().Int64("task_id", taskID).Int64("caller_id", ownerID).Msg("task access denied")
		return nil, domain.Forbidden("You don't have access to this task")
	}
	return task, nil
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
