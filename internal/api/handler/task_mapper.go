package handler

import (
	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateTaskInput(req createTaskRequest) ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
	}
}

func toTaskPatch(req updateTaskRequest) domain.TaskPatch {
	return domain.TaskPatch{
		Title:       req.Title.Field,
		Description: req.Description.Field,
		Status:      req.Status.Field,
		Priority:    req.Priority.Field,
		DueDate:     req.DueDate.Field,
	}
}

func toListTasksInput(req listTasksRequest, ownerID int64) ports.ListTasksInput {
	return ports.ListTasksInput{
		OwnerID:  ownerID,
		Status:   req.Status,
		Priority: req.Priority,
		Search:   req.Search,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
}

// --- Domain → Response ---

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskListResponse(res *ports.ListTasksResult) taskListResponse {
	items := make([]taskResponse, 0, len(res.Items))
	for _, t := range res.Items {
		items = append(items, toTaskResponse(t))
	}
	return taskListResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	}
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func toTokenResponse(p *domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
	}
}
