package handler

import (
	"encoding/json"
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date" swaggertype:"string" format:"date-time"`
}

// optional records whether a JSON key was present and whether it was null,
// which a plain pointer cannot tell apart.
type optional[T any] struct {
	domain.Field[T]
}

func (o *optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// updateTaskRequest is a partial update: absent keys are left untouched,
// null clears description and due_date.
type updateTaskRequest struct {
	Title       optional[string]              `json:"title" swaggertype:"string"`
	Description optional[string]              `json:"description" swaggertype:"string"`
	Status      optional[domain.TaskStatus]   `json:"status" swaggertype:"string" enums:"todo,in_progress,done"`
	Priority    optional[domain.TaskPriority] `json:"priority" swaggertype:"string" enums:"low,medium,high"`
	DueDate     optional[time.Time]           `json:"due_date" swaggertype:"string" format:"date-time"`
}

type listTasksRequest struct {
	Status   string `query:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority string `query:"priority" validate:"omitempty,oneof=low medium high"`
	Search   string `query:"search"`
	Page     int    `query:"page" validate:"min=1"`
	PageSize int    `query:"page_size" validate:"min=1,max=100"`
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	OwnerID     int64      `json:"owner_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type taskListResponse struct {
	Items      []taskResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}
