package ports

import "context"

// TaskSummary is the analytics view of a user's tasks.
type TaskSummary struct {
	TotalTasks          int64   `json:"total_tasks"`
	CompletedTasks      int64   `json:"completed_tasks"`
	PendingTasks        int64   `json:"pending_tasks"`
	InProgressTasks     int64   `json:"in_progress_tasks"`
	OverdueTasks        int64   `json:"overdue_tasks"`
	CompletedThisWeek   int64   `json:"completed_this_week"`
	HighPriorityPending int64   `json:"high_priority_pending"`
	CompletionRate      float64 `json:"completion_rate"`
}

// AnalyticsService summarizes a user's tasks.
type AnalyticsService interface {
	Summary(ctx context.Context, ownerID int64) (*TaskSummary, error)
}
