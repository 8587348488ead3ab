package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/core/ports"
)

type analyticsService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewAnalyticsService returns an AnalyticsService implementation.
func NewAnalyticsService(repo ports.TaskRepository, log zerolog.Logger) ports.AnalyticsService {
	return &analyticsService{repo: repo, log: log, now: time.Now}
}

// Summary derives every counter from one repository snapshot so the numbers
// are consistent with each other.
func (s *analyticsService) Summary(ctx context.Context, ownerID int64) (*ports.TaskSummary, error) {
	stats, err := s.repo.Stats(ctx, ownerID, s.now().UTC())
	if err != nil {
		s.log.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to compute task stats")
		return nil, fmt.Errorf("task summary: %w", err)
	}

	return &ports.TaskSummary{
		TotalTasks:          stats.Total,
		CompletedTasks:      stats.Completed,
		PendingTasks:        stats.Pending,
		InProgressTasks:     stats.InProgress,
		OverdueTasks:        stats.Overdue,
		CompletedThisWeek:   stats.CompletedThisWeek,
		HighPriorityPending: stats.HighPriorityPending,
		CompletionRate:      completionRate(stats.Completed, stats.Total),
	}, nil
}

// completionRate is completed/total as a percentage rounded to one decimal,
// halves to even.
func completionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.RoundToEven(float64(completed)/float64(total)*1000) / 10
}
