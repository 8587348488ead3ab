package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskflow/taskflow-api/internal/core/domain"
)

func newTestAnalyticsService(now time.Time) (*analyticsService, *stubTaskRepo) {
	repo := newStubTaskRepo()
	svc := NewAnalyticsService(repo, discardLogger).(*analyticsService)
	svc.now = fixedClock(now)
	return svc, repo
}

func TestAnalyticsService_Summary(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	svc, repo := newTestAnalyticsService(now)

	// done this week
	seedTask(repo, domain.Task{Title: "d1", OwnerID: alice, Status: domain.StatusDone, CreatedAt: now.Add(-30 * 24 * time.Hour), UpdatedAt: now.Add(-2 * 24 * time.Hour)})
	// done long ago, overdue date does not count once done
	seedTask(repo, domain.Task{Title: "d2", OwnerID: alice, Status: domain.StatusDone, DueDate: &past, CreatedAt: now.Add(-30 * 24 * time.Hour), UpdatedAt: now.Add(-10 * 24 * time.Hour)})
	// pending, overdue, high
	seedTask(repo, domain.Task{Title: "p1", OwnerID: alice, Priority: domain.PriorityHigh, DueDate: &past, CreatedAt: past})
	// in progress, due in the future
	seedTask(repo, domain.Task{Title: "i1", OwnerID: alice, Status: domain.StatusInProgress, DueDate: &future, CreatedAt: past})
	// someone else's task is invisible
	seedTask(repo, domain.Task{Title: "b1", OwnerID: bob, Priority: domain.PriorityHigh, CreatedAt: past})

	got, err := svc.Summary(context.Background(), alice)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	checks := []struct {
		name      string
		got, want int64
	}{
		{"total", got.TotalTasks, 4},
		{"completed", got.CompletedTasks, 2},
		{"pending", got.PendingTasks, 1},
		{"in_progress", got.InProgressTasks, 1},
		{"overdue", got.OverdueTasks, 1},
		{"completed_this_week", got.CompletedThisWeek, 1},
		{"high_priority_pending", got.HighPriorityPending, 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if got.CompletionRate != 50.0 {
		t.Errorf("completion_rate = %v, want 50.0", got.CompletionRate)
	}
	if got.CompletedTasks+got.PendingTasks+got.InProgressTasks != got.TotalTasks {
		t.Error("status counters must add up to total")
	}
}

func TestAnalyticsService_Summary_NoTasks(t *testing.T) {
	svc, _ := newTestAnalyticsService(time.Now())

	got, err := svc.Summary(context.Background(), alice)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalTasks != 0 || got.CompletionRate != 0 {
		t.Fatalf("expected zeroed summary, got %+v", got)
	}
}

func TestAnalyticsService_Summary_RepoError(t *testing.T) {
	svc, repo := newTestAnalyticsService(time.Now())
	repo.err = errors.New("boom")

	if _, err := svc.Summary(context.Background(), alice); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompletionRate(t *testing.T) {
	cases := []struct {
		completed, total int64
		want             float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 1, 100},
		{1, 8, 12.5},
		{1, 16, 6.2},
		{3, 16, 18.8},
	}
	for _, c := range cases {
		if got := completionRate(c.completed, c.total); got != c.want {
			t.Errorf("completionRate(%d, %d) = %v, want %v", c.completed, c.total, got, c.want)
		}
	}
}
