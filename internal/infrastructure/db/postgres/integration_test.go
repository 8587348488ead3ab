package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

// These tests run against a real database and are skipped unless
// TASKFLOW_TEST_DATABASE_URL points at a disposable Postgres instance.
const testDatabaseEnv = "TASKFLOW_TEST_DATABASE_URL"

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(testDatabaseEnv)
	if dsn == "" {
		t.Skipf("%s not set; skipping integration test", testDatabaseEnv)
	}

	require.NoError(t, Migrate(dsn, Up))

	ctx := context.Background()
	pool, err := Connect(ctx, Config{URL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE tasks, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func createUser(t *testing.T, repo *UserRepository, email string) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &domain.User{
		Email: email, PasswordHash: "hash", IsActive: true, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return u
}

func TestIntegration_UserRepository(t *testing.T) {
	pool := setupPool(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	u := createUser(t, repo, "a@example.com")
	assert.NotZero(t, u.ID)

	_, err := repo.Create(ctx, &domain.User{Email: "a@example.com", PasswordHash: "x", IsActive: true, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := repo.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestIntegration_TaskRepository(t *testing.T) {
	pool := setupPool(t)
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	ctx := context.Background()

	owner := createUser(t, users, "owner@example.com")
	other := createUser(t, users, "other@example.com")
	now := time.Now().UTC().Truncate(time.Microsecond)
	desc := "Pick up MILK"
	past := now.Add(-time.Hour)

	first, err := tasks.Create(ctx, &domain.Task{
		Title: "groceries", Description: &desc, Status: domain.StatusTodo, Priority: domain.PriorityHigh,
		DueDate: &past, OwnerID: owner.ID, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, &domain.Task{
		Title: "100% done", Status: domain.StatusDone, Priority: domain.PriorityLow,
		OwnerID: owner.ID, CreatedAt: now.Add(time.Second), UpdatedAt: now,
	})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, &domain.Task{
		Title: "milk", Status: domain.StatusTodo, Priority: domain.PriorityMedium,
		OwnerID: other.ID, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	t.Run("list scoped and ordered", func(t *testing.T) {
		items, total, err := tasks.List(ctx, ports.ListTasksFilter{OwnerID: owner.ID, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, items, 2)
		assert.Equal(t, "100% done", items[0].Title)
	})

	t.Run("search is case-insensitive and literal", func(t *testing.T) {
		_, total, err := tasks.List(ctx, ports.ListTasksFilter{OwnerID: owner.ID, Search: "milk", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)

		_, total, err = tasks.List(ctx, ports.ListTasksFilter{OwnerID: owner.ID, Search: "%", Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("page past end", func(t *testing.T) {
		items, total, err := tasks.List(ctx, ports.ListTasksFilter{OwnerID: owner.ID, Page: 5, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Empty(t, items)
	})

	t.Run("partial update clears description", func(t *testing.T) {
		later := now.Add(time.Minute)
		updated, err := tasks.Update(ctx, first.ID, domain.TaskPatch{
			Status:      domain.Some(domain.StatusInProgress),
			Description: domain.Null[string](),
		}, later)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, updated.Status)
		assert.Nil(t, updated.Description)
		assert.Equal(t, "groceries", updated.Title)
		assert.True(t, updated.UpdatedAt.Equal(later))
	})

	t.Run("stats", func(t *testing.T) {
		st, err := tasks.Stats(ctx, owner.ID, now)
		require.NoError(t, err)
		assert.EqualValues(t, 2, st.Total)
		assert.EqualValues(t, 1, st.Completed)
		assert.EqualValues(t, 1, st.InProgress)
		assert.EqualValues(t, 1, st.Overdue)
		assert.EqualValues(t, 1, st.CompletedThisWeek)
		assert.EqualValues(t, 1, st.HighPriorityPending)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, tasks.Delete(ctx, first.ID))
		assert.ErrorIs(t, tasks.Delete(ctx, first.ID), domain.ErrTaskNotFound)
		_, err := tasks.FindByID(ctx, first.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}
