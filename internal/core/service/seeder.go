package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-api/internal/core/domain"
	"github.com/taskflow/taskflow-api/internal/core/ports"
)

const day = 24 * time.Hour

// DemoAccount is a seeded login.
type DemoAccount struct {
	Email    string
	Password string
	FullName string
}

// DemoAccounts are created by the seed command. The first one owns the demo
// tasks.
var DemoAccounts = []DemoAccount{
	{Email: "demo@taskflow.dev", Password: "demo1234", FullName: "Demo User"},
	{Email: "admin@taskflow.dev", Password: "admin1234", FullName: "Admin User"},
}

type demoTask struct {
	title       string
	description string
	status      domain.TaskStatus
	priority    domain.TaskPriority
	due         time.Duration // relative to seeding time
}

var demoTasks = []demoTask{
	{"Complete project documentation", "Write comprehensive documentation for the TaskFlow API including setup instructions, API endpoints, and examples.", domain.StatusInProgress, domain.PriorityHigh, 3 * day},
	{"Review pull requests", "Review and merge pending pull requests from team members.", domain.StatusTodo, domain.PriorityMedium, day},
	{"Set up CI/CD pipeline", "Configure GitHub Actions for automated testing and deployment.", domain.StatusDone, domain.PriorityHigh, -2 * day},
	{"Design database schema", "Create ERD and define relationships between entities.", domain.StatusDone, domain.PriorityHigh, -5 * day},
	{"Implement user authentication", "Add JWT-based authentication with access and refresh tokens.", domain.StatusDone, domain.PriorityHigh, -3 * day},
	{"Write unit tests", "Create comprehensive test suite for API endpoints.", domain.StatusInProgress, domain.PriorityMedium, 5 * day},
	{"Optimize database queries", "Review and optimize slow database queries. Add indexes where needed.", domain.StatusTodo, domain.PriorityLow, 7 * day},
	{"Fix login page styling", "Adjust CSS for better mobile responsiveness on the login page.", domain.StatusTodo, domain.PriorityLow, 4 * day},
	{"Prepare sprint demo", "Create presentation slides and demo script for upcoming sprint review.", domain.StatusTodo, domain.PriorityMedium, 2 * day},
	{"Update dependencies", "Review and update project dependencies to latest stable versions.", domain.StatusTodo, domain.PriorityLow, 14 * day},
	{"Code review meeting", "Schedule and conduct code review session with the team.", domain.StatusDone, domain.PriorityMedium, -day},
	{"Bug: Fix task deletion issue", "Investigate and fix the bug where deleted tasks still appear in the list.", domain.StatusTodo, domain.PriorityHigh, -day},
}

// SeedResult reports what Seed changed.
type SeedResult struct {
	UsersCreated int
	UsersSkipped int
	TasksCreated int
}

// Seeder loads demo data through the regular services, so seeded rows go
// through the same hashing and validation as API traffic.
type Seeder struct {
	auth   ports.AuthService
	users  ports.UserRepository
	tasks  ports.TaskService
	logger zerolog.Logger
	now    func() time.Time
}

func NewSeeder(auth ports.AuthService, users ports.UserRepository, tasks ports.TaskService, logger zerolog.Logger) *Seeder {
	return &Seeder{auth: auth, users: users, tasks: tasks, logger: logger, now: time.Now}
}

// Seed creates the demo accounts that do not exist yet. Demo tasks are only
// added when the owning account is new, so running Seed twice is a no-op.
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	var res SeedResult
	var owner *domain.User
	ownerIsNew := false

	for i, acc := range DemoAccounts {
		user, created, err := s.ensureUser(ctx, acc)
		if err != nil {
			return nil, err
		}
		if created {
			res.UsersCreated++
		} else {
			res.UsersSkipped++
		}
		if i == 0 {
			owner, ownerIsNew = user, created
		}
	}

	if owner == nil || !ownerIsNew {
		return &res, nil
	}

	now := s.now().UTC()
	for _, dt := range demoTasks {
		desc := dt.description
		due := now.Add(dt.due)
		if _, err := s.tasks.CreateTask(ctx, ports.CreateTaskInput{
			Title:       dt.title,
			Description: &desc,
			Status:      dt.status,
			Priority:    dt.priority,
			DueDate:     &due,
		}, owner.ID); err != nil {
			return nil, fmt.Errorf("seed task %q: %w", dt.title, err)
		}
		res.TasksCreated++
	}
	s.logger.Info().Int("tasks", res.TasksCreated).Str("owner", owner.Email).Msg("demo tasks created")
	return &res, nil
}

func (s *Seeder) ensureUser(ctx context.Context, acc DemoAccount) (*domain.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, acc.Email)
	switch {
	case err == nil:
		s.logger.Info().Str("email", acc.Email).Msg("demo user exists, skipping")
		return existing, false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, fmt.Errorf("seed user %s: %w", acc.Email, err)
	}

	name := acc.FullName
	user, err := s.auth.Register(ctx, ports.RegisterInput{Email: acc.Email, Password: acc.Password, FullName: &name})
	if err != nil {
		return nil, false, fmt.Errorf("seed user %s: %w", acc.Email, err)
	}
	s.logger.Info().Str("email", acc.Email).Msg("demo user created")
	return user, true, nil
}
