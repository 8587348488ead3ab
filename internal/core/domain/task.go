package domain

import "time"

// TaskStatus is the lifecycle state of a task. Any transition is allowed.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	DefaultStatus   = StatusTodo
	DefaultPriority = PriorityMedium

	MaxTitleLength = 255
)

// Task is a unit of work owned by exactly one user. OwnerID never changes
// after creation.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	OwnerID     int64        `json:"owner_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IsOverdue reports whether the task is unfinished and past its due date.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusDone && t.DueDate != nil && t.DueDate.Before(now)
}

// CompletedSince reports whether the task is done and was last touched at or
// after cutoff. updated_at stands in for a completion timestamp.
func (t *Task) CompletedSince(cutoff time.Time) bool {
	return t.Status == StatusDone && !t.UpdatedAt.Before(cutoff)
}

func (t *Task) IsHighPriorityPending() bool {
	return t.Status != StatusDone && t.Priority == PriorityHigh
}

// Field is an optional patch value. Set distinguishes "absent" from "present",
// Null marks an explicit JSON null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a set, non-null field.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a set field carrying an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// TaskPatch is a partial update. Only fields with Set are applied.
type TaskPatch struct {
	Title       Field[string]
	Description Field[string]
	Status      Field[TaskStatus]
	Priority    Field[TaskPriority]
	DueDate     Field[time.Time]
}

// Empty reports whether the patch carries no field at all.
func (p TaskPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set && !p.Priority.Set && !p.DueDate.Set
}

// Validate rejects values no store should ever see: nulls on required
// columns, unknown enums and out-of-range titles.
func (p TaskPatch) Validate() error {
	if p.Title.Set {
		if p.Title.Null {
			return BadRequest("title cannot be null")
		}
		if err := ValidateTitle(p.Title.Value); err != nil {
			return err
		}
	}
	if p.Status.Set {
		if p.Status.Null {
			return BadRequest("status cannot be null")
		}
		if !p.Status.Value.Valid() {
			return BadRequest("status must be one of: todo in_progress done")
		}
	}
	if p.Priority.Set {
		if p.Priority.Null {
			return BadRequest("priority cannot be null")
		}
		if !p.Priority.Value.Valid() {
			return BadRequest("priority must be one of: low medium high")
		}
	}
	return nil
}

// Apply mutates t with every set field of the patch and stamps UpdatedAt.
// Callers must Validate first.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		if p.Description.Null {
			t.Description = nil
		} else {
			d := p.Description.Value
			t.Description = &d
		}
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			t.DueDate = nil
		} else {
			d := p.DueDate.Value
			t.DueDate = &d
		}
	}
	t.UpdatedAt = now
}

func ValidateTitle(title string) error {
	n := len([]rune(title))
	if n < 1 || n > MaxTitleLength {
		return BadRequest("title must be between 1 and %d characters", MaxTitleLength)
	}
	return nil
}

// TaskStats is a single-snapshot count of a user's tasks.
type TaskStats struct {
	Total               int64
	Completed           int64
	Pending             int64
	InProgress          int64
	Overdue             int64
	CompletedThisWeek   int64
	HighPriorityPending int64
}

// CompletedWindow is how far back "completed this week" looks.
const CompletedWindow = 7 * 24 * time.Hour

// ComputeStats counts tasks the same way the stores do in SQL or aggregation.
// All tasks are assumed to belong to the same owner.
func ComputeStats(tasks []*Task, now time.Time) TaskStats {
	var st TaskStats
	cutoff := now.Add(-CompletedWindow)
	for _, t := range tasks {
		st.Total++
		switch t.Status {
		case StatusDone:
			st.Completed++
		case StatusTodo:
			st.Pending++
		case StatusInProgress:
			st.InProgress++
		}
		if t.IsOverdue(now) {
			st.Overdue++
		}
		if t.CompletedSince(cutoff) {
			st.CompletedThisWeek++
		}
		if t.IsHighPriorityPending() {
			st.HighPriorityPending++
		}
	}
	return st
}
