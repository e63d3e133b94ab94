package domain

import (
	"strings"
	"time"
)

// Priority is the urgency code stored with every task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority normalizes a priority code. Unknown values are reported as invalid.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", NewError(ErrCodeInvalid, "invalid priority")
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a user-owned checklist item with optional sub-tasks.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubTasks    []SubTask  `json:"sub_tasks,omitempty"`
}

// SubTask has no lifecycle of its own; it lives and dies with its task.
type SubTask struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
}

// SubTaskProgress reports how many sub-tasks are done. ok is false when the task has none.
func (t *Task) SubTaskProgress() (completed, total int, ok bool) {
	if t == nil || len(t.SubTasks) == 0 {
		return 0, 0, false
	}
	for _, st := range t.SubTasks {
		if st.Completed {
			completed++
		}
	}
	return completed, len(t.SubTasks), true
}

// SetCompleted flips the completion flag and keeps CompletedAt consistent with it.
func (t *Task) SetCompleted(completed bool, at time.Time) {
	t.Completed = completed
	if completed {
		stamp := at
		t.CompletedAt = &stamp
		return
	}
	t.CompletedAt = nil
}
