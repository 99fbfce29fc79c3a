// Package tasks defines the contract with the external task database.
package tasks

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -source=tasks.go -destination=../mocks/tasks/mock_source.go -package=mock_tasks

// Source queries the external task database for upcoming work. Implementations
// must return only tasks due today or later, sorted ascending by due date.
// An empty subjectFilter returns everything; otherwise matching is a
// case-insensitive substring test on the subject.
type Source interface {
	UpcomingTasks(ctx context.Context, subjectFilter string) ([]Task, error)
}

// Task is an upcoming exam or assignment record, read-only to this system.
type Task struct {
	Title   string
	Due     string // YYYY-MM-DD as stored in the task database
	Subject string
	Content string
	URL     string
}

// DueDate parses the task's due date.
func (t Task) DueDate() (time.Time, error) {
	due, err := time.Parse("2006-01-02", t.Due)
	if err != nil {
		return time.Time{}, fmt.Errorf("time.Parse(%q) > %w", t.Due, err)
	}
	return due, nil
}
