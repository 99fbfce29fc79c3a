package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// newTasksCommand lists upcoming tasks on the terminal, mainly to verify the
// Notion connection and property mapping.
func newTasksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks [subject filter]",
		Short: "List upcoming exams and assignments from the task database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			subjectFilter := ""
			if len(args) > 0 {
				subjectFilter = args[0]
			}

			taskSource := buildTaskSource(cfg)
			defer func() {
				_ = taskSource.Close()
			}()

			upcoming, err := taskSource.UpcomingTasks(cmd.Context(), subjectFilter)
			if err != nil {
				return fmt.Errorf("taskSource.UpcomingTasks > %w", err)
			}
			if len(upcoming) == 0 {
				fmt.Println("No upcoming tasks.")
				return nil
			}

			today := time.Now()
			for _, task := range upcoming {
				due, err := task.DueDate()
				daysLeft := -1
				if err == nil {
					daysLeft = int(due.Sub(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)).Hours() / 24)
				}

				switch {
				case daysLeft >= 0 && daysLeft <= 1:
					color.Red("%s\t%s\t%s", task.Due, task.Subject, task.Title)
				case daysLeft > 1 && daysLeft <= 5:
					color.Yellow("%s\t%s\t%s", task.Due, task.Subject, task.Title)
				default:
					color.Green("%s\t%s\t%s", task.Due, task.Subject, task.Title)
				}
				if task.Content != "" {
					fmt.Printf("\t%s\n", task.Content)
				}
			}
			return nil
		},
	}
}
