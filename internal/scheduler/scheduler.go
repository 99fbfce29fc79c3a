// Package scheduler decides which users get notified on each tick and runs
// the per-minute alert and weekly report jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/acuellar/estudiobot/internal/ledger"
	"github.com/acuellar/estudiobot/internal/notify"
	"github.com/acuellar/estudiobot/internal/quotes"
	"github.com/acuellar/estudiobot/internal/store"
	"github.com/acuellar/estudiobot/internal/tasks"
)

// ImminentWindowDays is the inclusive number of days ahead of today a task
// may be due and still trigger an alert.
const ImminentWindowDays = 5

// Params wires the scheduler's collaborators.
type Params struct {
	Store    store.Store
	Source   tasks.Source
	Notifier notify.Notifier
	Ledger   *ledger.Ledger
	Quotes   *quotes.Picker
	// ReportDay and ReportTime set when the weekly summary goes out
	// (reference deployment: Sunday 20:00).
	ReportDay  time.Weekday
	ReportTime string
}

// Scheduler runs the time-driven jobs.
type Scheduler struct {
	store    store.Store
	source   tasks.Source
	notifier notify.Notifier
	ledger   *ledger.Ledger
	quotes   *quotes.Picker

	reportDay  time.Weekday
	reportTime string
}

// New creates a Scheduler.
func New(params Params) *Scheduler {
	return &Scheduler{
		store:      params.Store,
		source:     params.Source,
		notifier:   params.Notifier,
		ledger:     params.Ledger,
		quotes:     params.Quotes,
		reportDay:  params.ReportDay,
		reportTime: params.ReportTime,
	}
}

// UsersDueNow returns the ids of subscribed users whose reminder time equals
// now's HH:MM exactly. There is no tolerance window: the trigger fires once
// per minute and only that minute's users are selected. Ids are returned
// sorted for deterministic delivery order.
func UsersDueNow(now time.Time, subs map[string]store.Subscription) []string {
	current := now.Format("15:04")

	var due []string
	for userID, sub := range subs {
		reminderTime := sub.ReminderTime
		if reminderTime == "" {
			reminderTime = store.DefaultReminderTime
		}
		if reminderTime == current {
			due = append(due, userID)
		}
	}
	sort.Strings(due)
	return due
}

// IsWeeklyReportTime reports whether now is the configured weekly report
// minute.
func (s *Scheduler) IsWeeklyReportTime(now time.Time) bool {
	return now.Weekday() == s.reportDay && now.Format("15:04") == s.reportTime
}

// FilterImminent reduces tasks to those due within the imminent window
// [today, today+ImminentWindowDays], both ends inclusive. Tasks with a
// missing or unparseable due date are discarded silently.
func FilterImminent(all []tasks.Task, today time.Time) []tasks.Task {
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	limit := dayStart.AddDate(0, 0, ImminentWindowDays)

	var imminent []tasks.Task
	for _, task := range all {
		due, err := task.DueDate()
		if err != nil {
			continue
		}
		if due.Before(dayStart) || due.After(limit) {
			continue
		}
		imminent = append(imminent, task)
	}
	return imminent
}

// RunMinuteCheck is the per-minute job: selects the users configured for
// now's minute and alerts them about tasks due within the imminent window.
// No matching users or no imminent tasks is a silent no-op. A delivery
// failure for one user does not prevent delivery to the others.
func (s *Scheduler) RunMinuteCheck(ctx context.Context, now time.Time) error {
	subs, err := s.store.LoadSubscriptions()
	if err != nil {
		return fmt.Errorf("store.LoadSubscriptions > %w", err)
	}

	due := UsersDueNow(now, subs)
	if len(due) == 0 {
		return nil
	}
	slog.Info("notifying users", "count", len(due), "time", now.Format("15:04"))

	all, err := s.source.UpcomingTasks(ctx, "")
	if err != nil {
		return fmt.Errorf("source.UpcomingTasks > %w", err)
	}

	imminent := FilterImminent(all, now)
	if len(imminent) == 0 {
		return nil
	}

	message := FormatAlert(imminent, now, s.quotes.Pick())
	for _, userID := range due {
		if err := s.notifier.Send(ctx, userID, message); err != nil {
			slog.Error("failed to deliver alert", "user_id", userID, "error", err)
		}
	}
	return nil
}

// RunWeeklyReport sends every subscribed user a summary of their week,
// regardless of activity. A failure for one user is logged and the batch
// continues.
func (s *Scheduler) RunWeeklyReport(ctx context.Context) error {
	subs, err := s.store.LoadSubscriptions()
	if err != nil {
		return fmt.Errorf("store.LoadSubscriptions > %w", err)
	}
	if len(subs) == 0 {
		slog.Info("no users subscribed for the weekly report")
		return nil
	}

	userIDs := make([]string, 0, len(subs))
	for userID := range subs {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	for _, userID := range userIDs {
		progress, err := s.ledger.WeeklyProgress(userID)
		if err != nil {
			slog.Error("failed to compute weekly progress", "user_id", userID, "error", err)
			continue
		}
		streak, err := s.ledger.Streak(userID)
		if err != nil {
			slog.Error("failed to compute streak", "user_id", userID, "error", err)
			continue
		}

		message := FormatWeeklyReport(progress, streak)
		if err := s.notifier.Send(ctx, userID, message); err != nil {
			slog.Error("failed to deliver weekly report", "user_id", userID, "error", err)
			continue
		}
		slog.Info("weekly report sent", "user_id", userID)
	}
	return nil
}

// Run drives both jobs from a wall-clock-aligned minute ticker until the
// context is cancelled. Job failures are logged and retried naturally on the
// next trigger.
func (s *Scheduler) Run(ctx context.Context) error {
	// Align the first tick to the start of the next minute so the exact
	// HH:MM match in UsersDueNow sees every minute once.
	first := time.Until(time.Now().Truncate(time.Minute).Add(time.Minute))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(first):
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		now := time.Now()
		s.tick(ctx, now)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	slog.Debug("running scheduled check", "time", now.Format("15:04"))
	if err := s.RunMinuteCheck(ctx, now); err != nil {
		slog.Error("minute check failed", "error", err)
	}
	if s.IsWeeklyReportTime(now) {
		if err := s.RunWeeklyReport(ctx); err != nil {
			slog.Error("weekly report failed", "error", err)
		}
	}
}

// ParseWeekday converts a lowercase English weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(day.String(), name) {
			return day, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", name)
}
