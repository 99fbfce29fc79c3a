// Package ledger owns study goals and sessions and derives weekly progress
// and streak metrics from them.
package ledger

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/acuellar/estudiobot/internal/store"
)

// DefaultSubject groups sessions and goals logged without an explicit subject.
const DefaultSubject = "General"

// streakBound caps the backward walk when counting consecutive study days.
const streakBound = 365

// SubjectProgress is one subject's standing within the current week.
type SubjectProgress struct {
	Goal       int `json:"goal"`
	Current    int `json:"current"`
	Percentage int `json:"percentage"`
}

// Ledger exposes operations over a user's study history. It reads and writes
// full namespaces through the store on each operation.
type Ledger struct {
	store store.Store
	now   func() time.Time
}

// New creates a Ledger backed by s.
func New(s store.Store) *Ledger {
	return &Ledger{
		store: s,
		now:   time.Now,
	}
}

// SetGoal sets the weekly session target for a subject, overwriting any
// previous target. The user's record is created when absent.
func (l *Ledger) SetGoal(userID, subject string, weeklyTarget int) error {
	if weeklyTarget < 0 {
		return fmt.Errorf("weekly target must be non-negative, got %d", weeklyTarget)
	}
	if subject == "" {
		subject = DefaultSubject
	}

	records, err := l.store.LoadRecords()
	if err != nil {
		return fmt.Errorf("store.LoadRecords > %w", err)
	}

	record := recordFor(records, userID)
	record.Goals[subject] = weeklyTarget
	records[userID] = record

	if err := l.store.SaveRecords(records); err != nil {
		return fmt.Errorf("store.SaveRecords > %w", err)
	}
	return nil
}

// LogSession appends a session dated today for the subject. It returns true
// when the session is new and false when one already exists for
// (user, today, subject), so repeated calls within a day are safe.
func (l *Ledger) LogSession(userID, subject string) (bool, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	records, err := l.store.LoadRecords()
	if err != nil {
		return false, fmt.Errorf("store.LoadRecords > %w", err)
	}

	today := store.NewDate(l.now())
	record := recordFor(records, userID)
	for _, session := range record.Sessions {
		if session.Date.Equal(today) && session.Subject == subject {
			return false, nil
		}
	}

	record.Sessions = append(record.Sessions, store.Session{Date: today, Subject: subject})
	records[userID] = record

	if err := l.store.SaveRecords(records); err != nil {
		return false, fmt.Errorf("store.SaveRecords > %w", err)
	}
	return true, nil
}

// WeeklyProgress computes per-subject progress for the ISO week containing
// today (Monday through Sunday). A subject appears when it has a goal or at
// least one session this week. Week boundaries are recomputed on every call.
func (l *Ledger) WeeklyProgress(userID string) (map[string]SubjectProgress, error) {
	records, err := l.store.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("store.LoadRecords > %w", err)
	}
	record := records[userID]

	// Compare calendar dates as strings: persisted session dates are UTC
	// midnights while now carries the local zone, so instant comparison
	// would shift the week boundary by the UTC offset.
	today := store.NewDate(l.now())
	weekStart := store.NewDate(today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7)))
	weekEnd := store.NewDate(weekStart.AddDate(0, 0, 6))

	progress := map[string]SubjectProgress{}
	for subject, goal := range record.Goals {
		progress[subject] = SubjectProgress{Goal: goal}
	}

	for _, session := range record.Sessions {
		if session.Date.IsZero() {
			slog.Warn("ignoring study session without a valid date", "user_id", userID, "subject", session.Subject)
			continue
		}
		if session.Date.String() < weekStart.String() || session.Date.String() > weekEnd.String() {
			continue
		}
		subject := session.Subject
		if subject == "" {
			subject = DefaultSubject
		}
		p := progress[subject]
		p.Current++
		progress[subject] = p
	}

	for subject, p := range progress {
		if p.Goal > 0 {
			p.Percentage = p.Current * 100 / p.Goal
			progress[subject] = p
		}
	}
	return progress, nil
}

// Streak counts consecutive calendar days with at least one session of any
// subject, walking backward from today. A day without a session before
// yesterday breaks the chain; today not yet studied does not.
func (l *Ledger) Streak(userID string) (int, error) {
	records, err := l.store.LoadRecords()
	if err != nil {
		return 0, fmt.Errorf("store.LoadRecords > %w", err)
	}

	studied := map[string]struct{}{}
	for _, session := range records[userID].Sessions {
		if session.Date.IsZero() {
			continue
		}
		studied[session.Date.String()] = struct{}{}
	}
	if len(studied) == 0 {
		return 0, nil
	}

	today := store.NewDate(l.now())
	yesterday := today.AddDate(0, 0, -1)

	current := today.Time
	if _, ok := studied[today.String()]; !ok {
		if _, ok := studied[store.NewDate(yesterday).String()]; !ok {
			return 0, nil
		}
		current = yesterday
	}

	streak := 0
	for i := 0; i < streakBound; i++ {
		if _, ok := studied[store.NewDate(current).String()]; !ok {
			break
		}
		streak++
		current = current.AddDate(0, 0, -1)
	}
	return streak, nil
}

func recordFor(records map[string]store.StudyRecord, userID string) store.StudyRecord {
	record, ok := records[userID]
	if !ok {
		record = store.StudyRecord{Goals: map[string]int{}, Sessions: []store.Session{}}
	}
	if record.Goals == nil {
		record.Goals = map[string]int{}
	}
	return record
}
