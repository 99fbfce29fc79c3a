// Package store persists user subscriptions and study records.
package store

import (
	"fmt"
	"time"
)

// Store provides whole-namespace load and save for the two record sets.
// Every mutation follows a read-modify-write cycle over the full namespace,
// so a single running instance is assumed.
type Store interface {
	LoadSubscriptions() (map[string]Subscription, error)
	SaveSubscriptions(subs map[string]Subscription) error
	LoadRecords() (map[string]StudyRecord, error)
	SaveRecords(records map[string]StudyRecord) error
}

// DefaultReminderTime is assigned to a subscription created without an
// explicit preference.
const DefaultReminderTime = "08:00"

// Subscription holds a user's reminder preferences, keyed by user id.
type Subscription struct {
	ReminderTime string `json:"time" db:"reminder_time"`
}

// StudyRecord holds one user's weekly goals and logged sessions.
type StudyRecord struct {
	Goals    map[string]int `json:"goals"`
	Sessions []Session      `json:"sessions"`
}

// Session is a single logged study session. Sessions are append-only and
// unique per (date, subject).
type Session struct {
	Date    Date   `json:"date"`
	Subject string `json:"subject"`
}

// Date is a calendar date without a time of day.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("time.Parse(%q) > %w", value, err)
	}
	return Date{Time: t}, nil
}

// MarshalJSON implements the json.Marshaler interface
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (d *Date) UnmarshalJSON(data []byte) error {
	value := string(data)
	if len(value) >= 2 && value[0] == '"' {
		value = value[1 : len(value)-1]
	}

	// First try the plain YYYY-MM-DD format
	t, err := time.Parse(dateLayout, value)
	if err == nil {
		d.Time = t
		return nil
	}

	// Older records stored full RFC3339 timestamps
	t, err = time.Parse(time.RFC3339, value)
	if err == nil {
		d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	}

	return fmt.Errorf("unable to parse date %q: expected YYYY-MM-DD or RFC3339 format", value)
}

// Equal reports whether both values name the same calendar date.
func (d Date) Equal(other Date) bool {
	return d.Format(dateLayout) == other.Format(dateLayout)
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(dateLayout)
}
