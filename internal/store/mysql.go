package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// MySQLStore implements Store on MySQL. It keeps the same whole-namespace
// load/save contract as the file backend: saves replace the namespace inside
// a transaction.
type MySQLStore struct {
	db *sqlx.DB
}

// NewMySQLStore creates a new MySQLStore.
func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

type subscriptionRow struct {
	UserID       string `db:"user_id"`
	ReminderTime string `db:"reminder_time"`
}

type goalRow struct {
	UserID       string `db:"user_id"`
	Subject      string `db:"subject"`
	WeeklyTarget int    `db:"weekly_target"`
}

type sessionRow struct {
	UserID  string `db:"user_id"`
	Date    string `db:"session_date"`
	Subject string `db:"subject"`
}

// LoadSubscriptions returns all subscriptions keyed by user id.
func (s *MySQLStore) LoadSubscriptions() (map[string]Subscription, error) {
	var rows []subscriptionRow
	if err := s.db.Select(&rows, "SELECT user_id, reminder_time FROM subscriptions"); err != nil {
		return nil, fmt.Errorf("db.Select(subscriptions) > %w", err)
	}

	subs := make(map[string]Subscription, len(rows))
	for _, row := range rows {
		subs[row.UserID] = Subscription{ReminderTime: row.ReminderTime}
	}
	return subs, nil
}

// SaveSubscriptions replaces the subscriptions namespace.
func (s *MySQLStore) SaveSubscriptions(subs map[string]Subscription) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("db.Beginx > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec("DELETE FROM subscriptions"); err != nil {
		return fmt.Errorf("tx.Exec(delete subscriptions) > %w", err)
	}
	for userID, sub := range subs {
		if _, err := tx.Exec(
			"INSERT INTO subscriptions (user_id, reminder_time) VALUES (?, ?)",
			userID, sub.ReminderTime,
		); err != nil {
			return fmt.Errorf("tx.Exec(insert subscription) > %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit > %w", err)
	}
	return nil
}

// LoadRecords returns all study records keyed by user id.
func (s *MySQLStore) LoadRecords() (map[string]StudyRecord, error) {
	var goals []goalRow
	if err := s.db.Select(&goals, "SELECT user_id, subject, weekly_target FROM study_goals"); err != nil {
		return nil, fmt.Errorf("db.Select(study_goals) > %w", err)
	}

	var sessions []sessionRow
	if err := s.db.Select(&sessions,
		"SELECT user_id, DATE_FORMAT(session_date, '%Y-%m-%d') AS session_date, subject FROM study_sessions ORDER BY session_date",
	); err != nil {
		return nil, fmt.Errorf("db.Select(study_sessions) > %w", err)
	}

	records := map[string]StudyRecord{}
	record := func(userID string) StudyRecord {
		r, ok := records[userID]
		if !ok {
			r = StudyRecord{Goals: map[string]int{}, Sessions: []Session{}}
		}
		return r
	}
	for _, row := range goals {
		r := record(row.UserID)
		r.Goals[row.Subject] = row.WeeklyTarget
		records[row.UserID] = r
	}
	for _, row := range sessions {
		date, err := ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("ParseDate(%s) > %w", row.Date, err)
		}
		r := record(row.UserID)
		r.Sessions = append(r.Sessions, Session{Date: date, Subject: row.Subject})
		records[row.UserID] = r
	}
	return records, nil
}

// SaveRecords replaces the study records namespace.
func (s *MySQLStore) SaveRecords(records map[string]StudyRecord) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("db.Beginx > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec("DELETE FROM study_goals"); err != nil {
		return fmt.Errorf("tx.Exec(delete study_goals) > %w", err)
	}
	if _, err := tx.Exec("DELETE FROM study_sessions"); err != nil {
		return fmt.Errorf("tx.Exec(delete study_sessions) > %w", err)
	}

	for userID, record := range records {
		for subject, target := range record.Goals {
			if _, err := tx.Exec(
				"INSERT INTO study_goals (user_id, subject, weekly_target) VALUES (?, ?, ?)",
				userID, subject, target,
			); err != nil {
				return fmt.Errorf("tx.Exec(insert study_goal) > %w", err)
			}
		}
		for _, session := range record.Sessions {
			if _, err := tx.Exec(
				"INSERT INTO study_sessions (user_id, session_date, subject) VALUES (?, ?, ?)",
				userID, session.Date.String(), session.Subject,
			); err != nil {
				return fmt.Errorf("tx.Exec(insert study_session) > %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit > %w", err)
	}
	return nil
}
