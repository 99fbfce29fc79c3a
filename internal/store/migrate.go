package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// migrateSubscriptions upgrades raw persisted subscription data to the
// current shape. The legacy format was a flat list of user ids; each becomes
// a subscription with the default reminder time. Returns the converted
// mapping and whether a conversion happened, so callers can persist the
// upgraded form once. Running it on already-migrated data is a no-op.
func migrateSubscriptions(raw []byte) (map[string]Subscription, bool, error) {
	var subs map[string]Subscription
	if err := json.Unmarshal(raw, &subs); err == nil {
		if subs == nil {
			subs = map[string]Subscription{}
		}
		return subs, false, nil
	}

	var legacyIDs []json.Number
	if err := json.Unmarshal(raw, &legacyIDs); err != nil {
		return nil, false, fmt.Errorf("json.Unmarshal > %w", err)
	}

	subs = make(map[string]Subscription, len(legacyIDs))
	for _, id := range legacyIDs {
		subs[id.String()] = Subscription{ReminderTime: DefaultReminderTime}
	}
	return subs, true, nil
}

// rawStudyRecord mirrors every shape a persisted study record has ever had.
type rawStudyRecord struct {
	Goals          map[string]int    `json:"goals"`
	Sessions       []json.RawMessage `json:"sessions"`
	LegacyGoal     *int              `json:"study_goal"`
	LegacySessions []json.RawMessage `json:"study_sessions"`
}

// migrateRecords upgrades raw persisted study records:
//   - a single integer goal becomes goals["General"]
//   - plain date-string sessions become {date, subject: "General"} records
//
// Sessions whose date cannot be parsed are dropped with a warning instead of
// failing the whole load.
func migrateRecords(raw []byte) (map[string]StudyRecord, bool, error) {
	var rawRecords map[string]rawStudyRecord
	if err := json.Unmarshal(raw, &rawRecords); err != nil {
		return nil, false, fmt.Errorf("json.Unmarshal > %w", err)
	}

	changed := false
	records := make(map[string]StudyRecord, len(rawRecords))
	for userID, rawRecord := range rawRecords {
		record := StudyRecord{
			Goals:    rawRecord.Goals,
			Sessions: []Session{},
		}
		if record.Goals == nil {
			record.Goals = map[string]int{}
		}

		if rawRecord.LegacyGoal != nil {
			if _, ok := record.Goals["General"]; !ok {
				record.Goals["General"] = *rawRecord.LegacyGoal
			}
			changed = true
		}

		for _, rawSession := range rawRecord.Sessions {
			session, sessionChanged, ok := migrateSession(userID, rawSession)
			if !ok {
				continue
			}
			if sessionChanged {
				changed = true
			}
			record.Sessions = append(record.Sessions, session)
		}
		for _, rawSession := range rawRecord.LegacySessions {
			session, _, ok := migrateSession(userID, rawSession)
			if !ok {
				continue
			}
			changed = true
			record.Sessions = append(record.Sessions, session)
		}

		records[userID] = record
	}
	return records, changed, nil
}

// migrateSession converts a single raw session entry, which is either a
// {date, subject} object or a legacy plain date string.
func migrateSession(userID string, raw json.RawMessage) (Session, bool, bool) {
	var session Session
	if err := json.Unmarshal(raw, &session); err == nil {
		if session.Date.IsZero() {
			slog.Warn("skipping study session without a date", "user_id", userID, "record", string(raw))
			return Session{}, false, false
		}
		if session.Subject == "" {
			session.Subject = "General"
		}
		return session, false, true
	}

	var legacyDate string
	if err := json.Unmarshal(raw, &legacyDate); err != nil {
		slog.Warn("skipping malformed study session", "user_id", userID, "record", string(raw))
		return Session{}, false, false
	}
	date, err := ParseDate(legacyDate)
	if err != nil {
		slog.Warn("skipping study session with invalid date", "user_id", userID, "date", legacyDate)
		return Session{}, false, false
	}
	return Session{Date: date, Subject: "General"}, true, true
}
