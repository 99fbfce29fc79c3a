package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuellar/estudiobot/internal/store"
)

// 2026-08-26 is a Wednesday, so the week under test runs 2026-08-24 through
// 2026-08-30.
var testNow = time.Date(2026, 8, 26, 15, 4, 0, 0, time.UTC)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := New(store.NewFileStore(t.TempDir()))
	l.now = func() time.Time { return testNow }
	return l
}

func TestLedger_SetGoal(t *testing.T) {
	tests := []struct {
		name      string
		subject   string
		target    int
		wantErr   bool
		wantGoals map[string]int
	}{
		{
			name:      "sets a goal for a subject",
			subject:   "Cálculo",
			target:    5,
			wantGoals: map[string]int{"Cálculo": 5},
		},
		{
			name:      "empty subject falls back to the general subject",
			subject:   "",
			target:    3,
			wantGoals: map[string]int{DefaultSubject: 3},
		},
		{
			name:    "negative target is rejected",
			subject: "Cálculo",
			target:  -1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			err := l.SetGoal("111", tt.subject, tt.target)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			records, err := l.store.LoadRecords()
			require.NoError(t, err)
			assert.Equal(t, tt.wantGoals, records["111"].Goals)
		})
	}
}

func TestLedger_SetGoal_Overwrites(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.SetGoal("111", "Cálculo", 5))
	require.NoError(t, l.SetGoal("111", "Cálculo", 2))

	records, err := l.store.LoadRecords()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Cálculo": 2}, records["111"].Goals)
}

func TestLedger_LogSession(t *testing.T) {
	l := newTestLedger(t)

	logged, err := l.LogSession("111", "Cálculo")
	require.NoError(t, err)
	assert.True(t, logged)

	// same user, day and subject again
	logged, err = l.LogSession("111", "Cálculo")
	require.NoError(t, err)
	assert.False(t, logged)

	// another subject on the same day is a separate session
	logged, err = l.LogSession("111", "Física")
	require.NoError(t, err)
	assert.True(t, logged)

	records, err := l.store.LoadRecords()
	require.NoError(t, err)
	require.Len(t, records["111"].Sessions, 2)
	assert.Equal(t, store.NewDate(testNow), records["111"].Sessions[0].Date)
}

func TestLedger_WeeklyProgress(t *testing.T) {
	tests := []struct {
		name   string
		record store.StudyRecord
		want   map[string]SubjectProgress
	}{
		{
			name: "counts only sessions in the current week",
			record: store.StudyRecord{
				Goals: map[string]int{"Cálculo": 4},
				Sessions: []store.Session{
					{Date: date(t, "2026-08-24"), Subject: "Cálculo"},
					{Date: date(t, "2026-08-25"), Subject: "Cálculo"},
					{Date: date(t, "2026-08-26"), Subject: "Cálculo"},
					// previous week, Sunday
					{Date: date(t, "2026-08-23"), Subject: "Cálculo"},
				},
			},
			want: map[string]SubjectProgress{
				"Cálculo": {Goal: 4, Current: 3, Percentage: 75},
			},
		},
		{
			name: "subject without a goal reports zero percentage",
			record: store.StudyRecord{
				Sessions: []store.Session{
					{Date: date(t, "2026-08-26"), Subject: "Física"},
				},
			},
			want: map[string]SubjectProgress{
				"Física": {Goal: 0, Current: 1, Percentage: 0},
			},
		},
		{
			name: "goal without sessions still appears",
			record: store.StudyRecord{
				Goals: map[string]int{"Química": 3},
			},
			want: map[string]SubjectProgress{
				"Química": {Goal: 3, Current: 0, Percentage: 0},
			},
		},
		{
			name: "progress past the goal exceeds one hundred",
			record: store.StudyRecord{
				Goals: map[string]int{"Cálculo": 2},
				Sessions: []store.Session{
					{Date: date(t, "2026-08-24"), Subject: "Cálculo"},
					{Date: date(t, "2026-08-25"), Subject: "Cálculo"},
					{Date: date(t, "2026-08-26"), Subject: "Cálculo"},
				},
			},
			want: map[string]SubjectProgress{
				"Cálculo": {Goal: 2, Current: 3, Percentage: 150},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			require.NoError(t, l.store.SaveRecords(map[string]store.StudyRecord{"111": tt.record}))

			got, err := l.WeeklyProgress("111")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_WeeklyProgress_LocalZone(t *testing.T) {
	// Persisted session dates round-trip through the store as UTC midnights
	// while the clock carries the deployment's zone; the week window must
	// still be the local Monday through Sunday.
	tests := []struct {
		name        string
		now         time.Time
		sessionDate string
		wantCurrent int
	}{
		{
			name:        "monday session counts west of utc",
			now:         time.Date(2026, 8, 26, 15, 0, 0, 0, time.FixedZone("UTC-4", -4*60*60)),
			sessionDate: "2026-08-24",
			wantCurrent: 1,
		},
		{
			name:        "sunday session counts east of utc",
			now:         time.Date(2026, 8, 26, 15, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60)),
			sessionDate: "2026-08-30",
			wantCurrent: 1,
		},
		{
			name:        "previous week stays out west of utc",
			now:         time.Date(2026, 8, 26, 15, 0, 0, 0, time.FixedZone("UTC-4", -4*60*60)),
			sessionDate: "2026-08-23",
			wantCurrent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(store.NewFileStore(t.TempDir()))
			l.now = func() time.Time { return tt.now }
			require.NoError(t, l.store.SaveRecords(map[string]store.StudyRecord{
				"111": {
					Goals:    map[string]int{"Cálculo": 4},
					Sessions: []store.Session{{Date: date(t, tt.sessionDate), Subject: "Cálculo"}},
				},
			}))

			got, err := l.WeeklyProgress("111")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCurrent, got["Cálculo"].Current)
		})
	}
}

func TestLedger_Streak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{
			name:  "consecutive days through today",
			dates: []string{"2026-08-24", "2026-08-25", "2026-08-26"},
			want:  3,
		},
		{
			name:  "today not studied yet keeps the streak alive",
			dates: []string{"2026-08-24", "2026-08-25"},
			want:  2,
		},
		{
			name:  "gap before yesterday breaks the streak",
			dates: []string{"2026-08-23", "2026-08-24"},
			want:  0,
		},
		{
			name:  "only today",
			dates: []string{"2026-08-26"},
			want:  1,
		},
		{
			name:  "gap in the middle counts only the recent run",
			dates: []string{"2026-08-21", "2026-08-22", "2026-08-25", "2026-08-26"},
			want:  2,
		},
		{
			name: "no sessions",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(t)
			sessions := make([]store.Session, 0, len(tt.dates))
			for _, d := range tt.dates {
				sessions = append(sessions, store.Session{Date: date(t, d), Subject: "Cálculo"})
			}
			require.NoError(t, l.store.SaveRecords(map[string]store.StudyRecord{
				"111": {Sessions: sessions},
			}))

			got, err := l.Streak("111")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_Streak_LocalZone(t *testing.T) {
	// Late evening west of UTC: the UTC clock already reads the 27th, but
	// the local calendar day is still the 26th.
	l := New(store.NewFileStore(t.TempDir()))
	l.now = func() time.Time {
		return time.Date(2026, 8, 26, 22, 0, 0, 0, time.FixedZone("UTC-4", -4*60*60))
	}
	require.NoError(t, l.store.SaveRecords(map[string]store.StudyRecord{
		"111": {Sessions: []store.Session{
			{Date: date(t, "2026-08-25"), Subject: "Cálculo"},
			{Date: date(t, "2026-08-26"), Subject: "Cálculo"},
		}},
	}))

	got, err := l.Streak("111")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestLedger_Streak_MultipleSessionsPerDay(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.store.SaveRecords(map[string]store.StudyRecord{
		"111": {Sessions: []store.Session{
			{Date: date(t, "2026-08-26"), Subject: "Cálculo"},
			{Date: date(t, "2026-08-26"), Subject: "Física"},
			{Date: date(t, "2026-08-25"), Subject: "Cálculo"},
		}},
	}))

	got, err := l.Streak("111")
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func date(t *testing.T, value string) store.Date {
	t.Helper()
	d, err := store.ParseDate(value)
	require.NoError(t, err)
	return d
}
