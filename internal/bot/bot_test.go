package bot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/acuellar/estudiobot/internal/ledger"
	mock_notify "github.com/acuellar/estudiobot/internal/mocks/notify"
	mock_tasks "github.com/acuellar/estudiobot/internal/mocks/tasks"
	"github.com/acuellar/estudiobot/internal/notion"
	"github.com/acuellar/estudiobot/internal/quotes"
	"github.com/acuellar/estudiobot/internal/store"
	"github.com/acuellar/estudiobot/internal/tasks"
	"github.com/acuellar/estudiobot/internal/telegram"
)

type botFixture struct {
	bot     *Bot
	store   store.Store
	source  *mock_tasks.MockSource
	replies *[]string
}

func newBotFixture(t *testing.T) botFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	fileStore := store.NewFileStore(t.TempDir())
	source := mock_tasks.NewMockSource(ctrl)

	notifier := mock_notify.NewMockNotifier(ctrl)
	replies := &[]string{}
	notifier.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(_ context.Context, _ string, text string) error {
			*replies = append(*replies, text)
			return nil
		})

	picker, err := quotes.New()
	require.NoError(t, err)

	return botFixture{
		bot: New(Params{
			Notifier: notifier,
			Store:    fileStore,
			Ledger:   ledger.New(fileStore),
			Source:   source,
			Quotes:   picker,
		}),
		store:   fileStore,
		source:  source,
		replies: replies,
	}
}

func (f botFixture) dispatch(text string) {
	f.bot.dispatch(context.Background(), &telegram.Message{
		Chat: telegram.Chat{ID: 12345},
		From: &telegram.User{FirstName: "Andrea"},
		Text: text,
	})
}

func (f botFixture) lastReply() string {
	if len(*f.replies) == 0 {
		return ""
	}
	return (*f.replies)[len(*f.replies)-1]
}

func TestBot_HandleStart(t *testing.T) {
	fixture := newBotFixture(t)

	fixture.dispatch("/start")
	assert.Contains(t, fixture.lastReply(), "¡Hola Andrea!")

	subs, err := fixture.store.LoadSubscriptions()
	require.NoError(t, err)
	assert.Equal(t, map[string]store.Subscription{
		"12345": {ReminderTime: store.DefaultReminderTime},
	}, subs)

	// running /start again keeps the existing subscription
	require.NoError(t, fixture.store.SaveSubscriptions(map[string]store.Subscription{
		"12345": {ReminderTime: "19:30"},
	}))
	fixture.dispatch("/start")

	subs, err = fixture.store.LoadSubscriptions()
	require.NoError(t, err)
	assert.Equal(t, "19:30", subs["12345"].ReminderTime)
}

func TestBot_HandleStart_WithoutName(t *testing.T) {
	fixture := newBotFixture(t)
	fixture.bot.dispatch(context.Background(), &telegram.Message{
		Chat: telegram.Chat{ID: 12345},
		Text: "/start",
	})
	assert.Contains(t, fixture.lastReply(), "¡Hola estudiante!")
}

func TestBot_Dispatch(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantReply string
	}{
		{
			name:      "unknown command suggests the known ones",
			text:      "/loquesea",
			wantReply: "No conozco ese comando",
		},
		{
			name:      "plain text is ignored",
			text:      "hola bot",
			wantReply: "",
		},
		{
			name:      "group mention suffix is stripped",
			text:      "/racha@estudiobot",
			wantReply: "Racha",
		},
		{
			name:      "command matching is case-insensitive",
			text:      "/RACHA",
			wantReply: "Racha",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newBotFixture(t)
			fixture.dispatch(tt.text)
			if tt.wantReply == "" {
				assert.Empty(t, *fixture.replies)
				return
			}
			assert.Contains(t, fixture.lastReply(), tt.wantReply)
		})
	}
}

func TestBot_HandleConfig(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantReply string
		wantTime  string
	}{
		{
			name:      "stores the reminder time",
			text:      "/config 18:30",
			wantReply: "18:30",
			wantTime:  "18:30",
		},
		{
			name:      "single digit hours are normalized",
			text:      "/config 9:05",
			wantReply: "09:05",
			wantTime:  "09:05",
		},
		{
			name:      "invalid time is rejected",
			text:      "/config 25:00",
			wantReply: "Formato inválido",
		},
		{
			name:      "missing argument shows usage",
			text:      "/config",
			wantReply: "Uso: /config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newBotFixture(t)
			fixture.dispatch(tt.text)
			assert.Contains(t, fixture.lastReply(), tt.wantReply)

			if tt.wantTime != "" {
				subs, err := fixture.store.LoadSubscriptions()
				require.NoError(t, err)
				assert.Equal(t, tt.wantTime, subs["12345"].ReminderTime)
			}
		})
	}
}

func TestBot_HandleGoal(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantReply   string
		wantSubject string
		wantGoal    int
	}{
		{
			name:        "subject and target",
			text:        "/meta Cálculo Avanzado 3",
			wantReply:   "Cálculo Avanzado",
			wantSubject: "Cálculo Avanzado",
			wantGoal:    3,
		},
		{
			name:        "bare number targets the general subject",
			text:        "/meta 4",
			wantReply:   ledger.DefaultSubject,
			wantSubject: ledger.DefaultSubject,
			wantGoal:    4,
		},
		{
			name:      "non-numeric target is rejected",
			text:      "/meta Cálculo tres",
			wantReply: "debe ser un número",
		},
		{
			name:      "missing arguments show usage",
			text:      "/meta",
			wantReply: "Uso: /meta",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newBotFixture(t)
			fixture.dispatch(tt.text)
			assert.Contains(t, fixture.lastReply(), tt.wantReply)

			if tt.wantSubject != "" {
				records, err := fixture.store.LoadRecords()
				require.NoError(t, err)
				assert.Equal(t, tt.wantGoal, records["12345"].Goals[tt.wantSubject])
			}
		})
	}
}

func TestBot_HandleLogSession(t *testing.T) {
	fixture := newBotFixture(t)

	fixture.dispatch("/meta Cálculo 4")
	fixture.dispatch("/estudie Cálculo")
	assert.Contains(t, fixture.lastReply(), "¡Bien hecho!")
	assert.Contains(t, fixture.lastReply(), "1/4 (25%)")

	fixture.dispatch("/estudie Cálculo")
	assert.Contains(t, fixture.lastReply(), "Ya registraste")

	fixture.dispatch("/estudie")
	assert.Contains(t, fixture.lastReply(), "¡Bien hecho!")
	assert.Contains(t, fixture.lastReply(), "1 sesiones")
}

func TestBot_HandleProgress(t *testing.T) {
	fixture := newBotFixture(t)

	fixture.dispatch("/progreso")
	assert.Contains(t, fixture.lastReply(), "Aún no tienes metas ni sesiones")

	fixture.dispatch("/meta Cálculo 4")
	fixture.dispatch("/estudie Cálculo")
	fixture.dispatch("/progreso")
	assert.Contains(t, fixture.lastReply(), "Tu Progreso Semanal")
	assert.Contains(t, fixture.lastReply(), "Cálculo")
	assert.Contains(t, fixture.lastReply(), "1/4 (25%)")
}

func TestBot_HandleStreak(t *testing.T) {
	fixture := newBotFixture(t)

	fixture.dispatch("/racha")
	assert.Contains(t, fixture.lastReply(), "0 días")

	fixture.dispatch("/estudie")
	fixture.dispatch("/racha")
	assert.Contains(t, fixture.lastReply(), "Primer día")
}

func TestBot_HandleUpcoming(t *testing.T) {
	upcoming := []tasks.Task{
		{Title: "Prueba 1", Due: "2099-09-10", Subject: "Cálculo"},
	}

	t.Run("lists tasks", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "").Return(upcoming, nil)

		fixture.dispatch("/proximos")
		assert.Contains(t, fixture.lastReply(), "Prueba 1")
		assert.Contains(t, fixture.lastReply(), "2099-09-10")
	})

	t.Run("passes the subject filter through", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "cálculo").Return(nil, nil)

		fixture.dispatch("/proximos cálculo")
		assert.Contains(t, fixture.lastReply(), "No encontré nada para 'cálculo'")
	})

	t.Run("empty schedule celebrates", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "").Return(nil, nil)

		fixture.dispatch("/proximos")
		assert.Contains(t, fixture.lastReply(), "¡Eres libre!")
	})

	t.Run("api failures show the status code without internals", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "").Return(nil, &notion.APIError{
			StatusCode: 502,
			Detail:     "bad gateway",
		})

		fixture.dispatch("/proximos")
		assert.Contains(t, fixture.lastReply(), "código 502")
		assert.NotContains(t, fixture.lastReply(), "bad gateway")
	})

	t.Run("other failures get a generic message", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "").Return(nil, fmt.Errorf("dial tcp: i/o timeout"))

		fixture.dispatch("/proximos")
		assert.Contains(t, fixture.lastReply(), "No pude conectar con Notion")
	})
}

func TestBot_HandlePlan(t *testing.T) {
	upcoming := []tasks.Task{
		{Title: "Prueba 1", Due: "2099-09-10", Subject: "Cálculo"},
		{Title: "Examen Final", Due: "2099-12-10", Subject: "Física"},
	}

	t.Run("plans every upcoming task", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "").Return(upcoming, nil)

		fixture.dispatch("/plan")
		assert.Contains(t, fixture.lastReply(), "Plan de Estudio")
		assert.Contains(t, fixture.lastReply(), "Prueba 1")
		assert.Contains(t, fixture.lastReply(), "Examen Final")
	})

	t.Run("title filter narrows the plan", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "").Return(upcoming, nil)

		fixture.dispatch("/plan final")
		assert.Contains(t, fixture.lastReply(), "Examen Final")
		assert.NotContains(t, fixture.lastReply(), "Prueba 1")
	})

	t.Run("no match reports it", func(t *testing.T) {
		fixture := newBotFixture(t)
		fixture.source.EXPECT().UpcomingTasks(gomock.Any(), "").Return(upcoming, nil)

		fixture.dispatch("/plan historia")
		assert.Contains(t, fixture.lastReply(), "No encontré el examen")
	})
}

func TestBot_HandlePomodoro(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantReply string
	}{
		{
			name:      "default is 25 minutes",
			text:      "/pomodoro",
			wantReply: "25 minutos",
		},
		{
			name:      "50 minutes is allowed",
			text:      "/pomodoro 50",
			wantReply: "50 minutos",
		},
		{
			name:      "other durations are rejected",
			text:      "/pomodoro 30",
			wantReply: "Uso: /pomodoro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newBotFixture(t)
			fixture.dispatch(tt.text)
			assert.Contains(t, fixture.lastReply(), tt.wantReply)
		})
	}
}
