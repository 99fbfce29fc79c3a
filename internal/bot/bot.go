// Package bot dispatches chat commands to the study ledger, the task
// database and the subscription store.
package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/acuellar/estudiobot/internal/ledger"
	"github.com/acuellar/estudiobot/internal/notify"
	"github.com/acuellar/estudiobot/internal/quotes"
	"github.com/acuellar/estudiobot/internal/store"
	"github.com/acuellar/estudiobot/internal/tasks"
	"github.com/acuellar/estudiobot/internal/telegram"
)

// UpdateSource produces incoming chat updates.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// Bot owns the command surface.
type Bot struct {
	updates  UpdateSource
	notifier notify.Notifier
	store    store.Store
	ledger   *ledger.Ledger
	source   tasks.Source
	quotes   *quotes.Picker
}

// Params wires the bot's collaborators.
type Params struct {
	Updates  UpdateSource
	Notifier notify.Notifier
	Store    store.Store
	Ledger   *ledger.Ledger
	Source   tasks.Source
	Quotes   *quotes.Picker
}

// New creates a Bot.
func New(params Params) *Bot {
	return &Bot{
		updates:  params.Updates,
		notifier: params.Notifier,
		store:    params.Store,
		ledger:   params.Ledger,
		source:   params.Source,
		quotes:   params.Quotes,
	}
}

// Run polls for updates and dispatches commands until the context is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := b.updates.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("failed to poll updates", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, message *telegram.Message) {
	text := strings.TrimSpace(message.Text)
	if !strings.HasPrefix(text, "/") {
		return
	}

	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	// commands in groups arrive as /cmd@botname
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	args := fields[1:]

	chatID := strconv.FormatInt(message.Chat.ID, 10)
	firstName := ""
	if message.From != nil {
		firstName = message.From.FirstName
	}

	slog.Info("handling command", "command", command, "chat_id", chatID)
	switch command {
	case "/start":
		b.handleStart(ctx, chatID, firstName)
	case "/config":
		b.handleConfig(ctx, chatID, args)
	case "/meta":
		b.handleGoal(ctx, chatID, args)
	case "/estudie":
		b.handleLogSession(ctx, chatID, args)
	case "/progreso":
		b.handleProgress(ctx, chatID)
	case "/racha":
		b.handleStreak(ctx, chatID)
	case "/proximos":
		b.handleUpcoming(ctx, chatID, args)
	case "/plan":
		b.handlePlan(ctx, chatID, args)
	case "/pomodoro":
		b.handlePomodoro(ctx, chatID, args)
	default:
		b.reply(ctx, chatID, "🤔 No conozco ese comando. Prueba /proximos, /estudie, /meta, /progreso, /racha, /plan o /pomodoro.")
	}
}

// reply sends a message and logs delivery failures; a lost reply never
// aborts command handling.
func (b *Bot) reply(ctx context.Context, chatID, text string) {
	if err := b.notifier.Send(ctx, chatID, text); err != nil {
		slog.Error("failed to reply", "chat_id", chatID, "error", err)
	}
}
