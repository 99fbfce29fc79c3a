package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/acuellar/estudiobot/internal/ledger"
	"github.com/acuellar/estudiobot/internal/notion"
	"github.com/acuellar/estudiobot/internal/scheduler"
	"github.com/acuellar/estudiobot/internal/store"
)

// handleStart registers the chat with the default reminder time. Re-running
// /start for an existing subscription changes nothing.
func (b *Bot) handleStart(ctx context.Context, chatID, firstName string) {
	subs, err := b.store.LoadSubscriptions()
	if err != nil {
		slog.Error("failed to load subscriptions", "error", err)
		b.reply(ctx, chatID, "😓 Lo siento, no pude guardar tu registro. Intenta de nuevo en un momento.")
		return
	}
	if _, ok := subs[chatID]; !ok {
		subs[chatID] = store.Subscription{ReminderTime: store.DefaultReminderTime}
		if err := b.store.SaveSubscriptions(subs); err != nil {
			slog.Error("failed to save subscriptions", "error", err)
			b.reply(ctx, chatID, "😓 Lo siento, no pude guardar tu registro. Intenta de nuevo en un momento.")
			return
		}
		slog.Info("new user subscribed", "chat_id", chatID, "name", firstName)
	}

	greeting := firstName
	if greeting == "" {
		greeting = "estudiante"
	}
	b.reply(ctx, chatID, fmt.Sprintf(
		"¡Hola %s! 👋 Soy tu Bot Académico.\n\n"+
			"Estoy conectado a tu Notion para recordarte tus exámenes y entregas. 🧠\n\n"+
			"He guardado tu ID para enviarte recordatorios diarios a las 8:00 AM. ⏰\n\n"+
			"Usa /proximos para ver qué tienes pendiente. 📅", greeting))
}

// handleConfig sets the daily reminder time. The argument must be a valid
// 24-hour HH:MM; it is normalized before storing so the per-minute exact
// match works.
func (b *Bot) handleConfig(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "⚠️ Uso: /config HH:MM (ej. /config 10:00)")
		return
	}

	parsed, err := time.Parse("15:04", args[0])
	if err != nil {
		b.reply(ctx, chatID, "❌ Formato inválido. Usa HH:MM (24 horas). Ej: 08:00 o 18:30")
		return
	}
	normalized := parsed.Format("15:04")

	subs, err := b.store.LoadSubscriptions()
	if err != nil {
		slog.Error("failed to load subscriptions", "error", err)
		b.reply(ctx, chatID, "😓 No pude guardar la configuración. Intenta de nuevo.")
		return
	}
	sub := subs[chatID]
	sub.ReminderTime = normalized
	subs[chatID] = sub
	if err := b.store.SaveSubscriptions(subs); err != nil {
		slog.Error("failed to save subscriptions", "error", err)
		b.reply(ctx, chatID, "😓 No pude guardar la configuración. Intenta de nuevo.")
		return
	}

	b.reply(ctx, chatID, fmt.Sprintf("✅ Recordatorio configurado para las **%s** diariamente.", normalized))
}

// handleGoal sets a weekly goal: /meta [Materia] N.
func (b *Bot) handleGoal(ctx context.Context, chatID string, args []string) {
	if len(args) == 0 {
		b.reply(ctx, chatID, "⚠️ Uso: /meta [Materia] [Número]. Ej: /meta Matemáticas 3")
		return
	}

	goal, err := strconv.Atoi(args[len(args)-1])
	if err != nil || goal < 0 {
		b.reply(ctx, chatID, "❌ El último argumento debe ser un número de sesiones por semana.")
		return
	}

	subject := ledger.DefaultSubject
	if len(args) > 1 {
		subject = strings.Join(args[:len(args)-1], " ")
	}

	if err := b.ledger.SetGoal(chatID, subject, goal); err != nil {
		slog.Error("failed to set goal", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "😓 No pude guardar la meta. Intenta de nuevo.")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("🎯 ¡Meta fijada! **%s**: %d sesiones/semana.", subject, goal))
}

// handleLogSession records a study session for today: /estudie [Materia].
func (b *Bot) handleLogSession(ctx context.Context, chatID string, args []string) {
	subject := ledger.DefaultSubject
	if len(args) > 0 {
		subject = strings.Join(args, " ")
	}

	isNew, err := b.ledger.LogSession(chatID, subject)
	if err != nil {
		slog.Error("failed to log session", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "😓 No pude registrar la sesión. Intenta de nuevo.")
		return
	}
	if !isNew {
		b.reply(ctx, chatID, fmt.Sprintf("😅 Ya registraste **%s** hoy.", subject))
		return
	}

	message := fmt.Sprintf("✅ ¡Bien hecho! Sesión de **%s** registrada.\n", subject)
	progress, err := b.ledger.WeeklyProgress(chatID)
	if err != nil {
		slog.Error("failed to compute progress", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, message)
		return
	}
	p := progress[subject]
	if p.Goal > 0 {
		message += fmt.Sprintf("🔥 Llevas %d/%d (%d%%)", p.Current, p.Goal, p.Percentage)
	} else {
		message += fmt.Sprintf("🔥 Llevas %d sesiones.", p.Current)
	}
	b.reply(ctx, chatID, message)
}

// handleProgress shows the weekly report on demand.
func (b *Bot) handleProgress(ctx context.Context, chatID string) {
	progress, err := b.ledger.WeeklyProgress(chatID)
	if err != nil {
		slog.Error("failed to compute progress", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "😓 No pude calcular tu progreso. Intenta de nuevo.")
		return
	}
	streak, err := b.ledger.Streak(chatID)
	if err != nil {
		slog.Error("failed to compute streak", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "😓 No pude calcular tu progreso. Intenta de nuevo.")
		return
	}

	header := ""
	if streak > 1 {
		header = fmt.Sprintf("🔥 **Racha Actual: %d días seguidos**\n\n", streak)
	}
	if len(progress) == 0 {
		b.reply(ctx, chatID, header+"📊 Aún no tienes metas ni sesiones registradas. ¡Empieza con /meta!")
		return
	}
	b.reply(ctx, chatID, header+formatProgress(progress))
}

// handleStreak shows the consecutive-day streak on demand.
func (b *Bot) handleStreak(ctx context.Context, chatID string) {
	streak, err := b.ledger.Streak(chatID)
	if err != nil {
		slog.Error("failed to compute streak", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "😓 No pude calcular tu racha. Intenta de nuevo.")
		return
	}

	switch {
	case streak > 1:
		b.reply(ctx, chatID, fmt.Sprintf("🔥 **¡Racha de %d días!** ¡Sigue así!", streak))
	case streak == 1:
		b.reply(ctx, chatID, "🔥 ¡Primer día de la racha! Vuelve mañana para mantenerla.")
	default:
		b.reply(ctx, chatID, "❄️ **Racha**: 0 días. Registra una sesión con /estudie para empezar.")
	}
}

// handleUpcoming lists upcoming tasks: /proximos [filtro].
func (b *Bot) handleUpcoming(ctx context.Context, chatID string, args []string) {
	subjectFilter := strings.Join(args, " ")
	if subjectFilter != "" {
		b.reply(ctx, chatID, fmt.Sprintf("🔎 Buscando exámenes de '%s'...", subjectFilter))
	} else {
		b.reply(ctx, chatID, "🔎 Consultando Notion... dame un segundo.")
	}

	upcoming, err := b.source.UpcomingTasks(ctx, subjectFilter)
	if err != nil {
		b.replyTaskError(ctx, chatID, err)
		return
	}

	if len(upcoming) == 0 {
		if subjectFilter != "" {
			b.reply(ctx, chatID, fmt.Sprintf("¡No encontré nada para '%s'! 🎉 (O quizás no existe esa materia)", subjectFilter))
		} else {
			b.reply(ctx, chatID, "¡Eres libre! No hay pruebas pronto. 🎉 Disfruta tu tiempo.")
		}
		return
	}

	b.reply(ctx, chatID, scheduler.FormatUpcoming(upcoming, subjectFilter, b.quotes.Pick()))
}

// handlePlan generates a study plan for one task (matched by title) or for
// every upcoming task: /plan [titulo].
func (b *Bot) handlePlan(ctx context.Context, chatID string, args []string) {
	b.reply(ctx, chatID, "⚡ Generando plan...")

	upcoming, err := b.source.UpcomingTasks(ctx, "")
	if err != nil {
		b.replyTaskError(ctx, chatID, err)
		return
	}

	titleFilter := strings.ToLower(strings.Join(args, " "))
	today := time.Now()

	var sections []string
	for _, task := range upcoming {
		if titleFilter != "" && !strings.Contains(strings.ToLower(task.Title), titleFilter) {
			continue
		}
		due, err := task.DueDate()
		if err != nil {
			continue
		}
		plan := ledger.BuildPlan(due, today)
		sections = append(sections, plan.Render(task.Title, due, today))
	}

	if len(sections) == 0 {
		b.reply(ctx, chatID, "❌ No encontré el examen solicitado.")
		return
	}
	b.reply(ctx, chatID, "📅 **Plan de Estudio**\n\n"+strings.Join(sections, "-------------------------\n"))
}

// handlePomodoro starts a focus timer: /pomodoro [25|50].
func (b *Bot) handlePomodoro(ctx context.Context, chatID string, args []string) {
	minutes := 25
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || (parsed != 25 && parsed != 50) {
			b.reply(ctx, chatID, "⚠️ Uso: /pomodoro [25|50]")
			return
		}
		minutes = parsed
	}

	time.AfterFunc(time.Duration(minutes)*time.Minute, func() {
		b.reply(context.Background(), chatID, fmt.Sprintf(
			"⏰ **¡DING DING!** Tiempo cumplido (%d min).\n☕ Tómate un descanso de 5 minutos.", minutes))
	})
	b.reply(ctx, chatID, fmt.Sprintf(
		"🍅 **Modo Concentración Iniciado**\n⏳ %d minutos. ¡A trabajar!\n(Te avisaré cuando termine)", minutes))
}

// replyTaskError degrades a task-database failure to a short user-visible
// message, keeping API details only when the error is a distinguishable
// collaborator failure.
func (b *Bot) replyTaskError(ctx context.Context, chatID string, err error) {
	slog.Error("task database query failed", "chat_id", chatID, "error", err)

	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		b.reply(ctx, chatID, fmt.Sprintf("❌ Hubo un error al consultar Notion (código %d). Intenta de nuevo en unos minutos.", apiErr.StatusCode))
		return
	}
	b.reply(ctx, chatID, "❌ No pude conectar con Notion. Intenta de nuevo en unos minutos.")
}

// formatProgress renders per-subject progress with a visual bar.
func formatProgress(progress map[string]ledger.SubjectProgress) string {
	var b strings.Builder
	b.WriteString("📊 **Tu Progreso Semanal**\n\n")

	subjects := make([]string, 0, len(progress))
	for subject := range progress {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	total := 0
	for _, subject := range subjects {
		p := progress[subject]
		total += p.Current

		fmt.Fprintf(&b, "📘 **%s**\n", subject)
		if p.Goal > 0 {
			const barLength = 8
			filled := barLength * p.Percentage / 100
			if filled > barLength {
				filled = barLength
			}
			bar := strings.Repeat("█", filled) + strings.Repeat("░", barLength-filled)
			fmt.Fprintf(&b, "[%s] %d/%d (%d%%)\n\n", bar, p.Current, p.Goal, p.Percentage)
		} else {
			fmt.Fprintf(&b, "📚 %d sesiones (Sin meta)\n\n", p.Current)
		}
	}

	fmt.Fprintf(&b, "🔥 **Total Semanal:** %d sesiones", total)
	return b.String()
}
