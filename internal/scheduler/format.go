package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/acuellar/estudiobot/internal/ledger"
	"github.com/acuellar/estudiobot/internal/tasks"
)

// FormatAlert builds the single alert message covering every imminent task,
// each annotated with how soon it is due.
func FormatAlert(imminent []tasks.Task, today time.Time, quote string) string {
	dayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	fmt.Fprintf(&b, "🚨 **ALERTA: Exámenes en los próximos %d días** 🚨\n\n", ImminentWindowDays)
	for _, task := range imminent {
		due, err := task.DueDate()
		if err != nil {
			continue
		}
		daysLeft := int(due.Sub(dayStart).Hours() / 24)
		dayMessage := "HOY"
		if daysLeft > 0 {
			dayMessage = fmt.Sprintf("en %d días", daysLeft)
		}

		fmt.Fprintf(&b, "⏳ **%s** (%s)\n", task.Subject, dayMessage)
		fmt.Fprintf(&b, "📝 %s\n", task.Title)
		if task.Content != "" {
			fmt.Fprintf(&b, "ℹ️ _%s_\n", task.Content)
		}
		if task.URL != "" {
			fmt.Fprintf(&b, "🔗 [Ver en Notion](%s)\n", task.URL)
		}
		b.WriteString("-------------------------\n")
	}
	fmt.Fprintf(&b, "\n%s", quote)
	return b.String()
}

// FormatWeeklyReport builds the automatic weekly summary. It always has
// content, even for a week without activity.
func FormatWeeklyReport(progress map[string]ledger.SubjectProgress, streak int) string {
	var b strings.Builder
	b.WriteString("📉 **Resumen de tu Semana** (Automático)\n\n")

	if streak > 0 {
		fmt.Fprintf(&b, "🔥 **Racha Activa**: %d días\n", streak)
	} else {
		b.WriteString("❄️ **Racha**: 0 días (¡Empieza mañana!)\n")
	}

	subjects := make([]string, 0, len(progress))
	for subject := range progress {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	total := 0
	var details strings.Builder
	for _, subject := range subjects {
		if current := progress[subject].Current; current > 0 {
			fmt.Fprintf(&details, "- %s: %d sesiones\n", subject, current)
			total += current
		}
	}

	fmt.Fprintf(&b, "📚 **Total Sesiones**: %d\n\n", total)
	if total > 0 {
		b.WriteString("Detalle:\n")
		b.WriteString(details.String())
		b.WriteString("\n🎉 ¡Buen esfuerzo! Descansa y prepárate para la próxima. 💪")
	} else {
		b.WriteString("❌ No registraste actividad esta semana.\n¡La próxima será mejor! 👊")
	}
	return b.String()
}

// FormatUpcoming lists every upcoming task for the interactive command.
func FormatUpcoming(upcoming []tasks.Task, subjectFilter, quote string) string {
	var b strings.Builder
	if subjectFilter != "" {
		fmt.Fprintf(&b, "📅 **Próximos para '%s':**\n\n", subjectFilter)
	} else {
		b.WriteString("📅 **Próximos Exámenes y Entregas:**\n\n")
	}

	for _, task := range upcoming {
		fmt.Fprintf(&b, "📚 *%s*\n", task.Subject)
		fmt.Fprintf(&b, "📝 %s\n", task.Title)
		if task.Content != "" {
			fmt.Fprintf(&b, "ℹ️ _%s_\n", task.Content)
		}
		fmt.Fprintf(&b, "⏰ %s\n", task.Due)
		if task.URL != "" {
			fmt.Fprintf(&b, "🔗 [Ver en Notion](%s)\n", task.URL)
		}
		b.WriteString("-------------------------\n")
	}
	fmt.Fprintf(&b, "\n%s", quote)
	return b.String()
}
