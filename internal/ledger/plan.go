package ledger

import (
	"fmt"
	"strings"
	"time"
)

// PlanKind selects a study-plan template based on how far away a due date is.
type PlanKind string

const (
	// PlanTwoWeek is a theory-then-practice plan for due dates more than two
	// weeks away, switching phases one week before the exam.
	PlanTwoWeek PlanKind = "two_week"
	// PlanIntensive splits the remaining 2..14 days in half between
	// conceptual review and full exercises.
	PlanIntensive PlanKind = "intensive"
	// PlanEmergency is the 24-hour no-new-material plan.
	PlanEmergency PlanKind = "emergency"
	// PlanExamDay applies when the due date is today or already past.
	PlanExamDay PlanKind = "exam_day"
)

// Plan is the outcome of pure date arithmetic over a due date; it carries
// everything a renderer needs and no side effects.
type Plan struct {
	Kind      PlanKind
	DaysUntil int
	// TheoryUntil is the last day of the theory phase for two-week plans.
	TheoryUntil time.Time
	// MidPoint is the day count assigned to conceptual review for intensive plans.
	MidPoint int
}

// BuildPlan selects a study-plan template for a task due on due, as seen
// from today. Both arguments are treated as calendar dates.
func BuildPlan(due, today time.Time) Plan {
	due = truncateToDay(due)
	today = truncateToDay(today)
	daysUntil := int(due.Sub(today).Hours() / 24)

	plan := Plan{DaysUntil: daysUntil}
	switch {
	case daysUntil > 14:
		plan.Kind = PlanTwoWeek
		plan.TheoryUntil = due.AddDate(0, 0, -7)
	case daysUntil > 1:
		plan.Kind = PlanIntensive
		plan.MidPoint = daysUntil / 2
	case daysUntil == 1:
		plan.Kind = PlanEmergency
	default:
		plan.Kind = PlanExamDay
	}
	return plan
}

// Render formats the plan as a Markdown block for one task.
func (p Plan) Render(title string, due, today time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎓 **%s**\n🗓 %s (en %d días)\n\n", title, due.Format("2006-01-02"), p.DaysUntil)

	switch p.Kind {
	case PlanTwoWeek:
		fmt.Fprintf(&b, "**Semana 1** (hasta %s): 📖 Teoría\n", p.TheoryUntil.Format("02-01"))
		b.WriteString("- Lee la bibliografía.\n- Haz mapas conceptuales.\n- Revisa el contenido registrado.\n\n")
		b.WriteString("**Semana 2**: ✍️ Práctica Intensiva\n")
		b.WriteString("- Realiza ejercicios tipo prueba.\n- Simula un examen real.\n- Repasa errores.\n")
	case PlanIntensive:
		midDate := truncateToDay(today).AddDate(0, 0, p.MidPoint)
		fmt.Fprintf(&b, "⚡ **Plan Intensivo (%d días)**\n", p.DaysUntil)
		fmt.Fprintf(&b, "📅 **Días 1-%d** (Hoy - %s): 📖 **Repaso Conceptual**\n", p.MidPoint, midDate.Format("02-01"))
		b.WriteString("- Revisa tus notas y resúmenes.\n- Asegura los conceptos base.\n\n")
		fmt.Fprintf(&b, "📅 **Días %d-%d**: 🧨 **Full Ejercicios**\n", p.MidPoint+1, p.DaysUntil)
		b.WriteString("- Resuelve exámenes pasados.\n- Cronometra tu tiempo.\n")
	case PlanEmergency:
		b.WriteString("🚨 **Plan de Emergencia (24h)**\n")
		b.WriteString("- 🛑 No intentes aprender nada nuevo.\n")
		b.WriteString("- 🔄 Repasa solo lo que ya sabes para asegurarlo.\n")
		b.WriteString("- 💤 Duerme bien hoy. Es lo más importante.\n")
	default:
		b.WriteString("🏁 **¡Es hoy!**\n🍀 ¡Mucho éxito! Tú sabes lo que sabes. Confía en ti.\n")
	}
	return b.String()
}

// truncateToDay reduces t to its calendar date as a UTC midnight. Keeping
// one location for both sides of the subtraction makes the day distance a
// whole number of days regardless of the zones the inputs arrived in.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
