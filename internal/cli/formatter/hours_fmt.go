package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/alexanderramin/plangate/internal/service"
	"github.com/charmbracelet/lipgloss"
)

// FormatDecision renders a single gate decision for date, labelled relative to now.
func FormatDecision(tr *locale.Translator, res domain.ValidationResult, date, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n", GateVerdict(res), Bold(domain.FormatDate(date)), Dim(HumanDateFrom(date, now)))
	if res.Reason != "" {
		fmt.Fprintf(&b, "  %s\n", res.Reason)
	}
	if res.Degraded() {
		fmt.Fprintf(&b, "  %s\n", Dim(tr.Sprintf(locale.MsgValidationSkipped)))
	}
	if res.PlanID != nil {
		fmt.Fprintf(&b, "  %s %s\n", Dim("plan"), *res.PlanID)
	}
	return b.String()
}

// FormatWeek renders a range of gate decisions, one row per day.
func FormatWeek(days []service.DayDecision) string {
	headers := []string{"DATE", "DAY", "GATE", "DETAIL"}
	rows := make([][]string, 0, len(days))
	open := 0
	for _, d := range days {
		detail := d.Result.Reason
		if d.Result.PlanID != nil {
			detail = Dim("plan " + ShortID(*d.Result.PlanID))
		}
		if d.Result.Allowed {
			open++
		}
		rows = append(rows, []string{
			domain.FormatDate(d.Date),
			d.Date.Format("Mon"),
			GateVerdict(d.Result),
			detail,
		})
	}
	summary := fmt.Sprintf("%d of %d days open for time registration", open, len(days))
	return RenderBox("Registration gate", RenderTable(headers, rows)+"\n"+Dim(summary)) + "\n"
}

// FormatEntries renders the time entries of one day.
func FormatEntries(entries []*domain.TimeEntry) string {
	if len(entries) == 0 {
		return Dim("No time entries.") + "\n"
	}
	cols := Cols("ID", "TIME", "PLAN", "DESCRIPTION")
	cols[1].Align = lipgloss.Right
	rows := make([][]string, 0, len(entries))
	total := 0
	for _, e := range entries {
		plan := Dim("--")
		if e.PlanID != nil {
			plan = TruncID(*e.PlanID)
		}
		total += e.Minutes
		rows = append(rows, []string{
			TruncID(e.ID),
			FormatMinutes(e.Minutes),
			plan,
			e.Description,
		})
	}
	body := RenderColumns(cols, rows) + "\n" + Bold("Total: "+FormatMinutes(total))
	return RenderBox("Time entries", body) + "\n"
}
