package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/alexanderramin/plangate/internal/locale"
	"github.com/charmbracelet/lipgloss"
)

// FormatPlan renders a plan with its items for the terminal.
func FormatPlan(tr *locale.Translator, plan *domain.DailyPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", Bold(domain.FormatDate(plan.PlanDate)), PlanStatusPill(plan.Status))
	fmt.Fprintf(&b, "%s %s\n", Dim("ID:"), plan.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("User:"), plan.UserID)
	if plan.SubmittedAt != nil {
		fmt.Fprintf(&b, "%s %s\n", Dim("Submitted:"), Timestamp(plan.SubmittedAt))
	}
	if plan.ApprovedAt != nil {
		by := ""
		if plan.ApprovedBy != nil {
			by = " by " + *plan.ApprovedBy
		}
		fmt.Fprintf(&b, "%s %s%s\n", Dim("Approved:"), Timestamp(plan.ApprovedAt), by)
	}
	if plan.EditedAfterSubmission {
		b.WriteString(StyleYellow.Render("Edited after submission") + "\n")
	}
	if plan.UserNotes != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Notes:"), plan.UserNotes)
	}
	if plan.AdminNotes != "" {
		fmt.Fprintf(&b, "%s %s\n", Dim("Admin notes:"), StylePurple.Render(plan.AdminNotes))
	}
	b.WriteString("\n")

	if len(plan.Items) == 0 {
		b.WriteString(Dim("No items yet."))
		return RenderBox("Plan · "+tr.Date(plan.PlanDate), b.String())
	}

	cols := Cols("#", "ID", "TITLE", "PRIORITY", "EST", "DONE")
	cols[0].Align = lipgloss.Right
	cols[4].Align = lipgloss.Right
	rows := make([][]string, 0, len(plan.Items))
	done := 0
	for i, it := range plan.Items {
		mark := Dim("·")
		if it.Completed {
			mark = StyleGreen.Render("✔")
			done++
		}
		title := it.Title
		if it.AssignedByAdmin {
			title += " " + StylePurple.Render("(assigned)")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			TruncID(it.ID),
			title,
			PriorityBadge(it.Priority),
			FormatMinutes(it.EstimatedMinutes),
			mark,
		})
	}
	b.WriteString(RenderColumns(cols, rows))
	b.WriteString("\n")
	b.WriteString(RenderCompletion(done, len(plan.Items), 16))
	b.WriteString("\n")
	b.WriteString(Dim(tr.Sprintf(locale.MsgTotalMinutes, plan.TotalEstimatedMin())))
	if next := plan.NextItem(); next != nil {
		fmt.Fprintf(&b, "\n%s %s %s", Dim("Next:"), next.Title, PriorityBadge(next.Priority))
	}

	return RenderBox("Plan · "+tr.Date(plan.PlanDate), b.String())
}

// FormatPlanList renders a plan overview table.
func FormatPlanList(title string, plans []*domain.DailyPlan) string {
	if len(plans) == 0 {
		return Dim("No plans found.") + "\n"
	}
	headers := []string{"DATE", "USER", "STATUS", "ID", "SUBMITTED", "EDITED"}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		edited := ""
		if p.EditedAfterSubmission {
			edited = StyleYellow.Render("yes")
		}
		rows = append(rows, []string{
			domain.FormatDate(p.PlanDate),
			p.UserID,
			PlanStatusPill(p.Status),
			TruncID(p.ID),
			Timestamp(p.SubmittedAt),
			edited,
		})
	}
	return RenderBox(title, RenderTable(headers, rows)) + "\n"
}

// ExportPlanText renders a plan as unstyled text suitable for pasting into
// mail or a ticket.
func ExportPlanText(plan *domain.DailyPlan) string {
	var b strings.Builder

	yesNo := "no"
	if plan.EditedAfterSubmission {
		yesNo = "yes"
	}
	approved := Timestamp(plan.ApprovedAt)
	if plan.ApprovedBy != nil {
		approved += " by " + *plan.ApprovedBy
	}

	fmt.Fprintf(&b, "Daily plan %s\n", domain.FormatDate(plan.PlanDate))
	fmt.Fprintf(&b, "User:       %s\n", plan.UserID)
	fmt.Fprintf(&b, "Status:     %s\n", plan.Status)
	fmt.Fprintf(&b, "Submitted:  %s\n", Timestamp(plan.SubmittedAt))
	fmt.Fprintf(&b, "Approved:   %s\n", approved)
	fmt.Fprintf(&b, "Edited:     %s\n", yesNo)
	fmt.Fprintf(&b, "Notes:      %s\n", OrDash(plan.UserNotes))
	fmt.Fprintf(&b, "Admin:      %s\n", OrDash(plan.AdminNotes))
	b.WriteString("\n")

	done := 0
	for _, it := range plan.Items {
		if it.Completed {
			done++
		}
	}
	if len(plan.Items) == 0 {
		b.WriteString("Items (0)\n  (none)\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Items (%d, %s planned, %d done)\n", len(plan.Items), FormatMinutes(plan.TotalEstimatedMin()), done)
	for i, it := range plan.Items {
		mark := " "
		if it.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "  %d. [%s] %-8s %-7s %s", i+1, mark, it.Priority, FormatMinutes(it.EstimatedMinutes), it.Title)
		if it.MandateID != nil {
			fmt.Fprintf(&b, " [mandate %s]", *it.MandateID)
		}
		if it.AssignedByAdmin {
			b.WriteString(" [assigned]")
		}
		b.WriteString("\n")
		if it.Description != "" {
			fmt.Fprintf(&b, "        %s\n", it.Description)
		}
	}
	return b.String()
}
