package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/plangate/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PlanStatusPill returns a colored status indicator for a daily plan.
func PlanStatusPill(status domain.PlanStatus) string {
	switch status {
	case domain.PlanDraft:
		return StyleYellow.Render("○ Draft")
	case domain.PlanSubmitted:
		return StyleBlue.Render("● Submitted")
	case domain.PlanApproved:
		return StyleGreen.Render("✔ Approved")
	case domain.PlanRejected:
		return StyleRed.Render("✖ Rejected")
	default:
		return StyleDim.Render(string(status))
	}
}

// PriorityBadge colors an item priority by urgency.
func PriorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return StyleRed.Render(string(p))
	case domain.PriorityHigh:
		return StyleYellow.Render(string(p))
	case domain.PriorityMedium:
		return StyleFg.Render(string(p))
	case domain.PriorityLow:
		return StyleDim.Render(string(p))
	default:
		return StyleDim.Render("--")
	}
}

// GateVerdict renders a one-word allow/deny marker for a gate decision.
func GateVerdict(r domain.ValidationResult) string {
	switch {
	case r.Degraded():
		return StyleYellow.Render("● ALLOWED (unchecked)")
	case r.Allowed:
		return StyleGreen.Render("● ALLOWED")
	default:
		return StyleRed.Render("● BLOCKED")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
