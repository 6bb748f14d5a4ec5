package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one table column. Align is lipgloss.Left unless set.
type Column struct {
	Title string
	Align lipgloss.Position
}

// Cols builds left-aligned columns from titles.
func Cols(titles ...string) []Column {
	cols := make([]Column, len(titles))
	for i, t := range titles {
		cols[i] = Column{Title: t, Align: lipgloss.Left}
	}
	return cols
}

// RenderTable renders left-aligned columns. See RenderColumns.
func RenderTable(headers []string, rows [][]string) string {
	return RenderColumns(Cols(headers...), rows)
}

// RenderColumns lays rows out under a styled header and a rule. Widths are
// measured on visible text so styled cells line up; missing cells are blank
// and extra cells are dropped.
func RenderColumns(cols []Column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], lipgloss.Width(row[i]))
			}
		}
	}

	line := func(cell func(i int) string) string {
		parts := make([]string, len(cols))
		for i, c := range cols {
			parts[i] = lipgloss.PlaceHorizontal(widths[i], c.Align, cell(i))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	var b strings.Builder
	b.WriteString(line(func(i int) string { return StyleHeader.Render(cols[i].Title) }))
	b.WriteString("\n")
	b.WriteString(line(func(i int) string { return StyleDim.Render(strings.Repeat("─", widths[i])) }))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(line(func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}))
		b.WriteString("\n")
	}
	return b.String()
}
