package formatter

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderColumns_AlignsOnVisibleWidth(t *testing.T) {
	cols := []Column{{Title: "NAME", Align: lipgloss.Left}, {Title: "EST", Align: lipgloss.Right}}
	rows := [][]string{
		{StyleGreen.Render("a"), "5m"},
		{"long", "1h 30m"},
		{"short"},
	}

	lines := strings.Split(strings.TrimSuffix(stripANSI(RenderColumns(cols, rows)), "\n"), "\n")

	assert.Equal(t, []string{
		"NAME      EST",
		"─────  ──────",
		"a          5m",
		"long   1h 30m",
		"short",
	}, lines)
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
	assert.Equal(t, "ID\n──\n", stripANSI(RenderTable([]string{"ID"}, nil)))
}
