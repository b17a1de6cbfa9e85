package cli

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
)

// NewStyledTable creates a bordered table with a styled header row.
func NewStyledTable(headers ...string) *ltable.Table {
	t := DefaultTheme
	return ltable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(t.Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return t.Header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
