// Package render draws tickets for the terminal.
package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"svw.info/tambola/internal/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().Width(4).Align(lipgloss.Center)
	struckStyle = cellStyle.Strikethrough(true).Faint(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Rows returns the ticket cells as strings, blanks empty.
func Rows(g domain.Grid) [][]string {
	out := make([][]string, domain.Rows)
	for r := 0; r < domain.Rows; r++ {
		out[r] = make([]string, domain.Cols)
		for c := 0; c < domain.Cols; c++ {
			if !g[r][c].IsBlank() {
				out[r][c] = strconv.Itoa(g[r][c].Value())
			}
		}
	}
	return out
}

// Ticket renders t as a bordered 3x9 table with struck numbers faded.
func Ticket(t *domain.Ticket) string {
	rows := Rows(t.Grid)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		BorderRow(true).
		BorderColumn(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 || row >= len(rows) {
				return cellStyle
			}
			if n, err := strconv.Atoi(rows[row][col]); err == nil && t.IsStruck(n) {
				return struckStyle
			}
			return cellStyle
		}).
		Rows(rows...)

	var b strings.Builder
	if t.ID != "" {
		b.WriteString(titleStyle.Render("Ticket " + t.ID))
		b.WriteByte('\n')
	}
	b.WriteString(tbl.Render())
	return b.String()
}

// Violations lists violations one per line.
func Violations(vs []domain.Violation) string {
	var b strings.Builder
	for _, v := range vs {
		b.WriteString(string(v.Code))
		b.WriteString(": ")
		b.WriteString(v.Message)
		b.WriteByte('\n')
	}
	return b.String()
}
