package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"svw.info/tambola/internal/domain"
)

func TestRows(t *testing.T) {
	var g domain.Grid
	g[0][0] = domain.Number(7)
	g[2][8] = domain.Number(90)
	rows := Rows(g)
	assert.Equal(t, "7", rows[0][0])
	assert.Equal(t, "", rows[1][4])
	assert.Equal(t, "90", rows[2][8])
}

func TestTicketContainsNumbers(t *testing.T) {
	tk := &domain.Ticket{ID: "abc", Struck: []int{7}}
	tk.Grid[0][0] = domain.Number(7)
	tk.Grid[2][8] = domain.Number(90)
	out := Ticket(tk)
	assert.Contains(t, out, "Ticket abc")
	assert.Contains(t, out, "7")
	assert.Contains(t, out, "90")
}

func TestViolations(t *testing.T) {
	out := Violations([]domain.Violation{{Code: domain.ViolationRange, Message: "91 outside"}})
	assert.Equal(t, "range: 91 outside\n", out)
}
