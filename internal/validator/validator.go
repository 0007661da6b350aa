package validator

import (
	"context"
	"fmt"

	"svw.info/tambola/internal/domain"
)

type FastValidator struct{}

func New() *FastValidator { return &FastValidator{} }

// cell is a grid position as read from any source: set reports whether it
// holds a number, v is the number (possibly out of every range).
type cell struct {
	v   int
	set bool
}

type board [domain.Rows][domain.Cols]cell

func fromGrid(g *domain.Grid) *board {
	var b board
	for r := 0; r < domain.Rows; r++ {
		for c := 0; c < domain.Cols; c++ {
			if !g[r][c].IsBlank() {
				b[r][c] = cell{v: g[r][c].Value(), set: true}
			}
		}
	}
	return &b
}

// Valid reports whether g satisfies every ticket rule, stopping at the
// first violation.
func Valid(g *domain.Grid) bool {
	if g == nil {
		return false
	}
	return len(check(fromGrid(g), true)) == 0
}

// Validate accumulates every violation in g. The error is non-nil only
// when ctx is done.
func (v *FastValidator) Validate(ctx context.Context, g *domain.Grid) (bool, []domain.Violation, error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}
	if g == nil {
		return false, []domain.Violation{shape(-1, "grid is missing")}, nil
	}
	conf := check(fromGrid(g), false)
	return len(conf) == 0, conf, nil
}

// ValidateRows validates the boundary form, including its shape. A shape
// violation short-circuits the cell checks.
func (v *FastValidator) ValidateRows(ctx context.Context, rows [][]*int) (bool, []domain.Violation, error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}
	var conf []domain.Violation
	if len(rows) != domain.Rows {
		conf = append(conf, shape(-1, fmt.Sprintf("grid has %d rows, want %d", len(rows), domain.Rows)))
	}
	for r, row := range rows {
		if len(row) != domain.Cols {
			conf = append(conf, shape(r, fmt.Sprintf("row %d has %d cells, want %d", r, len(row), domain.Cols)))
		}
	}
	if len(conf) > 0 {
		return false, conf, nil
	}
	var b board
	for r, row := range rows {
		for c, p := range row {
			if p != nil {
				b[r][c] = cell{v: *p, set: true}
			}
		}
	}
	conf = check(&b, false)
	return len(conf) == 0, conf, nil
}

func shape(row int, msg string) domain.Violation {
	return domain.Violation{
		Code:      domain.ViolationShape,
		CellCoord: domain.CellCoord{Row: row, Col: -1},
		Message:   msg,
	}
}

func check(b *board, firstOnly bool) []domain.Violation {
	conf := make([]domain.Violation, 0, 4)
	add := func(code domain.ViolationCode, r, c, val int, msg string) bool {
		conf = append(conf, domain.Violation{
			Code:      code,
			CellCoord: domain.CellCoord{Row: r, Col: c},
			Value:     val,
			Message:   msg,
		})
		return firstOnly
	}

	// column ranges
	for c := 0; c < domain.Cols; c++ {
		lo, hi := domain.ColumnRange(c)
		for r := 0; r < domain.Rows; r++ {
			x := b[r][c]
			if x.set && (x.v < lo || x.v > hi) {
				if add(domain.ViolationRange, r, c, x.v, fmt.Sprintf("%d outside column %d range [%d,%d]", x.v, c, lo, hi)) {
					return conf
				}
			}
		}
	}
	// row cardinality
	for r := 0; r < domain.Rows; r++ {
		n := 0
		for c := 0; c < domain.Cols; c++ {
			if b[r][c].set {
				n++
			}
		}
		if n != domain.NumbersPerRow {
			if add(domain.ViolationRowCount, r, -1, n, fmt.Sprintf("row %d has %d numbers, want %d", r, n, domain.NumbersPerRow)) {
				return conf
			}
		}
	}
	// column coverage
	for c := 0; c < domain.Cols; c++ {
		if !b[0][c].set && !b[1][c].set && !b[2][c].set {
			if add(domain.ViolationColumnEmpty, -1, c, 0, fmt.Sprintf("column %d has no numbers", c)) {
				return conf
			}
		}
	}
	// global uniqueness
	seen := make(map[int]struct{}, domain.Rows*domain.NumbersPerRow)
	for r := 0; r < domain.Rows; r++ {
		for c := 0; c < domain.Cols; c++ {
			x := b[r][c]
			if !x.set {
				continue
			}
			if _, dup := seen[x.v]; dup {
				if add(domain.ViolationDuplicate, r, c, x.v, fmt.Sprintf("%d appears more than once", x.v)) {
					return conf
				}
				continue
			}
			seen[x.v] = struct{}{}
		}
	}
	// column order
	for c := 0; c < domain.Cols; c++ {
		prev, have := 0, false
		for r := 0; r < domain.Rows; r++ {
			x := b[r][c]
			if !x.set {
				continue
			}
			if have && x.v <= prev {
				if add(domain.ViolationUnsorted, r, c, x.v, fmt.Sprintf("column %d: %d does not follow %d", c, x.v, prev)) {
					return conf
				}
			}
			prev, have = x.v, true
		}
	}
	return conf
}
