package generator

import (
	"slices"
	"time"

	"svw.info/tambola/internal/domain"
	"svw.info/tambola/internal/ports"
)

// RepairGenerator draws each row independently and then repairs column
// coverage. Every repair move keeps each row at exactly five numbers, so
// the loop reaches its fixed point in at most nine moves.
type RepairGenerator struct{}

func NewRepairGenerator() *RepairGenerator { return &RepairGenerator{} }

func (g *RepairGenerator) Grid(src ports.RandomSource) (domain.Grid, ports.Stats) {
	start := time.Now()
	cs := &counting{src: src}
	var grid domain.Grid
	var used [domain.MaxNumber + 1]bool

	// A) five random columns per row, values by rejection sampling
	cols := make([]int, domain.Cols)
	for r := 0; r < domain.Rows; r++ {
		for c := range cols {
			cols[c] = c
		}
		shuffle(cs, cols)
		for _, c := range cols[:domain.NumbersPerRow] {
			grid[r][c] = drawUnused(cs, c, &used)
		}
	}

	// B) cover empty columns, trimming the same row elsewhere
	for {
		c := emptyColumn(&grid)
		if c < 0 {
			break
		}
		r := cs.IntN(domain.Rows)
		grid[r][c] = drawUnused(cs, c, &used)
		trim := trimmable(&grid, r, c)
		// Five numbers in otherwise single-number columns would force the
		// other ten numbers into three columns, so trim is never empty.
		if len(trim) == 0 {
			panic("generator: no trimmable column")
		}
		k := trim[cs.IntN(len(trim))]
		used[grid[r][k].Value()] = false
		grid[r][k] = domain.Blank
	}

	// C) ascending columns
	sortColumns(&grid)
	mustValid(&grid)
	return grid, ports.Stats{Draws: cs.n, Duration: time.Since(start)}
}

// drawUnused rejection-samples column c's range. At most three of its ten
// numbers are ever taken, so the loop terminates.
func drawUnused(src ports.RandomSource, c int, used *[domain.MaxNumber + 1]bool) domain.Cell {
	lo, hi := domain.ColumnRange(c)
	for {
		n := lo + src.IntN(hi-lo+1)
		if !used[n] {
			used[n] = true
			return domain.Cell(n)
		}
	}
}

func columnCount(g *domain.Grid, c int) int {
	n := 0
	for r := 0; r < domain.Rows; r++ {
		if !g[r][c].IsBlank() {
			n++
		}
	}
	return n
}

func emptyColumn(g *domain.Grid) int {
	for c := 0; c < domain.Cols; c++ {
		if columnCount(g, c) == 0 {
			return c
		}
	}
	return -1
}

// trimmable lists numbered columns of row r, other than skip, whose
// column would stay covered without it.
func trimmable(g *domain.Grid, r, skip int) []int {
	var out []int
	for c := 0; c < domain.Cols; c++ {
		if c != skip && !g[r][c].IsBlank() && columnCount(g, c) > 1 {
			out = append(out, c)
		}
	}
	return out
}

// sortColumns reorders values among the numbered cells of each column;
// blank positions never move.
func sortColumns(g *domain.Grid) {
	for c := 0; c < domain.Cols; c++ {
		var rows, vals []int
		for r := 0; r < domain.Rows; r++ {
			if !g[r][c].IsBlank() {
				rows = append(rows, r)
				vals = append(vals, g[r][c].Value())
			}
		}
		slices.Sort(vals)
		for i, r := range rows {
			g[r][c] = domain.Cell(vals[i])
		}
	}
}
