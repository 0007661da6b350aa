package generator

import (
	"fmt"
	"slices"
	"time"

	"svw.info/tambola/internal/domain"
	"svw.info/tambola/internal/ports"
)

// JointGenerator fills the grid in one pass that satisfies row cardinality
// and column coverage together, so no repair step is needed.
type JointGenerator struct{}

func NewJointGenerator() *JointGenerator { return &JointGenerator{} }

// Grid builds a ticket layout from src.
func (g *JointGenerator) Grid(src ports.RandomSource) (domain.Grid, ports.Stats) {
	start := time.Now()
	cs := &counting{src: src}

	// 1) how many numbers each column holds
	counts := columnCounts(cs)
	// 2) which rows hold them
	rows := assignRows(cs, counts)
	// 3) the values, ascending down each column
	var grid domain.Grid
	for c := 0; c < domain.Cols; c++ {
		vals := drawDistinct(cs, c, counts[c])
		for i, r := range rows[c] {
			grid[r][c] = domain.Cell(vals[i])
		}
	}
	mustValid(&grid)
	return grid, ports.Stats{Draws: cs.n, Duration: time.Since(start)}
}

// columnCounts seeds every column with one slot and spreads the remaining
// 15-9 slots over columns that still have room.
func columnCounts(src ports.RandomSource) [domain.Cols]int {
	var counts [domain.Cols]int
	for c := range counts {
		counts[c] = 1
	}
	open := make([]int, 0, domain.Cols)
	for extra := domain.Rows*domain.NumbersPerRow - domain.Cols; extra > 0; extra-- {
		open = open[:0]
		for c, n := range counts {
			if n < domain.Rows {
				open = append(open, c)
			}
		}
		counts[open[src.IntN(len(open))]]++
	}
	return counts
}

// assignRows places each column's numbers in the rows with the most
// remaining demand (Ryser's construction). With row sums of 5 and column
// sums in 1..3 adding to 15 the margins are always realisable.
func assignRows(src ports.RandomSource, counts [domain.Cols]int) [domain.Cols][]int {
	order := make([]int, domain.Cols)
	for c := range order {
		order[c] = c
	}
	shuffle(src, order)
	slices.SortStableFunc(order, func(a, b int) int { return counts[b] - counts[a] })

	var demand [domain.Rows]int
	for r := range demand {
		demand[r] = domain.NumbersPerRow
	}
	var out [domain.Cols][]int
	for _, c := range order {
		rows := []int{0, 1, 2}
		shuffle(src, rows)
		slices.SortStableFunc(rows, func(a, b int) int { return demand[b] - demand[a] })
		pick := rows[:counts[c]]
		for _, r := range pick {
			if demand[r] == 0 {
				panic("generator: row demand exhausted")
			}
			demand[r]--
		}
		slices.Sort(pick)
		out[c] = pick
	}
	for r, d := range demand {
		if d != 0 {
			panic(fmt.Sprintf("generator: row %d left unfilled", r))
		}
	}
	return out
}

// drawDistinct picks k distinct numbers from column c's range, ascending.
func drawDistinct(src ports.RandomSource, c, k int) []int {
	lo, hi := domain.ColumnRange(c)
	pool := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		pool = append(pool, n)
	}
	for i := 0; i < k; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	vals := pool[:k]
	slices.Sort(vals)
	return vals
}
