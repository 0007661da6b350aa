package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Ticket geometry and number space.
const (
	Rows          = 3
	Cols          = 9
	NumbersPerRow = 5
	MaxNumber     = 90
)

var (
	ErrShape     = errors.New("grid must be 3 rows of 9 cells")
	ErrCellValue = errors.New("cell value out of range")

	ErrNotOnTicket   = errors.New("number is not on the ticket")
	ErrAlreadyStruck = errors.New("number already struck")
	ErrNotStruck     = errors.New("number not struck")
)

// Cell is one grid position. The zero value is Blank.
type Cell uint8

const Blank Cell = 0

// Number returns a numbered cell. It panics for n outside 1..255;
// whether n fits its column is the validator's concern.
func Number(n int) Cell {
	if n < 1 || n > 255 {
		panic(fmt.Sprintf("domain: cell number %d not representable", n))
	}
	return Cell(n)
}

func (c Cell) IsBlank() bool { return c == Blank }

// Value returns the number held by c, 0 for a blank.
func (c Cell) Value() int { return int(c) }

// MarshalJSON encodes a blank as null and a number as an integer.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.IsBlank() {
		return []byte("null"), nil
	}
	return json.Marshal(int(c))
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var v *int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*c = Blank
		return nil
	}
	if *v < 1 || *v > 255 {
		return fmt.Errorf("%w: %d", ErrCellValue, *v)
	}
	*c = Cell(*v)
	return nil
}

// CellCoord identifies a cell on the grid.
type CellCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is the 3x9 ticket layout, indexed [row][col].
type Grid [Rows][Cols]Cell

// ColumnRange returns the inclusive number span allowed in column c.
func ColumnRange(c int) (lo, hi int) {
	lo = c*10 + 1
	hi = min(c*10+10, MaxNumber)
	return lo, hi
}

// ColumnOf returns the column whose range holds n, or -1.
func ColumnOf(n int) int {
	if n < 1 || n > MaxNumber {
		return -1
	}
	return (n - 1) / 10
}

// Numbers lists the numbered cells in row-major order.
func (g Grid) Numbers() []int {
	out := make([]int, 0, Rows*NumbersPerRow)
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if !g[r][c].IsBlank() {
				out = append(out, g[r][c].Value())
			}
		}
	}
	return out
}

func (g Grid) Contains(n int) bool {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if !g[r][c].IsBlank() && g[r][c].Value() == n {
				return true
			}
		}
	}
	return false
}

// RowsOf converts g to the boundary form: nil for blanks.
func (g Grid) RowsOf() [][]*int {
	out := make([][]*int, Rows)
	for r := 0; r < Rows; r++ {
		out[r] = make([]*int, Cols)
		for c := 0; c < Cols; c++ {
			if !g[r][c].IsBlank() {
				v := g[r][c].Value()
				out[r][c] = &v
			}
		}
	}
	return out
}

// GridFromRows converts the boundary form into a Grid. Shape is checked
// strictly; any non-nil value must be representable as a Cell.
func GridFromRows(rows [][]*int) (Grid, error) {
	var g Grid
	if len(rows) != Rows {
		return g, fmt.Errorf("%w: got %d rows", ErrShape, len(rows))
	}
	for r, row := range rows {
		if len(row) != Cols {
			return g, fmt.Errorf("%w: row %d has %d cells", ErrShape, r, len(row))
		}
		for c, v := range row {
			if v == nil {
				continue
			}
			if *v < 1 || *v > 255 {
				return g, fmt.Errorf("%w: %d at row %d col %d", ErrCellValue, *v, r, c)
			}
			g[r][c] = Cell(*v)
		}
	}
	return g, nil
}

func (g Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.RowsOf())
}

// UnmarshalJSON rejects anything but exactly 3 rows of 9 cells.
func (g *Grid) UnmarshalJSON(b []byte) error {
	var rows [][]*int
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	out, err := GridFromRows(rows)
	if err != nil {
		return err
	}
	*g = out
	return nil
}

// Ticket is an issued grid plus the collaborator metadata attached to it.
type Ticket struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	Grid      Grid   `json:"grid"`
	Struck    []int  `json:"struckNumbers"`
	IsWinner  bool   `json:"isWinner"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

func (t *Ticket) IsStruck(n int) bool {
	_, found := slices.BinarySearch(t.Struck, n)
	return found
}

// Strike marks n as called on the ticket. Struck stays sorted.
func (t *Ticket) Strike(n int) error {
	if !t.Grid.Contains(n) {
		return fmt.Errorf("%w: %d", ErrNotOnTicket, n)
	}
	i, found := slices.BinarySearch(t.Struck, n)
	if found {
		return fmt.Errorf("%w: %d", ErrAlreadyStruck, n)
	}
	t.Struck = slices.Insert(t.Struck, i, n)
	return nil
}

// Unstrike clears a previously struck number.
func (t *Ticket) Unstrike(n int) error {
	if !t.Grid.Contains(n) {
		return fmt.Errorf("%w: %d", ErrNotOnTicket, n)
	}
	i, found := slices.BinarySearch(t.Struck, n)
	if !found {
		return fmt.Errorf("%w: %d", ErrNotStruck, n)
	}
	t.Struck = slices.Delete(t.Struck, i, i+1)
	return nil
}

func (t *Ticket) Meta() TicketMeta {
	return TicketMeta{
		ID:        t.ID,
		PlayerID:  t.PlayerID,
		SessionID: t.SessionID,
		Struck:    len(t.Struck),
		CreatedAt: t.CreatedAt,
	}
}

// TicketMeta is a lightweight listing entry.
type TicketMeta struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Struck    int    `json:"struck"`
	CreatedAt int64  `json:"createdAt"`
}
