package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"svw.info/tambola/internal/domain"
)

var (
	ErrNoGrid    = errors.New("ticket has no grid")
	ErrStrikeKey = errors.New("bad strike key")
)

// wireTicket is the union of every ticket shape seen on the wire.
type wireTicket struct {
	ID        string          `json:"id"`
	TicketID  string          `json:"ticket_id"`
	PlayerID  string          `json:"playerId"`
	SessionID string          `json:"sessionId"`
	Grid      [][]*int        `json:"grid"`
	Numbers   [][]*int        `json:"numbers"`
	Struck    []int           `json:"struckNumbers"`
	Strikes   map[string]bool `json:"strikes"`
	IsWinner  bool            `json:"isWinner"`
	CreatedAt int64           `json:"createdAt"`
}

// DecodeTicket reads a ticket in canonical form ({"id","grid"} or
// {"id","numbers"}) or the legacy player form ({"ticket_id","grid",
// "strikes":{"0-2":true}}). Shape errors in the grid are returned, not
// repaired; whether the numbers obey the ticket rules is left to the
// validator.
func DecodeTicket(data []byte) (*domain.Ticket, error) {
	var w wireTicket
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode ticket: %w", err)
	}
	rows := w.Grid
	if rows == nil {
		rows = w.Numbers
	}
	if rows == nil {
		return nil, ErrNoGrid
	}
	g, err := domain.GridFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("decode ticket: %w", err)
	}
	t := &domain.Ticket{
		ID:        w.ID,
		PlayerID:  w.PlayerID,
		SessionID: w.SessionID,
		Grid:      g,
		IsWinner:  w.IsWinner,
		CreatedAt: w.CreatedAt,
	}
	if t.ID == "" {
		t.ID = w.TicketID
	}
	struck := slices.Clone(w.Struck)
	for k, on := range w.Strikes {
		if !on {
			continue
		}
		n, err := strikeNumber(&g, k)
		if err != nil {
			return nil, fmt.Errorf("decode ticket: %w", err)
		}
		struck = append(struck, n)
	}
	slices.Sort(struck)
	t.Struck = slices.Compact(struck)
	return t, nil
}

// strikeNumber resolves a legacy strike key to the number it marks. Keys
// are cell positions "row-col"; a bare number is accepted too.
func strikeNumber(g *domain.Grid, key string) (int, error) {
	rs, cs, ok := strings.Cut(key, "-")
	if !ok {
		n, err := strconv.Atoi(key)
		if err != nil || !g.Contains(n) {
			return 0, fmt.Errorf("%w: %q", ErrStrikeKey, key)
		}
		return n, nil
	}
	r, err1 := strconv.Atoi(rs)
	c, err2 := strconv.Atoi(cs)
	if err1 != nil || err2 != nil || r < 0 || r >= domain.Rows || c < 0 || c >= domain.Cols {
		return 0, fmt.Errorf("%w: %q is not a cell", ErrStrikeKey, key)
	}
	if g[r][c].IsBlank() {
		return 0, fmt.Errorf("%w: %q is a blank cell", ErrStrikeKey, key)
	}
	return g[r][c].Value(), nil
}
