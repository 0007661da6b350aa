package ports

import (
	"context"
	"time"

	"svw.info/tambola/internal/domain"
)

// Stats captures performance characteristics of an operation.
type Stats struct {
	Draws    int
	Duration time.Duration
}

// RandomSource yields uniform ints in [0, n). *math/rand/v2.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// Generator builds a structurally valid grid. It never fails.
type Generator interface {
	Grid(src RandomSource) (domain.Grid, Stats)
}

// Validator checks a grid against every ticket rule.
type Validator interface {
	Validate(ctx context.Context, g *domain.Grid) (ok bool, violations []domain.Violation, err error)
	ValidateRows(ctx context.Context, rows [][]*int) (ok bool, violations []domain.Violation, err error)
}

// Storage persists and retrieves tickets.
type Storage interface {
	Save(ctx context.Context, t *domain.Ticket) error
	Load(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.TicketMeta, error)
}
