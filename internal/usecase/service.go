package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"svw.info/tambola/internal/domain"
	"svw.info/tambola/internal/ports"
)

// DefaultMaxBatch caps tickets per generate call.
const DefaultMaxBatch = 100

var (
	ErrNotConfigured = errors.New("usecase dependency not configured")
	ErrInvalidCount  = errors.New("invalid ticket count")
	ErrCorruptTicket = errors.New("stored ticket breaks ticket rules")
)

// SourceFunc builds the random source for one ticket.
type SourceFunc func(seed int64) ports.RandomSource

type Service struct {
	Generator ports.Generator
	Validator ports.Validator
	Storage   ports.Storage
	NewSource SourceFunc
	MaxBatch  int
	Logger    *slog.Logger
}

func NewService(g ports.Generator, v ports.Validator, st ports.Storage, src SourceFunc, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{Generator: g, Validator: v, Storage: st, NewSource: src, MaxBatch: DefaultMaxBatch, Logger: logger}
}

// IssueRequest carries the collaborator identifiers attached to new tickets.
type IssueRequest struct {
	Seed      int64
	PlayerID  string
	SessionID string
	Save      bool
}

// Generate issues one ticket. A zero seed is replaced by the clock.
func (u *Service) Generate(ctx context.Context, req IssueRequest) (*domain.Ticket, ports.Stats, error) {
	if u.Generator == nil || u.NewSource == nil {
		return nil, ports.Stats{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, ports.Stats{}, err
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	t, st := u.issue(req.Seed, req)
	if req.Save {
		if err := u.Save(ctx, t); err != nil {
			return nil, st, err
		}
	}
	return t, st, nil
}

// GenerateBatch issues count tickets concurrently. Ticket i uses seed+i,
// so a batch is reproducible from its seed.
func (u *Service) GenerateBatch(ctx context.Context, req IssueRequest, count int) ([]*domain.Ticket, ports.Stats, error) {
	if u.Generator == nil || u.NewSource == nil {
		return nil, ports.Stats{}, ErrNotConfigured
	}
	limit := u.MaxBatch
	if limit <= 0 {
		limit = DefaultMaxBatch
	}
	if count < 1 || count > limit {
		return nil, ports.Stats{}, fmt.Errorf("%w: %d (must be 1..%d)", ErrInvalidCount, count, limit)
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	start := time.Now()
	out := make([]*domain.Ticket, count)
	draws := make([]int, count)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, st := u.issue(req.Seed+int64(i), req)
			out[i], draws[i] = t, st.Draws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, ports.Stats{}, err
	}
	if req.Save {
		for _, t := range out {
			if err := u.Save(ctx, t); err != nil {
				return nil, ports.Stats{}, err
			}
		}
	}
	total := 0
	for _, d := range draws {
		total += d
	}
	return out, ports.Stats{Draws: total, Duration: time.Since(start)}, nil
}

func (u *Service) issue(seed int64, req IssueRequest) (*domain.Ticket, ports.Stats) {
	grid, st := u.Generator.Grid(u.NewSource(seed))
	t := &domain.Ticket{
		ID:        uuid.NewString(),
		PlayerID:  req.PlayerID,
		SessionID: req.SessionID,
		Seed:      seed,
		Grid:      grid,
		Struck:    []int{},
		CreatedAt: time.Now().UnixNano(),
	}
	u.Logger.Debug("ticket issued", "id", t.ID, "seed", seed, "session", req.SessionID, "draws", st.Draws)
	return t, st
}

func (u *Service) Validate(ctx context.Context, g *domain.Grid) (bool, []domain.Violation, error) {
	if u.Validator == nil {
		return false, nil, ErrNotConfigured
	}
	return u.Validator.Validate(ctx, g)
}

func (u *Service) ValidateRows(ctx context.Context, rows [][]*int) (bool, []domain.Violation, error) {
	if u.Validator == nil {
		return false, nil, ErrNotConfigured
	}
	return u.Validator.ValidateRows(ctx, rows)
}

// Strike records a called number on a stored ticket.
func (u *Service) Strike(ctx context.Context, id string, n int) (*domain.Ticket, error) {
	return u.mark(ctx, id, n, (*domain.Ticket).Strike)
}

// Unstrike reverts a strike on a stored ticket.
func (u *Service) Unstrike(ctx context.Context, id string, n int) (*domain.Ticket, error) {
	return u.mark(ctx, id, n, (*domain.Ticket).Unstrike)
}

func (u *Service) mark(ctx context.Context, id string, n int, op func(*domain.Ticket, int) error) (*domain.Ticket, error) {
	t, err := u.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := op(t, n); err != nil {
		return nil, err
	}
	if err := u.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Persistence
func (u *Service) Save(ctx context.Context, t *domain.Ticket) error {
	if u.Storage == nil {
		return ErrNotConfigured
	}
	if err := u.Storage.Save(ctx, t); err != nil {
		u.Logger.Error("save ticket", "id", t.ID, "err", err)
		return err
	}
	return nil
}

// Load fetches a ticket and re-validates it; stored data is not trusted.
func (u *Service) Load(ctx context.Context, id string) (*domain.Ticket, error) {
	if u.Storage == nil {
		return nil, ErrNotConfigured
	}
	t, err := u.Storage.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Validator != nil {
		ok, conf, err := u.Validator.Validate(ctx, &t.Grid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrCorruptTicket, id, conf[0].Message)
		}
	}
	return t, nil
}

func (u *Service) List(ctx context.Context) ([]domain.TicketMeta, error) {
	if u.Storage == nil {
		return nil, ErrNotConfigured
	}
	return u.Storage.List(ctx)
}
