package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"svw.info/tambola/internal/domain"
)

var (
	ErrInvalidTicket = errors.New("invalid ticket: missing ID")
	ErrNotFound      = errors.New("ticket not found")
)

// unassigned holds tickets issued outside any session.
const unassigned = "unassigned"

// FS stores one JSON file per ticket under <dir>/<session>/<id>.json.
type FS struct{ dir string }

func NewFS(dir string) *FS { return &FS{dir: dir} }

func sessionDir(session string) string {
	s := strings.TrimSpace(session)
	if s == "" || strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return unassigned
	}
	return s
}

func validID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

func (s *FS) pathFor(id, session string) string {
	return filepath.Join(s.dir, sessionDir(session), strings.TrimSpace(id)+".json")
}

// Save writes t atomically into its session folder and drops any other copy
// of the same ID, so a re-sessioned or legacy ticket has one file.
func (s *FS) Save(ctx context.Context, t *domain.Ticket) error {
	if t == nil || !validID(t.ID) {
		return ErrInvalidTicket
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	// Ensure directory ./data/{session} exists
	target := s.pathFor(t.ID, t.SessionID)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(target), ".ticket-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	for _, c := range s.candidates(strings.TrimSpace(t.ID)) {
		if c.path == target {
			continue
		}
		if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale copy %s: %w", c.path, err)
		}
	}
	return nil
}

type candidate struct {
	path    string
	session string
}

// candidates lists every place id may live: session folders first, the
// legacy flat layout last.
func (s *FS) candidates(id string) []candidate {
	var out []candidate
	if ents, err := os.ReadDir(s.dir); err == nil {
		for _, e := range ents {
			if e.IsDir() {
				out = append(out, candidate{filepath.Join(s.dir, e.Name(), id+".json"), e.Name()})
			}
		}
	}
	return append(out, candidate{path: filepath.Join(s.dir, id+".json")}) // legacy flat layout
}

func (s *FS) Load(ctx context.Context, id string) (*domain.Ticket, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	for _, c := range s.candidates(id) {
		data, err := os.ReadFile(c.path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var out domain.Ticket
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.path, err)
		}
		// If session missing, infer from the folder we loaded from
		if out.SessionID == "" && c.session != "" && c.session != unassigned {
			out.SessionID = c.session
		}
		return &out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}

func (s *FS) List(ctx context.Context) ([]domain.TicketMeta, error) {
	dirs := []string{s.dir}
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	for _, e := range ents {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(s.dir, e.Name()))
		}
	}

	var out []domain.TicketMeta
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files, err := os.ReadDir(d)
		if err != nil {
			return nil, err
		}
		for _, e := range files {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(d, name))
			if err != nil {
				continue
			}
			var t domain.Ticket
			if err := json.Unmarshal(data, &t); err != nil || t.ID == "" {
				continue
			}
			out = append(out, t.Meta())
		}
	}
	return out, nil
}
