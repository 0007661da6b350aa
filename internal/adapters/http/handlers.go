package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"svw.info/tambola/internal/domain"
	"svw.info/tambola/internal/infrastructure/storage"
	"svw.info/tambola/internal/usecase"
)

type Handler struct {
	UC *usecase.Service
}

func New(uc *usecase.Service) *Handler { return &Handler{UC: uc} }

// Routes returns the API router, to be mounted at /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleGenerate)
		r.Post("/validate", h.handleValidate)
		r.Get("/{id}", h.handleLoad)
		r.Post("/{id}/strike", h.handleStrike)
	})
	return r
}

type errorResp struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidCount),
		errors.Is(err, domain.ErrNotOnTicket),
		errors.Is(err, storage.ErrInvalidTicket):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyStruck),
		errors.Is(err, domain.ErrNotStruck):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body; an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ---- Generate ----

type generateReq struct {
	Count     int    `json:"count,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	PlayerID  string `json:"playerId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Save      bool   `json:"save,omitempty"`
}

type generateResp struct {
	Tickets    []*domain.Ticket `json:"tickets"`
	Seed       int64            `json:"seed"`
	DurationMs int64            `json:"durationMs"`
	Draws      int              `json:"draws"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ts, st, err := h.UC.GenerateBatch(r.Context(), usecase.IssueRequest{
		Seed:      seed,
		PlayerID:  req.PlayerID,
		SessionID: req.SessionID,
		Save:      req.Save,
	}, req.Count)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generateResp{
		Tickets:    ts,
		Seed:       seed,
		DurationMs: st.Duration.Milliseconds(),
		Draws:      st.Draws,
	})
}

// ---- Validate ----

type validateReq struct {
	Grid [][]*int `json:"grid"`
}
type validateResp struct {
	OK         bool               `json:"ok"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	ok, conf, err := h.UC.ValidateRows(r.Context(), req.Grid)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, validateResp{OK: ok, Violations: conf})
}

// ---- Load / List / Strike ----

type ticketResp struct {
	Ticket *domain.Ticket `json:"ticket"`
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	t, err := h.UC.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ticketResp{Ticket: t})
}

type listResp struct {
	Tickets []domain.TicketMeta `json:"tickets"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ts, err := h.UC.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if ts == nil {
		ts = []domain.TicketMeta{}
	}
	writeJSON(w, http.StatusOK, listResp{Tickets: ts})
}

// strikeReq marks a number; "strike": false clears it instead.
type strikeReq struct {
	Number int   `json:"number"`
	Strike *bool `json:"strike"`
}

func (h *Handler) handleStrike(w http.ResponseWriter, r *http.Request) {
	var req strikeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	mark := h.UC.Strike
	if req.Strike != nil && !*req.Strike {
		mark = h.UC.Unstrike
	}
	t, err := mark(r.Context(), chi.URLParam(r, "id"), req.Number)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ticketResp{Ticket: t})
}

// statusWriter captures HTTP status and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// RequestLogger logs method, path, status, bytes, and duration.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"dur", time.Since(start).Round(time.Millisecond),
			)
		})
	}
}
