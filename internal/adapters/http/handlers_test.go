package httpadapter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/tambola/internal/domain"
	"svw.info/tambola/internal/generator"
	"svw.info/tambola/internal/infrastructure/storage"
	"svw.info/tambola/internal/usecase"
	"svw.info/tambola/internal/validator"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	uc := usecase.NewService(generator.NewJointGenerator(), validator.New(), storage.NewFS(t.TempDir()), generator.NewSource, nil)
	r := chi.NewRouter()
	r.Mount("/api", New(uc).Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGenerateEndpoint(t *testing.T) {
	srv := newServer(t)
	var resp generateResp
	code := do(t, http.MethodPost, srv.URL+"/api/tickets/", `{"count":3,"seed":11,"sessionId":"s"}`, &resp)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Tickets, 3)
	assert.Equal(t, int64(11), resp.Seed)
	for _, tk := range resp.Tickets {
		assert.True(t, validator.Valid(&tk.Grid))
		assert.Equal(t, "s", tk.SessionID)
	}
}

func TestGenerateEmptyBodyDefaultsToOne(t *testing.T) {
	srv := newServer(t)
	var resp generateResp
	code := do(t, http.MethodPost, srv.URL+"/api/tickets/", "", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Tickets, 1)
	assert.NotZero(t, resp.Seed)
}

func TestGenerateRejectsCount(t *testing.T) {
	srv := newServer(t)
	var e errorResp
	code := do(t, http.MethodPost, srv.URL+"/api/tickets/", `{"count":101}`, &e)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, e.Error, "invalid ticket count")

	code = do(t, http.MethodPost, srv.URL+"/api/tickets/", `{nope`, &e)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestValidateEndpoint(t *testing.T) {
	srv := newServer(t)
	grid, _ := generator.NewJointGenerator().Grid(generator.NewSource(4))
	body, err := json.Marshal(map[string]any{"grid": grid})
	require.NoError(t, err)

	var ok validateResp
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/tickets/validate", string(body), &ok))
	assert.True(t, ok.OK)

	var bad validateResp
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/tickets/validate", `{"grid":[[1,2]]}`, &bad))
	assert.False(t, bad.OK)
	require.NotEmpty(t, bad.Violations)
	assert.Equal(t, domain.ViolationShape, bad.Violations[0].Code)
}

func TestTicketLifecycle(t *testing.T) {
	srv := newServer(t)
	var gen generateResp
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/tickets/", `{"seed":3,"save":true}`, &gen))
	tk := gen.Tickets[0]

	var got ticketResp
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/tickets/"+tk.ID, "", &got))
	assert.Equal(t, tk.Grid, got.Ticket.Grid)

	n := tk.Grid.Numbers()[2]
	var struck ticketResp
	body := `{"number":` + itoa(n) + `}`
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/tickets/"+tk.ID+"/strike", body, &struck))
	assert.True(t, struck.Ticket.IsStruck(n))

	var e errorResp
	assert.Equal(t, http.StatusConflict, do(t, http.MethodPost, srv.URL+"/api/tickets/"+tk.ID+"/strike", body, &e))

	var list listResp
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/tickets/", "", &list))
	require.Len(t, list.Tickets, 1)
	assert.Equal(t, tk.ID, list.Tickets[0].ID)

	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/api/tickets/unknown", "", &e))
}

func TestStrikeNotOnTicket(t *testing.T) {
	srv := newServer(t)
	var gen generateResp
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/tickets/", `{"seed":3,"save":true}`, &gen))
	tk := gen.Tickets[0]
	for n := 1; n <= domain.MaxNumber; n++ {
		if !tk.Grid.Contains(n) {
			var e errorResp
			code := do(t, http.MethodPost, srv.URL+"/api/tickets/"+tk.ID+"/strike", `{"number":`+itoa(n)+`}`, &e)
			assert.Equal(t, http.StatusBadRequest, code)
			return
		}
	}
}

func TestStrikeAndUnstrike(t *testing.T) {
	srv := newServer(t)
	var gen generateResp
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/tickets/", `{"seed":4,"save":true}`, &gen))
	tk := gen.Tickets[0]
	n := itoa(tk.Grid.Numbers()[0])
	url := srv.URL + "/api/tickets/" + tk.ID + "/strike"

	var got ticketResp
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, url, `{"number":`+n+`}`, &got))
	assert.Len(t, got.Ticket.Struck, 1)

	got = ticketResp{}
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, url, `{"number":`+n+`,"strike":false}`, &got))
	assert.Empty(t, got.Ticket.Struck)

	var e errorResp
	assert.Equal(t, http.StatusConflict, do(t, http.MethodPost, url, `{"number":`+n+`,"strike":false}`, &e))
}

func TestListEmpty(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/api/tickets/")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"tickets":[]}`, string(b))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Contains(t, buf.String(), "status=418")
	assert.Contains(t, buf.String(), "bytes=2")
	assert.Contains(t, buf.String(), "path=/x")
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
