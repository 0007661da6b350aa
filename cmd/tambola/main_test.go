package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/tambola/internal/domain"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateJSON(t *testing.T) {
	out, err := run(t, "", "generate", "-n", "2", "--seed", "17", "--json")
	require.NoError(t, err)
	var tickets []domain.Ticket
	require.NoError(t, json.Unmarshal([]byte(out), &tickets))
	require.Len(t, tickets, 2)
	assert.Equal(t, int64(17), tickets[0].Seed)
	assert.Equal(t, int64(18), tickets[1].Seed)
}

func TestGenerateTable(t *testing.T) {
	out, err := run(t, "", "generate", "--seed", "3", "--strategy", "repair")
	require.NoError(t, err)
	assert.Contains(t, out, "Ticket ")
}

func TestGenerateRejectsFlags(t *testing.T) {
	_, err := run(t, "", "generate", "--strategy", "nope")
	assert.Error(t, err)
	_, err = run(t, "", "generate", "-n", "0")
	assert.Error(t, err)
}

func TestValidateRoundTrip(t *testing.T) {
	out, err := run(t, "", "generate", "--seed", "5", "--json")
	require.NoError(t, err)
	var tickets []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &tickets))

	path := filepath.Join(t.TempDir(), "t.json")
	require.NoError(t, os.WriteFile(path, tickets[0], 0o644))
	out, err = run(t, "", "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestValidateReportsViolations(t *testing.T) {
	in := `{"ticket_id":"x","grid":[[1,null,null,null,null,null,null,null,null],
		[null,null,null,null,null,null,null,null,null],
		[null,null,null,null,null,null,null,null,null]]}`
	out, err := run(t, in, "validate", "-")
	assert.ErrorIs(t, err, errInvalidTicket)
	assert.Contains(t, out, "row_count")
	assert.Contains(t, out, "column_empty")
}
