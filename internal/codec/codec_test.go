package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svw.info/tambola/internal/domain"
)

func grid() domain.Grid {
	var g domain.Grid
	g[0][0] = domain.Number(3)
	g[1][4] = domain.Number(47)
	g[2][8] = domain.Number(90)
	return g
}

func TestGridCBORDeterministic(t *testing.T) {
	g := grid()
	a, err := EncodeGrid(&g)
	require.NoError(t, err)
	b, err := EncodeGrid(&g)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	back, err := DecodeGrid(a)
	require.NoError(t, err)
	assert.Equal(t, g, back)
}

func TestDecodeGridRejectsShape(t *testing.T) {
	data, err := Marshal([][]*int{{nil}})
	require.NoError(t, err)
	_, err = DecodeGrid(data)
	assert.ErrorIs(t, err, domain.ErrShape)

	_, err = DecodeGrid([]byte{0xff})
	assert.Error(t, err)
}

const rowsJSON = `[[3,null,null,null,null,null,null,null,null],
	[null,null,null,null,47,null,null,null,null],
	[null,null,null,null,null,null,null,null,90]]`

func TestDecodeTicketCanonical(t *testing.T) {
	tk, err := DecodeTicket([]byte(`{"id":"t-1","numbers":` + rowsJSON + `,"struckNumbers":[47,3],"isWinner":true}`))
	require.NoError(t, err)
	assert.Equal(t, "t-1", tk.ID)
	assert.Equal(t, grid(), tk.Grid)
	assert.Equal(t, []int{3, 47}, tk.Struck)
	assert.True(t, tk.IsWinner)
}

func TestDecodeTicketLegacyPlayer(t *testing.T) {
	tk, err := DecodeTicket([]byte(`{"ticket_id":"legacy","grid":` + rowsJSON + `,"strikes":{"2-8":true,"1-4":false,"0-0":true}}`))
	require.NoError(t, err)
	assert.Equal(t, "legacy", tk.ID)
	assert.Equal(t, []int{3, 90}, tk.Struck)
}

func TestDecodeTicketErrors(t *testing.T) {
	_, err := DecodeTicket([]byte(`[1,2,3]`))
	assert.Error(t, err)

	_, err = DecodeTicket([]byte(`{"id":"x"}`))
	assert.ErrorIs(t, err, ErrNoGrid)

	_, err = DecodeTicket([]byte(`{"grid":[[1]]}`))
	assert.ErrorIs(t, err, domain.ErrShape)

	for _, key := range []string{"x", "0-1", "3-0", "0-9", "-1-0", "a-b", "47x", "12"} {
		_, err = DecodeTicket([]byte(`{"grid":` + rowsJSON + `,"strikes":{"` + key + `":true}}`))
		assert.ErrorIs(t, err, ErrStrikeKey, key)
	}
}

func TestDecodeTicketNumericStrikeKeys(t *testing.T) {
	tk, err := DecodeTicket([]byte(`{"ticket_id":"legacy","grid":` + rowsJSON + `,"strikes":{"47":true,"1-4":true}}`))
	require.NoError(t, err)
	assert.Equal(t, []int{47}, tk.Struck)
}
