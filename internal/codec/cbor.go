package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"svw.info/tambola/internal/domain"
)

// encMode uses Core Deterministic Encoding so an unchanged grid always
// stores as the same bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// EncodeGrid stores g as an array of rows, null for blanks.
func EncodeGrid(g *domain.Grid) ([]byte, error) {
	return Marshal(g.RowsOf())
}

// DecodeGrid reverses EncodeGrid, rejecting any other shape.
func DecodeGrid(data []byte) (domain.Grid, error) {
	var rows [][]*int
	if err := Unmarshal(data, &rows); err != nil {
		return domain.Grid{}, fmt.Errorf("decode grid: %w", err)
	}
	g, err := domain.GridFromRows(rows)
	if err != nil {
		return domain.Grid{}, fmt.Errorf("decode grid: %w", err)
	}
	return g, nil
}
