package domain

// ViolationCode names the ticket rule a grid breaks.
type ViolationCode string

const (
	ViolationShape       ViolationCode = "shape"        // not 3x9
	ViolationRange       ViolationCode = "range"        // number outside its column range
	ViolationRowCount    ViolationCode = "row_count"    // row without exactly 5 numbers
	ViolationColumnEmpty ViolationCode = "column_empty" // column with no numbers
	ViolationDuplicate   ViolationCode = "duplicate"    // number repeated in the grid
	ViolationUnsorted    ViolationCode = "unsorted"     // column not increasing downward
)

// Violation reports one broken rule. Row or Col is -1 when the rule is
// not tied to a single row or column.
type Violation struct {
	Code ViolationCode `json:"code"`
	CellCoord
	Value   int    `json:"value,omitempty"`
	Message string `json:"message"`
}

// Strategy selects the grid construction algorithm.
type Strategy int

const (
	StrategyJoint  Strategy = iota // single constraint pass
	StrategyRepair                 // per-row draw, then repair to a fixed point
)

func (s Strategy) String() string {
	if s == StrategyRepair {
		return "repair"
	}
	return "joint"
}
