// internal/hydramath/math.go
//
// Boundary to the swap-curve module. The curve itself is an external
// compiled artifact; this package only fixes its calling contract.
package hydramath

import "errors"

// Direction selects which side of the pool the input amount enters.
type Direction int

const (
	DirectionXToY Direction = iota
	DirectionYToX
)

// SwapInput carries the full curve input set.
type SwapInput struct {
	XAmount          uint64
	XDecimals        uint8
	YAmount          uint64
	YDecimals        uint8
	CurveParam       uint64
	OraclePrice      uint64
	OraclePriceScale uint8
	FeeNumerator     uint64
	FeeDenominator   uint64
	InputAmount      uint64
	Direction        Direction
}

// SwapResult is the curve's five numeric outputs.
type SwapResult struct {
	XNew   uint64
	YNew   uint64
	DeltaX uint64
	DeltaY uint64
	Fees   uint64
}

// Calculator computes swap outcomes. Implementations wrap the external
// curve module.
type Calculator interface {
	ComputeSwap(in SwapInput) (SwapResult, error)
}

// ErrNoQuote reports that a quote could not be produced for the input.
var ErrNoQuote = errors.New("no quote available")

// FixedQuote is a calculator returning a predetermined output amount.
// Used in tests and by callers that obtained a quote elsewhere.
type FixedQuote struct {
	Out uint64
	Fee uint64
}

// ComputeSwap returns the fixed output on the appropriate delta.
func (q FixedQuote) ComputeSwap(in SwapInput) (SwapResult, error) {
	if in.InputAmount == 0 {
		return SwapResult{}, ErrNoQuote
	}
	res := SwapResult{Fees: q.Fee}
	switch in.Direction {
	case DirectionXToY:
		res.XNew = in.XAmount + in.InputAmount
		res.DeltaX = in.InputAmount
		res.DeltaY = q.Out
		res.YNew = in.YAmount - q.Out
	default:
		res.YNew = in.YAmount + in.InputAmount
		res.DeltaY = in.InputAmount
		res.DeltaX = q.Out
		res.XNew = in.XAmount - q.Out
	}
	return res, nil
}
