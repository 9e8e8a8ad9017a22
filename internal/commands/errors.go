// internal/commands/errors.go
package commands

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrAssetNotInPool reports that a user-selected asset matches
	// neither side of the resolved pool.
	ErrAssetNotInPool = errors.New("asset not in pool")

	// ErrPoolNotInitialized reports that an operation needs an existing
	// pool state account.
	ErrPoolNotInitialized = errors.New("pool not initialized")
)

// Program error codes surfaced in transport error text.
const (
	SlippageExceededCode    = "0x1774"
	SlippageExceededCodeInt = 6004
)

// IsSlippageExceeded reports whether err is the on-chain slippage guard
// rejection. The error itself is never rewritten; the guard on-chain is
// authoritative and its text propagates verbatim.
func IsSlippageExceeded(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "ExceededSlippage") ||
		strings.Contains(err.Error(), "Slippage Amount Exceeded") ||
		strings.Contains(err.Error(), SlippageExceededCode) ||
		strings.Contains(err.Error(), strconv.Itoa(SlippageExceededCodeInt)))
}
