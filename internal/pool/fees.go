// internal/pool/fees.go
package pool

// Fees is the pool's fee schedule: four numerator/denominator pairs.
// A zero denominator means the fee is disabled and must never be used
// as a divisor.
type Fees struct {
	SwapFeeNumerator            uint64
	SwapFeeDenominator          uint64
	OwnerTradeFeeNumerator      uint64
	OwnerTradeFeeDenominator    uint64
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64
	HostFeeNumerator            uint64
	HostFeeDenominator          uint64
}

// SwapFee returns the swap fee charged on amount, zero when disabled.
func (f Fees) SwapFee(amount uint64) uint64 {
	return applyFee(amount, f.SwapFeeNumerator, f.SwapFeeDenominator)
}

// OwnerWithdrawFee returns the withdraw fee charged on amount.
func (f Fees) OwnerWithdrawFee(amount uint64) uint64 {
	return applyFee(amount, f.OwnerWithdrawFeeNumerator, f.OwnerWithdrawFeeDenominator)
}

func applyFee(amount, numerator, denominator uint64) uint64 {
	if denominator == 0 || numerator == 0 {
		return 0
	}
	return amount * numerator / denominator
}

// SwapFeePercent returns the swap fee as a percentage for display.
func (f Fees) SwapFeePercent() float64 {
	if f.SwapFeeDenominator == 0 {
		return 0
	}
	return float64(f.SwapFeeNumerator) / float64(f.SwapFeeDenominator) * 100.0
}
