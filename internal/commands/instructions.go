// internal/commands/instructions.go
package commands

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// instructionDiscriminator computes the anchor instruction sighash.
func instructionDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

var (
	swapDiscriminator            = instructionDiscriminator("swap")
	addLiquidityDiscriminator    = instructionDiscriminator("add_liquidity")
	removeLiquidityDiscriminator = instructionDiscriminator("remove_liquidity")
)

const bpsDenominator = 10000

// MinimumAmountOut applies the slippage tolerance to an expected output:
// out * (10000 - slippageBps) / 10000, floor division in smallest units.
// This is a client-side advisory bound; the on-chain guard is
// authoritative.
func MinimumAmountOut(amount, slippageBps uint64) uint64 {
	if slippageBps >= bpsDenominator {
		return 0
	}
	out := new(big.Int).Mul(
		new(big.Int).SetUint64(amount),
		new(big.Int).SetUint64(bpsDenominator-slippageBps),
	)
	return out.Div(out, big.NewInt(bpsDenominator)).Uint64()
}

// proRataShare computes total * part / whole in smallest units without
// intermediate overflow.
func proRataShare(total, part, whole uint64) uint64 {
	if whole == 0 {
		return 0
	}
	share := new(big.Int).Mul(
		new(big.Int).SetUint64(total),
		new(big.Int).SetUint64(part),
	)
	return share.Div(share, new(big.Int).SetUint64(whole)).Uint64()
}

type swapInstructionParams struct {
	ProgramID        solana.PublicKey
	User             solana.PublicKey
	PoolState        solana.PublicKey
	LpTokenMint      solana.PublicKey
	UserFromAccount  solana.PublicKey
	UserToAccount    solana.PublicKey
	TokenXVault      solana.PublicKey
	TokenYVault      solana.PublicKey
	AmountIn         uint64
	MinimumAmountOut uint64
}

// newSwapInstruction assembles the swap instruction: sighash plus the
// amount-in and minimum-out guard arguments.
func newSwapInstruction(p *swapInstructionParams) solana.Instruction {
	data := make([]byte, 8+8+8)
	copy(data[0:8], swapDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], p.AmountIn)
	binary.LittleEndian.PutUint64(data[16:24], p.MinimumAmountOut)

	accountMetas := []*solana.AccountMeta{
		solana.NewAccountMeta(p.User, true, true),
		solana.NewAccountMeta(p.PoolState, true, false),
		solana.NewAccountMeta(p.LpTokenMint, true, false),
		solana.NewAccountMeta(p.UserFromAccount, true, false),
		solana.NewAccountMeta(p.UserToAccount, true, false),
		solana.NewAccountMeta(p.TokenXVault, true, false),
		solana.NewAccountMeta(p.TokenYVault, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}

	return solana.NewInstruction(p.ProgramID, accountMetas, data)
}

type liquidityInstructionParams struct {
	ProgramID    solana.PublicKey
	User         solana.PublicKey
	PoolState    solana.PublicKey
	LpTokenMint  solana.PublicKey
	UserTokenX   solana.PublicKey
	UserTokenY   solana.PublicKey
	UserLpToken  solana.PublicKey
	TokenXVault  solana.PublicKey
	TokenYVault  solana.PublicKey
	LpTokenVault solana.PublicKey
}

func liquidityAccountMetas(p *liquidityInstructionParams) []*solana.AccountMeta {
	return []*solana.AccountMeta{
		solana.NewAccountMeta(p.User, true, true),
		solana.NewAccountMeta(p.PoolState, true, false),
		solana.NewAccountMeta(p.LpTokenMint, true, false),
		solana.NewAccountMeta(p.UserTokenX, true, false),
		solana.NewAccountMeta(p.UserTokenY, true, false),
		solana.NewAccountMeta(p.UserLpToken, true, false),
		solana.NewAccountMeta(p.TokenXVault, true, false),
		solana.NewAccountMeta(p.TokenYVault, true, false),
		solana.NewAccountMeta(p.LpTokenVault, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
}

// newAddLiquidityInstruction assembles the add-liquidity instruction
// with the two max deposit amounts and the minimum expected LP tokens.
func newAddLiquidityInstruction(p *liquidityInstructionParams, tokenXMax, tokenYMax, minimumLpOut uint64) solana.Instruction {
	data := make([]byte, 8+8+8+8)
	copy(data[0:8], addLiquidityDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], tokenXMax)
	binary.LittleEndian.PutUint64(data[16:24], tokenYMax)
	binary.LittleEndian.PutUint64(data[24:32], minimumLpOut)

	return solana.NewInstruction(p.ProgramID, liquidityAccountMetas(p), data)
}

// newRemoveLiquidityInstruction assembles the remove-liquidity
// instruction burning the given LP token amount.
func newRemoveLiquidityInstruction(p *liquidityInstructionParams, lpAmountBurn uint64) solana.Instruction {
	data := make([]byte, 8+8)
	copy(data[0:8], removeLiquidityDiscriminator)
	binary.LittleEndian.PutUint64(data[8:16], lpAmountBurn)

	return solana.NewInstruction(p.ProgramID, liquidityAccountMetas(p), data)
}
