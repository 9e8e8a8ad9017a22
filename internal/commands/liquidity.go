// internal/commands/liquidity.go
package commands

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/hydraswap-io/hydra-go/internal/pool"
)

// AddLiquidityParams are the user-entered deposit inputs, amounts in
// smallest units of the respective tokens.
type AddLiquidityParams struct {
	TokenXAmount uint64
	TokenYAmount uint64
	SlippageBps  uint64
}

// RemoveLiquidityParams selects what portion of the caller's LP balance
// to burn, in basis points (10000 = everything).
type RemoveLiquidityParams struct {
	PercentBps uint64
}

// AddLiquidity deposits both tokens into the pool and submits a single
// add-liquidity transaction. For the first deposit into an uninitialized
// pool there is no supply to price against, so no LP estimate is made
// and the minimum-LP guard is zero.
func (e *Executor) AddLiquidity(ctx context.Context, view pool.PoolView, p AddLiquidityParams) (solana.Signature, error) {
	if err := validateCommon(view, p.SlippageBps); err != nil {
		return solana.Signature{}, err
	}
	if p.TokenXAmount == 0 || p.TokenYAmount == 0 {
		return solana.Signature{}, fmt.Errorf("both deposit amounts must be positive")
	}

	var minimumLpOut uint64
	if view.IsInitialized {
		if view.LpMint == nil || view.TokenXVault == nil {
			return solana.Signature{}, fmt.Errorf("pool state unavailable")
		}
		vaultX := view.TokenXVault.Data.Amount
		if vaultX == 0 {
			return solana.Signature{}, fmt.Errorf("pool has no token liquidity to price against")
		}
		expectedLp := proRataShare(view.LpMint.Data.Supply, p.TokenXAmount, vaultX)
		minimumLpOut = MinimumAmountOut(expectedLp, p.SlippageBps)

		e.logger.Debug("Priced liquidity deposit",
			zap.Uint64("lp_supply", view.LpMint.Data.Supply),
			zap.Uint64("expected_lp", expectedLp),
			zap.Uint64("minimum_lp", minimumLpOut))
	}

	params, err := e.liquidityParams(view)
	if err != nil {
		return solana.Signature{}, err
	}

	e.logger.Info("Submitting add liquidity",
		zap.String("pool_state", params.PoolState.String()),
		zap.Uint64("token_x_amount", p.TokenXAmount),
		zap.Uint64("token_y_amount", p.TokenYAmount),
		zap.Uint64("minimum_lp_out", minimumLpOut),
		zap.Bool("first_deposit", !view.IsInitialized))

	instruction := newAddLiquidityInstruction(params, p.TokenXAmount, p.TokenYAmount, minimumLpOut)
	return e.submit(ctx, instruction)
}

// RemoveLiquidity burns the selected share of the caller's LP balance
// and submits a single remove-liquidity transaction.
func (e *Executor) RemoveLiquidity(ctx context.Context, view pool.PoolView, p RemoveLiquidityParams) (solana.Signature, error) {
	if !view.IsValid {
		return solana.Signature{}, fmt.Errorf("pool view is not valid: both assets must be selected")
	}
	if p.PercentBps == 0 || p.PercentBps > bpsDenominator {
		return solana.Signature{}, fmt.Errorf("percent must be between 1 and %d basis points", bpsDenominator)
	}
	if !view.IsInitialized {
		return solana.Signature{}, ErrPoolNotInitialized
	}
	if view.UserLpToken == nil {
		return solana.Signature{}, fmt.Errorf("no LP token balance to withdraw")
	}

	lpAmountBurn := proRataShare(view.UserLpToken.Data.Amount, p.PercentBps, bpsDenominator)
	if lpAmountBurn == 0 {
		return solana.Signature{}, fmt.Errorf("no LP token balance to withdraw")
	}

	params, err := e.liquidityParams(view)
	if err != nil {
		return solana.Signature{}, err
	}

	e.logger.Info("Submitting remove liquidity",
		zap.String("pool_state", params.PoolState.String()),
		zap.Uint64("percent_bps", p.PercentBps),
		zap.Uint64("lp_amount_burn", lpAmountBurn))

	instruction := newRemoveLiquidityInstruction(params, lpAmountBurn)
	return e.submit(ctx, instruction)
}

// liquidityParams assembles the shared account set of the liquidity
// instructions from a view.
func (e *Executor) liquidityParams(view pool.PoolView) (*liquidityInstructionParams, error) {
	poolStateKey, _, err := pool.PoolStateKey(e.programID, view.TokenXMint, view.TokenYMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive pool state address: %w", err)
	}
	vaultX, err := pool.TokenVaultKey(e.programID, view.TokenXMint, view.LpTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token vault address: %w", err)
	}
	vaultY, err := pool.TokenVaultKey(e.programID, view.TokenYMint, view.LpTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token vault address: %w", err)
	}
	lpVault, err := pool.LpTokenVaultKey(e.programID, view.LpTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive lp vault address: %w", err)
	}
	userX, err := e.wallet.GetATA(view.TokenXMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user token account: %w", err)
	}
	userY, err := e.wallet.GetATA(view.TokenYMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user token account: %w", err)
	}
	userLp, err := e.wallet.GetATA(view.LpTokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user lp account: %w", err)
	}

	return &liquidityInstructionParams{
		ProgramID:    e.programID,
		User:         e.wallet.PublicKey,
		PoolState:    poolStateKey,
		LpTokenMint:  view.LpTokenMint,
		UserTokenX:   userX,
		UserTokenY:   userY,
		UserLpToken:  userLp,
		TokenXVault:  vaultX,
		TokenYVault:  vaultY,
		LpTokenVault: lpVault,
	}, nil
}
