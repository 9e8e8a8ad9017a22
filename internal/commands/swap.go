// internal/commands/swap.go
package commands

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/hydraswap-io/hydra-go/internal/hydramath"
	"github.com/hydraswap-io/hydra-go/internal/pool"
	"github.com/hydraswap-io/hydra-go/internal/transaction"
	"github.com/hydraswap-io/hydra-go/internal/wallet"
)

// SolanaClient is the transport surface the command builders need.
type SolanaClient interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Executor turns a pool view plus user-entered amounts into exactly one
// submitted transaction per invocation. It never retries; transport and
// program errors propagate verbatim.
type Executor struct {
	client    SolanaClient
	wallet    *wallet.Wallet
	calc      hydramath.Calculator
	programID solana.PublicKey
	logger    *zap.Logger
}

// NewExecutor creates a command executor.
func NewExecutor(client SolanaClient, w *wallet.Wallet, calc hydramath.Calculator, programID solana.PublicKey, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		client:    client,
		wallet:    w,
		calc:      calc,
		programID: programID,
		logger:    logger.Named("commands"),
	}
}

// SwapParams are the user-entered swap inputs, amounts in smallest
// units.
type SwapParams struct {
	FromMint     solana.PublicKey
	ToMint       solana.PublicKey
	FromDecimals uint8
	ToDecimals   uint8
	AmountIn     uint64
	SlippageBps  uint64
}

// Swap quotes the trade against the current view, derives the slippage
// guard, and submits a single swap transaction.
func (e *Executor) Swap(ctx context.Context, view pool.PoolView, p SwapParams) (solana.Signature, error) {
	if err := validateCommon(view, p.SlippageBps); err != nil {
		return solana.Signature{}, err
	}
	if p.AmountIn == 0 {
		return solana.Signature{}, fmt.Errorf("swap amount must be positive")
	}

	// The selected "from" asset decides which instruction slot it
	// occupies; a selection matching neither canonical side is a hard
	// error before anything is submitted.
	var direction hydramath.Direction
	switch {
	case p.FromMint.Equals(view.TokenXMint) && p.ToMint.Equals(view.TokenYMint):
		direction = hydramath.DirectionXToY
	case p.FromMint.Equals(view.TokenYMint) && p.ToMint.Equals(view.TokenXMint):
		direction = hydramath.DirectionYToX
	default:
		return solana.Signature{}, ErrAssetNotInPool
	}

	if !view.IsInitialized || view.PoolState == nil {
		return solana.Signature{}, ErrPoolNotInitialized
	}
	if view.TokenXVault == nil || view.TokenYVault == nil {
		return solana.Signature{}, fmt.Errorf("vault state unavailable")
	}

	in := hydramath.SwapInput{
		XAmount:        view.TokenXVault.Data.Amount,
		YAmount:        view.TokenYVault.Data.Amount,
		FeeNumerator:   view.PoolState.Data.Fees.SwapFeeNumerator,
		FeeDenominator: view.PoolState.Data.Fees.SwapFeeDenominator,
		InputAmount:    p.AmountIn,
		Direction:      direction,
	}
	if direction == hydramath.DirectionXToY {
		in.XDecimals, in.YDecimals = p.FromDecimals, p.ToDecimals
	} else {
		in.XDecimals, in.YDecimals = p.ToDecimals, p.FromDecimals
	}

	quote, err := e.calc.ComputeSwap(in)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to compute swap: %w", err)
	}

	amountOut := quote.DeltaY
	if direction == hydramath.DirectionYToX {
		amountOut = quote.DeltaX
	}
	minimumOut := MinimumAmountOut(amountOut, p.SlippageBps)

	userFrom, err := e.wallet.GetATA(p.FromMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive source token account: %w", err)
	}
	userTo, err := e.wallet.GetATA(p.ToMint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to derive destination token account: %w", err)
	}

	instruction := newSwapInstruction(&swapInstructionParams{
		ProgramID:        e.programID,
		User:             e.wallet.PublicKey,
		PoolState:        view.PoolState.Key,
		LpTokenMint:      view.LpTokenMint,
		UserFromAccount:  userFrom,
		UserToAccount:    userTo,
		TokenXVault:      view.TokenXVault.Key,
		TokenYVault:      view.TokenYVault.Key,
		AmountIn:         p.AmountIn,
		MinimumAmountOut: minimumOut,
	})

	e.logger.Info("Submitting swap",
		zap.String("from_mint", p.FromMint.String()),
		zap.String("to_mint", p.ToMint.String()),
		zap.Uint64("amount_in", p.AmountIn),
		zap.Uint64("expected_out", amountOut),
		zap.Uint64("minimum_out", minimumOut),
		zap.Uint64("slippage_bps", p.SlippageBps))

	return e.submit(ctx, instruction)
}

// submit builds, signs and sends exactly one transaction.
func (e *Executor) submit(ctx context.Context, instruction solana.Instruction) (solana.Signature, error) {
	tx, err := transaction.NewBuilder().
		AddInstruction(instruction).
		AddSigner(e.wallet.PrivateKey).
		Build(ctx, e.client)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := e.client.SendTransaction(ctx, tx)
	if err != nil {
		if IsSlippageExceeded(err) {
			e.logger.Warn("Slippage guard rejected transaction", zap.Error(err))
		}
		return solana.Signature{}, err
	}

	e.logger.Info("Transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}

func validateCommon(view pool.PoolView, slippageBps uint64) error {
	if !view.IsValid {
		return fmt.Errorf("pool view is not valid: both assets must be selected")
	}
	if slippageBps > bpsDenominator {
		return fmt.Errorf("slippage must be between 0 and %d basis points", bpsDenominator)
	}
	return nil
}
