// internal/flow/flows.go
package flow

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/hydraswap-io/hydra-go/internal/assets"
	"github.com/hydraswap-io/hydra-go/internal/commands"
	"github.com/hydraswap-io/hydra-go/internal/pool"
)

// TokenField is one side of a user-entered token input: the selected
// asset and the amount in its smallest units.
type TokenField struct {
	Asset  assets.Asset
	Amount uint64
}

// ViewProvider supplies the current merged pool view at submission
// time.
type ViewProvider func(ctx context.Context) (pool.PoolView, error)

// Flow is the shared core of the transaction flows: one state machine
// plus the async command dispatch discipline. The first submit moves
// edit to preview; the second moves preview to process and fires the
// command. The command's outcome is converted to exactly one SUCCESS or
// FAIL event.
type Flow struct {
	machine *Machine
	logger  *zap.Logger
	notify  func(State)
}

func newFlow(logger *zap.Logger, name string) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		machine: NewMachine(),
		logger:  logger.Named(name),
	}
}

// SetNotify registers a callback invoked after every async state
// settlement (SUCCESS or FAIL).
func (f *Flow) SetNotify(fn func(State)) {
	f.notify = fn
}

// State returns the flow's current state.
func (f *Flow) State() State {
	return f.machine.State()
}

// LastError returns the retained failure message, non-empty only in the
// error state.
func (f *Flow) LastError() string {
	return f.machine.LastError()
}

// IsSubmitDisabled reports whether submission is currently rejected.
// While a transaction is in flight, and after it settles, the machine
// accepts no further SUBMIT until the user returns to edit.
func (f *Flow) IsSubmitDisabled() bool {
	state := f.machine.State()
	return state != StateEdit && state != StatePreview
}

// OnSendCancel dispatches CANCEL: back out of preview, or acknowledge a
// done or error outcome and return to edit.
func (f *Flow) OnSendCancel() error {
	_, err := f.machine.Dispatch(EventCancel, "")
	return err
}

// submit advances the machine one SUBMIT step and, on entry to process,
// runs the command asynchronously.
func (f *Flow) submit(ctx context.Context, run func(context.Context) error) error {
	next, err := f.machine.Dispatch(EventSubmit, "")
	if err != nil {
		return err
	}
	if next != StateProcess {
		return nil
	}

	go func() {
		outcome := EventSuccess
		message := ""
		if err := run(ctx); err != nil {
			outcome = EventFail
			message = err.Error()
			f.logger.Warn("Command failed", zap.Error(err))
		}
		settled, dispatchErr := f.machine.Dispatch(outcome, message)
		if dispatchErr != nil {
			f.logger.Error("Outcome event rejected", zap.Error(dispatchErr))
			return
		}
		if f.notify != nil {
			f.notify(settled)
		}
	}()
	return nil
}

// SwapFlow drives a token swap from user input to submission.
type SwapFlow struct {
	*Flow

	executor *commands.Executor
	view     ViewProvider

	From        TokenField
	To          TokenField
	SlippageBps uint64

	// Signature holds the submitted transaction signature once the flow
	// settles in done.
	Signature solana.Signature
}

// NewSwapFlow creates a swap flow in the edit state.
func NewSwapFlow(executor *commands.Executor, view ViewProvider, logger *zap.Logger) *SwapFlow {
	return &SwapFlow{
		Flow:     newFlow(logger, "swap_flow"),
		executor: executor,
		view:     view,
	}
}

// OnSendSubmit advances the flow: edit confirms the input, preview
// fires the swap.
func (f *SwapFlow) OnSendSubmit(ctx context.Context) error {
	return f.submit(ctx, f.execute)
}

func (f *SwapFlow) execute(ctx context.Context) error {
	view, err := f.view(ctx)
	if err != nil {
		return err
	}
	fromMint, err := f.From.Asset.Mint()
	if err != nil {
		return fmt.Errorf("invalid source asset: %w", err)
	}
	toMint, err := f.To.Asset.Mint()
	if err != nil {
		return fmt.Errorf("invalid destination asset: %w", err)
	}

	sig, err := f.executor.Swap(ctx, view, commands.SwapParams{
		FromMint:     fromMint,
		ToMint:       toMint,
		FromDecimals: f.From.Asset.Decimals,
		ToDecimals:   f.To.Asset.Decimals,
		AmountIn:     f.From.Amount,
		SlippageBps:  f.SlippageBps,
	})
	if err != nil {
		return err
	}
	f.Signature = sig
	return nil
}

// AddLiquidityFlow drives a two-sided deposit from user input to
// submission.
type AddLiquidityFlow struct {
	*Flow

	executor *commands.Executor
	view     ViewProvider

	TokenX      TokenField
	TokenY      TokenField
	SlippageBps uint64

	Signature solana.Signature
}

// NewAddLiquidityFlow creates an add-liquidity flow in the edit state.
func NewAddLiquidityFlow(executor *commands.Executor, view ViewProvider, logger *zap.Logger) *AddLiquidityFlow {
	return &AddLiquidityFlow{
		Flow:     newFlow(logger, "add_liquidity_flow"),
		executor: executor,
		view:     view,
	}
}

// OnSendSubmit advances the flow: edit confirms the input, preview
// fires the deposit.
func (f *AddLiquidityFlow) OnSendSubmit(ctx context.Context) error {
	return f.submit(ctx, f.execute)
}

func (f *AddLiquidityFlow) execute(ctx context.Context) error {
	view, err := f.view(ctx)
	if err != nil {
		return err
	}
	xMint, err := f.TokenX.Asset.Mint()
	if err != nil {
		return fmt.Errorf("invalid first asset: %w", err)
	}

	// The entered amounts follow the user's token order; the view is in
	// canonical order.
	amountX, amountY := f.TokenX.Amount, f.TokenY.Amount
	if xMint.Equals(view.TokenYMint) {
		amountX, amountY = amountY, amountX
	}

	sig, err := f.executor.AddLiquidity(ctx, view, commands.AddLiquidityParams{
		TokenXAmount: amountX,
		TokenYAmount: amountY,
		SlippageBps:  f.SlippageBps,
	})
	if err != nil {
		return err
	}
	f.Signature = sig
	return nil
}

// RemoveLiquidityFlow drives a proportional withdrawal from user input
// to submission.
type RemoveLiquidityFlow struct {
	*Flow

	executor *commands.Executor
	view     ViewProvider

	// PercentBps is the share of the LP balance to burn (10000 = all).
	PercentBps uint64

	Signature solana.Signature
}

// NewRemoveLiquidityFlow creates a remove-liquidity flow in the edit
// state.
func NewRemoveLiquidityFlow(executor *commands.Executor, view ViewProvider, logger *zap.Logger) *RemoveLiquidityFlow {
	return &RemoveLiquidityFlow{
		Flow:     newFlow(logger, "remove_liquidity_flow"),
		executor: executor,
		view:     view,
	}
}

// OnSendSubmit advances the flow: edit confirms the input, preview
// fires the withdrawal.
func (f *RemoveLiquidityFlow) OnSendSubmit(ctx context.Context) error {
	return f.submit(ctx, f.execute)
}

func (f *RemoveLiquidityFlow) execute(ctx context.Context) error {
	view, err := f.view(ctx)
	if err != nil {
		return err
	}
	sig, err := f.executor.RemoveLiquidity(ctx, view, commands.RemoveLiquidityParams{
		PercentBps: f.PercentBps,
	})
	if err != nil {
		return err
	}
	f.Signature = sig
	return nil
}
