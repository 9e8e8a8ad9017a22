// internal/flow/flows_test.go
package flow

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hydraswap-io/hydra-go/internal/assets"
	"github.com/hydraswap-io/hydra-go/internal/commands"
	"github.com/hydraswap-io/hydra-go/internal/hydramath"
	"github.com/hydraswap-io/hydra-go/internal/loader"
	"github.com/hydraswap-io/hydra-go/internal/pool"
	"github.com/hydraswap-io/hydra-go/internal/wallet"
)

type mockSolanaClient struct {
	mock.Mock
}

func (m *mockSolanaClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *mockSolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

// testSwapFlow wires a swap flow over an initialized in-memory pool
// view and the given transport outcome.
func testSwapFlow(t *testing.T, sendErr error) (*SwapFlow, chan State) {
	t.Helper()

	client := new(mockSolanaClient)
	client.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{1}, nil)
	client.On("SendTransaction", mock.Anything, mock.Anything).Return(solana.Signature{1}, sendErr)

	programID := solana.NewWallet().PublicKey()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	x, y := pool.SortMints(mintA, mintB)
	lpMint := solana.NewWallet().PublicKey()

	poolKey, _, err := pool.PoolStateKey(programID, x, y)
	require.NoError(t, err)
	vaultX, err := pool.TokenVaultKey(programID, x, lpMint)
	require.NoError(t, err)
	vaultY, err := pool.TokenVaultKey(programID, y, lpMint)
	require.NoError(t, err)

	view := pool.PoolView{
		TokenXMint:  x,
		TokenYMint:  y,
		LpTokenMint: lpMint,
		PoolState: &loader.Snapshot[pool.PoolState]{Key: poolKey, Data: pool.PoolState{
			TokenXMint: x, TokenYMint: y, LpTokenMint: lpMint,
			TokenXVault: vaultX, TokenYVault: vaultY,
			Fees: pool.Fees{SwapFeeNumerator: 3, SwapFeeDenominator: 1000},
		}},
		TokenXVault:   &loader.Snapshot[token.Account]{Key: vaultX, Data: token.Account{Mint: x, Amount: 1_000_000_000}},
		TokenYVault:   &loader.Snapshot[token.Account]{Key: vaultY, Data: token.Account{Mint: y, Amount: 40_000_000_000}},
		IsInitialized: true,
		IsValid:       true,
	}

	w, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	executor := commands.NewExecutor(client, w, hydramath.FixedQuote{Out: 36_510_755}, programID, nil)

	flow := NewSwapFlow(executor, func(context.Context) (pool.PoolView, error) {
		return view, nil
	}, nil)

	flow.From = TokenField{
		Asset:  assets.Asset{Address: x.String(), Symbol: "XTK", Decimals: 6},
		Amount: 1_000_000,
	}
	flow.To = TokenField{
		Asset: assets.Asset{Address: y.String(), Symbol: "YTK", Decimals: 9},
	}
	flow.SlippageBps = 100

	settled := make(chan State, 1)
	flow.SetNotify(func(s State) { settled <- s })

	return flow, settled
}

func awaitSettled(t *testing.T, settled chan State) State {
	t.Helper()
	select {
	case s := <-settled:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("flow never settled")
		return ""
	}
}

func TestSwapFlowSuccess(t *testing.T) {
	flow, settled := testSwapFlow(t, nil)
	ctx := context.Background()

	assert.Equal(t, StateEdit, flow.State())
	assert.False(t, flow.IsSubmitDisabled())

	require.NoError(t, flow.OnSendSubmit(ctx))
	assert.Equal(t, StatePreview, flow.State())

	require.NoError(t, flow.OnSendSubmit(ctx))

	assert.Equal(t, StateDone, awaitSettled(t, settled))
	assert.Equal(t, solana.Signature{1}, flow.Signature)
	assert.Empty(t, flow.LastError())
	assert.True(t, flow.IsSubmitDisabled())

	require.NoError(t, flow.OnSendCancel())
	assert.Equal(t, StateEdit, flow.State())
}

func TestSwapFlowFailureRetainsMessage(t *testing.T) {
	flow, settled := testSwapFlow(t, errors.New("Slippage Amount Exceeded"))
	ctx := context.Background()

	require.NoError(t, flow.OnSendSubmit(ctx))
	require.NoError(t, flow.OnSendSubmit(ctx))

	assert.Equal(t, StateError, awaitSettled(t, settled))
	assert.Equal(t, "Slippage Amount Exceeded", flow.LastError())

	// No resubmission from the failed state; only CANCEL leaves it.
	assert.Error(t, flow.OnSendSubmit(ctx))
	assert.True(t, flow.IsSubmitDisabled())

	require.NoError(t, flow.OnSendCancel())
	assert.Equal(t, StateEdit, flow.State())
	assert.Empty(t, flow.LastError(), "the message is cleared on re-entry to edit")
}

func TestSwapFlowCancelFromPreview(t *testing.T) {
	flow, _ := testSwapFlow(t, nil)
	ctx := context.Background()

	require.NoError(t, flow.OnSendSubmit(ctx))
	assert.Equal(t, StatePreview, flow.State())

	require.NoError(t, flow.OnSendCancel())
	assert.Equal(t, StateEdit, flow.State())
}

func TestAddLiquidityFlowReordersEnteredAmounts(t *testing.T) {
	client := new(mockSolanaClient)
	client.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{1}, nil)

	var sent *solana.Transaction
	client.On("SendTransaction", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*solana.Transaction)
	}).Return(solana.Signature{2}, nil)

	programID := solana.NewWallet().PublicKey()
	x, y := pool.SortMints(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	lpMint := solana.NewWallet().PublicKey()

	poolKey, _, err := pool.PoolStateKey(programID, x, y)
	require.NoError(t, err)
	vaultX, err := pool.TokenVaultKey(programID, x, lpMint)
	require.NoError(t, err)
	vaultY, err := pool.TokenVaultKey(programID, y, lpMint)
	require.NoError(t, err)

	view := pool.PoolView{
		TokenXMint:  x,
		TokenYMint:  y,
		LpTokenMint: lpMint,
		PoolState: &loader.Snapshot[pool.PoolState]{Key: poolKey, Data: pool.PoolState{
			TokenXMint: x, TokenYMint: y, LpTokenMint: lpMint,
			TokenXVault: vaultX, TokenYVault: vaultY,
		}},
		TokenXVault:   &loader.Snapshot[token.Account]{Key: vaultX, Data: token.Account{Mint: x, Amount: 1_000}},
		TokenYVault:   &loader.Snapshot[token.Account]{Key: vaultY, Data: token.Account{Mint: y, Amount: 4_000}},
		LpMint:        &loader.Snapshot[token.Mint]{Key: lpMint, Data: token.Mint{Supply: 2_000}},
		IsInitialized: true,
		IsValid:       true,
	}

	w, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	executor := commands.NewExecutor(client, w, hydramath.FixedQuote{}, programID, nil)

	flow := NewAddLiquidityFlow(executor, func(context.Context) (pool.PoolView, error) {
		return view, nil
	}, nil)

	// The user entered the pair in the reverse of canonical order.
	flow.TokenX = TokenField{Asset: assets.Asset{Address: y.String(), Symbol: "YTK", Decimals: 9}, Amount: 111}
	flow.TokenY = TokenField{Asset: assets.Asset{Address: x.String(), Symbol: "XTK", Decimals: 6}, Amount: 222}
	flow.SlippageBps = 100

	settled := make(chan State, 1)
	flow.SetNotify(func(s State) { settled <- s })

	ctx := context.Background()
	require.NoError(t, flow.OnSendSubmit(ctx))
	require.NoError(t, flow.OnSendSubmit(ctx))
	require.Equal(t, StateDone, awaitSettled(t, settled))
	assert.Equal(t, solana.Signature{2}, flow.Signature)

	require.NotNil(t, sent)
	compiled := sent.Message.Instructions[len(sent.Message.Instructions)-1]
	data := []byte(compiled.Data)
	require.Len(t, data, 32)
	assert.Equal(t, uint64(222), binary.LittleEndian.Uint64(data[8:16]), "amount for the canonical first token")
	assert.Equal(t, uint64(111), binary.LittleEndian.Uint64(data[16:24]), "amount for the canonical second token")
}

func TestSwapFlowRejectsCancelWhileProcessing(t *testing.T) {
	// A command that blocks until released keeps the machine in process.
	release := make(chan struct{})
	flow := newFlow(nil, "swap_flow")

	require.NoError(t, flow.submit(context.Background(), nil))
	require.NoError(t, flow.submit(context.Background(), func(context.Context) error {
		<-release
		return nil
	}))

	assert.Equal(t, StateProcess, flow.State())
	assert.True(t, flow.IsSubmitDisabled())
	assert.Error(t, flow.OnSendCancel(), "no cancellation of an in-flight transaction")

	close(release)
}
