// internal/commands/mocks_test.go
package commands

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hydraswap-io/hydra-go/internal/loader"
	"github.com/hydraswap-io/hydra-go/internal/pool"
	"github.com/hydraswap-io/hydra-go/internal/wallet"
)

// MockSolanaClient implements the SolanaClient interface.
type MockSolanaClient struct {
	mock.Mock
}

func (m *MockSolanaClient) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *MockSolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func newMockClient() *MockSolanaClient {
	client := new(MockSolanaClient)
	client.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{1}, nil)
	return client
}

func testWallet(t *testing.T) *wallet.Wallet {
	t.Helper()
	w, err := wallet.NewWallet(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)
	return w
}

// testView builds a fully initialized pool view with the given vault
// balances.
type testViewParams struct {
	vaultX    uint64
	vaultY    uint64
	lpSupply  uint64
	lpBalance uint64
	fees      pool.Fees
}

func testView(t *testing.T, programID solana.PublicKey, p testViewParams) pool.PoolView {
	t.Helper()

	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	x, y := pool.SortMints(mintA, mintB)
	lpMint := solana.NewWallet().PublicKey()

	poolKey, _, err := pool.PoolStateKey(programID, x, y)
	require.NoError(t, err)
	vaultXKey, err := pool.TokenVaultKey(programID, x, lpMint)
	require.NoError(t, err)
	vaultYKey, err := pool.TokenVaultKey(programID, y, lpMint)
	require.NoError(t, err)

	state := pool.PoolState{
		TokenXVault: vaultXKey,
		TokenYVault: vaultYKey,
		TokenXMint:  x,
		TokenYMint:  y,
		LpTokenMint: lpMint,
		Fees:        p.fees,
	}

	return pool.PoolView{
		TokenXMint:  x,
		TokenYMint:  y,
		LpTokenMint: lpMint,
		PoolState:   &loader.Snapshot[pool.PoolState]{Key: poolKey, Data: state},
		TokenXVault: &loader.Snapshot[token.Account]{
			Key: vaultXKey, Data: token.Account{Mint: x, Amount: p.vaultX},
		},
		TokenYVault: &loader.Snapshot[token.Account]{
			Key: vaultYKey, Data: token.Account{Mint: y, Amount: p.vaultY},
		},
		LpMint: &loader.Snapshot[token.Mint]{
			Key: lpMint, Data: token.Mint{Supply: p.lpSupply},
		},
		UserLpToken: &loader.Snapshot[token.Account]{
			Data: token.Account{Mint: lpMint, Amount: p.lpBalance},
		},
		IsInitialized: true,
		IsValid:       true,
	}
}

// sentInstructionData extracts the data of the last non-budget
// instruction of the captured transaction.
func sentInstructionData(t *testing.T, client *MockSolanaClient) []byte {
	t.Helper()
	for i := len(client.Calls) - 1; i >= 0; i-- {
		call := client.Calls[i]
		if call.Method != "SendTransaction" {
			continue
		}
		tx := call.Arguments.Get(1).(*solana.Transaction)
		require.NotEmpty(t, tx.Message.Instructions)
		compiled := tx.Message.Instructions[len(tx.Message.Instructions)-1]
		return []byte(compiled.Data)
	}
	t.Fatal("no transaction was sent")
	return nil
}

func uint64At(data []byte, offset int) uint64 {
	return binary.LittleEndian.Uint64(data[offset : offset+8])
}
