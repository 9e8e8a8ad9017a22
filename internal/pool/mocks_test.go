// internal/pool/mocks_test.go
package pool

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hydraswap-io/hydra-go/internal/solclient"
)

type fakeTransport struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
	fetchErr error

	subs map[solana.PublicKey][]func(solclient.AccountInfo)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		accounts: make(map[solana.PublicKey][]byte),
		subs:     make(map[solana.PublicKey][]func(solclient.AccountInfo)),
	}
}

func (f *fakeTransport) set(key solana.PublicKey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[key] = data
}

func (f *fakeTransport) FetchAccount(_ context.Context, key solana.PublicKey, _ rpc.CommitmentType) (*solclient.AccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	data, ok := f.accounts[key]
	if !ok {
		return nil, solclient.ErrAccountNotFound
	}
	return &solclient.AccountInfo{Data: data, Slot: 1}, nil
}

func (f *fakeTransport) SubscribeAccount(_ context.Context, key solana.PublicKey, _ rpc.CommitmentType, fn func(solclient.AccountInfo)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[key] = append(f.subs[key], fn)
	return func() {}, nil
}

func (f *fakeTransport) subscriberCount(key solana.PublicKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[key])
}

func (f *fakeTransport) push(key solana.PublicKey, data []byte) {
	f.mu.Lock()
	f.accounts[key] = data
	targets := append([]func(solclient.AccountInfo){}, f.subs[key]...)
	f.mu.Unlock()
	for _, fn := range targets {
		fn(solclient.AccountInfo{Data: data, Slot: 2})
	}
}

// encodeTokenAccount builds a raw SPL token account record.
func encodeTokenAccount(mint, owner solana.PublicKey, amount uint64) []byte {
	data := make([]byte, 165)
	copy(data[0:32], mint[:])
	copy(data[32:64], owner[:])
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // state: initialized
	return data
}

// encodeMint builds a raw SPL mint record with a present mint authority.
func encodeMint(authority solana.PublicKey, supply uint64, decimals uint8) []byte {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	copy(data[4:36], authority[:])
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1 // initialized
	return data
}

// testFees is a 0.3% swap fee schedule.
func testFees() Fees {
	return Fees{
		SwapFeeNumerator:   3,
		SwapFeeDenominator: 1000,
	}
}

// seedInitializedPool writes a full pool account set into the transport
// and returns the pool state it encoded.
func seedInitializedPool(f *fakeTransport, programID, mintA, mintB, lpMint, owner solana.PublicKey) (PoolState, error) {
	x, y := SortMints(mintA, mintB)

	poolKey, bump, err := PoolStateKey(programID, x, y)
	if err != nil {
		return PoolState{}, err
	}
	vaultX, err := TokenVaultKey(programID, x, lpMint)
	if err != nil {
		return PoolState{}, err
	}
	vaultY, err := TokenVaultKey(programID, y, lpMint)
	if err != nil {
		return PoolState{}, err
	}
	lpVault, err := LpTokenVaultKey(programID, lpMint)
	if err != nil {
		return PoolState{}, err
	}

	state := PoolState{
		Authority:     poolKey,
		TokenXVault:   vaultX,
		TokenYVault:   vaultY,
		TokenXMint:    x,
		TokenYMint:    y,
		LpTokenMint:   lpMint,
		PoolStateBump: bump,
		Fees:          testFees(),
	}

	f.set(poolKey, EncodePoolState(state))
	f.set(vaultX, encodeTokenAccount(x, poolKey, 1_000_000_000))
	f.set(vaultY, encodeTokenAccount(y, poolKey, 40_000_000_000))
	f.set(lpVault, encodeTokenAccount(lpMint, poolKey, 0))
	f.set(lpMint, encodeMint(poolKey, 5_000_000_000, 9))

	for _, mint := range []solana.PublicKey{x, y, lpMint} {
		ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return PoolState{}, err
		}
		f.set(ata, encodeTokenAccount(mint, owner, 10_000_000))
	}

	return state, nil
}
