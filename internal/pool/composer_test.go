// internal/pool/composer_test.go
package pool

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewTimeout = 2 * time.Second

// awaitView reads views until accept returns true or the timeout hits.
func awaitView(t *testing.T, views <-chan PoolView, accept func(PoolView) bool) PoolView {
	t.Helper()
	deadline := time.After(viewTimeout)
	var last PoolView
	for {
		select {
		case view, ok := <-views:
			if !ok {
				t.Fatalf("view channel closed, last view: %+v", last)
			}
			last = view
			if accept(view) {
				return view
			}
		case <-deadline:
			t.Fatalf("timed out waiting for view, last view: %+v", last)
		}
	}
}

func TestWatchUnsetMintEmitsInvalidView(t *testing.T) {
	transport := newFakeTransport()
	programID := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()

	composer := NewComposer(NewResolver(transport, programID, owner, nil, fastResolverOptions()),
		rpc.CommitmentConfirmed, nil)

	views, err := composer.Watch(context.Background(), solana.PublicKey{}, solana.NewWallet().PublicKey())
	require.NoError(t, err)

	view, ok := <-views
	require.True(t, ok)
	assert.False(t, view.IsValid)
	assert.False(t, view.IsInitialized)

	_, ok = <-views
	assert.False(t, ok, "nothing follows the invalid view")
}

func TestWatchInitializedPool(t *testing.T) {
	transport := newFakeTransport()
	programID := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()
	lpMint := solana.NewWallet().PublicKey()

	state, err := seedInitializedPool(transport, programID, mintA, mintB, lpMint, owner)
	require.NoError(t, err)

	composer := NewComposer(NewResolver(transport, programID, owner, nil, fastResolverOptions()),
		rpc.CommitmentConfirmed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	views, err := composer.Watch(ctx, mintB, mintA)
	require.NoError(t, err)

	view := awaitView(t, views, func(v PoolView) bool {
		return v.PoolState != nil && v.TokenXVault != nil && v.TokenYVault != nil &&
			v.LpTokenVault != nil && v.LpMint != nil &&
			v.UserTokenX != nil && v.UserTokenY != nil && v.UserLpToken != nil
	})

	assert.True(t, view.IsValid)
	assert.True(t, view.IsInitialized)
	assert.Equal(t, state.TokenXMint, view.TokenXMint)
	assert.Equal(t, state.TokenYMint, view.TokenYMint)
	assert.Equal(t, lpMint, view.LpTokenMint)
	assert.Equal(t, state, view.PoolState.Data)
	assert.Equal(t, uint64(1_000_000_000), view.TokenXVault.Data.Amount)
	assert.Equal(t, uint64(40_000_000_000), view.TokenYVault.Data.Amount)
	assert.Equal(t, uint64(5_000_000_000), view.LpMint.Data.Supply)

	// A vault change on-chain re-emits the merged view. Wait for the
	// vault subscription to open before pushing.
	subDeadline := time.After(viewTimeout)
	for transport.subscriberCount(state.TokenXVault) == 0 {
		select {
		case <-subDeadline:
			t.Fatal("vault subscription was never opened")
		case <-time.After(5 * time.Millisecond):
		}
	}
	transport.push(state.TokenXVault, encodeTokenAccount(state.TokenXMint, state.Authority, 1_100_000_000))
	updated := awaitView(t, views, func(v PoolView) bool {
		return v.TokenXVault != nil && v.TokenXVault.Data.Amount == 1_100_000_000
	})
	assert.Equal(t, uint64(40_000_000_000), updated.TokenYVault.Data.Amount,
		"other snapshots survive a single-account update")

	cancel()
	deadline := time.After(viewTimeout)
	for {
		select {
		case _, ok := <-views:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("view channel did not close after cancellation")
		}
	}
}

func TestWatchUninitializedPool(t *testing.T) {
	transport := newFakeTransport()
	programID := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()

	composer := NewComposer(NewResolver(transport, programID, owner, nil, fastResolverOptions()),
		rpc.CommitmentConfirmed, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	views, err := composer.Watch(ctx, mintA, mintB)
	require.NoError(t, err)

	view := awaitView(t, views, func(v PoolView) bool { return v.IsValid })
	assert.False(t, view.IsInitialized)
	assert.Nil(t, view.PoolState)
	assert.False(t, view.LpTokenMint.IsZero())
}
