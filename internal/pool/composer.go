// internal/pool/composer.go
package pool

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hydraswap-io/hydra-go/internal/loader"
)

// PoolView is the merged, continuously updated state of one pool. All
// snapshot fields are optional until IsValid is true, and pool-state
// dependent economics are meaningless until IsInitialized is true.
type PoolView struct {
	TokenXMint  solana.PublicKey
	TokenYMint  solana.PublicKey
	LpTokenMint solana.PublicKey

	PoolState    *loader.Snapshot[PoolState]
	TokenXVault  *loader.Snapshot[token.Account]
	TokenYVault  *loader.Snapshot[token.Account]
	LpTokenVault *loader.Snapshot[token.Account]
	LpMint       *loader.Snapshot[token.Mint]
	UserTokenX   *loader.Snapshot[token.Account]
	UserTokenY   *loader.Snapshot[token.Account]
	UserLpToken  *loader.Snapshot[token.Account]

	IsInitialized bool
	IsValid       bool
}

// Composer fans the streams of a bundle into one combined view.
type Composer struct {
	resolver   *Resolver
	commitment rpc.CommitmentType
	logger     *zap.Logger
}

// NewComposer creates a composer over the given resolver.
func NewComposer(resolver *Resolver, commitment rpc.CommitmentType, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		resolver:   resolver,
		commitment: commitment,
		logger:     logger.Named("pool_composer"),
	}
}

// Watch resolves the bundle for a mint pair and streams its combined
// view. When either mint is unset no bundle can be resolved; a single
// invalid view is emitted and the channel closes.
func (c *Composer) Watch(ctx context.Context, mintA, mintB solana.PublicKey) (<-chan PoolView, error) {
	if mintA.IsZero() || mintB.IsZero() {
		out := make(chan PoolView, 1)
		out <- PoolView{IsValid: false}
		close(out)
		return out, nil
	}

	bundle, err := c.resolver.GetAccountLoaders(ctx, mintA, mintB)
	if err != nil {
		return nil, err
	}
	return c.WatchBundle(ctx, bundle)
}

// WatchBundle subscribes to every loader in the bundle concurrently and
// re-emits the merged view on every upstream emission. The channel
// closes when ctx is cancelled.
func (c *Composer) WatchBundle(ctx context.Context, bundle *Bundle) (<-chan PoolView, error) {
	out := make(chan PoolView, 16)

	var mu sync.Mutex
	view := PoolView{
		TokenXMint:  bundle.TokenXMint,
		TokenYMint:  bundle.TokenYMint,
		LpTokenMint: bundle.LpTokenMint,
		IsValid:     true,
	}

	g, gctx := errgroup.WithContext(ctx)

	publish := func(apply func(*PoolView)) {
		mu.Lock()
		apply(&view)
		view.IsInitialized = view.PoolState != nil
		snapshot := view
		mu.Unlock()
		select {
		case out <- snapshot:
		case <-gctx.Done():
		}
	}

	if err := watchInto(g, gctx, bundle.PoolState.Loader, c.commitment, func(s *loader.Snapshot[PoolState]) {
		publish(func(v *PoolView) { v.PoolState = s })
	}); err != nil {
		return nil, err
	}

	for _, entry := range []struct {
		l      *loader.Loader[token.Account]
		assign func(*PoolView, *loader.Snapshot[token.Account])
	}{
		{bundle.TokenXVault.Loader, func(v *PoolView, s *loader.Snapshot[token.Account]) { v.TokenXVault = s }},
		{bundle.TokenYVault.Loader, func(v *PoolView, s *loader.Snapshot[token.Account]) { v.TokenYVault = s }},
		{bundle.LpTokenVault.Loader, func(v *PoolView, s *loader.Snapshot[token.Account]) { v.LpTokenVault = s }},
		{bundle.UserTokenX.Loader, func(v *PoolView, s *loader.Snapshot[token.Account]) { v.UserTokenX = s }},
		{bundle.UserTokenY.Loader, func(v *PoolView, s *loader.Snapshot[token.Account]) { v.UserTokenY = s }},
		{bundle.UserLpToken.Loader, func(v *PoolView, s *loader.Snapshot[token.Account]) { v.UserLpToken = s }},
	} {
		assign := entry.assign
		if err := watchInto(g, gctx, entry.l, c.commitment, func(s *loader.Snapshot[token.Account]) {
			publish(func(v *PoolView) { assign(v, s) })
		}); err != nil {
			return nil, err
		}
	}

	if err := watchInto(g, gctx, bundle.LpMint.Loader, c.commitment, func(s *loader.Snapshot[token.Mint]) {
		publish(func(v *PoolView) { v.LpMint = s })
	}); err != nil {
		return nil, err
	}

	go func() {
		if err := g.Wait(); err != nil {
			c.logger.Warn("Pool watch terminated", zap.Error(err))
		}
		close(out)
	}()

	return out, nil
}

// watchInto routes one loader's stream into the merged view.
func watchInto[T any](g *errgroup.Group, ctx context.Context, l *loader.Loader[T], commitment rpc.CommitmentType, emit func(*loader.Snapshot[T])) error {
	stream, err := l.Stream(ctx, commitment)
	if err != nil {
		return err
	}
	g.Go(func() error {
		for {
			select {
			case snap, ok := <-stream:
				if !ok {
					return nil
				}
				emit(snap)
			case <-ctx.Done():
				return nil
			}
		}
	})
	return nil
}
