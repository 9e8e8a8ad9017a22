// internal/pool/resolver.go
package pool

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/hydraswap-io/hydra-go/internal/loader"
)

// Bundle is the full set of resolved loaders for one pool, canonical
// (tokenX, tokenY) order.
type Bundle struct {
	TokenXMint  solana.PublicKey
	TokenYMint  solana.PublicKey
	LpTokenMint solana.PublicKey

	// Initialized reports whether the pool state account existed at
	// resolution time. For a not-yet-created pool the LP mint key is a
	// freshly synthesized keypair address.
	Initialized bool

	PoolState    *loader.PDALoader[PoolState]
	TokenXVault  *loader.PDALoader[token.Account]
	TokenYVault  *loader.PDALoader[token.Account]
	LpTokenVault *loader.PDALoader[token.Account]
	LpMint       *loader.MintLoader
	UserTokenX   *loader.TokenLoader
	UserTokenY   *loader.TokenLoader
	UserLpToken  *loader.TokenLoader
}

// Resolver derives the account bundle for a mint pair.
type Resolver struct {
	transport  loader.Transport
	programID  solana.PublicKey
	owner      solana.PublicKey
	commitment rpc.CommitmentType
	maxRetries uint
	retryDelay time.Duration
	logger     *zap.Logger
}

// ResolverOptions configures bundle resolution.
type ResolverOptions struct {
	Commitment rpc.CommitmentType
	MaxRetries uint
	RetryDelay time.Duration
}

// DefaultResolverOptions returns the default resolution settings.
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		Commitment: rpc.CommitmentConfirmed,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// NewResolver creates a resolver for the given program and wallet owner.
func NewResolver(transport loader.Transport, programID, owner solana.PublicKey, logger *zap.Logger, opts ...ResolverOptions) *Resolver {
	options := DefaultResolverOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		transport:  transport,
		programID:  programID,
		owner:      owner,
		commitment: options.Commitment,
		maxRetries: options.MaxRetries,
		retryDelay: options.RetryDelay,
		logger:     logger.Named("pool_resolver"),
	}
}

// SortMints orders two mints canonically: the byte-wise smaller one is
// tokenX. All downstream derivations are seeded with the sorted pair, so
// either input order targets the same on-chain accounts.
func SortMints(a, b solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

// PoolStateKey derives the pool state address for a mint pair in any
// input order.
func PoolStateKey(programID, mintA, mintB solana.PublicKey) (solana.PublicKey, uint8, error) {
	x, y := SortMints(mintA, mintB)
	return solana.FindProgramAddress([][]byte{SeedPoolState, x[:], y[:]}, programID)
}

// TokenVaultKey derives the vault address holding one side of a pool.
func TokenVaultKey(programID, tokenMint, lpMint solana.PublicKey) (solana.PublicKey, error) {
	key, _, err := solana.FindProgramAddress([][]byte{SeedTokenVault, tokenMint[:], lpMint[:]}, programID)
	return key, err
}

// LpTokenVaultKey derives the vault address holding pool-owned LP
// tokens.
func LpTokenVaultKey(programID, lpMint solana.PublicKey) (solana.PublicKey, error) {
	key, _, err := solana.FindProgramAddress([][]byte{SeedLpTokenVault, lpMint[:]}, programID)
	return key, err
}

// GetAccountLoaders resolves the complete account bundle for a mint pair.
// A pool that does not exist yet is not an error: the bundle is built
// around a fresh LP mint key and callers check Initialized / the pool
// state loader to tell the two cases apart.
func (r *Resolver) GetAccountLoaders(ctx context.Context, mintA, mintB solana.PublicKey) (*Bundle, error) {
	x, y := SortMints(mintA, mintB)

	poolState := loader.NewPDA(r.transport,
		[][]byte{SeedPoolState, x[:], y[:]},
		r.programID, DecodePoolState, r.logger)

	// The vault addresses are seeded with the LP mint, which is only
	// knowable by reading the pool state. For an absent pool a fresh LP
	// mint key stands in so the bundle can still be assembled.
	var lpMint solana.PublicKey
	initialized := false

	snap, err := r.fetchPoolState(ctx, poolState)
	switch {
	case err == nil:
		lpMint = snap.Data.LpTokenMint
		initialized = true
	case loader.IsNotFound(err):
		lpMint = solana.NewWallet().PublicKey()
		r.logger.Debug("Pool state absent, synthesizing LP mint",
			zap.String("token_x", x.String()),
			zap.String("token_y", y.String()),
			zap.String("lp_mint", lpMint.String()))
	default:
		return nil, err
	}

	tokenXVault := loader.NewPDA(r.transport,
		[][]byte{SeedTokenVault, x[:], lpMint[:]},
		r.programID, loader.DecodeTokenAccount, r.logger)
	tokenYVault := loader.NewPDA(r.transport,
		[][]byte{SeedTokenVault, y[:], lpMint[:]},
		r.programID, loader.DecodeTokenAccount, r.logger)
	lpTokenVault := loader.NewPDA(r.transport,
		[][]byte{SeedLpTokenVault, lpMint[:]},
		r.programID, loader.DecodeTokenAccount, r.logger)

	return &Bundle{
		TokenXMint:   x,
		TokenYMint:   y,
		LpTokenMint:  lpMint,
		Initialized:  initialized,
		PoolState:    poolState,
		TokenXVault:  tokenXVault,
		TokenYVault:  tokenYVault,
		LpTokenVault: lpTokenVault,
		LpMint:       loader.NewMint(r.transport, lpMint, r.logger),
		UserTokenX:   loader.NewAssociatedToken(r.transport, x, r.owner, r.logger),
		UserTokenY:   loader.NewAssociatedToken(r.transport, y, r.owner, r.logger),
		UserLpToken:  loader.NewAssociatedToken(r.transport, lpMint, r.owner, r.logger),
	}, nil
}

// fetchPoolState reads the pool state with retry on transient failures.
// Not-found is terminal here, not transient.
func (r *Resolver) fetchPoolState(ctx context.Context, poolState *loader.PDALoader[PoolState]) (*loader.Snapshot[PoolState], error) {
	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = r.retryDelay
	backoffPolicy.MaxInterval = r.retryDelay * 10

	notify := func(err error, duration time.Duration) {
		r.logger.Info("Retrying pool state fetch", zap.Error(err), zap.Duration("backoff", duration))
	}

	operation := func() (*loader.Snapshot[PoolState], error) {
		snap, err := poolState.Info(ctx, r.commitment)
		if err != nil && (loader.IsNotFound(err) || errors.Is(err, loader.ErrDerivationFailed)) {
			return nil, backoff.Permanent(err)
		}
		return snap, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(r.maxRetries),
		backoff.WithNotify(notify))
}
