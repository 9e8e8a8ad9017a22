// internal/loader/loader.go
package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/hydraswap-io/hydra-go/internal/solclient"
)

// Transport is the capability surface a loader needs from the chain:
// fetch current account state and subscribe to changes. Implemented by
// solclient.Client; faked in tests.
type Transport interface {
	FetchAccount(ctx context.Context, key solana.PublicKey, commitment rpc.CommitmentType) (*solclient.AccountInfo, error)
	SubscribeAccount(ctx context.Context, key solana.PublicKey, commitment rpc.CommitmentType, fn func(solclient.AccountInfo)) (func(), error)
}

// KeyFunc resolves an account address. It may perform an asynchronous
// derivation; the loader calls it at most once.
type KeyFunc func(ctx context.Context) (solana.PublicKey, error)

// DecodeFunc turns raw account bytes into a typed value.
type DecodeFunc[T any] func(data []byte) (T, error)

// Snapshot is one immutable observation of an account's state.
type Snapshot[T any] struct {
	Key        solana.PublicKey
	Data       T
	Raw        []byte
	Slot       uint64
	Commitment rpc.CommitmentType
}

// Loader binds an account address (known up front or derived lazily) to a
// decoder and exposes a uniform read/subscribe surface. A loader may be
// constructed before its address is resolvable; Key resolution is memoized
// on first use.
type Loader[T any] struct {
	transport Transport
	decode    DecodeFunc[T]
	logger    *zap.Logger

	keyFn   KeyFunc
	keyOnce sync.Once
	key     solana.PublicKey
	keyErr  error
}

// New creates a loader for an address known up front.
func New[T any](transport Transport, key solana.PublicKey, decode DecodeFunc[T], logger *zap.Logger) *Loader[T] {
	return NewDeferred(transport, func(context.Context) (solana.PublicKey, error) {
		return key, nil
	}, decode, logger)
}

// NewDeferred creates a loader whose address is resolved on first use.
func NewDeferred[T any](transport Transport, keyFn KeyFunc, decode DecodeFunc[T], logger *zap.Logger) *Loader[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader[T]{
		transport: transport,
		decode:    decode,
		logger:    logger,
		keyFn:     keyFn,
	}
}

// Key resolves and memoizes the account address. A failed resolution is
// memoized too; derivations are never retried automatically.
func (l *Loader[T]) Key(ctx context.Context) (solana.PublicKey, error) {
	l.keyOnce.Do(func() {
		l.key, l.keyErr = l.keyFn(ctx)
		if l.keyErr != nil {
			l.keyErr = fmt.Errorf("%w: %s", ErrDerivationFailed, l.keyErr)
		}
	})
	return l.key, l.keyErr
}

// Info fetches and decodes the current account state. It returns
// solclient.ErrAccountNotFound when the account does not exist on-chain.
func (l *Loader[T]) Info(ctx context.Context, commitment rpc.CommitmentType) (*Snapshot[T], error) {
	key, err := l.Key(ctx)
	if err != nil {
		return nil, err
	}

	info, err := l.transport.FetchAccount(ctx, key, commitment)
	if err != nil {
		return nil, err
	}

	decoded, err := l.decode(info.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode account %s: %w", key, err)
	}

	return &Snapshot[T]{
		Key:        key,
		Data:       decoded,
		Raw:        info.Data,
		Slot:       info.Slot,
		Commitment: commitment,
	}, nil
}

// IsInitialized reports whether the account exists and decodes. It never
// returns an error; any failure reads as false.
func (l *Loader[T]) IsInitialized(ctx context.Context) bool {
	_, err := l.Info(ctx, rpc.CommitmentConfirmed)
	return err == nil
}

// Stream returns a channel whose first element is always the fetch-time
// snapshot (nil when the account is absent or the fetch failed), followed
// by one snapshot per observed on-chain change. The stream is cold: every
// call performs its own fetch and opens its own subscription. The ordering
// guarantee comes from sequential composition: the subscription is opened
// only after the initial snapshot has been emitted. Cancelling ctx closes
// the subscription this call opened and then the channel.
func (l *Loader[T]) Stream(ctx context.Context, commitment rpc.CommitmentType) (<-chan *Snapshot[T], error) {
	key, err := l.Key(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan *Snapshot[T], 16)

	go func() {
		defer close(out)

		snap, err := l.Info(ctx, commitment)
		if err != nil {
			snap = nil
			if ctx.Err() != nil {
				return
			}
		}
		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}

		updates := make(chan *Snapshot[T], 16)
		unsubscribe, err := l.transport.SubscribeAccount(ctx, key, commitment, func(info solclient.AccountInfo) {
			decoded, err := l.decode(info.Data)
			if err != nil {
				l.logger.Warn("Failed to decode account update",
					zap.String("account", key.String()), zap.Error(err))
				return
			}
			next := &Snapshot[T]{
				Key:        key,
				Data:       decoded,
				Raw:        info.Data,
				Slot:       info.Slot,
				Commitment: commitment,
			}
			select {
			case updates <- next:
			case <-ctx.Done():
			}
		})
		if err != nil {
			l.logger.Warn("Failed to subscribe to account",
				zap.String("account", key.String()), zap.Error(err))
			return
		}
		defer unsubscribe()

		for {
			select {
			case next := <-updates:
				select {
				case out <- next:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// OnChange registers fn for every on-chain change of the account. Key
// resolution is awaited before subscribing, so no change is delivered
// before the key resolves and none is missed afterwards. The returned
// function removes exactly this subscription.
func (l *Loader[T]) OnChange(ctx context.Context, fn func(*Snapshot[T]), commitment rpc.CommitmentType) (func(), error) {
	key, err := l.Key(ctx)
	if err != nil {
		return nil, err
	}

	return l.transport.SubscribeAccount(ctx, key, commitment, func(info solclient.AccountInfo) {
		decoded, err := l.decode(info.Data)
		if err != nil {
			l.logger.Warn("Failed to decode account update",
				zap.String("account", key.String()), zap.Error(err))
			return
		}
		fn(&Snapshot[T]{
			Key:        key,
			Data:       decoded,
			Raw:        info.Data,
			Slot:       info.Slot,
			Commitment: commitment,
		})
	})
}
