// internal/loader/pda.go
package loader

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// PDALoader wraps a seed list plus a program id and derives its address
// with the deterministic bump search. The bump is exposed for
// instructions that re-verify the derivation on-chain.
type PDALoader[T any] struct {
	*Loader[T]
	seeds     [][]byte
	programID solana.PublicKey
	bump      uint8
}

// NewPDA creates a loader for a program-derived address. Derivation runs
// on first Key call and is memoized with it.
func NewPDA[T any](transport Transport, seeds [][]byte, programID solana.PublicKey, decode DecodeFunc[T], logger *zap.Logger) *PDALoader[T] {
	l := &PDALoader[T]{
		seeds:     seeds,
		programID: programID,
	}
	l.Loader = NewDeferred(transport, func(context.Context) (solana.PublicKey, error) {
		addr, bump, err := solana.FindProgramAddress(l.seeds, l.programID)
		if err != nil {
			return solana.PublicKey{}, err
		}
		l.bump = bump
		return addr, nil
	}, decode, logger)
	return l
}

// Bump returns the derivation bump. It forces key resolution first, so
// the value is valid whenever the error is nil.
func (l *PDALoader[T]) Bump(ctx context.Context) (uint8, error) {
	if _, err := l.Key(ctx); err != nil {
		return 0, err
	}
	return l.bump, nil
}

// ProgramID returns the program the address was derived for.
func (l *PDALoader[T]) ProgramID() solana.PublicKey {
	return l.programID
}
