// internal/loader/token.go
package loader

import (
	"context"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// DecodeTokenAccount decodes an SPL token account record.
func DecodeTokenAccount(data []byte) (token.Account, error) {
	var acc token.Account
	if err := acc.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return token.Account{}, fmt.Errorf("invalid token account data: %w", err)
	}
	return acc, nil
}

// DecodeMint decodes an SPL mint record.
func DecodeMint(data []byte) (token.Mint, error) {
	var mint token.Mint
	if err := mint.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return token.Mint{}, fmt.Errorf("invalid mint data: %w", err)
	}
	return mint, nil
}

// TokenLoader is an account loader specialized for SPL token accounts.
type TokenLoader struct {
	*Loader[token.Account]
}

// NewToken creates a token loader for a known token account address.
func NewToken(transport Transport, address solana.PublicKey, logger *zap.Logger) *TokenLoader {
	return &TokenLoader{Loader: New(transport, address, DecodeTokenAccount, logger)}
}

// NewTokenDeferred creates a token loader whose address resolves lazily.
func NewTokenDeferred(transport Transport, keyFn KeyFunc, logger *zap.Logger) *TokenLoader {
	return &TokenLoader{Loader: NewDeferred(transport, keyFn, DecodeTokenAccount, logger)}
}

// NewAssociatedToken creates a token loader whose address is the
// associated token account of owner for mint.
func NewAssociatedToken(transport Transport, mint, owner solana.PublicKey, logger *zap.Logger) *TokenLoader {
	return NewTokenDeferred(transport, func(context.Context) (solana.PublicKey, error) {
		ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return solana.PublicKey{}, err
		}
		return ata, nil
	}, logger)
}

// Balance returns the token balance in the smallest unit.
func (l *TokenLoader) Balance(ctx context.Context, commitment rpc.CommitmentType) (uint64, error) {
	snap, err := l.Info(ctx, commitment)
	if err != nil {
		return 0, err
	}
	return snap.Data.Amount, nil
}

// MintLoader is an account loader specialized for SPL mint accounts.
type MintLoader struct {
	*Loader[token.Mint]
}

// NewMint creates a mint loader for a known mint address.
func NewMint(transport Transport, address solana.PublicKey, logger *zap.Logger) *MintLoader {
	return &MintLoader{Loader: New(transport, address, DecodeMint, logger)}
}
