// internal/transaction/builder.go
package transaction

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/hydraswap-io/hydra-go/internal/transaction/computebudget"
)

// SolanaClient is the part of the transport a builder needs.
type SolanaClient interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// Builder assembles one transaction: compute budget, instructions,
// signatures.
type Builder struct {
	instructions []solana.Instruction
	signers      []solana.PrivateKey
	config       computebudget.Config
}

// NewBuilder creates a transaction builder with the default compute
// budget.
func NewBuilder() *Builder {
	return &Builder{
		config: computebudget.NewDefaultConfig(),
	}
}

// SetComputeBudget overrides the compute budget settings.
func (b *Builder) SetComputeBudget(units uint32, priceInSol float64) *Builder {
	b.config = computebudget.Config{
		Units:     units,
		UnitPrice: computebudget.ConvertSolToMicrolamports(priceInSol),
	}
	return b
}

// AddInstruction appends an instruction to the transaction.
func (b *Builder) AddInstruction(instruction solana.Instruction) *Builder {
	b.instructions = append(b.instructions, instruction)
	return b
}

// AddSigner adds a transaction signer. The first signer pays the fee.
func (b *Builder) AddSigner(signer solana.PrivateKey) *Builder {
	b.signers = append(b.signers, signer)
	return b
}

// Build creates and signs the transaction.
func (b *Builder) Build(ctx context.Context, client SolanaClient) (*solana.Transaction, error) {
	if len(b.signers) == 0 {
		return nil, fmt.Errorf("no signers provided")
	}

	blockhash, err := client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	budgetInstructions, err := computebudget.BuildInstructions(b.config)
	if err != nil {
		return nil, fmt.Errorf("failed to build compute budget instructions: %w", err)
	}

	instructions := make([]solana.Instruction, 0, len(budgetInstructions)+len(b.instructions))
	instructions = append(instructions, budgetInstructions...)
	instructions = append(instructions, b.instructions...)

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(b.signers[0].PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for _, signer := range b.signers {
			if signer.PublicKey().Equals(key) {
				privateCopy := signer
				return &privateCopy
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	return tx, nil
}
