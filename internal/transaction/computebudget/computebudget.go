// internal/transaction/computebudget/computebudget.go
package computebudget

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ProgramID = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

const (
	RequestUnitsDeprecated uint8 = 0
	RequestHeapFrame       uint8 = 1
	SetComputeUnitLimit    uint8 = 2
	SetComputeUnitPrice    uint8 = 3
)

type SetComputeUnitLimitInstruction struct {
	Units uint32
}

type SetComputeUnitPriceInstruction struct {
	MicroLamports uint64
}

const (
	DefaultUnits  uint32 = 200_000
	StandardUnits uint32 = 400_000
)

// Config holds the compute budget settings for one transaction.
type Config struct {
	Units     uint32
	UnitPrice uint64
}

// NewDefaultConfig returns the default compute budget.
func NewDefaultConfig() Config {
	return Config{
		Units:     DefaultUnits,
		UnitPrice: ConvertSolToMicrolamports(0.000001),
	}
}

// ConvertSolToMicrolamports converts a SOL amount into micro-lamports.
func ConvertSolToMicrolamports(sol float64) uint64 {
	return uint64(sol * 1e15)
}

// BuildInstructions creates the compute budget instructions for config.
func BuildInstructions(config Config) ([]solana.Instruction, error) {
	if config.Units == 0 {
		config = NewDefaultConfig()
	}

	var instructions []solana.Instruction

	limitInstruction, err := (&SetComputeUnitLimitInstruction{
		Units: config.Units,
	}).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build compute unit limit instruction: %w", err)
	}
	instructions = append(instructions, limitInstruction)

	if config.UnitPrice > 0 {
		priceInstruction, err := (&SetComputeUnitPriceInstruction{
			MicroLamports: config.UnitPrice,
		}).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build compute unit price instruction: %w", err)
		}
		instructions = append(instructions, priceInstruction)
	}

	return instructions, nil
}

// Build creates the set-compute-unit-limit instruction.
func (instr *SetComputeUnitLimitInstruction) Build() (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, SetComputeUnitLimit); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, instr.Units); err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		ProgramID,
		[]*solana.AccountMeta{},
		buf.Bytes(),
	), nil
}

// Build creates the set-compute-unit-price instruction.
func (instr *SetComputeUnitPriceInstruction) Build() (solana.Instruction, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, SetComputeUnitPrice); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, instr.MicroLamports); err != nil {
		return nil, err
	}
	return solana.NewInstruction(
		ProgramID,
		[]*solana.AccountMeta{},
		buf.Bytes(),
	), nil
}
