// internal/pool/state.go
package pool

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PDA seed prefixes used by the on-chain program.
var (
	SeedPoolState    = []byte("pool_state")
	SeedTokenVault   = []byte("token_vault")
	SeedLpTokenVault = []byte("lp_token_vault")
)

// PoolStateDiscriminator is the anchor account discriminator for
// PoolState records.
var PoolStateDiscriminator = accountDiscriminator("PoolState")

// accountDiscriminator computes the anchor account discriminator.
func accountDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("account:" + name))
	return h[:8]
}

// PoolState mirrors the on-chain pool account. It is read-only on the
// client; only the program mutates it.
type PoolState struct {
	Authority        solana.PublicKey
	TokenXVault      solana.PublicKey
	TokenYVault      solana.PublicKey
	TokenXMint       solana.PublicKey
	TokenYMint       solana.PublicKey
	LpTokenMint      solana.PublicKey
	PoolStateBump    uint8
	TokenXVaultBump  uint8
	TokenYVaultBump  uint8
	LpTokenVaultBump uint8
	Fees             Fees
}

const poolStateSize = 8 + 32*6 + 4 + 8*8

// DecodePoolState parses the binary pool state account data.
func DecodePoolState(data []byte) (PoolState, error) {
	if len(data) < 8 {
		return PoolState{}, fmt.Errorf("data too short for PoolState")
	}
	for i := 0; i < 8; i++ {
		if data[i] != PoolStateDiscriminator[i] {
			return PoolState{}, fmt.Errorf("invalid discriminator for PoolState")
		}
	}
	if len(data) < poolStateSize {
		return PoolState{}, fmt.Errorf("data too short for PoolState content")
	}

	pos := 8
	state := PoolState{}

	state.Authority = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	state.TokenXVault = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	state.TokenYVault = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	state.TokenXMint = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	state.TokenYMint = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32
	state.LpTokenMint = solana.PublicKeyFromBytes(data[pos : pos+32])
	pos += 32

	state.PoolStateBump = data[pos]
	pos++
	state.TokenXVaultBump = data[pos]
	pos++
	state.TokenYVaultBump = data[pos]
	pos++
	state.LpTokenVaultBump = data[pos]
	pos++

	for _, field := range []*uint64{
		&state.Fees.SwapFeeNumerator, &state.Fees.SwapFeeDenominator,
		&state.Fees.OwnerTradeFeeNumerator, &state.Fees.OwnerTradeFeeDenominator,
		&state.Fees.OwnerWithdrawFeeNumerator, &state.Fees.OwnerWithdrawFeeDenominator,
		&state.Fees.HostFeeNumerator, &state.Fees.HostFeeDenominator,
	} {
		*field = binary.LittleEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	return state, nil
}

// EncodePoolState serializes a pool state record, discriminator included.
// The client never writes pool accounts; this exists for fixtures and
// round-trip checks.
func EncodePoolState(state PoolState) []byte {
	data := make([]byte, 0, poolStateSize)
	data = append(data, PoolStateDiscriminator...)
	data = append(data, state.Authority[:]...)
	data = append(data, state.TokenXVault[:]...)
	data = append(data, state.TokenYVault[:]...)
	data = append(data, state.TokenXMint[:]...)
	data = append(data, state.TokenYMint[:]...)
	data = append(data, state.LpTokenMint[:]...)
	data = append(data, state.PoolStateBump, state.TokenXVaultBump, state.TokenYVaultBump, state.LpTokenVaultBump)
	for _, field := range []uint64{
		state.Fees.SwapFeeNumerator, state.Fees.SwapFeeDenominator,
		state.Fees.OwnerTradeFeeNumerator, state.Fees.OwnerTradeFeeDenominator,
		state.Fees.OwnerWithdrawFeeNumerator, state.Fees.OwnerWithdrawFeeDenominator,
		state.Fees.HostFeeNumerator, state.Fees.HostFeeDenominator,
	} {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], field)
		data = append(data, buf[:]...)
	}
	return data
}
