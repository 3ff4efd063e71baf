// Package txbuilder constructs unsigned instructions for balance transfers
// and on-chain bid placement. It performs no I/O and no signing: identical
// inputs always produce byte-identical output.
package txbuilder

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/yukti-app/walletd/core"
)

// escrowSeed is the fixed seed tag shared with the settlement program so both
// sides derive the same escrow account without coordination.
const escrowSeed = "escrow"

// placeBidDiscriminator is the Anchor-style method discriminator for the
// escrow program's place_bid instruction: sha256("global:place_bid")[..8].
// It must match whatever the deployed program expects.
var placeBidDiscriminator = func() [8]byte {
	sum := sha256.Sum256([]byte("global:place_bid"))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}()

// PlaceBidParams describes one escrowed bid on a poll option.
type PlaceBidParams struct {
	PollID         string
	OptionID       string
	AmountLamports uint64
	Bidder         solana.PublicKey
	ProgramID      solana.PublicKey
}

// BuildTransfer returns a system-program transfer of lamports from one
// account to another. The destination is validated syntactically before
// anything reaches the network.
func BuildTransfer(from solana.PublicKey, to string, lamports uint64) (solana.Instruction, error) {
	if lamports == 0 {
		return nil, core.Errorf(core.KindInvalidAmount, "transfer amount must be greater than zero")
	}
	recipient, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return nil, core.NewError(core.KindInvalidAddress, fmt.Sprintf("invalid recipient address %q", to), err)
	}
	return system.NewTransferInstruction(lamports, from, recipient).Build(), nil
}

// DeriveEscrowAddress computes the program-derived escrow account for a
// (poll, bidder) pair. Deterministic: identical inputs always yield the same
// address and bump.
func DeriveEscrowAddress(programID solana.PublicKey, pollID string, bidder solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{
		[]byte(escrowSeed),
		[]byte(pollID),
		bidder.Bytes(),
	}
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive escrow address: %w", err)
	}
	return addr, bump, nil
}

// BuildPlaceBid returns the escrow program invocation that locks
// AmountLamports against a poll option. Accounts, in order: bidder (signer,
// writable), escrow (writable), system program (readonly).
func BuildPlaceBid(p PlaceBidParams) (solana.Instruction, error) {
	if p.AmountLamports == 0 {
		return nil, core.Errorf(core.KindInvalidAmount, "bid amount must be greater than zero")
	}
	if p.Bidder.IsZero() {
		return nil, core.Errorf(core.KindInvalidAddress, "bidder address is required")
	}
	if p.PollID == "" || p.OptionID == "" {
		return nil, fmt.Errorf("poll id and option id are required")
	}

	escrow, _, err := DeriveEscrowAddress(p.ProgramID, p.PollID, p.Bidder)
	if err != nil {
		return nil, err
	}

	data, err := encodePlaceBid(p.AmountLamports, p.PollID, p.OptionID)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(p.Bidder, true, true),
		solana.NewAccountMeta(escrow, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(p.ProgramID, accounts, data), nil
}

// encodePlaceBid packs the fixed-width instruction payload: 8-byte method
// discriminator, u64-LE amount, then u16-LE length-prefixed poll and option
// ids.
func encodePlaceBid(amountLamports uint64, pollID, optionID string) ([]byte, error) {
	if len(pollID) > 0xffff || len(optionID) > 0xffff {
		return nil, fmt.Errorf("poll or option id exceeds the u16 length prefix")
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)

	if err := enc.WriteBytes(placeBidDiscriminator[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(amountLamports, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(uint16(len(pollID)), binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes([]byte(pollID), false); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(uint16(len(optionID)), binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes([]byte(optionID), false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewTransaction assembles instructions into an unsigned transaction with the
// given fee payer and recent block reference. The block reference should be
// fetched immediately before signing: it expires.
func NewTransaction(instructions []solana.Instruction, feePayer solana.PublicKey, recentBlockhash solana.Hash) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(instructions, recentBlockhash, solana.TransactionPayer(feePayer))
	if err != nil {
		return nil, fmt.Errorf("failed to assemble transaction: %w", err)
	}
	return tx, nil
}
