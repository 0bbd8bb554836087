// Package genesis implements the Umbra genesis state core: the declarative
// snapshot of initial chain state, its validation, its canonical encoding
// used to derive the network-wide commitment hash, and the builder that
// streams the validated state into storage as one atomic batch.
package genesis

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"

	"github.com/umbra-chain/go-umbra/inter"
	"github.com/umbra-chain/go-umbra/umbra"
)

// Size limits for variable-length record fields.
const (
	// MaxCodeSize is the maximum contract bytecode size in bytes.
	MaxCodeSize = 100 * 1024

	// MaxPayloadSize is the maximum bridge message payload size in bytes.
	MaxPayloadSize = 64 * 1024
)

// NonceScope declares how message nonces are scoped for uniqueness checks.
type NonceScope uint8

const (
	// NonceScopePerSender requires (Sender, Nonce) pairs to be unique.
	// This is the default.
	NonceScopePerSender NonceScope = iota

	// NonceScopeGlobal requires nonces to be unique across all senders.
	NonceScopeGlobal
)

func (s NonceScope) String() string {
	switch s {
	case NonceScopePerSender:
		return "per-sender"
	case NonceScopeGlobal:
		return "global"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// UtxoID uniquely identifies a coin output: the hash of the transaction
// said to have created it and the output index within that transaction.
// Genesis coins carry synthetic IDs; uniqueness across the snapshot is what
// matters.
type UtxoID struct {
	TxHash common.Hash
	Index  uint32
}

// Bytes returns the canonical 36-byte key form: TxHash followed by the
// big-endian output index.
func (id UtxoID) Bytes() []byte {
	b := make([]byte, 36)
	copy(b, id.TxHash[:])
	binary.BigEndian.PutUint32(b[32:], id.Index)
	return b
}

func (id UtxoID) String() string {
	return fmt.Sprintf("%s:%d", id.TxHash.TerminalString(), id.Index)
}

// CoinConfig declares one initial coin (UTXO).
type CoinConfig struct {
	// ID must be unique across the snapshot.
	ID UtxoID

	// Owner is the address that may spend the coin. Must be non-zero.
	Owner common.Address

	// Amount is the coin's value in the smallest unit of its asset.
	Amount uint64

	// AssetID identifies the asset the coin is denominated in.
	AssetID common.Hash

	// Maturity is the block height before which the coin cannot be spent.
	// Zero means spendable immediately.
	Maturity idx.Block
}

// check is the record's local validity predicate; it inspects only this
// record and stops at the first violated field.
func (c *CoinConfig) check(i int) *MalformedRecordError {
	if c.Owner == (common.Address{}) {
		return &MalformedRecordError{TableCoins, i, "Owner", "zero address"}
	}
	return nil
}

// StorageSlot is one contract storage cell.
type StorageSlot struct {
	Key   common.Hash
	Value common.Hash
}

// BalanceEntry is one asset balance held by a contract.
type BalanceEntry struct {
	AssetID common.Hash
	Amount  uint64
}

// ContractConfig declares one pre-deployed contract.
type ContractConfig struct {
	// ContractID must be unique across the snapshot and must equal the
	// hash recomputed from Code, Salt and Storage (see ComputeContractID).
	ContractID common.Hash

	// Salt disambiguates deployments of identical code.
	Salt common.Hash

	// Code is the contract bytecode. Must be non-empty.
	Code []byte

	// Storage is the contract's initial storage. Keys must be unique
	// within the contract.
	Storage []StorageSlot

	// Balances are the contract's initial asset balances.
	Balances []BalanceEntry
}

func (c *ContractConfig) check(i int) *MalformedRecordError {
	if len(c.Code) == 0 {
		return &MalformedRecordError{TableContracts, i, "Code", "empty bytecode"}
	}
	if len(c.Code) > MaxCodeSize {
		return &MalformedRecordError{TableContracts, i, "Code",
			fmt.Sprintf("bytecode exceeds %d bytes", MaxCodeSize)}
	}
	seen := make(map[common.Hash]bool, len(c.Storage))
	for _, slot := range c.Storage {
		if seen[slot.Key] {
			return &MalformedRecordError{TableContracts, i, "Storage",
				fmt.Sprintf("duplicate storage key %s", slot.Key.TerminalString())}
		}
		seen[slot.Key] = true
	}
	return nil
}

// MessageConfig declares one in-flight DA-layer bridge message.
type MessageConfig struct {
	// Sender is the originating address on the DA layer. Must be non-zero.
	Sender common.Address

	// Recipient is the destination address. Must be non-zero.
	Recipient common.Address

	// Nonce orders messages; its uniqueness scope is the snapshot's
	// NonceScope.
	Nonce uint64

	// Amount is the value carried by the message.
	Amount uint64

	// Payload is the opaque message data; may be empty.
	Payload []byte

	// DaHeight is the DA-layer block height the message was observed at.
	DaHeight uint64
}

func (m *MessageConfig) check(i int) *MalformedRecordError {
	if m.Sender == (common.Address{}) {
		return &MalformedRecordError{TableMessages, i, "Sender", "zero address"}
	}
	if m.Recipient == (common.Address{}) {
		return &MalformedRecordError{TableMessages, i, "Recipient", "zero address"}
	}
	if len(m.Payload) > MaxPayloadSize {
		return &MalformedRecordError{TableMessages, i, "Payload",
			fmt.Sprintf("payload exceeds %d bytes", MaxPayloadSize)}
	}
	return nil
}

// nonceKey is the message's uniqueness key under the given scope.
func (m *MessageConfig) nonceKey(scope NonceScope) [28]byte {
	var k [28]byte
	if scope == NonceScopePerSender {
		copy(k[:20], m.Sender[:])
	}
	binary.BigEndian.PutUint64(k[20:], m.Nonce)
	return k
}

// GenesisSnapshot is the complete declarative genesis state of one chain.
// It is constructed once from a config source and consumed once by the
// Builder; the slices keep their declared order until canonical encoding
// sorts them.
type GenesisSnapshot struct {
	Rules umbra.Rules
	Time  inter.Timestamp

	// Height is the block height the chain starts at. Coin maturities may
	// not exceed it.
	Height idx.Block

	// DaHeight is the DA-layer block height the genesis state was derived
	// at. Message DaHeight values may not exceed it.
	DaHeight uint64

	NonceScope NonceScope

	Coins     []CoinConfig
	Contracts []ContractConfig
	Messages  []MessageConfig
}

// ChainID returns the network identifier the snapshot belongs to.
func (s *GenesisSnapshot) ChainID() umbra.ChainID {
	return umbra.ChainID(s.Rules.NetworkID)
}

// messageKeyLess orders messages by (Sender, Nonce); the canonical order
// regardless of the nonce scope.
func messageKeyLess(a, b *MessageConfig) bool {
	if c := bytes.Compare(a.Sender[:], b.Sender[:]); c != 0 {
		return c < 0
	}
	return a.Nonce < b.Nonce
}
