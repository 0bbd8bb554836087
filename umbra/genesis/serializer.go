package genesis

import (
	"bytes"
	"errors"
	"math/big"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/umbra-chain/go-umbra/inter"
	"github.com/umbra-chain/go-umbra/inter/validatorpk"
	"github.com/umbra-chain/go-umbra/umbra"
	"github.com/umbra-chain/go-umbra/utils/cser"
)

// SnapshotVersion is the current version of the canonical snapshot encoding.
// A version bump changes the commitment hash of otherwise identical state.
const SnapshotVersion = 1

var (
	ErrUnknownSnapshotVersion = errors.New("unknown genesis snapshot version: client is likely outdated")
	ErrUnknownConsensusMode   = errors.New("unknown consensus mode in genesis rules")
	ErrUnknownNonceScope      = errors.New("unknown nonce scope in genesis snapshot")
)

// Consensus mode wire tags.
const (
	consensusModeNone uint8 = 0
	consensusModePoA  uint8 = 1
)

// Decoder caps for the variable-length rule fields. Validate enforces the
// same limits, so every validated snapshot decodes back from its canonical
// form.
const (
	maxRulesNameLen = 256
	maxPubkeyLen    = 256
)

// MarshalCSER serializes one coin record.
//
// Field order is fixed; collections are sorted before encoding so that the
// commitment hash is independent of the declared order.
func (c *CoinConfig) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(c.ID.TxHash[:])
	w.U32(c.ID.Index)
	w.FixedBytes(c.Owner[:])
	w.U64(c.Amount)
	w.FixedBytes(c.AssetID[:])
	w.U64(uint64(c.Maturity))
	return nil
}

// UnmarshalCSER deserializes one coin record.
func (c *CoinConfig) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(c.ID.TxHash[:])
	c.ID.Index = r.U32()
	r.FixedBytes(c.Owner[:])
	c.Amount = r.U64()
	r.FixedBytes(c.AssetID[:])
	c.Maturity = idx.Block(r.U64())
	return nil
}

// MarshalCSER serializes one contract record, storage and balances included.
func (c *ContractConfig) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(c.ContractID[:])
	w.FixedBytes(c.Salt[:])
	w.SliceBytes(c.Code)
	w.U32(uint32(len(c.Storage)))
	for _, slot := range c.Storage {
		w.FixedBytes(slot.Key[:])
		w.FixedBytes(slot.Value[:])
	}
	w.U32(uint32(len(c.Balances)))
	for _, b := range c.Balances {
		w.FixedBytes(b.AssetID[:])
		w.U64(b.Amount)
	}
	return nil
}

// UnmarshalCSER deserializes one contract record.
func (c *ContractConfig) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(c.ContractID[:])
	r.FixedBytes(c.Salt[:])
	c.Code = r.SliceBytes(MaxCodeSize)
	nSlots := r.U32()
	c.Storage = nil
	for i := uint32(0); i < nSlots; i++ {
		var slot StorageSlot
		r.FixedBytes(slot.Key[:])
		r.FixedBytes(slot.Value[:])
		c.Storage = append(c.Storage, slot)
	}
	nBalances := r.U32()
	c.Balances = nil
	for i := uint32(0); i < nBalances; i++ {
		var b BalanceEntry
		r.FixedBytes(b.AssetID[:])
		b.Amount = r.U64()
		c.Balances = append(c.Balances, b)
	}
	return nil
}

// MarshalCSER serializes one bridge message record.
func (m *MessageConfig) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(m.Sender[:])
	w.FixedBytes(m.Recipient[:])
	w.U64(m.Nonce)
	w.U64(m.Amount)
	w.SliceBytes(m.Payload)
	w.U64(m.DaHeight)
	return nil
}

// UnmarshalCSER deserializes one bridge message record.
func (m *MessageConfig) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(m.Sender[:])
	r.FixedBytes(m.Recipient[:])
	m.Nonce = r.U64()
	m.Amount = r.U64()
	m.Payload = r.SliceBytes(MaxPayloadSize)
	m.DaHeight = r.U64()
	return nil
}

// marshalRulesCSER writes the rules section of the snapshot.
func marshalRulesCSER(w *cser.Writer, r umbra.Rules) error {
	w.SliceBytes([]byte(r.Name))
	w.U64(r.NetworkID)
	w.FixedBytes(r.NativeAssetID[:])
	w.U64(r.Blocks.MaxBlockGas)
	w.U64(uint64(r.Blocks.BlockPeriod))
	minGasPrice := r.Economy.MinGasPrice
	if minGasPrice == nil {
		minGasPrice = new(big.Int)
	}
	w.BigInt(minGasPrice)
	switch r.Consensus.Mode {
	case umbra.ConsensusNone:
		w.U8(consensusModeNone)
	case umbra.ConsensusPoA:
		w.U8(consensusModePoA)
	default:
		return ErrUnknownConsensusMode
	}
	w.U32(uint32(len(r.Consensus.Authorities)))
	for _, a := range r.Consensus.Authorities {
		w.U32(uint32(a.ID))
		w.SliceBytes(a.PubKey.Bytes())
		w.U64(uint64(a.Weight))
	}
	return nil
}

// unmarshalRulesCSER reads the rules section of the snapshot.
func unmarshalRulesCSER(r *cser.Reader) (umbra.Rules, error) {
	rules := umbra.Rules{}
	rules.Name = string(r.SliceBytes(maxRulesNameLen))
	rules.NetworkID = r.U64()
	r.FixedBytes(rules.NativeAssetID[:])
	rules.Blocks.MaxBlockGas = r.U64()
	rules.Blocks.BlockPeriod = inter.Timestamp(r.U64())
	rules.Economy.MinGasPrice = r.BigInt()
	switch r.U8() {
	case consensusModeNone:
		rules.Consensus.Mode = umbra.ConsensusNone
	case consensusModePoA:
		rules.Consensus.Mode = umbra.ConsensusPoA
	default:
		return rules, ErrUnknownConsensusMode
	}
	nAuthorities := r.U32()
	for i := uint32(0); i < nAuthorities; i++ {
		id := idx.ValidatorID(r.U32())
		pk, err := validatorpk.FromBytes(r.SliceBytes(maxPubkeyLen))
		if err != nil {
			return rules, err
		}
		weight := pos.Weight(r.U64())
		rules.Consensus.Authorities = append(rules.Consensus.Authorities, umbra.Authority{
			ID:     id,
			PubKey: pk,
			Weight: weight,
		})
	}
	return rules, nil
}

// MarshalCSER serializes the whole snapshot in canonical form: version,
// rules, time, nonce scope, then the three collections sorted by their
// unique keys.
func (s *GenesisSnapshot) MarshalCSER(w *cser.Writer) error {
	w.U8(SnapshotVersion)
	if err := marshalRulesCSER(w, s.Rules); err != nil {
		return err
	}
	w.U64(uint64(s.Time))
	w.U64(uint64(s.Height))
	w.U64(s.DaHeight)
	if s.NonceScope > NonceScopeGlobal {
		return ErrUnknownNonceScope
	}
	w.U8(uint8(s.NonceScope))

	coins := s.sortedCoins()
	w.U32(uint32(len(coins)))
	for i := range coins {
		if err := coins[i].MarshalCSER(w); err != nil {
			return err
		}
	}

	contracts := s.sortedContracts()
	w.U32(uint32(len(contracts)))
	for i := range contracts {
		if err := contracts[i].MarshalCSER(w); err != nil {
			return err
		}
	}

	messages := s.sortedMessages()
	w.U32(uint32(len(messages)))
	for i := range messages {
		if err := messages[i].MarshalCSER(w); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalCSER deserializes a canonical snapshot.
func (s *GenesisSnapshot) UnmarshalCSER(r *cser.Reader) error {
	if v := r.U8(); v != SnapshotVersion {
		return ErrUnknownSnapshotVersion
	}
	rules, err := unmarshalRulesCSER(r)
	if err != nil {
		return err
	}
	s.Rules = rules
	s.Time = inter.Timestamp(r.U64())
	s.Height = idx.Block(r.U64())
	s.DaHeight = r.U64()
	scope := NonceScope(r.U8())
	if scope > NonceScopeGlobal {
		return ErrUnknownNonceScope
	}
	s.NonceScope = scope

	nCoins := r.U32()
	s.Coins = nil
	for i := uint32(0); i < nCoins; i++ {
		var c CoinConfig
		if err := c.UnmarshalCSER(r); err != nil {
			return err
		}
		s.Coins = append(s.Coins, c)
	}

	nContracts := r.U32()
	s.Contracts = nil
	for i := uint32(0); i < nContracts; i++ {
		var c ContractConfig
		if err := c.UnmarshalCSER(r); err != nil {
			return err
		}
		s.Contracts = append(s.Contracts, c)
	}

	nMessages := r.U32()
	s.Messages = nil
	for i := uint32(0); i < nMessages; i++ {
		var m MessageConfig
		if err := m.UnmarshalCSER(r); err != nil {
			return err
		}
		s.Messages = append(s.Messages, m)
	}
	return nil
}

// MarshalBinary returns the canonical byte form of the snapshot. Two
// snapshots describing the same state produce identical bytes regardless of
// the declared collection order.
func (s *GenesisSnapshot) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(s.MarshalCSER)
}

// UnmarshalBinary parses the canonical byte form, rejecting non-canonical
// encodings.
func (s *GenesisSnapshot) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, s.UnmarshalCSER)
}

// CommitmentHash is the network-wide genesis commitment: the Keccak256 hash
// of the canonical snapshot encoding.
func (s *GenesisSnapshot) CommitmentHash() (common.Hash, error) {
	raw, err := s.MarshalBinary()
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(crypto.Keccak256(raw)), nil
}

// sortedCoins returns the coins ordered by UtxoID bytes. The declared slice
// is not mutated.
func (s *GenesisSnapshot) sortedCoins() []CoinConfig {
	sorted := make([]CoinConfig, len(s.Coins))
	copy(sorted, s.Coins)
	sort.Slice(sorted, func(a, b int) bool {
		return bytes.Compare(sorted[a].ID.Bytes(), sorted[b].ID.Bytes()) < 0
	})
	return sorted
}

// sortedContracts returns the contracts ordered by ContractID.
func (s *GenesisSnapshot) sortedContracts() []ContractConfig {
	sorted := make([]ContractConfig, len(s.Contracts))
	copy(sorted, s.Contracts)
	sort.Slice(sorted, func(a, b int) bool {
		return bytes.Compare(sorted[a].ContractID[:], sorted[b].ContractID[:]) < 0
	})
	return sorted
}

// sortedMessages returns the messages ordered by (Sender, Nonce).
func (s *GenesisSnapshot) sortedMessages() []MessageConfig {
	sorted := make([]MessageConfig, len(s.Messages))
	copy(sorted, s.Messages)
	sort.Slice(sorted, func(a, b int) bool {
		return messageKeyLess(&sorted[a], &sorted[b])
	})
	return sorted
}

// ToTableEntry encodes the coin as an independent storage chunk keyed by its
// UtxoID.
func (c *CoinConfig) ToTableEntry() (TableEntry, error) {
	value, err := cser.MarshalBinaryAdapter(c.MarshalCSER)
	if err != nil {
		return TableEntry{}, err
	}
	return TableEntry{Table: TableCoins, Key: c.ID.Bytes(), Value: value}, nil
}

// ToTableEntry encodes the contract as an independent storage chunk keyed by
// its ContractID.
func (c *ContractConfig) ToTableEntry() (TableEntry, error) {
	value, err := cser.MarshalBinaryAdapter(c.MarshalCSER)
	if err != nil {
		return TableEntry{}, err
	}
	return TableEntry{Table: TableContracts, Key: common.CopyBytes(c.ContractID[:]), Value: value}, nil
}

// ToTableEntry encodes the message as an independent storage chunk keyed by
// (Sender, Nonce).
func (m *MessageConfig) ToTableEntry() (TableEntry, error) {
	value, err := cser.MarshalBinaryAdapter(m.MarshalCSER)
	if err != nil {
		return TableEntry{}, err
	}
	key := m.nonceKey(NonceScopePerSender)
	return TableEntry{Table: TableMessages, Key: key[:], Value: value}, nil
}

// StorageRoot computes the hash commitment of a contract's storage: the
// Keccak256 of the (key, value) pairs sorted by key, or the zero hash when
// the contract declares no storage.
func StorageRoot(storage []StorageSlot) common.Hash {
	if len(storage) == 0 {
		return common.Hash{}
	}
	sorted := make([]StorageSlot, len(storage))
	copy(sorted, storage)
	sort.Slice(sorted, func(a, b int) bool {
		return bytes.Compare(sorted[a].Key[:], sorted[b].Key[:]) < 0
	})
	h := make([]byte, 0, len(sorted)*64)
	for _, slot := range sorted {
		h = append(h, slot.Key[:]...)
		h = append(h, slot.Value[:]...)
	}
	return common.BytesToHash(crypto.Keccak256(h))
}

// ComputeContractID derives the contract's ID from its code, salt and
// storage root. The declared ContractID must match or validation fails.
func ComputeContractID(code []byte, salt common.Hash, storageRoot common.Hash) common.Hash {
	return common.BytesToHash(crypto.Keccak256(code, salt[:], storageRoot[:]))
}
