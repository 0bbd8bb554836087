package genesis

import (
	"math"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/umbra-chain/go-umbra/umbra"
)

// TestValidateClean verifies that a consistent fixture passes with zero
// violations.
func TestValidateClean(t *testing.T) {
	require.Empty(t, Validate(FakeSnapshot(1, 10, 5, 7)))
}

// TestValidateEmptyCollections verifies that empty collections are valid;
// a genesis may consist of rules alone.
func TestValidateEmptyCollections(t *testing.T) {
	require.Empty(t, Validate(FakeSnapshot(1, 0, 0, 0)))
}

// TestValidateIsExhaustive verifies that validation reports every violation
// in a snapshot, not just the first.
func TestValidateIsExhaustive(t *testing.T) {
	require := require.New(t)

	// One malformed coin, one duplicate utxo, one integrity break and one
	// malformed message.
	s := FakeSnapshot(2, 4, 2, 3)
	s.Coins[0].Owner = common.Address{}
	s.Coins[2].ID = s.Coins[1].ID
	s.Contracts[1].Code = append(s.Contracts[1].Code, 0xFF)
	s.Messages[1].Recipient = common.Address{}

	violations := Validate(s)
	require.Len(violations, 4)

	var malformed, duplicates, integrity int
	for _, err := range violations {
		switch err.(type) {
		case *MalformedRecordError:
			malformed++
		case *DuplicateKeyError:
			duplicates++
		case *IntegrityMismatchError:
			integrity++
		}
	}
	require.Equal(2, malformed)
	require.Equal(1, duplicates)
	require.Equal(1, integrity)
}

// TestValidateDuplicateIndices verifies that duplicate reports carry both
// offending indices in declared order.
func TestValidateDuplicateIndices(t *testing.T) {
	require := require.New(t)

	s := FakeSnapshot(3, 5, 0, 0)
	s.Coins[4].ID = s.Coins[1].ID

	violations := Validate(s)
	require.Len(violations, 1)
	dup, ok := violations[0].(*DuplicateKeyError)
	require.True(ok)
	require.Equal(TableCoins, dup.Table)
	require.Equal(1, dup.First)
	require.Equal(4, dup.Second)
}

// TestValidateContractIntegrity verifies the ContractID equation on code,
// salt and storage.
func TestValidateContractIntegrity(t *testing.T) {
	require := require.New(t)

	s := FakeSnapshot(4, 0, 1, 0)
	require.Empty(Validate(s))

	// Declared ID no longer matches after storage mutation.
	s.Contracts[0].Storage = append(s.Contracts[0].Storage, StorageSlot{
		Key:   common.HexToHash("0x01"),
		Value: common.HexToHash("0x02"),
	})
	violations := Validate(s)
	require.Len(violations, 1)
	mismatch, ok := violations[0].(*IntegrityMismatchError)
	require.True(ok)
	require.Equal(s.Contracts[0].ContractID, mismatch.Declared)
	require.NotEqual(mismatch.Declared, mismatch.Computed)

	// Fixing the declared ID makes it pass again.
	s.Contracts[0].ContractID = mismatch.Computed
	require.Empty(Validate(s))
}

// TestValidateSupplyBoundary verifies the per-asset overflow rule: a total
// of exactly MaxUint64 is accepted, one more fails.
func TestValidateSupplyBoundary(t *testing.T) {
	require := require.New(t)

	asset := common.HexToHash("0xaa")
	owner := common.HexToAddress("0x01")
	coinsAt := func(amounts ...uint64) *GenesisSnapshot {
		s := FakeSnapshot(5, 0, 0, 0)
		for i, amount := range amounts {
			s.Coins = append(s.Coins, CoinConfig{
				ID:      UtxoID{TxHash: common.BytesToHash([]byte{byte(i + 1)}), Index: 0},
				Owner:   owner,
				Amount:  amount,
				AssetID: asset,
			})
		}
		return s
	}

	// Exactly MaxUint64 in total: valid.
	require.Empty(Validate(coinsAt(math.MaxUint64-10, 10)))

	// MaxUint64 + 1: overflow.
	violations := Validate(coinsAt(math.MaxUint64-10, 11))
	require.Len(violations, 1)
	overflow, ok := violations[0].(*OverflowError)
	require.True(ok)
	require.Equal(asset, overflow.AssetID)
	require.Equal("18446744073709551616", overflow.Total)
}

// TestValidateNonceScopes verifies nonce uniqueness under both scopes.
func TestValidateNonceScopes(t *testing.T) {
	require := require.New(t)

	s := FakeSnapshot(6, 0, 0, 0)
	s.Messages = []MessageConfig{
		{Sender: common.HexToAddress("0x01"), Recipient: common.HexToAddress("0x02"), Nonce: 7},
		{Sender: common.HexToAddress("0x03"), Recipient: common.HexToAddress("0x02"), Nonce: 7},
	}

	// Same nonce, different senders: fine per-sender, fatal globally.
	s.NonceScope = NonceScopePerSender
	require.Empty(Validate(s))

	s.NonceScope = NonceScopeGlobal
	violations := Validate(s)
	require.Len(violations, 1)
	dup, ok := violations[0].(*DuplicateKeyError)
	require.True(ok)
	require.Equal(TableMessages, dup.Table)
	require.Equal(0, dup.First)
	require.Equal(1, dup.Second)

	// Same sender and nonce fails under both scopes.
	s.Messages[1].Sender = s.Messages[0].Sender
	s.NonceScope = NonceScopePerSender
	require.Len(Validate(s), 1)
}

// TestValidateConsensusRules verifies the consensus sanity checks.
func TestValidateConsensusRules(t *testing.T) {
	require := require.New(t)

	// PoA without authorities is invalid.
	s := FakeSnapshot(7, 0, 0, 0)
	s.Rules.Consensus.Authorities = nil
	require.NotEmpty(Validate(s))

	// Zero weight is invalid.
	s = FakeSnapshot(7, 0, 0, 0)
	s.Rules.Consensus.Authorities[1].Weight = 0
	require.Len(Validate(s), 1)

	// Duplicate validator IDs are invalid.
	s = FakeSnapshot(7, 0, 0, 0)
	s.Rules.Consensus.Authorities[1].ID = s.Rules.Consensus.Authorities[0].ID
	require.Len(Validate(s), 1)

	// Mode "none" must not declare authorities.
	s = FakeSnapshot(7, 0, 0, 0)
	s.Rules.Consensus.Mode = umbra.ConsensusNone
	require.Len(Validate(s), 1)
	s.Rules.Consensus.Authorities = nil
	require.Empty(Validate(s))

	// Unknown mode is invalid.
	s = FakeSnapshot(7, 0, 0, 0)
	s.Rules.Consensus.Mode = "pow"
	require.Len(Validate(s), 1)
}

// TestValidateRulesSizeLimits verifies that variable-length rule fields are
// bounded to what the canonical decoder accepts: an oversized field would
// marshal into a blob no node could decode back.
func TestValidateRulesSizeLimits(t *testing.T) {
	require := require.New(t)

	s := FakeSnapshot(9, 0, 0, 0)
	s.Rules.Name = strings.Repeat("n", 300)
	violations := Validate(s)
	require.Len(violations, 1)
	malformed, ok := violations[0].(*MalformedRecordError)
	require.True(ok)
	require.Equal("Name", malformed.Field)

	// At exactly the cap the snapshot is valid and its canonical form
	// decodes back.
	s.Rules.Name = strings.Repeat("n", 256)
	require.Empty(Validate(s))
	raw, err := s.MarshalBinary()
	require.NoError(err)
	require.NoError(new(GenesisSnapshot).UnmarshalBinary(raw))

	// Oversized authority keys are rejected the same way.
	s = FakeSnapshot(9, 0, 0, 0)
	s.Rules.Consensus.Authorities[0].PubKey.Raw = make([]byte, 300)
	violations = Validate(s)
	require.Len(violations, 1)
	malformed, ok = violations[0].(*MalformedRecordError)
	require.True(ok)
	require.Equal("PubKey", malformed.Field)
}

// TestValidateGenesisHeights verifies that record heights may not exceed the
// snapshot's declared genesis heights.
func TestValidateGenesisHeights(t *testing.T) {
	require := require.New(t)

	s := FakeSnapshot(10, 3, 0, 3)
	require.Empty(Validate(s))

	s.Messages[1].DaHeight = s.DaHeight + 1
	violations := Validate(s)
	require.Len(violations, 1)
	malformed, ok := violations[0].(*MalformedRecordError)
	require.True(ok)
	require.Equal(TableMessages, malformed.Table)
	require.Equal("DaHeight", malformed.Field)

	// Exactly the genesis DA height is still valid.
	s.Messages[1].DaHeight = s.DaHeight
	require.Empty(Validate(s))

	s.Coins[0].Maturity = s.Height + 1
	violations = Validate(s)
	require.Len(violations, 1)
	malformed, ok = violations[0].(*MalformedRecordError)
	require.True(ok)
	require.Equal(TableCoins, malformed.Table)
	require.Equal("Maturity", malformed.Field)
}

// TestValidateCodeLimits verifies the local bytecode predicates.
func TestValidateCodeLimits(t *testing.T) {
	require := require.New(t)

	s := FakeSnapshot(8, 0, 1, 0)
	s.Contracts[0].Code = nil
	violations := Validate(s)
	// Empty bytecode, and consequently a broken ID.
	require.Len(violations, 2)
	malformed, ok := violations[0].(*MalformedRecordError)
	require.True(ok)
	require.Equal("Code", malformed.Field)
}
