// Package umbra defines the network rules and configuration parameters for
// the Umbra blockchain network.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Block production rules and limits
//   - Economic parameters including the minimum gas price
//   - Consensus configuration: the operating mode and, for proof-of-authority
//     networks, the initial authority set fixed at genesis
//
// The Rules type serves as the central configuration structure that defines
// all consensus-critical parameters for a given Umbra network deployment.
// Rules are fixed by the genesis snapshot and are immutable once a genesis
// has been committed for a chain ID.
package umbra

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/common"

	"github.com/umbra-chain/go-umbra/inter"
	"github.com/umbra-chain/go-umbra/inter/validatorpk"
)

// Network identification constants
const (
	// MainNetworkID is the chain ID for the Umbra mainnet.
	MainNetworkID uint64 = 0xdb

	// TestNetworkID is the chain ID for the Umbra testnet.
	TestNetworkID uint64 = 0xdb2

	// FakeNetworkID is the chain ID for local/fake networks used in testing.
	FakeNetworkID uint64 = 0xdb3
)

// Consensus operating modes.
const (
	// ConsensusPoA runs the proof-of-authority consensus module; the rules
	// must carry a non-empty authority set.
	ConsensusPoA = "poa"

	// ConsensusNone disables block production; used by tools that only
	// inspect or commit genesis state.
	ConsensusNone = "none"
)

// ChainID identifies an Umbra network. At most one genesis commitment may
// exist per ChainID in a given store.
type ChainID uint64

// Authority is one entry of the initial proof-of-authority validator set.
type Authority struct {
	// ID is the validator's unique numeric identifier.
	ID idx.ValidatorID

	// PubKey is the validator's typed public key.
	PubKey validatorpk.PubKey

	// Weight is the validator's voting weight; must be positive.
	Weight pos.Weight
}

// ConsensusRules selects the consensus mode and fixes the initial
// authority set for proof-of-authority networks.
type ConsensusRules struct {
	// Mode is ConsensusPoA or ConsensusNone.
	Mode string

	// Authorities is the initial validator set. Required and non-empty
	// when Mode is ConsensusPoA; must be empty otherwise.
	Authorities []Authority
}

// BlocksRules contains rules for block production.
type BlocksRules struct {
	// MaxBlockGas is the technical hard limit for gas per block.
	MaxBlockGas uint64

	// BlockPeriod is the target interval between consecutive blocks.
	BlockPeriod inter.Timestamp
}

// EconomyRules contains the economic parameters for the network.
type EconomyRules struct {
	// MinGasPrice is the minimum gas price (in wei) for transactions.
	// Transactions with lower gas prices are rejected.
	MinGasPrice *big.Int
}

// Rules describes the complete configuration for an Umbra network.
// This is the main type used throughout the codebase to access network
// parameters.
//
// Note: Rules contains non-copiable fields (*big.Int, slices); use Copy()
// to obtain an independent instance.
type Rules struct {
	// Name is the network name identifier (e.g. "main", "test", "fake").
	Name string

	// NetworkID is the chain ID of the network.
	NetworkID uint64

	// NativeAssetID is the asset ID of the network's base coin.
	NativeAssetID common.Hash

	// Blockchain options
	Blocks BlocksRules

	// Economy options
	Economy EconomyRules

	// Consensus options
	Consensus ConsensusRules
}

// MainNetRules returns the configuration rules for the Umbra mainnet.
// The authority set is supplied by the mainnet genesis file, not hardcoded.
func MainNetRules() Rules {
	return Rules{
		Name:          "main",
		NetworkID:     MainNetworkID,
		NativeAssetID: common.Hash{},
		Blocks:        DefaultBlocksRules(),
		Economy:       DefaultEconomyRules(),
		Consensus: ConsensusRules{
			Mode: ConsensusPoA,
		},
	}
}

// TestNetRules returns the configuration rules for the Umbra testnet.
// Testnet uses the same block and economy parameters as mainnet.
func TestNetRules() Rules {
	return Rules{
		Name:          "test",
		NetworkID:     TestNetworkID,
		NativeAssetID: common.Hash{},
		Blocks:        DefaultBlocksRules(),
		Economy:       DefaultEconomyRules(),
		Consensus: ConsensusRules{
			Mode: ConsensusPoA,
		},
	}
}

// FakeNetRules returns the configuration rules for fake/local networks.
// Fake networks use accelerated block production and a zero minimum gas
// price for faster testing and development. The caller supplies the
// deterministic authority set (see genesis.FakeSnapshot).
func FakeNetRules() Rules {
	return Rules{
		Name:          "fake",
		NetworkID:     FakeNetworkID,
		NativeAssetID: common.Hash{},
		Blocks: BlocksRules{
			MaxBlockGas: 20500000,
			BlockPeriod: inter.Timestamp(100 * time.Millisecond),
		},
		Economy: EconomyRules{
			MinGasPrice: big.NewInt(0),
		},
		Consensus: ConsensusRules{
			Mode: ConsensusPoA,
		},
	}
}

// DefaultBlocksRules returns the mainnet block production configuration.
func DefaultBlocksRules() BlocksRules {
	return BlocksRules{
		MaxBlockGas: 20500000, // 20.5M gas per block
		BlockPeriod: inter.Timestamp(1 * time.Second),
	}
}

// DefaultEconomyRules returns the mainnet economy configuration.
func DefaultEconomyRules() EconomyRules {
	return EconomyRules{
		MinGasPrice: big.NewInt(1e9), // 1 Gwei minimum gas price
	}
}

// Copy creates a deep copy of Rules.
// This is necessary because Rules contains pointer and slice types that
// would be shared in a shallow copy, leading to unintended mutations.
func (r Rules) Copy() Rules {
	cp := r
	if r.Economy.MinGasPrice != nil {
		cp.Economy.MinGasPrice = new(big.Int).Set(r.Economy.MinGasPrice)
	}
	if r.Consensus.Authorities != nil {
		cp.Consensus.Authorities = make([]Authority, len(r.Consensus.Authorities))
		for i, a := range r.Consensus.Authorities {
			cp.Consensus.Authorities[i] = Authority{
				ID:     a.ID,
				PubKey: a.PubKey.Copy(),
				Weight: a.Weight,
			}
		}
	}
	return cp
}

// String returns a JSON representation of Rules for debugging and logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
