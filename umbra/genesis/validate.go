package genesis

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/umbra-chain/go-umbra/umbra"
)

// Validate performs an exhaustive pass over the snapshot and returns every
// violation found, never stopping at the first. An empty result means the
// snapshot is valid.
//
// The three collections are checked concurrently; each goroutine works on
// its own read-only slice and returns its own violation list, merged in a
// fixed order (rules, coins, contracts, messages) so the output is
// deterministic.
func Validate(s *GenesisSnapshot) Violations {
	var (
		coinErrs     Violations
		contractErrs Violations
		messageErrs  Violations
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		coinErrs = validateCoins(s.Coins, s.Height)
	}()
	go func() {
		defer wg.Done()
		contractErrs = validateContracts(s.Contracts)
	}()
	go func() {
		defer wg.Done()
		messageErrs = validateMessages(s.Messages, s.NonceScope, s.DaHeight)
	}()
	rulesErrs := validateConsensus(s.Rules)
	wg.Wait()

	all := make(Violations, 0, len(rulesErrs)+len(coinErrs)+len(contractErrs)+len(messageErrs))
	all = append(all, rulesErrs...)
	all = append(all, coinErrs...)
	all = append(all, contractErrs...)
	all = append(all, messageErrs...)
	if len(all) == 0 {
		return nil
	}
	return all
}

// validateCoins checks local predicates, UtxoID uniqueness, maturity against
// the genesis height and per-asset supply limits.
func validateCoins(coins []CoinConfig, height idx.Block) Violations {
	var errs Violations

	seen := make(map[UtxoID]int, len(coins))
	supply := make(map[common.Hash]*uint256.Int)
	for i := range coins {
		c := &coins[i]
		if err := c.check(i); err != nil {
			errs = append(errs, err)
		}
		if c.Maturity > height {
			errs = append(errs, &MalformedRecordError{
				Table: TableCoins, Index: i, Field: "Maturity",
				Reason: fmt.Sprintf("maturity %d exceeds genesis height %d", c.Maturity, height),
			})
		}
		if first, ok := seen[c.ID]; ok {
			errs = append(errs, &DuplicateKeyError{
				Table:  TableCoins,
				Key:    c.ID.String(),
				First:  first,
				Second: i,
			})
		} else {
			seen[c.ID] = i
		}
		total := supply[c.AssetID]
		if total == nil {
			total = new(uint256.Int)
			supply[c.AssetID] = total
		}
		total.Add(total, uint256.NewInt(c.Amount))
	}

	// The total supply of every asset must fit uint64; exactly MaxUint64
	// is still representable.
	limit := uint256.NewInt(math.MaxUint64)
	overflowed := make([]common.Hash, 0)
	for assetID, total := range supply {
		if total.Gt(limit) {
			overflowed = append(overflowed, assetID)
		}
	}
	// Map iteration order is random; sort for a deterministic report.
	sortHashes(overflowed)
	for _, assetID := range overflowed {
		errs = append(errs, &OverflowError{
			AssetID: assetID,
			Total:   supply[assetID].Dec(),
		})
	}
	return errs
}

// validateContracts checks local predicates, ContractID uniqueness and the
// ContractID integrity equation.
func validateContracts(contracts []ContractConfig) Violations {
	var errs Violations

	seen := make(map[common.Hash]int, len(contracts))
	for i := range contracts {
		c := &contracts[i]
		if err := c.check(i); err != nil {
			errs = append(errs, err)
		}
		if first, ok := seen[c.ContractID]; ok {
			errs = append(errs, &DuplicateKeyError{
				Table:  TableContracts,
				Key:    c.ContractID.TerminalString(),
				First:  first,
				Second: i,
			})
		} else {
			seen[c.ContractID] = i
		}
		computed := ComputeContractID(c.Code, c.Salt, StorageRoot(c.Storage))
		if computed != c.ContractID {
			errs = append(errs, &IntegrityMismatchError{
				Index:    i,
				Declared: c.ContractID,
				Computed: computed,
			})
		}
	}
	return errs
}

// validateMessages checks local predicates, the DA-height bound and nonce
// uniqueness under the declared scope.
func validateMessages(messages []MessageConfig, scope NonceScope, daHeight uint64) Violations {
	var errs Violations

	seen := make(map[[28]byte]int, len(messages))
	for i := range messages {
		m := &messages[i]
		if err := m.check(i); err != nil {
			errs = append(errs, err)
		}
		if m.DaHeight > daHeight {
			errs = append(errs, &MalformedRecordError{
				Table: TableMessages, Index: i, Field: "DaHeight",
				Reason: fmt.Sprintf("da height %d exceeds genesis da height %d", m.DaHeight, daHeight),
			})
		}
		key := m.nonceKey(scope)
		if first, ok := seen[key]; ok {
			errs = append(errs, &DuplicateKeyError{
				Table:  TableMessages,
				Key:    nonceKeyString(m, scope),
				First:  first,
				Second: i,
			})
		} else {
			seen[key] = i
		}
	}
	return errs
}

// validateConsensus sanity-checks the consensus section of the rules.
func validateConsensus(rules umbra.Rules) Violations {
	var errs Violations

	if len(rules.Name) > maxRulesNameLen {
		errs = append(errs, &MalformedRecordError{
			Table: "rules", Index: 0, Field: "Name",
			Reason: fmt.Sprintf("name exceeds %d bytes", maxRulesNameLen),
		})
	}

	switch rules.Consensus.Mode {
	case umbra.ConsensusNone:
		if len(rules.Consensus.Authorities) != 0 {
			errs = append(errs, &MalformedRecordError{
				Table: "rules", Index: 0, Field: "Consensus.Authorities",
				Reason: "authority set declared without a consensus mode",
			})
		}
	case umbra.ConsensusPoA:
		if len(rules.Consensus.Authorities) == 0 {
			errs = append(errs, &MalformedRecordError{
				Table: "rules", Index: 0, Field: "Consensus.Authorities",
				Reason: "proof-of-authority requires a non-empty authority set",
			})
		}
		seen := make(map[idx.ValidatorID]int, len(rules.Consensus.Authorities))
		for i, a := range rules.Consensus.Authorities {
			if first, ok := seen[a.ID]; ok {
				errs = append(errs, &DuplicateKeyError{
					Table:  "rules.authorities",
					Key:    fmt.Sprintf("validator %d", a.ID),
					First:  first,
					Second: i,
				})
			} else {
				seen[a.ID] = i
			}
			if a.Weight == 0 {
				errs = append(errs, &MalformedRecordError{
					Table: "rules.authorities", Index: i, Field: "Weight",
					Reason: "zero weight",
				})
			}
			if a.PubKey.Empty() {
				errs = append(errs, &MalformedRecordError{
					Table: "rules.authorities", Index: i, Field: "PubKey",
					Reason: "empty public key",
				})
			}
			if len(a.PubKey.Bytes()) > maxPubkeyLen {
				errs = append(errs, &MalformedRecordError{
					Table: "rules.authorities", Index: i, Field: "PubKey",
					Reason: fmt.Sprintf("key exceeds %d bytes", maxPubkeyLen),
				})
			}
		}
	default:
		errs = append(errs, &MalformedRecordError{
			Table: "rules", Index: 0, Field: "Consensus.Mode",
			Reason: fmt.Sprintf("unknown mode %q", rules.Consensus.Mode),
		})
	}
	return errs
}

func nonceKeyString(m *MessageConfig, scope NonceScope) string {
	if scope == NonceScopeGlobal {
		return fmt.Sprintf("nonce %d", m.Nonce)
	}
	return fmt.Sprintf("(%s, %d)", m.Sender.String(), m.Nonce)
}

func sortHashes(hs []common.Hash) {
	sort.Slice(hs, func(a, b int) bool {
		return bytes.Compare(hs[a][:], hs[b][:]) < 0
	})
}
