package umbra

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/umbra-chain/go-umbra/inter"
	"github.com/umbra-chain/go-umbra/inter/validatorpk"
)

// TestNetworkConstants verifies that network ID constants are correctly
// defined. These constants identify which network a node is running on.
func TestNetworkConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant uint64
		want     uint64
	}{
		{"MainNetworkID", MainNetworkID, 0xdb},
		{"TestNetworkID", TestNetworkID, 0xdb2},
		{"FakeNetworkID", FakeNetworkID, 0xdb3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.constant, tt.want)
			}
		})
	}
}

// TestMainNetRules verifies that MainNetRules returns the production
// configuration.
func TestMainNetRules(t *testing.T) {
	rules := MainNetRules()

	if rules.Name != "main" {
		t.Errorf("Name = %q, want %q", rules.Name, "main")
	}
	if rules.NetworkID != MainNetworkID {
		t.Errorf("NetworkID = %d, want %d", rules.NetworkID, MainNetworkID)
	}

	if rules.Blocks.MaxBlockGas != 20500000 {
		t.Errorf("MaxBlockGas = %d, want %d", rules.Blocks.MaxBlockGas, 20500000)
	}
	if rules.Blocks.BlockPeriod != inter.Timestamp(1*time.Second) {
		t.Errorf("BlockPeriod = %v, want %v",
			rules.Blocks.BlockPeriod, inter.Timestamp(1*time.Second))
	}

	if rules.Consensus.Mode != ConsensusPoA {
		t.Errorf("Consensus.Mode = %q, want %q", rules.Consensus.Mode, ConsensusPoA)
	}
	// The mainnet authority set comes from the genesis file, not the preset.
	if len(rules.Consensus.Authorities) != 0 {
		t.Errorf("preset should not carry authorities, got %d", len(rules.Consensus.Authorities))
	}
}

// TestTestNetRules verifies that the testnet mirrors mainnet parameters.
func TestTestNetRules(t *testing.T) {
	rules := TestNetRules()

	if rules.Name != "test" {
		t.Errorf("Name = %q, want %q", rules.Name, "test")
	}
	if rules.NetworkID != TestNetworkID {
		t.Errorf("NetworkID = %d, want %d", rules.NetworkID, TestNetworkID)
	}

	main := MainNetRules()
	if rules.Blocks != main.Blocks {
		t.Errorf("Blocks = %+v, want %+v", rules.Blocks, main.Blocks)
	}
	if rules.Economy.MinGasPrice.Cmp(main.Economy.MinGasPrice) != 0 {
		t.Errorf("MinGasPrice = %s, want %s",
			rules.Economy.MinGasPrice, main.Economy.MinGasPrice)
	}
}

// TestFakeNetRules verifies that fake networks use accelerated parameters.
func TestFakeNetRules(t *testing.T) {
	rules := FakeNetRules()

	if rules.Name != "fake" {
		t.Errorf("Name = %q, want %q", rules.Name, "fake")
	}
	if rules.NetworkID != FakeNetworkID {
		t.Errorf("NetworkID = %d, want %d", rules.NetworkID, FakeNetworkID)
	}

	// Fake networks produce blocks much faster.
	if rules.Blocks.BlockPeriod >= MainNetRules().Blocks.BlockPeriod {
		t.Error("FakeNet should have a shorter BlockPeriod than MainNet")
	}

	// Zero minimum gas price for local testing.
	if rules.Economy.MinGasPrice.Sign() != 0 {
		t.Errorf("MinGasPrice = %s, want 0", rules.Economy.MinGasPrice)
	}
}

// TestDefaultEconomyRules verifies the mainnet economy configuration.
func TestDefaultEconomyRules(t *testing.T) {
	rules := DefaultEconomyRules()

	// 1 Gwei minimum.
	if rules.MinGasPrice.Cmp(big.NewInt(1e9)) != 0 {
		t.Errorf("MinGasPrice = %s, want %s", rules.MinGasPrice, big.NewInt(1e9))
	}
}

// TestRulesCopy verifies that Copy() creates a deep copy. This is critical
// because Rules contains *big.Int and slices which would be shared in a
// shallow copy.
func TestRulesCopy(t *testing.T) {
	original := MainNetRules()
	original.Consensus.Authorities = []Authority{
		{ID: 1, PubKey: validatorpk.PubKey{Type: validatorpk.Types.Secp256k1, Raw: []byte{0xAA}}, Weight: 10},
	}
	original.Economy.MinGasPrice.Set(big.NewInt(999999))

	copied := original.Copy()
	copied.Economy.MinGasPrice.Set(big.NewInt(123456))
	copied.Consensus.Authorities[0].Weight = 77
	copied.Consensus.Authorities[0].PubKey.Raw[0] = 0xFF

	if original.Economy.MinGasPrice.Cmp(big.NewInt(999999)) != 0 {
		t.Errorf("original MinGasPrice was modified: got %s, want 999999",
			original.Economy.MinGasPrice)
	}
	if copied.Economy.MinGasPrice.Cmp(big.NewInt(123456)) != 0 {
		t.Errorf("copied MinGasPrice = %s, want 123456", copied.Economy.MinGasPrice)
	}
	if original.Economy.MinGasPrice == copied.Economy.MinGasPrice {
		t.Error("MinGasPrice pointers should be different (deep copy)")
	}

	if original.Consensus.Authorities[0].Weight != 10 {
		t.Errorf("original authority weight was modified: got %d, want 10",
			original.Consensus.Authorities[0].Weight)
	}
	if original.Consensus.Authorities[0].PubKey.Raw[0] != 0xAA {
		t.Error("original authority pubkey was modified through the copy")
	}
}

// TestRulesString verifies that String() returns valid JSON holding the key
// fields.
func TestRulesString(t *testing.T) {
	rules := MainNetRules()
	jsonStr := rules.String()

	var unmarshaled Rules
	if err := json.Unmarshal([]byte(jsonStr), &unmarshaled); err != nil {
		t.Fatalf("String() returned invalid JSON: %v\nJSON: %s", err, jsonStr)
	}

	if unmarshaled.Name != rules.Name {
		t.Errorf("unmarshaled Name = %q, want %q", unmarshaled.Name, rules.Name)
	}
	if unmarshaled.NetworkID != rules.NetworkID {
		t.Errorf("unmarshaled NetworkID = %d, want %d", unmarshaled.NetworkID, rules.NetworkID)
	}
}

// TestRulesComparison verifies the expected differences between presets.
func TestRulesComparison(t *testing.T) {
	mainRules := MainNetRules()
	testRules := TestNetRules()
	fakeRules := FakeNetRules()

	if mainRules.Blocks.MaxBlockGas != testRules.Blocks.MaxBlockGas {
		t.Error("MainNet and TestNet should have the same MaxBlockGas")
	}
	if fakeRules.Blocks.BlockPeriod >= mainRules.Blocks.BlockPeriod {
		t.Error("FakeNet should have a shorter BlockPeriod than MainNet")
	}
	if fakeRules.Economy.MinGasPrice.Cmp(mainRules.Economy.MinGasPrice) >= 0 {
		t.Error("FakeNet should have a lower MinGasPrice than MainNet")
	}

	ids := map[uint64]string{}
	for _, r := range []Rules{mainRules, testRules, fakeRules} {
		if prev, ok := ids[r.NetworkID]; ok {
			t.Errorf("NetworkID %d reused by %q and %q", r.NetworkID, prev, r.Name)
		}
		ids[r.NetworkID] = r.Name
	}
}
