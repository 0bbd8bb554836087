package genesis

import (
	"crypto/ecdsa"
	"math/rand"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/umbra-chain/go-umbra/inter"
	"github.com/umbra-chain/go-umbra/inter/validatorpk"
	"github.com/umbra-chain/go-umbra/umbra"
)

// FakeGenesisTime is the fixed genesis timestamp of fake networks, so that
// every node of a local network derives the same commitment hash.
var FakeGenesisTime = inter.FromTime(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))

// FakeKey derives a deterministic private key from an index. Test and local
// networks only.
func FakeKey(n int) *ecdsa.PrivateKey {
	reader := rand.New(rand.NewSource(int64(n)))
	key, err := ecdsa.GenerateKey(crypto.S256(), reader)
	if err != nil {
		panic(err)
	}
	return key
}

// FakeAuthorities derives a deterministic authority set of the given size,
// with equal weights.
func FakeAuthorities(num int) []umbra.Authority {
	authorities := make([]umbra.Authority, 0, num)
	for i := 1; i <= num; i++ {
		key := FakeKey(i)
		authorities = append(authorities, umbra.Authority{
			ID: idx.ValidatorID(i),
			PubKey: validatorpk.PubKey{
				Type: validatorpk.Types.Secp256k1,
				Raw:  crypto.FromECDSAPub(&key.PublicKey),
			},
			Weight: pos.Weight(1000),
		})
	}
	return authorities
}

// FakeSnapshot builds an internally consistent snapshot from a seeded RNG:
// unique coin IDs, recomputed contract IDs and unique message nonces, so the
// result always passes validation. Test and benchmark use only.
func FakeSnapshot(seed int64, nCoins, nContracts, nMessages int) *GenesisSnapshot {
	rng := rand.New(rand.NewSource(seed))

	rules := umbra.FakeNetRules()
	rules.Consensus.Authorities = FakeAuthorities(3)

	s := &GenesisSnapshot{
		Rules:      rules,
		Time:       FakeGenesisTime,
		Height:     1000,
		DaHeight:   1e6,
		NonceScope: NonceScopePerSender,
	}

	for i := 0; i < nCoins; i++ {
		s.Coins = append(s.Coins, CoinConfig{
			ID: UtxoID{
				TxHash: fakeHash(rng),
				Index:  uint32(i % 4),
			},
			Owner:    fakeAddress(rng),
			Amount:   rng.Uint64() % 1e18,
			AssetID:  rules.NativeAssetID,
			Maturity: idx.Block(rng.Uint64() % 1000),
		})
	}

	for i := 0; i < nContracts; i++ {
		code := make([]byte, 32+rng.Intn(256))
		rng.Read(code)
		salt := fakeHash(rng)
		var storage []StorageSlot
		for j := 0; j < rng.Intn(4); j++ {
			storage = append(storage, StorageSlot{
				Key:   fakeHash(rng),
				Value: fakeHash(rng),
			})
		}
		s.Contracts = append(s.Contracts, ContractConfig{
			ContractID: ComputeContractID(code, salt, StorageRoot(storage)),
			Salt:       salt,
			Code:       code,
			Storage:    storage,
			Balances: []BalanceEntry{
				{AssetID: rules.NativeAssetID, Amount: rng.Uint64() % 1e18},
			},
		})
	}

	for i := 0; i < nMessages; i++ {
		payload := make([]byte, 1+rng.Intn(63))
		rng.Read(payload)
		s.Messages = append(s.Messages, MessageConfig{
			Sender:    fakeAddress(rng),
			Recipient: fakeAddress(rng),
			Nonce:     uint64(i),
			Amount:    rng.Uint64() % 1e18,
			Payload:   payload,
			DaHeight:  rng.Uint64() % 1e6,
		})
	}

	return s
}

func fakeHash(rng *rand.Rand) common.Hash {
	var h common.Hash
	rng.Read(h[:])
	return h
}

func fakeAddress(rng *rand.Rand) common.Address {
	var a common.Address
	rng.Read(a[:])
	// A zero address would fail validation; flip a byte instead of
	// resampling so the stream stays deterministic.
	if a == (common.Address{}) {
		a[0] = 1
	}
	return a
}
