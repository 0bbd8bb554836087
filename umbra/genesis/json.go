package genesis

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/umbra-chain/go-umbra/inter"
	"github.com/umbra-chain/go-umbra/inter/validatorpk"
	"github.com/umbra-chain/go-umbra/umbra"
)

// The JSON text form mirrors the typed snapshot field for field, with byte
// fields and amounts rendered through hexutil so the round trip is loss-free.

type utxoIDJSON struct {
	TxHash common.Hash    `json:"txHash"`
	Index  hexutil.Uint64 `json:"index"`
}

type coinJSON struct {
	ID       utxoIDJSON     `json:"id"`
	Owner    common.Address `json:"owner"`
	Amount   hexutil.Uint64 `json:"amount"`
	AssetID  common.Hash    `json:"assetId"`
	Maturity hexutil.Uint64 `json:"maturity,omitempty"`
}

type storageSlotJSON struct {
	Key   common.Hash `json:"key"`
	Value common.Hash `json:"value"`
}

type balanceJSON struct {
	AssetID common.Hash    `json:"assetId"`
	Amount  hexutil.Uint64 `json:"amount"`
}

type contractJSON struct {
	ContractID common.Hash       `json:"contractId"`
	Salt       common.Hash       `json:"salt"`
	Code       hexutil.Bytes     `json:"code"`
	Storage    []storageSlotJSON `json:"storage,omitempty"`
	Balances   []balanceJSON     `json:"balances,omitempty"`
}

type messageJSON struct {
	Sender    common.Address `json:"sender"`
	Recipient common.Address `json:"recipient"`
	Nonce     hexutil.Uint64 `json:"nonce"`
	Amount    hexutil.Uint64 `json:"amount"`
	Payload   hexutil.Bytes  `json:"payload,omitempty"`
	DaHeight  hexutil.Uint64 `json:"daHeight"`
}

type authorityJSON struct {
	ID     hexutil.Uint64     `json:"id"`
	PubKey validatorpk.PubKey `json:"pubkey"`
	Weight hexutil.Uint64     `json:"weight"`
}

type rulesJSON struct {
	Name          string          `json:"name"`
	NetworkID     hexutil.Uint64  `json:"networkId"`
	NativeAssetID common.Hash     `json:"nativeAssetId"`
	MaxBlockGas   hexutil.Uint64  `json:"maxBlockGas"`
	BlockPeriod   hexutil.Uint64  `json:"blockPeriod"`
	MinGasPrice   *hexutil.Big    `json:"minGasPrice"`
	Mode          string          `json:"consensusMode"`
	Authorities   []authorityJSON `json:"authorities,omitempty"`
}

type snapshotJSON struct {
	Rules      rulesJSON      `json:"rules"`
	Time       hexutil.Uint64 `json:"time"`
	Height     hexutil.Uint64 `json:"height"`
	DaHeight   hexutil.Uint64 `json:"daHeight"`
	NonceScope string         `json:"nonceScope,omitempty"`

	Coins     []coinJSON     `json:"coins,omitempty"`
	Contracts []contractJSON `json:"contracts,omitempty"`
	Messages  []messageJSON  `json:"messages,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *GenesisSnapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Rules: rulesJSON{
			Name:          s.Rules.Name,
			NetworkID:     hexutil.Uint64(s.Rules.NetworkID),
			NativeAssetID: s.Rules.NativeAssetID,
			MaxBlockGas:   hexutil.Uint64(s.Rules.Blocks.MaxBlockGas),
			BlockPeriod:   hexutil.Uint64(s.Rules.Blocks.BlockPeriod),
			MinGasPrice:   (*hexutil.Big)(s.Rules.Economy.MinGasPrice),
			Mode:          s.Rules.Consensus.Mode,
		},
		Time:       hexutil.Uint64(s.Time),
		Height:     hexutil.Uint64(s.Height),
		DaHeight:   hexutil.Uint64(s.DaHeight),
		NonceScope: s.NonceScope.String(),
	}
	for _, a := range s.Rules.Consensus.Authorities {
		out.Rules.Authorities = append(out.Rules.Authorities, authorityJSON{
			ID:     hexutil.Uint64(a.ID),
			PubKey: a.PubKey,
			Weight: hexutil.Uint64(a.Weight),
		})
	}
	for _, c := range s.Coins {
		out.Coins = append(out.Coins, coinJSON{
			ID:       utxoIDJSON{TxHash: c.ID.TxHash, Index: hexutil.Uint64(c.ID.Index)},
			Owner:    c.Owner,
			Amount:   hexutil.Uint64(c.Amount),
			AssetID:  c.AssetID,
			Maturity: hexutil.Uint64(c.Maturity),
		})
	}
	for _, c := range s.Contracts {
		cj := contractJSON{
			ContractID: c.ContractID,
			Salt:       c.Salt,
			Code:       c.Code,
		}
		for _, slot := range c.Storage {
			cj.Storage = append(cj.Storage, storageSlotJSON(slot))
		}
		for _, b := range c.Balances {
			cj.Balances = append(cj.Balances, balanceJSON{AssetID: b.AssetID, Amount: hexutil.Uint64(b.Amount)})
		}
		out.Contracts = append(out.Contracts, cj)
	}
	for _, m := range s.Messages {
		out.Messages = append(out.Messages, messageJSON{
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Nonce:     hexutil.Uint64(m.Nonce),
			Amount:    hexutil.Uint64(m.Amount),
			Payload:   m.Payload,
			DaHeight:  hexutil.Uint64(m.DaHeight),
		})
	}
	return json.Marshal(&out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *GenesisSnapshot) UnmarshalJSON(raw []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}

	scope, err := parseNonceScope(in.NonceScope)
	if err != nil {
		return err
	}

	minGasPrice := (*big.Int)(in.Rules.MinGasPrice)
	if minGasPrice == nil {
		minGasPrice = new(big.Int)
	}
	rules := umbra.Rules{
		Name:          in.Rules.Name,
		NetworkID:     uint64(in.Rules.NetworkID),
		NativeAssetID: in.Rules.NativeAssetID,
		Blocks: umbra.BlocksRules{
			MaxBlockGas: uint64(in.Rules.MaxBlockGas),
			BlockPeriod: inter.Timestamp(in.Rules.BlockPeriod),
		},
		Economy: umbra.EconomyRules{
			MinGasPrice: minGasPrice,
		},
		Consensus: umbra.ConsensusRules{
			Mode: in.Rules.Mode,
		},
	}
	for _, a := range in.Rules.Authorities {
		rules.Consensus.Authorities = append(rules.Consensus.Authorities, umbra.Authority{
			ID:     idx.ValidatorID(a.ID),
			PubKey: a.PubKey,
			Weight: pos.Weight(a.Weight),
		})
	}

	parsed := GenesisSnapshot{
		Rules:      rules,
		Time:       inter.Timestamp(in.Time),
		Height:     idx.Block(in.Height),
		DaHeight:   uint64(in.DaHeight),
		NonceScope: scope,
	}
	for _, c := range in.Coins {
		parsed.Coins = append(parsed.Coins, CoinConfig{
			ID:       UtxoID{TxHash: c.ID.TxHash, Index: uint32(c.ID.Index)},
			Owner:    c.Owner,
			Amount:   uint64(c.Amount),
			AssetID:  c.AssetID,
			Maturity: idx.Block(c.Maturity),
		})
	}
	for _, c := range in.Contracts {
		cc := ContractConfig{
			ContractID: c.ContractID,
			Salt:       c.Salt,
			Code:       c.Code,
		}
		for _, slot := range c.Storage {
			cc.Storage = append(cc.Storage, StorageSlot(slot))
		}
		for _, b := range c.Balances {
			cc.Balances = append(cc.Balances, BalanceEntry{AssetID: b.AssetID, Amount: uint64(b.Amount)})
		}
		parsed.Contracts = append(parsed.Contracts, cc)
	}
	for _, m := range in.Messages {
		parsed.Messages = append(parsed.Messages, MessageConfig{
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Nonce:     uint64(m.Nonce),
			Amount:    uint64(m.Amount),
			Payload:   m.Payload,
			DaHeight:  uint64(m.DaHeight),
		})
	}

	*s = parsed
	return nil
}

func parseNonceScope(str string) (NonceScope, error) {
	switch str {
	case "", "per-sender":
		return NonceScopePerSender, nil
	case "global":
		return NonceScopeGlobal, nil
	default:
		return 0, errors.New("unknown nonce scope: " + str)
	}
}
