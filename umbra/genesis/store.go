package genesis

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/umbra-chain/go-umbra/umbra"
)

// Table names the genesis collections as stored on disk.
type Table string

const (
	TableCoins     Table = "coins"
	TableContracts Table = "contracts"
	TableMessages  Table = "messages"
)

// TableEntry is one genesis record in its storage form: an independent
// canonical blob addressed by the record's unique key within its table.
type TableEntry struct {
	Table Table
	Key   []byte // the record's unique key in canonical byte form
	Value []byte // the record's canonical encoding
}

// Batch is one atomic unit of genesis writes. Write may be called from
// multiple goroutines. Either Commit persists every written entry or Abort
// discards all of them; partial state is never observable.
type Batch interface {
	Write(e TableEntry) error
	// WriteHash records the snapshot commitment hash as the marker that
	// genesis for this chain is complete.
	WriteHash(h common.Hash) error
	Commit() error
	Abort()
}

// BatchStore is the storage collaborator consumed by the Builder. Only the
// atomicity guarantee of Batch is relied upon; key layout and durability
// belong to the implementation.
type BatchStore interface {
	// BeginBatch opens an atomic batch for the given chain.
	BeginBatch(chainID umbra.ChainID) (Batch, error)
	// CommittedHash returns the commitment hash of a previously committed
	// genesis for the chain, or ok=false if none exists.
	CommittedHash(chainID umbra.ChainID) (h common.Hash, ok bool, err error)
}
