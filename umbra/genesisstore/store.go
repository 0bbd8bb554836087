// Package genesisstore adapts a kvdb key-value store to the atomic-batch
// contract consumed by the genesis builder.
//
// Key layout (one store holds at most one genesis per chain):
//
//	'c' + utxoID        -> coin record
//	'C' + contractID    -> contract record
//	'm' + sender+nonce  -> message record
//	'g' + chainID       -> commitment hash of the committed genesis
package genesisstore

import (
	"errors"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/ethereum/go-ethereum/common"

	"github.com/umbra-chain/go-umbra/umbra"
	"github.com/umbra-chain/go-umbra/umbra/genesis"
)

// Table key prefixes.
var (
	prefixCoins     = []byte("c")
	prefixContracts = []byte("C")
	prefixMessages  = []byte("m")
	prefixHash      = []byte("g")
)

var errClosedBatch = errors.New("genesis batch already committed or aborted")

// Store implements genesis.BatchStore on top of a kvdb.Store.
type Store struct {
	db kvdb.Store
}

// NewStore wraps a kvdb.Store.
func NewStore(db kvdb.Store) *Store {
	return &Store{db: db}
}

// CommittedHash returns the commitment hash recorded for the chain, if any.
func (s *Store) CommittedHash(chainID umbra.ChainID) (common.Hash, bool, error) {
	key := hashKey(chainID)
	ok, err := s.db.Has(key)
	if err != nil || !ok {
		return common.Hash{}, false, err
	}
	raw, err := s.db.Get(key)
	if err != nil {
		return common.Hash{}, false, err
	}
	return common.BytesToHash(raw), true, nil
}

// BeginBatch opens an atomic write batch for the chain.
func (s *Store) BeginBatch(chainID umbra.ChainID) (genesis.Batch, error) {
	return &storeBatch{
		kv:      s.db.NewBatch(),
		chainID: chainID,
	}, nil
}

// Coin returns the canonical encoding of the coin stored under the given
// UtxoID key, or ok=false.
func (s *Store) Coin(key []byte) (value []byte, ok bool, err error) {
	return s.get(append(common.CopyBytes(prefixCoins), key...))
}

// Contract returns the canonical encoding of the stored contract record.
func (s *Store) Contract(key []byte) (value []byte, ok bool, err error) {
	return s.get(append(common.CopyBytes(prefixContracts), key...))
}

// Message returns the canonical encoding of the stored message record.
func (s *Store) Message(key []byte) (value []byte, ok bool, err error) {
	return s.get(append(common.CopyBytes(prefixMessages), key...))
}

// Records counts the stored entries of one genesis table.
func (s *Store) Records(t genesis.Table) (n int, err error) {
	prefix, err := tablePrefix(t)
	if err != nil {
		return 0, err
	}
	it := s.db.NewIterator(prefix, nil)
	defer it.Release()
	for it.Next() {
		n++
	}
	return n, it.Error()
}

func (s *Store) get(key []byte) ([]byte, bool, error) {
	ok, err := s.db.Has(key)
	if err != nil || !ok {
		return nil, false, err
	}
	raw, err := s.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// storeBatch buffers genesis writes in a kvdb batch. Write may be called
// concurrently; the underlying kvdb batch is not, so a mutex guards it.
type storeBatch struct {
	mu      sync.Mutex
	kv      kvdb.Batch
	chainID umbra.ChainID
	closed  bool
}

func (b *storeBatch) Write(e genesis.TableEntry) error {
	prefix, err := tablePrefix(e.Table)
	if err != nil {
		return err
	}
	key := make([]byte, 0, len(prefix)+len(e.Key))
	key = append(key, prefix...)
	key = append(key, e.Key...)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosedBatch
	}
	return b.kv.Put(key, e.Value)
}

func (b *storeBatch) WriteHash(h common.Hash) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosedBatch
	}
	return b.kv.Put(hashKey(b.chainID), h.Bytes())
}

func (b *storeBatch) Commit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosedBatch
	}
	b.closed = true
	return b.kv.Write()
}

func (b *storeBatch) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.kv.Reset()
}

func tablePrefix(t genesis.Table) ([]byte, error) {
	switch t {
	case genesis.TableCoins:
		return prefixCoins, nil
	case genesis.TableContracts:
		return prefixContracts, nil
	case genesis.TableMessages:
		return prefixMessages, nil
	default:
		return nil, errors.New("unknown genesis table: " + string(t))
	}
}

func hashKey(chainID umbra.ChainID) []byte {
	return append(common.CopyBytes(prefixHash), bigendian.Uint64ToBytes(uint64(chainID))...)
}
