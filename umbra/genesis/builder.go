package genesis

import (
	"context"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/pos"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// builderState is the builder's lifecycle tag.
type builderState uint8

const (
	// stateUnvalidated is the initial state; the snapshot has not passed
	// Validate, or the last Validate found violations.
	stateUnvalidated builderState = iota

	// stateValidated means Validate found zero violations; Commit is
	// allowed.
	stateValidated

	// stateCommitted means the snapshot has been durably written. Further
	// Commit calls are idempotent.
	stateCommitted
)

func (s builderState) String() string {
	switch s {
	case stateUnvalidated:
		return "unvalidated"
	case stateValidated:
		return "validated"
	case stateCommitted:
		return "committed"
	default:
		return "corrupt"
	}
}

// Builder drives a genesis snapshot through its lifecycle:
// unvalidated -> validated -> committed. It consumes the snapshot it is
// given; the snapshot must not be mutated while the builder holds it.
//
// Builder methods are not safe for concurrent use; the internal concurrency
// of Validate and Commit is self-contained.
type Builder struct {
	snapshot *GenesisSnapshot
	state    builderState

	authorities *pos.Validators // built on successful validation
	hash        common.Hash     // commitment hash, set on commit

	log *logrus.Entry
}

// NewBuilder wraps a snapshot in a fresh, unvalidated builder.
func NewBuilder(s *GenesisSnapshot) *Builder {
	return &Builder{
		snapshot: s,
		log: logrus.WithFields(logrus.Fields{
			"module": "genesis",
			"chain":  s.Rules.NetworkID,
		}),
	}
}

// Snapshot returns the snapshot the builder operates on.
func (b *Builder) Snapshot() *GenesisSnapshot {
	return b.snapshot
}

// Validate runs the exhaustive snapshot validation. On success the builder
// moves to the validated state and the authority set becomes available;
// otherwise the builder stays unvalidated and every violation is returned.
//
// Validate may be called again after fixing the snapshot.
func (b *Builder) Validate() Violations {
	if b.state == stateCommitted {
		return nil
	}
	violations := Validate(b.snapshot)
	if len(violations) > 0 {
		b.state = stateUnvalidated
		b.authorities = nil
		b.log.WithField("violations", len(violations)).
			Warn("genesis snapshot rejected")
		return violations
	}

	vb := pos.NewBuilder()
	for _, a := range b.snapshot.Rules.Consensus.Authorities {
		vb.Set(a.ID, a.Weight)
	}
	b.authorities = vb.Build()
	b.state = stateValidated
	b.log.WithFields(logrus.Fields{
		"coins":     len(b.snapshot.Coins),
		"contracts": len(b.snapshot.Contracts),
		"messages":  len(b.snapshot.Messages),
	}).Info("genesis snapshot validated")
	return nil
}

// AuthoritySet returns the initial validator set for the consensus module.
// It is nil until Validate has succeeded.
func (b *Builder) AuthoritySet() *pos.Validators {
	return b.authorities
}

// Hash returns the commitment hash. It is the zero hash until Commit has
// succeeded.
func (b *Builder) Hash() common.Hash {
	return b.hash
}

// Commit computes the commitment hash and streams the snapshot into the
// store as one atomic batch. The three tables are written concurrently into
// the same batch; any failed write aborts the whole batch and surfaces a
// StorageWriteError.
//
// Commit is idempotent: re-committing a snapshot whose hash is already
// recorded for the chain returns the same hash without rewriting. A
// different hash already recorded for the chain is ErrAmbiguousGenesis.
// Commit before a successful Validate is ErrNotValidated.
func (b *Builder) Commit(ctx context.Context, store BatchStore) (common.Hash, error) {
	if b.state == stateUnvalidated {
		return common.Hash{}, ErrNotValidated
	}

	hash, err := b.snapshot.CommitmentHash()
	if err != nil {
		return common.Hash{}, err
	}

	chainID := b.snapshot.ChainID()
	existing, ok, err := store.CommittedHash(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	if ok {
		if existing != hash {
			b.log.WithFields(logrus.Fields{
				"committed": existing.TerminalString(),
				"proposed":  hash.TerminalString(),
			}).Error("conflicting genesis for chain")
			return common.Hash{}, ErrAmbiguousGenesis
		}
		// Same snapshot already committed.
		b.state = stateCommitted
		b.hash = hash
		return hash, nil
	}

	batch, err := store.BeginBatch(chainID)
	if err != nil {
		return common.Hash{}, err
	}
	if err := b.writeTables(ctx, batch); err != nil {
		batch.Abort()
		return common.Hash{}, err
	}
	if err := batch.WriteHash(hash); err != nil {
		batch.Abort()
		return common.Hash{}, &StorageWriteError{Table: "meta", Err: err}
	}
	if err := batch.Commit(); err != nil {
		return common.Hash{}, &StorageWriteError{Table: "meta", Err: err}
	}

	b.state = stateCommitted
	b.hash = hash
	b.log.WithField("hash", hash.TerminalString()).Info("genesis committed")
	return hash, nil
}

// writeTables streams the three collections into the batch, one goroutine
// per table. The first error wins; the caller aborts the batch.
func (b *Builder) writeTables(ctx context.Context, batch Batch) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	coins := b.snapshot.sortedCoins()
	contracts := b.snapshot.sortedContracts()
	messages := b.snapshot.sortedMessages()

	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := range coins {
			if failed() || ctx.Err() != nil {
				return
			}
			entry, err := coins[i].ToTableEntry()
			if err == nil {
				err = batch.Write(entry)
			}
			if err != nil {
				fail(&StorageWriteError{Table: TableCoins, Err: err})
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := range contracts {
			if failed() || ctx.Err() != nil {
				return
			}
			entry, err := contracts[i].ToTableEntry()
			if err == nil {
				err = batch.Write(entry)
			}
			if err != nil {
				fail(&StorageWriteError{Table: TableContracts, Err: err})
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := range messages {
			if failed() || ctx.Err() != nil {
				return
			}
			entry, err := messages[i].ToTableEntry()
			if err == nil {
				err = batch.Write(entry)
			}
			if err != nil {
				fail(&StorageWriteError{Table: TableMessages, Err: err})
				return
			}
		}
	}()
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
