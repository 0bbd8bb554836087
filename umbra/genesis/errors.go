package genesis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNotValidated is returned by Commit when called on a builder that
	// has not successfully passed Validate.
	ErrNotValidated = errors.New("genesis snapshot is not validated")

	// ErrAmbiguousGenesis is returned when a different snapshot has already
	// been committed for the same chain ID. It is fatal: the node must not
	// proceed with a conflicting genesis.
	ErrAmbiguousGenesis = errors.New("conflicting genesis already committed for this chain")
)

// MalformedRecordError reports a record that fails its local validity
// predicate. Only the first violated field of a record is reported.
type MalformedRecordError struct {
	Table  Table  // collection the record belongs to
	Index  int    // position in the declared (pre-sort) order
	Field  string // offending field
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s[%d]: malformed %s: %s", e.Table, e.Index, e.Field, e.Reason)
}

// DuplicateKeyError reports two records sharing a unique key. Both indices
// refer to the declared (pre-sort) order of the collection.
type DuplicateKeyError struct {
	Table  Table
	Key    string // human-readable form of the colliding key
	First  int
	Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: duplicate key %s at indices %d and %d", e.Table, e.Key, e.First, e.Second)
}

// IntegrityMismatchError reports a contract whose declared ID does not match
// the ID recomputed from its code, salt and storage.
type IntegrityMismatchError struct {
	Index    int
	Declared common.Hash
	Computed common.Hash
}

func (e *IntegrityMismatchError) Error() string {
	return fmt.Sprintf("%s[%d]: contract ID %s does not match computed %s",
		TableContracts, e.Index, e.Declared.TerminalString(), e.Computed.TerminalString())
}

// OverflowError reports a per-asset coin supply that exceeds the uint64
// range when summed over the whole snapshot.
type OverflowError struct {
	AssetID common.Hash
	Total   string // decimal total, may exceed uint64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: total supply of asset %s overflows uint64: %s",
		TableCoins, e.AssetID.TerminalString(), e.Total)
}

// StorageWriteError wraps a failure reported by the storage collaborator
// during Commit. The batch has been aborted; no partial state remains.
type StorageWriteError struct {
	Table Table
	Err   error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("genesis write to %s failed: %v", e.Table, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// Violations aggregates every validation failure found in a snapshot pass.
// It is non-empty iff the snapshot is invalid.
type Violations []error

func (v Violations) Error() string {
	if len(v) == 0 {
		return "no violations"
	}
	strs := make([]string, len(v))
	for i, err := range v {
		strs[i] = err.Error()
	}
	return fmt.Sprintf("%d genesis violations: %s", len(v), strings.Join(strs, "; "))
}
