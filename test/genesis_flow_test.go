package test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/umbra-chain/go-umbra/cmd/umbra/launcher"
	"github.com/umbra-chain/go-umbra/umbra/genesis"
	"github.com/umbra-chain/go-umbra/umbra/genesisstore"
)

// TestGenesisFlow drives the whole pipeline: fixture -> text form on disk ->
// parse -> validate -> commit -> read back, the way a node bootstraps.
func TestGenesisFlow(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")

	// Write the text form to disk.
	s := genesis.FakeSnapshot(1, 12, 4, 6)
	raw, err := json.MarshalIndent(s, "", "  ")
	require.NoError(err)
	require.NoError(os.WriteFile(path, raw, 0o644))

	// A different process would read it back.
	loadedRaw, err := os.ReadFile(path)
	require.NoError(err)
	loaded := &genesis.GenesisSnapshot{}
	require.NoError(json.Unmarshal(loadedRaw, loaded))

	// Same commitment on both sides.
	want, err := s.CommitmentHash()
	require.NoError(err)
	got, err := loaded.CommitmentHash()
	require.NoError(err)
	require.Equal(want, got)

	// Validate and commit into the store.
	builder := genesis.NewBuilder(loaded)
	require.Empty(builder.Validate())
	store := genesisstore.NewStore(memorydb.New())
	hash, err := builder.Commit(context.Background(), store)
	require.NoError(err)
	require.Equal(want, hash)

	// The store now reports the committed hash for the chain.
	committed, ok, err := store.CommittedHash(loaded.ChainID())
	require.NoError(err)
	require.True(ok)
	require.Equal(hash, committed)

	n, err := store.Records(genesis.TableCoins)
	require.NoError(err)
	require.Equal(12, n)
}

// TestLauncherCheckCommand verifies the CLI check path against files in both
// supported forms.
func TestLauncherCheckCommand(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	s := genesis.FakeSnapshot(2, 5, 2, 3)

	// Text form.
	jsonPath := filepath.Join(dir, "genesis.json")
	raw, err := json.Marshal(s)
	require.NoError(err)
	require.NoError(os.WriteFile(jsonPath, raw, 0o644))
	require.NoError(launcher.Launch([]string{"umbra", "check", "--genesis", jsonPath}))

	// Binary form.
	binPath := filepath.Join(dir, "genesis.bin")
	blob, err := s.MarshalBinary()
	require.NoError(err)
	require.NoError(os.WriteFile(binPath, blob, 0o644))
	require.NoError(launcher.Launch([]string{"umbra", "check", "--genesis", binPath}))

	// An invalid snapshot makes check fail.
	bad := genesis.FakeSnapshot(3, 5, 0, 0)
	bad.Coins[1].ID = bad.Coins[0].ID
	badRaw, err := json.Marshal(bad)
	require.NoError(err)
	badPath := filepath.Join(dir, "bad.json")
	require.NoError(os.WriteFile(badPath, badRaw, 0o644))
	require.Error(launcher.Launch([]string{"umbra", "check", "--genesis", badPath}))

	// Missing file is an error, not a panic.
	require.Error(launcher.Launch([]string{"umbra", "check", "--genesis", filepath.Join(dir, "nope.json")}))
}

// TestLauncherFakeCommand verifies that the fixture generator command writes
// a loadable, valid snapshot.
func TestLauncherFakeCommand(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "fake.json")

	require.NoError(launcher.Launch([]string{
		"umbra", "fake",
		"--fake.seed", "9",
		"--fake.coins", "7",
		"--fake.validators", "2",
		"--genesis.out", out,
	}))

	require.NoError(launcher.Launch([]string{"umbra", "check", "--genesis", out}))

	raw, err := os.ReadFile(out)
	require.NoError(err)
	s := &genesis.GenesisSnapshot{}
	require.NoError(json.Unmarshal(raw, s))
	require.Len(s.Coins, 7)
	require.Len(s.Rules.Consensus.Authorities, 2)
}
