package launcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/umbra-chain/go-umbra/umbra/genesis"
	"github.com/umbra-chain/go-umbra/umbra/genesisstore"
)

// genesisDBName is the database the genesis store lives in under
// <datadir>/chaindata.
const genesisDBName = "genesis"

// loadSnapshot reads a snapshot file in either supported form. The form is
// detected by content: the JSON text form starts with '{', anything else is
// treated as the canonical binary form.
func loadSnapshot(path string) (*genesis.GenesisSnapshot, error) {
	if path == "" {
		return nil, errors.New("no genesis file given (--genesis)")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := &genesis.GenesisSnapshot{}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("parse genesis text form: %w", err)
		}
		return s, nil
	}
	if err := s.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("parse genesis binary form: %w", err)
	}
	return s, nil
}

// validated builds and validates a snapshot, logging every violation.
func validated(s *genesis.GenesisSnapshot) (*genesis.Builder, error) {
	builder := genesis.NewBuilder(s)
	violations := builder.Validate()
	for _, v := range violations {
		logrus.WithError(v).Error("genesis violation")
	}
	if len(violations) > 0 {
		return nil, fmt.Errorf("genesis snapshot is invalid: %d violations", len(violations))
	}
	return builder, nil
}

func checkGenesis(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}

	s, err := loadSnapshot(cfg.Genesis.Path)
	if err != nil {
		return err
	}
	if _, err := validated(s); err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "genesis snapshot is valid: %d coins, %d contracts, %d messages\n",
		len(s.Coins), len(s.Contracts), len(s.Messages))
	return nil
}

func hashGenesis(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}

	s, err := loadSnapshot(cfg.Genesis.Path)
	if err != nil {
		return err
	}
	if _, err := validated(s); err != nil {
		return err
	}
	hash, err := s.CommitmentHash()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hash.Hex())
	return nil
}

func commitGenesis(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}

	s, err := loadSnapshot(cfg.Genesis.Path)
	if err != nil {
		return err
	}
	builder, err := validated(s)
	if err != nil {
		return err
	}

	chaindataDir := filepath.Join(cfg.Node.DataDir, "chaindata")
	if err := ensureDir(chaindataDir); err != nil {
		return err
	}
	producer := leveldb.NewProducer(chaindataDir, func(string) (int, int) {
		return cfg.Store.CacheMB * 1024 * 1024, cfg.Store.Handles
	})
	db, err := producer.OpenDB(genesisDBName)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := builder.Commit(context.Background(), genesisstore.NewStore(db))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hash.Hex())
	return nil
}

// fakeGenesis writes a deterministic fixture snapshot in the text form, so
// local networks can bootstrap without hand-written genesis files.
func fakeGenesis(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}

	fake := cfg.Genesis.Fake
	s := genesis.FakeSnapshot(fake.Seed, fake.Coins, fake.Contracts, fake.Messages)
	if fake.Validators > 0 {
		s.Rules.Consensus.Authorities = genesis.FakeAuthorities(fake.Validators)
	}
	switch cfg.Genesis.NonceScope {
	case "", "per-sender":
		s.NonceScope = genesis.NonceScopePerSender
	case "global":
		s.NonceScope = genesis.NonceScopeGlobal
	default:
		return fmt.Errorf("unknown nonce scope %q", cfg.Genesis.NonceScope)
	}
	if _, err := validated(s); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	out := cfg.Genesis.OutPath
	if out == "" {
		_, err = ctx.App.Writer.Write(append(raw, '\n'))
		return err
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return err
	}
	hash, err := s.CommitmentHash()
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"file": out,
		"hash": hash.TerminalString(),
	}).Info("fake genesis written")
	return nil
}
