package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/urfave/cli.v1"

	"github.com/umbra-chain/go-umbra/integration"
)

// Config aggregates everything the launcher needs.
type Config struct {
	Node    NodeConfig
	Genesis GenesisConfig
	Store   StoreConfig
	Logging LoggingConfig
}

type NodeConfig struct {
	DataDir string
	Name    string
}

type GenesisConfig struct {
	// Path of the snapshot file; JSON text form or canonical binary form,
	// detected by content.
	Path string

	// OutPath receives generated or re-encoded snapshots.
	OutPath string

	// NonceScope overrides the message nonce scope of generated snapshots
	// ("per-sender" or "global").
	NonceScope string

	// Fake configures the deterministic fixture generator.
	Fake FakeConfig
}

type FakeConfig struct {
	Seed       int64
	Validators int
	Coins      int
	Contracts  int
	Messages   int
}

type StoreConfig struct {
	CacheMB int
	Handles int
	Preset  string
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

func defaultConfig() Config {
	defaults := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: resolvePath(defaults.Node.DataDir),
			Name:    defaults.Node.Name,
		},
		Genesis: GenesisConfig{
			Fake: FakeConfig{
				Seed:       1,
				Validators: 3,
				Coins:      10,
				Contracts:  3,
				Messages:   5,
			},
		},
		Store: StoreConfig{
			CacheMB: defaults.Storage.CacheSizeMB,
			Handles: defaults.Storage.Handles,
			Preset:  defaults.Storage.Preset,
		},
		Logging: LoggingConfig{
			Verbosity: defaults.Logging.Verbosity,
			Format:    defaults.Logging.Format,
			Color:     defaults.Logging.Color,
		},
	}
}

// MakeAllConfigs merges defaults, the optional config file, then CLI flag
// overrides into a single config struct.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := flagString(ctx, "config"); file != "" {
		if err := loadConfigFile(resolvePath(file), &cfg); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", file, err)
		}
	}
	if err := applyCLIOverrides(ctx, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, cfg)
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) error {
	if ctx.GlobalIsSet("datadir") || ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(flagString(ctx, "datadir"))
	}

	if ctx.GlobalIsSet("log.format") || ctx.IsSet("log.format") {
		cfg.Logging.Format = flagString(ctx, "log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") || ctx.IsSet("log.verbosity") {
		cfg.Logging.Verbosity = flagInt(ctx, "log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") || ctx.IsSet("log.color") {
		cfg.Logging.Color = ctx.GlobalBool("log.color") || ctx.Bool("log.color")
	}
	if ctx.GlobalIsSet("sentry.dsn") || ctx.IsSet("sentry.dsn") {
		cfg.Logging.SentryDSN = flagString(ctx, "sentry.dsn")
	}

	if ctx.IsSet("genesis") {
		cfg.Genesis.Path = resolvePath(ctx.String("genesis"))
	}
	if ctx.IsSet("genesis.out") {
		cfg.Genesis.OutPath = resolvePath(ctx.String("genesis.out"))
	}
	if ctx.IsSet("nonce.scope") {
		cfg.Genesis.NonceScope = ctx.String("nonce.scope")
	}

	if ctx.IsSet("fake.seed") {
		cfg.Genesis.Fake.Seed = ctx.Int64("fake.seed")
	}
	if ctx.IsSet("fake.validators") {
		cfg.Genesis.Fake.Validators = ctx.Int("fake.validators")
	}
	if ctx.IsSet("fake.coins") {
		cfg.Genesis.Fake.Coins = ctx.Int("fake.coins")
	}
	if ctx.IsSet("fake.contracts") {
		cfg.Genesis.Fake.Contracts = ctx.Int("fake.contracts")
	}
	if ctx.IsSet("fake.messages") {
		cfg.Genesis.Fake.Messages = ctx.Int("fake.messages")
	}

	if ctx.IsSet("preset") {
		preset, err := integration.GetPresetByName(ctx.String("preset"))
		if err != nil {
			return err
		}
		cfg.Store.Preset = preset.Name
		cfg.Store.CacheMB = preset.CacheMB
		cfg.Store.Handles = preset.Handles
	}
	// Explicit knobs beat the preset.
	if ctx.IsSet("cache") {
		cfg.Store.CacheMB = ctx.Int("cache")
	}
	if ctx.IsSet("handles") {
		cfg.Store.Handles = ctx.Int("handles")
	}
	return nil
}

// flagString reads a flag that may be registered globally or on the command.
func flagString(ctx *cli.Context, name string) string {
	if v := ctx.GlobalString(name); v != "" {
		return v
	}
	return ctx.String(name)
}

func flagInt(ctx *cli.Context, name string) int {
	if ctx.GlobalIsSet(name) {
		return ctx.GlobalInt(name)
	}
	return ctx.Int(name)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}

func GuessProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd // hit filesystem root without finding go.mod
		}
		dir = parent
	}
}
