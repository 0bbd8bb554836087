package launcher

// Defaults bundles the baseline configuration values the launcher uses
// before the config file and CLI flags override them.

type Defaults struct {
	Node    NodeDefaults
	Storage StorageDefaults
	Logging LoggingDefaults
}

// NodeDefaults captures top-level node settings.
type NodeDefaults struct {
	DataDir string // filesystem root where the node keeps its databases
	Name    string // human-readable instance identity used in logs
}

// StorageDefaults configures genesis store database behaviour.
type StorageDefaults struct {
	CacheSizeMB int    // memory reserved for database caches
	Handles     int    // file handles available to the database
	Preset      string // named resource preset (lite/default/full/archive)
}

// LoggingDefaults controls log verbosity and format.
type LoggingDefaults struct {
	Verbosity int    // 0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace
	Format    string // text or json
	Color     bool
}

// DefaultConfig returns a fully populated Defaults instance.
func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.umbra",
			Name:    "go-umbra",
		},
		Storage: StorageDefaults{
			CacheSizeMB: 1024,
			Handles:     512,
			Preset:      "default",
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     true,
		},
	}
}
