// Package integration provides named resource presets for the genesis store
// database. Presets bundle cache sizes and file-handle budgets into profiles
// (Lite, Default, Full, Archive) so operators can size the store without
// tuning individual flags.
package integration

import "fmt"

// PresetConfig captures the tunable database parameters that vary across
// profiles.
type PresetConfig struct {
	Name    string // human-readable identifier (e.g. "lite", "full")
	CacheMB int    // memory allocated to database caches
	Handles int    // file handles available to the database
}

// DefaultPreset is the balanced profile used when nothing else is asked for.
func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:    "default",
		CacheMB: 1024,
		Handles: 512,
	}
}

// LitePreset fits constrained environments: laptops, CI runners, disposable
// test nodes. Smaller caches slow large imports down but keep the footprint
// low.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.CacheMB = 256
	cfg.Handles = 128
	return cfg
}

// FullPreset suits production nodes importing large genesis states.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.CacheMB = 4096
	cfg.Handles = 1024
	return cfg
}

// ArchivePreset suits explorers and analytics nodes that keep the full
// genesis state hot for queries.
func ArchivePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "archive"
	cfg.CacheMB = 8192
	cfg.Handles = 2048
	return cfg
}

// GetPresetByName looks up a preset by its string identifier. This helper
// enables CLI flags like --preset=full to select configurations dynamically.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "lite":
		return LitePreset(), nil
	case "full":
		return FullPreset(), nil
	case "archive":
		return ArchivePreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: lite, full, archive, default)", name)
	}
}
