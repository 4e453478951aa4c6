package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gojomo/subvec"
	"github.com/gojomo/subvec/ngram"
	"github.com/gojomo/subvec/persistence"
)

var (
	configPath string
	verbose    bool
)

// fileConfig holds the defaults loadable from a YAML config file. Flags
// override it.
type fileConfig struct {
	Dim         int     `yaml:"dim"`
	Buckets     int     `yaml:"buckets"`
	MinN        int     `yaml:"min_n"`
	MaxN        int     `yaml:"max_n"`
	HashMode    string  `yaml:"hash_mode"`
	Compression string  `yaml:"compression"`
	PruneTarget float64 `yaml:"prune_target"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Dim:         100,
		Buckets:     2000000,
		MinN:        3,
		MaxN:        6,
		HashMode:    "compatible",
		Compression: "zstd",
		PruneTarget: 0.5,
	}
}

func loadFileConfig() (fileConfig, error) {
	cfg := defaultFileConfig()
	if configPath == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", configPath, err)
	}
	return cfg, nil
}

func (c fileConfig) hashMode() (ngram.HashMode, error) {
	switch strings.ToLower(c.HashMode) {
	case "compatible", "":
		return ngram.HashCompatible, nil
	case "legacy":
		return ngram.HashLegacy, nil
	default:
		return 0, fmt.Errorf("unknown hash mode %q (want compatible or legacy)", c.HashMode)
	}
}

func (c fileConfig) compression() (persistence.Compression, error) {
	switch strings.ToLower(c.Compression) {
	case "none":
		return persistence.CompressionNone, nil
	case "lz4":
		return persistence.CompressionLZ4, nil
	case "zstd", "":
		return persistence.CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4 or zstd)", c.Compression)
	}
}

func newLogger() *subvec.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return subvec.NewTextLogger(level)
}

var rootCmd = &cobra.Command{
	Use:   "subvec",
	Short: "Subword embedding snapshot tooling",
	Long: `subvec builds, inspects, and queries subword-aware word embedding
snapshots, including models exchanged with the reference training tool.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file with defaults")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// loadStore reads either an internal snapshot or a reference-format model,
// chosen by the --foreign flag on the calling command.
func loadStore(path string, foreign bool) (*subvec.Store, error) {
	if foreign {
		return subvec.LoadFacebookModelFile(path, subvec.WithLogger(newLogger()))
	}
	return subvec.LoadSnapshotFile(path, subvec.WithLogger(newLogger()))
}
