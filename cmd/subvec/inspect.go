package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	inspectForeign bool
	inspectJSON    bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <model-file>",
	Short: "Show the shape and footprint of a model",
	Long: `Show the dimension, subword configuration, vocabulary size, and memory
footprint of a snapshot or reference-format model.

Examples:
  subvec inspect model.svc
  subvec inspect --foreign model.bin.gz
  subvec inspect --json model.svc`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectForeign, "foreign", false, "read the reference binary format")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "emit JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	store, err := loadStore(args[0], inspectForeign)
	if err != nil {
		return err
	}

	est := store.EstimateMemory()
	cfg := store.Config()

	if inspectJSON {
		out := map[string]any{
			"dim":          store.Dim(),
			"words":        est.Words,
			"subwords":     cfg.Enabled(),
			"buckets":      est.Buckets,
			"used_buckets": est.UsedBuckets,
			"ngram_refs":   est.NgramRefs,
			"total_bytes":  est.TotalBytes,
		}
		if cfg.Enabled() {
			out["min_n"] = cfg.MinN()
			out["max_n"] = cfg.MaxN()
			out["hash_mode"] = cfg.Mode().String()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("dimension:    %d\n", store.Dim())
	fmt.Printf("words:        %d\n", est.Words)
	if cfg.Enabled() {
		fmt.Printf("ngrams:       %d-%d chars, %s hashing\n", cfg.MinN(), cfg.MaxN(), cfg.Mode())
		fmt.Printf("buckets:      %d (%d used)\n", est.Buckets, est.UsedBuckets)
		fmt.Printf("ngram refs:   %d\n", est.NgramRefs)
	} else {
		fmt.Printf("ngrams:       disabled\n")
	}
	fmt.Printf("memory:       %.1f MiB\n", float64(est.TotalBytes)/(1<<20))
	return nil
}
