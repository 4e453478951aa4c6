package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gojomo/subvec/ngram"
)

var (
	oovForeign bool
	oovNgrams  bool
	oovUnit    bool
)

var oovCmd = &cobra.Command{
	Use:   "oov <model-file> <word>...",
	Short: "Look up or synthesize word vectors",
	Long: `Look up vectors for the given words. Words outside the vocabulary get
vectors synthesized from their character ngrams when the model carries
subword buckets.

Examples:
  subvec oov model.svc cat dog
  subvec oov --ngrams model.svc windmill
  subvec oov --unit --foreign model.bin.gz queen`,
	Args: cobra.MinimumNArgs(2),
	RunE: runOOV,
}

func init() {
	rootCmd.AddCommand(oovCmd)
	oovCmd.Flags().BoolVar(&oovForeign, "foreign", false, "read the reference binary format")
	oovCmd.Flags().BoolVar(&oovNgrams, "ngrams", false, "print the ngrams and buckets instead of vectors")
	oovCmd.Flags().BoolVar(&oovUnit, "unit", false, "L2-normalize the vectors")
}

func runOOV(cmd *cobra.Command, args []string) error {
	store, err := loadStore(args[0], oovForeign)
	if err != nil {
		return err
	}
	cfg := store.Config()

	for _, word := range args[1:] {
		status := "vocab"
		if !store.Contains(word) {
			status = "oov"
		}

		if oovNgrams {
			if !cfg.Enabled() {
				return fmt.Errorf("model carries no subword buckets")
			}
			grams := ngram.Ngrams(word, cfg.MinN(), cfg.MaxN())
			hashes := ngram.Hashes(word, cfg.MinN(), cfg.MaxN(), cfg.Buckets(), cfg.Mode())
			fmt.Printf("%s (%s): %d ngrams\n", word, status, len(grams))
			for i, g := range grams {
				fmt.Printf("  %-12q -> %d\n", g, hashes[i])
			}
			continue
		}

		lookup := store.Lookup
		if oovUnit {
			lookup = store.LookupUnit
		}
		vec, err := lookup(word)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s): %s\n", word, status, formatVector(vec))
	}
	return nil
}

func formatVector(vec []float32) string {
	parts := make([]string, len(vec))
	for i, x := range vec {
		parts[i] = fmt.Sprintf("%.4f", x)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
