package main

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gojomo/subvec"
	"github.com/gojomo/subvec/survey"
)

var (
	surveyOut          string
	surveyMinCount     uint64
	surveyPruneCeiling int
	surveySeed         int64
	surveyParallel     bool
	surveyTopK         int
)

var surveyCmd = &cobra.Command{
	Use:   "survey <corpus-file>...",
	Short: "Survey a corpus and build a model snapshot",
	Long: `Count token frequencies over whitespace-tokenized text files, build a
vocabulary from tokens seen at least --min-count times, and initialize a
model snapshot with random weights.

With --parallel, files are surveyed concurrently and merged. Without --out,
only the frequency summary is printed.

Examples:
  subvec survey corpus.txt
  subvec survey --min-count 5 --out model.svc corpus-*.txt
  subvec survey --parallel --prune-ceiling 10000000 shard-*.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSurvey,
}

func init() {
	rootCmd.AddCommand(surveyCmd)
	surveyCmd.Flags().StringVarP(&surveyOut, "out", "o", "", "snapshot file to write")
	surveyCmd.Flags().Uint64Var(&surveyMinCount, "min-count", 1, "minimum token count to keep")
	surveyCmd.Flags().IntVar(&surveyPruneCeiling, "prune-ceiling", 0, "prune the tally above this many distinct tokens (0 = never)")
	surveyCmd.Flags().Int64Var(&surveySeed, "seed", 1, "seed for weight initialization")
	surveyCmd.Flags().BoolVar(&surveyParallel, "parallel", false, "survey input files concurrently")
	surveyCmd.Flags().IntVar(&surveyTopK, "top", 10, "most frequent tokens to print")
}

// fileTokens yields one token list per line of the file.
func fileTokens(path string) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
		for scanner.Scan() {
			tokens := strings.Fields(scanner.Text())
			if len(tokens) == 0 {
				continue
			}
			if !yield(tokens) {
				return
			}
		}
	}
}

func runSurvey(cmd *cobra.Command, args []string) error {
	cfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	newSurvey := func() *survey.Survey {
		return survey.New(func(o *survey.Options) {
			o.PruneCeiling = surveyPruneCeiling
			o.PruneTarget = cfg.PruneTarget
			o.Logger = logger.Logger
		})
	}

	var result *survey.Survey
	if surveyParallel && len(args) > 1 {
		shards := make([]iter.Seq[[]string], len(args))
		for i, path := range args {
			shards[i] = fileTokens(path)
		}
		result, err = survey.ScanShards(cmd.Context(), shards, newSurvey)
		if err != nil {
			return err
		}
	} else {
		result = newSurvey()
		for _, path := range args {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			result.Update(fileTokens(path))
		}
	}

	fmt.Printf("items:          %d\n", result.ItemCount)
	fmt.Printf("tokens:         %d\n", result.TokenCount)
	fmt.Printf("distinct:       %d\n", result.Len())
	if result.PruneCount > 0 {
		fmt.Printf("prune passes:   %d (%d tokens dropped)\n", result.PruneCount, result.PruneTotal)
	}

	vocab := subvec.NewVocabularyFromSurvey(result, surveyMinCount)
	fmt.Printf("kept words:     %d (min count %d)\n", vocab.Len(), surveyMinCount)
	for i := 0; i < vocab.Len() && i < surveyTopK; i++ {
		fmt.Printf("  %8d  %s\n", vocab.Count(i), vocab.Word(i))
	}

	if surveyOut == "" {
		return nil
	}
	return writeSnapshot(cmd.Context(), cfg, vocab)
}

func writeSnapshot(_ context.Context, cfg fileConfig, vocab *subvec.Vocabulary) error {
	mode, err := cfg.hashMode()
	if err != nil {
		return err
	}
	compression, err := cfg.compression()
	if err != nil {
		return err
	}

	store, err := subvec.New(cfg.Dim, subvec.WithSubwords(cfg.Buckets, cfg.MinN, cfg.MaxN, mode),
		subvec.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	if err := store.Initialize(vocab, surveySeed); err != nil {
		return err
	}
	if err := store.SaveSnapshotFile(surveyOut, compression); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d x %d + %d buckets)\n", surveyOut, vocab.Len(), cfg.Dim, cfg.Buckets)
	return nil
}
