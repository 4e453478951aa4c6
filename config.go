package subvec

import (
	"fmt"

	"github.com/gojomo/subvec/ngram"
)

// SubwordConfig selects between the two store variants: subword features
// with a fixed bucket table, or plain whole-word vectors.
//
// Use WithSubwords or WordsOnly to construct one; the zero value is not
// meaningful.
type SubwordConfig struct {
	enabled bool
	buckets int
	minN    int
	maxN    int
	mode    ngram.HashMode
}

// WithSubwords enables character-ngram features: buckets rows of ngram
// weights, ngram lengths minN..maxN, hashed under mode.
func WithSubwords(buckets, minN, maxN int, mode ngram.HashMode) SubwordConfig {
	return SubwordConfig{
		enabled: true,
		buckets: buckets,
		minN:    minN,
		maxN:    maxN,
		mode:    mode,
	}
}

// WordsOnly disables subword features entirely. The store keeps no bucket
// table and cannot synthesize vectors for out-of-vocabulary words.
func WordsOnly() SubwordConfig {
	return SubwordConfig{}
}

// Enabled reports whether subword features are on.
func (c SubwordConfig) Enabled() bool { return c.enabled }

// Buckets returns the bucket count, zero when disabled.
func (c SubwordConfig) Buckets() int {
	if !c.enabled {
		return 0
	}
	return c.buckets
}

// MinN returns the minimum ngram length.
func (c SubwordConfig) MinN() int { return c.minN }

// MaxN returns the maximum ngram length.
func (c SubwordConfig) MaxN() int { return c.maxN }

// Mode returns the hash mode.
func (c SubwordConfig) Mode() ngram.HashMode { return c.mode }

func (c SubwordConfig) validate() error {
	if !c.enabled {
		return nil
	}
	if c.buckets <= 0 {
		return fmt.Errorf("subword config: bucket count must be positive, got %d", c.buckets)
	}
	if c.minN < 1 || c.minN > c.maxN {
		return fmt.Errorf("subword config: need 1 <= minN <= maxN, got minN=%d maxN=%d", c.minN, c.maxN)
	}
	return nil
}

// hashes returns the bucket indices for word under this configuration.
func (c SubwordConfig) hashes(word string) []uint32 {
	if !c.enabled {
		return nil
	}
	return ngram.Hashes(word, c.minN, c.maxN, c.buckets, c.mode)
}
