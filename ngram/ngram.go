// Package ngram turns words into hashed character-ngram bucket indices.
//
// A word is bracketed with boundary markers ("<word>") and every contiguous
// substring of minN..maxN characters is extracted, including the bracketed
// whole word when short enough. Each ngram is hashed to a 32-bit value and
// reduced modulo the bucket count.
//
// Two hash modes exist for compatibility with models trained elsewhere.
// HashCompatible segments on raw UTF-8 bytes (never splitting a multi-byte
// sequence) and hashes with classic 32-bit FNV-1a over those bytes, matching
// the reference C++ implementation. HashLegacy segments on decoded characters
// and hashes over code points; it reproduces an older, buggy scheme and is
// retained only so models trained under it remain loadable.
package ngram

import "fmt"

// HashMode selects the ngram segmentation and hash function.
type HashMode uint8

const (
	// HashCompatible is byte-segmented FNV-1a, compatible with the
	// reference implementation. Use this for all new models.
	HashCompatible HashMode = iota
	// HashLegacy is the preserved old scheme operating on decoded
	// characters. Only for loading models hashed under it.
	HashLegacy
)

func (m HashMode) String() string {
	switch m {
	case HashCompatible:
		return "compatible"
	case HashLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("HashMode(%d)", uint8(m))
	}
}

const (
	// UTF-8 bytes matching 10xxxxxx are continuation bytes of a
	// multi-byte sequence, not the start of a character.
	mbMask  = 0xC0
	mbStart = 0x80

	fnvOffset = 2166136261
	fnvPrime  = 16777619
)

// Hashes returns the ordered bucket indices for every ngram of word,
// duplicates preserved. Order is ascending ngram length, then left-to-right
// start position. It returns nil when buckets <= 0 (subword features
// disabled) or when the bracketed word admits no ngram of length >= minN.
//
// The function is pure: identical inputs always produce the identical
// sequence.
func Hashes(word string, minN, maxN, buckets int, mode HashMode) []uint32 {
	if buckets <= 0 {
		return nil
	}
	b := uint32(buckets)
	var out []uint32
	if mode == HashLegacy {
		for _, ng := range Ngrams(word, minN, maxN) {
			out = append(out, LegacyHash(ng)%b)
		}
		return out
	}
	for _, ng := range NgramsBytes(word, minN, maxN) {
		out = append(out, FNV1a(ng)%b)
	}
	return out
}

// NgramsBytes extracts the byte-level ngrams of the bracketed word.
// Ngram length is counted in characters; slicing walks the raw UTF-8 bytes
// and boundaries always fall on character starts.
func NgramsBytes(word string, minN, maxN int) [][]byte {
	bracketed := []byte("<" + word + ">")

	// starts[k] is the byte offset of the k-th character; the final entry
	// is len(bracketed) so starts[k+n] closes an n-char slice.
	starts := make([]int, 0, len(bracketed)+1)
	for i, c := range bracketed {
		if c&mbMask != mbStart {
			starts = append(starts, i)
		}
	}
	starts = append(starts, len(bracketed))

	chars := len(starts) - 1
	var out [][]byte
	for n := minN; n <= maxN && n <= chars; n++ {
		for i := 0; i+n <= chars; i++ {
			out = append(out, bracketed[starts[i]:starts[i+n]])
		}
	}
	return out
}

// Ngrams extracts the character-level ngrams of the bracketed word, the
// segmentation used by HashLegacy.
func Ngrams(word string, minN, maxN int) []string {
	runes := []rune("<" + word + ">")
	var out []string
	for n := minN; n <= maxN && n <= len(runes); n++ {
		for i := 0; i+n <= len(runes); i++ {
			out = append(out, string(runes[i:i+n]))
		}
	}
	return out
}

// FNV1a computes the classic 32-bit FNV-1a hash over raw bytes.
func FNV1a(data []byte) uint32 {
	h := uint32(fnvOffset)
	for _, b := range data {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return h
}

// LegacyHash runs the FNV-1a recurrence over Unicode code points instead of
// bytes. This reproduces the old broken hash bug-for-bug; do not fix it.
func LegacyHash(ngram string) uint32 {
	h := uint32(fnvOffset)
	for _, r := range ngram {
		h ^= uint32(r)
		h *= fnvPrime
	}
	return h
}
