package subvec

import (
	"sort"

	"github.com/gojomo/subvec/survey"
)

// Vocabulary maps words to dense, stable, 0-based indices with occurrence
// counts. Indices never change once assigned; new words are appended at the
// end, which is what lets Grow extend a store without invalidating trained
// rows.
type Vocabulary struct {
	words  []string
	counts []uint64
	index  map[string]int
}

// NewVocabulary creates an empty vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{index: make(map[string]int)}
}

// NewVocabularyFromSurvey builds a vocabulary from a survey's tally, keeping
// tokens with at least minCount occurrences. Indices are assigned by
// descending count, ties broken by ascending token order, so the result is
// deterministic for a given survey.
func NewVocabularyFromSurvey(s *survey.Survey, minCount uint64) *Vocabulary {
	type entry struct {
		token string
		count uint64
	}
	entries := make([]entry, 0, s.Len())
	s.ForEach(func(token string, count uint64) {
		if count >= minCount {
			entries = append(entries, entry{token, count})
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].token < entries[j].token
	})

	v := &Vocabulary{
		words:  make([]string, 0, len(entries)),
		counts: make([]uint64, 0, len(entries)),
		index:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		v.Add(e.token, e.count)
	}
	return v
}

// Add records count occurrences of word, appending it with the next free
// index if absent. It returns the word's index.
func (v *Vocabulary) Add(word string, count uint64) int {
	if i, ok := v.index[word]; ok {
		v.counts[i] += count
		return i
	}
	i := len(v.words)
	v.words = append(v.words, word)
	v.counts = append(v.counts, count)
	v.index[word] = i
	return i
}

// Index returns the index of word.
func (v *Vocabulary) Index(word string) (int, bool) {
	i, ok := v.index[word]
	return i, ok
}

// Word returns the word at index i.
func (v *Vocabulary) Word(i int) string { return v.words[i] }

// Count returns the occurrence count of the word at index i.
func (v *Vocabulary) Count(i int) uint64 { return v.counts[i] }

// Len returns the number of words.
func (v *Vocabulary) Len() int { return len(v.words) }

// Contains reports whether word is present.
func (v *Vocabulary) Contains(word string) bool {
	_, ok := v.index[word]
	return ok
}
