package subvec_test

import (
	"fmt"
	"log"

	"github.com/gojomo/subvec"
	"github.com/gojomo/subvec/ngram"
	"github.com/gojomo/subvec/survey"
)

// Example demonstrates building a store and looking up a vector for a word
// the vocabulary has never seen.
func Example() {
	vocab := subvec.NewVocabulary()
	vocab.Add("cat", 10)
	vocab.Add("dog", 7)

	store, err := subvec.New(64, subvec.WithSubwords(100000, 3, 6, ngram.HashCompatible))
	if err != nil {
		log.Fatal(err)
	}
	if err := store.Initialize(vocab, 42); err != nil {
		log.Fatal(err)
	}

	vec, err := store.Lookup("catdog") // not in the vocabulary
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(vec))
	// Output: 64
}

// Example_survey demonstrates building a vocabulary from a streamed corpus.
func Example_survey() {
	s := survey.New()
	s.Update(func(yield func([]string) bool) {
		yield([]string{"the", "cat", "sat"})
		yield([]string{"the", "dog", "sat"})
	})

	vocab := subvec.NewVocabularyFromSurvey(s, 2)
	for i := 0; i < vocab.Len(); i++ {
		fmt.Println(vocab.Word(i), vocab.Count(i))
	}
	// Output:
	// sat 2
	// the 2
}

// Example_grow demonstrates extending a trained store with new words while
// keeping existing rows untouched.
func Example_grow() {
	vocab := subvec.NewVocabulary()
	vocab.Add("cat", 5)

	store, err := subvec.New(16, subvec.WithSubwords(1000, 3, 6, ngram.HashCompatible))
	if err != nil {
		log.Fatal(err)
	}
	if err := store.Initialize(vocab, 1); err != nil {
		log.Fatal(err)
	}

	vocab.Add("dog", 3)
	if err := store.Grow(vocab, 1, 2); err != nil {
		log.Fatal(err)
	}
	fmt.Println(store.Len(), store.VocabMatrix().Rows())
	// Output: 2 2
}
