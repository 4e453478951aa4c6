// Package subvec provides subword-aware word-embedding storage for Go.
//
// A Store owns two matrices: one row of "own-token" weights per vocabulary
// word, and a fixed table of hashed character-ngram bucket weights. Full-word
// vectors are composed from both, and words never seen in training still get
// vectors synthesized purely from their ngram buckets.
//
// # Quick Start
//
// Build a vocabulary from a corpus survey, then initialize a store:
//
//	sv := survey.New(func(o *survey.Options) { o.PruneCeiling = 10_000_000 })
//	sv.Update(corpus)
//
//	vocab := subvec.NewVocabularyFromSurvey(sv, 5)
//	store, _ := subvec.New(100, subvec.WithSubwords(2_000_000, 3, 6, ngram.HashCompatible))
//	_ = store.Initialize(vocab, 1)
//
// An external training kernel may now mutate VocabMatrix and BucketMatrix
// rows in place. Once it is done, recompute the derived full-word vectors and
// query:
//
//	store.Composite()
//	vec, _ := store.Lookup("landlady")   // in vocabulary
//	oov, _ := store.Lookup("landlords")  // synthesized from ngrams
//
// # Growing the vocabulary
//
// Grow appends freshly random rows for new words without touching existing
// ones, so trained vectors stay bit-identical:
//
//	prev := vocab.Len()
//	vocab.Add("wazzup", 3)
//	_ = store.Grow(vocab, prev, 1)
//
// # Foreign models
//
// LoadFacebookModel and SaveFacebookModel read and write the reference binary
// model format (plain or gzip-compressed), including remote files through the
// blobstore backends.
package subvec
