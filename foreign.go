package subvec

import (
	"fmt"
	"io"
	"strings"

	"github.com/gojomo/subvec/fbmodel"
	"github.com/gojomo/subvec/matrix"
	"github.com/gojomo/subvec/ngram"
	"github.com/gojomo/subvec/persistence"
)

// Default hyperparameters written into exported reference-format models.
// They describe how the model would be trained, not how it is stored, so
// round-tripping a store through the format does not depend on them.
const (
	defaultWindowSize   = 5
	defaultEpochs       = 5
	defaultNegatives    = 5
	defaultSample       = 1e-3
	defaultLRUpdateRate = 100
	defaultWordNgrams   = 1
)

// LoadFacebookModel builds a store from a reference-format binary model.
// Reference models hash ngrams over raw bytes, so the store always uses
// byte-compatible hashing. The composite matrix is computed before return.
func LoadFacebookModel(r io.Reader, optFns ...Option) (*Store, error) {
	m, err := fbmodel.Load(r)
	if err != nil {
		return nil, err
	}
	return FromFacebookModel(m, optFns...)
}

// FromFacebookModel builds a store from an already decoded model.
func FromFacebookModel(m *fbmodel.Model, optFns ...Option) (*Store, error) {
	cfg := WordsOnly()
	if m.Buckets > 0 {
		cfg = WithSubwords(m.Buckets, m.MinN, m.MaxN, ngram.HashCompatible)
	}
	s, err := New(m.Dim, cfg, optFns...)
	if err != nil {
		return nil, err
	}

	vocab := NewVocabulary()
	for i, word := range m.Words {
		count := m.Counts[i]
		if count < 0 {
			count = 0
		}
		vocab.Add(word, uint64(count))
	}
	s.vocab = vocab

	weights, err := matrix.FromData(m.Matrix, m.MatrixRows, m.MatrixCols)
	if err != nil {
		return nil, err
	}
	if err := s.LoadForeign(weights, len(m.Words), m.Buckets); err != nil {
		return nil, err
	}
	return s, nil
}

// ToFacebookModel converts the store to a reference-format model with
// default training hyperparameters.
func (s *Store) ToFacebookModel() (*fbmodel.Model, error) {
	if s.vocabVectors == nil {
		return nil, fmt.Errorf("export model: %w", ErrNotInitialized)
	}

	nwords := s.vocab.Len()
	words := make([]string, nwords)
	counts := make([]int64, nwords)
	var totalTokens int64
	for i := 0; i < nwords; i++ {
		words[i] = s.vocab.Word(i)
		counts[i] = int64(s.vocab.Count(i))
		totalTokens += counts[i]
	}

	rows := nwords + s.cfg.Buckets()
	data := make([]float32, 0, rows*s.dim)
	data = append(data, s.vocabVectors.Data()...)
	data = append(data, s.bucketVectors.Data()...)

	return &fbmodel.Model{
		Dim:          s.dim,
		WindowSize:   defaultWindowSize,
		Epochs:       defaultEpochs,
		Negatives:    defaultNegatives,
		Loss:         fbmodel.LossNegativeSampling,
		ModelType:    fbmodel.ModelSkipGram,
		Buckets:      s.cfg.Buckets(),
		MinCount:     1,
		Sample:       defaultSample,
		MinN:         s.cfg.MinN(),
		MaxN:         s.cfg.MaxN(),
		TotalTokens:  totalTokens,
		VocabSize:    nwords,
		Words:        words,
		Counts:       counts,
		MatrixRows:   rows,
		MatrixCols:   s.dim,
		Matrix:       data,
		LRUpdateRate: defaultLRUpdateRate,
		WordNgrams:   defaultWordNgrams,
	}, nil
}

// SaveFacebookModel writes the store in the reference binary format.
func (s *Store) SaveFacebookModel(w io.Writer, compress bool) error {
	m, err := s.ToFacebookModel()
	if err != nil {
		return err
	}
	return m.Save(w, compress)
}

// SaveFacebookModelFile writes the store in the reference format to path,
// gzip-compressed when the path ends in .gz. The file is replaced
// atomically.
func (s *Store) SaveFacebookModelFile(path string) error {
	return persistence.SaveToFile(path, func(w io.Writer) error {
		return s.SaveFacebookModel(w, strings.HasSuffix(path, ".gz"))
	})
}

// LoadFacebookModelFile reads a reference-format model from path. Gzip
// compression is detected from the content, not the name.
func LoadFacebookModelFile(path string, optFns ...Option) (*Store, error) {
	var s *Store
	err := persistence.LoadFromFile(path, func(r io.Reader) error {
		var err error
		s, err = LoadFacebookModel(r, optFns...)
		return err
	})
	return s, err
}
