package subvec

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viterin/vek/vek32"

	"github.com/gojomo/subvec/matrix"
	"github.com/gojomo/subvec/util"
)

// Store owns the vocabulary vector matrix and the bucket vector matrix,
// composes full-word vectors from both, and synthesizes vectors for words
// outside the vocabulary.
//
// A Store is single-threaded bookkeeping. The external training kernel may
// read and write VocabMatrix and BucketMatrix rows directly between calls;
// derived state (the composite matrix, normalized rows, the OOV cache) is
// only valid immediately after Composite.
type Store struct {
	dim   int
	cfg   SubwordConfig
	vocab *Vocabulary

	vocabVectors  *matrix.Matrix // one row per vocabulary entry, "own-token" weights
	bucketVectors *matrix.Matrix // one row per hash bucket, fixed row count

	composite      *matrix.Matrix // derived full-word vectors
	compositeStale bool
	normVectors    *matrix.Matrix // lazily built L2-normalized composite rows

	bucketsWord [][]uint32 // index -> ordered bucket indices, nil until built

	oovCache *lru.Cache[string, []float32]
	logger   *Logger
}

// New creates a store for dim-dimensional vectors under the given subword
// configuration. Call Initialize or LoadForeign before using it.
func New(dim int, cfg SubwordConfig, optFns ...Option) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension: %d", dim)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := options{
		logger:       NewLogger(nil),
		oovCacheSize: defaultOOVCacheSize,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Store{
		dim:    dim,
		cfg:    cfg,
		vocab:  NewVocabulary(),
		logger: opts.logger,
	}
	if cfg.Enabled() && opts.oovCacheSize > 0 {
		cache, err := lru.New[string, []float32](opts.oovCacheSize)
		if err != nil {
			return nil, err
		}
		s.oovCache = cache
	}
	return s, nil
}

// Dim returns the embedding dimension.
func (s *Store) Dim() int { return s.dim }

// Buckets returns the bucket count, zero when subword features are disabled.
func (s *Store) Buckets() int { return s.cfg.Buckets() }

// Config returns the subword configuration.
func (s *Store) Config() SubwordConfig { return s.cfg }

// Vocabulary returns the store's vocabulary.
func (s *Store) Vocabulary() *Vocabulary { return s.vocab }

// Len returns the vocabulary size.
func (s *Store) Len() int { return s.vocab.Len() }

// Contains reports whether word is an in-vocabulary entry. Note that with
// subword features enabled, Lookup succeeds for almost any word regardless.
func (s *Store) Contains(word string) bool { return s.vocab.Contains(word) }

// VocabMatrix returns the own-token weight matrix (one row per vocabulary
// entry). The training kernel mutates its rows in place.
func (s *Store) VocabMatrix() *matrix.Matrix { return s.vocabVectors }

// BucketMatrix returns the bucket weight matrix (one row per hash bucket).
// Its row count never changes after construction.
func (s *Store) BucketMatrix() *matrix.Matrix { return s.bucketVectors }

// Initialize allocates the vocabulary and bucket matrices, filling every
// entry with values drawn uniformly from [-1/dim, 1/dim) by a PRNG seeded
// from seed. The vocabulary matrix is filled first, then the bucket matrix,
// from the same generator, so a given seed always reproduces both.
func (s *Store) Initialize(vocab *Vocabulary, seed int64) error {
	if vocab == nil {
		return fmt.Errorf("initialize: nil vocabulary")
	}
	rng := util.NewRNG(seed)

	s.vocab = vocab
	s.vocabVectors = matrix.New(vocab.Len(), s.dim)
	s.vocabVectors.FillUniform(rng)
	s.bucketVectors = matrix.New(s.cfg.Buckets(), s.dim)
	s.bucketVectors.FillUniform(rng)

	s.rebuildBucketsWord()
	s.invalidate()
	return nil
}

// Grow appends freshly random rows to the vocabulary matrix for the words
// added since previousSize, leaving existing rows bit-identical and the
// bucket matrix untouched: new words simply hash into existing buckets.
// The bucket membership cache is rebuilt for the whole vocabulary.
func (s *Store) Grow(vocab *Vocabulary, previousSize int, seed int64) error {
	if s.vocabVectors == nil {
		return fmt.Errorf("grow: %w", ErrNotInitialized)
	}
	if vocab == nil {
		return fmt.Errorf("grow: nil vocabulary")
	}
	if previousSize != s.vocabVectors.Rows() || vocab.Len() < previousSize {
		return &GrowError{
			PreviousSize: previousSize,
			CurrentRows:  s.vocabVectors.Rows(),
			VocabLen:     vocab.Len(),
		}
	}

	rng := util.NewRNG(seed)
	s.vocabVectors.AppendRandom(vocab.Len()-previousSize, rng)
	s.vocab = vocab

	s.rebuildBucketsWord()
	s.invalidate()
	return nil
}

// LoadForeign adopts a raw (vocabSize+bucketCount) x dim matrix as produced
// by a foreign model file: the first vocabSize rows become the vocabulary
// matrix, the remainder the bucket matrix. Shape violations are fatal. The
// bucket membership cache is dropped for lazy rebuild and the composite
// matrix is recomputed.
func (s *Store) LoadForeign(m *matrix.Matrix, vocabSize, bucketCount int) error {
	if m.Rows() != vocabSize+bucketCount || m.Cols() != s.dim {
		return &ShapeError{
			Rows: m.Rows(), Cols: m.Cols(),
			WantRows: vocabSize + bucketCount, WantCols: s.dim,
		}
	}
	if vocabSize != s.vocab.Len() {
		return fmt.Errorf("foreign matrix declares %d vocabulary rows, store has %d words", vocabSize, s.vocab.Len())
	}
	if bucketCount != s.cfg.Buckets() {
		return fmt.Errorf("foreign matrix declares %d buckets, store is configured for %d", bucketCount, s.cfg.Buckets())
	}

	data := m.Data()
	vocabData := make([]float32, vocabSize*s.dim)
	copy(vocabData, data[:vocabSize*s.dim])
	bucketData := make([]float32, bucketCount*s.dim)
	copy(bucketData, data[vocabSize*s.dim:])

	var err error
	if s.vocabVectors, err = matrix.FromData(vocabData, vocabSize, s.dim); err != nil {
		return err
	}
	if s.bucketVectors, err = matrix.FromData(bucketData, bucketCount, s.dim); err != nil {
		return err
	}

	s.bucketsWord = nil // lazy rebuild on next hash query
	s.invalidate()
	s.Composite()
	return nil
}

// Composite recomputes the derived full-word vector matrix:
//
//	composite[i] = (vocab[i] + sum of bucket rows of word i) / (1 + ngrams)
//
// With subword features disabled the composite is a plain copy of the
// vocabulary matrix. Cached normalized rows and synthesized OOV vectors are
// discarded; callers must not rely on composite vectors between kernel
// writes and this call.
func (s *Store) Composite() {
	if s.vocabVectors == nil {
		return
	}
	s.composite = s.vocabVectors.Clone()
	if s.cfg.Enabled() {
		s.ensureBucketsWord()
		for i := 0; i < s.composite.Rows(); i++ {
			hashes := s.bucketsWord[i]
			if len(hashes) == 0 {
				continue
			}
			row := s.composite.Row(i)
			for _, h := range hashes {
				vek32.Add_Inplace(row, s.bucketVectors.Row(int(h)))
			}
			vek32.MulNumber_Inplace(row, 1/float32(len(hashes)+1))
		}
	}
	s.compositeStale = false
	s.normVectors = nil
	if s.oovCache != nil {
		s.oovCache.Purge()
	}
}

// CompositeMatrix returns the derived full-word vector matrix, recomputing
// it first if stale.
func (s *Store) CompositeMatrix() *matrix.Matrix {
	s.ensureComposite()
	return s.composite
}

// Lookup returns the vector for word. In-vocabulary words get their
// composite vector. Out-of-vocabulary words get a vector synthesized by
// averaging the bucket rows of their ngrams; a word yielding no ngrams at
// all gets the zero vector (with a logged notice), matching the reference
// behavior. With subword features disabled an absent word fails with
// ErrNotFound.
//
// The returned slice is the caller's to keep.
func (s *Store) Lookup(word string) ([]float32, error) {
	if s.vocabVectors == nil {
		return nil, ErrNotInitialized
	}
	if i, ok := s.vocab.Index(word); ok {
		s.ensureComposite()
		return append([]float32(nil), s.composite.Row(i)...), nil
	}
	if !s.cfg.Enabled() {
		return nil, fmt.Errorf("%w: %q (subword features disabled)", ErrNotFound, word)
	}
	return s.synthesize(word), nil
}

// LookupUnit is Lookup with L2 normalization. Normalized rows for
// in-vocabulary words are cached lazily and invalidated by Composite.
// A zero vector is returned unchanged.
func (s *Store) LookupUnit(word string) ([]float32, error) {
	if s.vocabVectors == nil {
		return nil, ErrNotInitialized
	}
	if i, ok := s.vocab.Index(word); ok {
		s.ensureComposite()
		s.ensureNorms()
		return append([]float32(nil), s.normVectors.Row(i)...), nil
	}
	vec, err := s.Lookup(word)
	if err != nil {
		return nil, err
	}
	normalize(vec)
	return vec, nil
}

// BucketsOfWord returns the ordered bucket indices for the vocabulary entry
// at index i, duplicates preserved. The returned slice is shared; do not
// modify it.
func (s *Store) BucketsOfWord(i int) []uint32 {
	s.ensureBucketsWord()
	return s.bucketsWord[i]
}

// BucketUsage returns the set of buckets referenced by at least one
// vocabulary word.
func (s *Store) BucketUsage() *roaring.Bitmap {
	bm := roaring.New()
	if !s.cfg.Enabled() {
		return bm
	}
	s.ensureBucketsWord()
	for _, hashes := range s.bucketsWord {
		bm.AddMany(hashes)
	}
	return bm
}

// MemoryEstimate reports the memory footprint of a store's matrices and
// bucket membership cache.
type MemoryEstimate struct {
	Words       int
	Buckets     int
	UsedBuckets uint64 // buckets referenced by at least one word
	NgramRefs   int    // total word-to-bucket references
	VocabBytes  int64
	BucketBytes int64
	TotalBytes  int64
}

// EstimateMemory computes a memory footprint report for the current
// vocabulary and configuration.
func (s *Store) EstimateMemory() MemoryEstimate {
	vecBytes := int64(s.dim) * 4
	est := MemoryEstimate{
		Words:   s.vocab.Len(),
		Buckets: s.cfg.Buckets(),
	}
	est.VocabBytes = int64(est.Words) * vecBytes
	est.BucketBytes = int64(est.Buckets) * vecBytes
	if s.cfg.Enabled() {
		est.UsedBuckets = s.BucketUsage().GetCardinality()
		for _, hashes := range s.bucketsWord {
			est.NgramRefs += len(hashes)
		}
	}
	est.TotalBytes = est.VocabBytes + est.BucketBytes + int64(est.NgramRefs)*4
	return est
}

// synthesize builds an OOV vector by averaging the bucket rows of the
// word's ngrams.
func (s *Store) synthesize(word string) []float32 {
	if s.oovCache != nil {
		if cached, ok := s.oovCache.Get(word); ok {
			return append([]float32(nil), cached...)
		}
	}

	vec := make([]float32, s.dim)
	hashes := s.cfg.hashes(word)
	if len(hashes) == 0 {
		// No ngrams could be extracted; the best available answer is the
		// origin, matching the reference implementation.
		s.logger.Warn("could not extract any ngrams, returning origin vector", "word", word)
		return vec
	}
	for _, h := range hashes {
		vek32.Add_Inplace(vec, s.bucketVectors.Row(int(h)))
	}
	vek32.MulNumber_Inplace(vec, 1/float32(len(hashes)))

	if s.oovCache != nil {
		s.oovCache.Add(word, append([]float32(nil), vec...))
	}
	return vec
}

func (s *Store) ensureComposite() {
	if s.composite == nil || s.compositeStale {
		s.Composite()
	}
}

func (s *Store) ensureNorms() {
	if s.normVectors != nil {
		return
	}
	s.normVectors = s.composite.Clone()
	for i := 0; i < s.normVectors.Rows(); i++ {
		normalize(s.normVectors.Row(i))
	}
}

func (s *Store) ensureBucketsWord() {
	if s.bucketsWord != nil {
		return
	}
	s.rebuildBucketsWord()
}

func (s *Store) rebuildBucketsWord() {
	s.bucketsWord = make([][]uint32, s.vocab.Len())
	if !s.cfg.Enabled() {
		return
	}
	for i := range s.bucketsWord {
		s.bucketsWord[i] = s.cfg.hashes(s.vocab.Word(i))
	}
}

func (s *Store) invalidate() {
	s.compositeStale = true
	s.normVectors = nil
	if s.oovCache != nil {
		s.oovCache.Purge()
	}
}

func normalize(vec []float32) {
	norm := float32(math.Sqrt(float64(vek32.Dot(vec, vec))))
	if norm == 0 {
		return
	}
	vek32.MulNumber_Inplace(vec, 1/norm)
}
