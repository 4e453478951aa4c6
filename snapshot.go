package subvec

import (
	"fmt"
	"io"

	"github.com/gojomo/subvec/legacy"
	"github.com/gojomo/subvec/matrix"
	"github.com/gojomo/subvec/ngram"
	"github.com/gojomo/subvec/persistence"
)

// legacyUnpackSeed seeds the padding rows appended while unpacking
// packed-bucket snapshots, so a given snapshot always loads identically.
const legacyUnpackSeed = 1

// SaveSnapshot writes the store to w in the current snapshot format.
// Derived state (composite vectors, caches) is not persisted; it is
// recomputed on load.
func (s *Store) SaveSnapshot(w io.Writer, compression persistence.Compression) error {
	if s.vocabVectors == nil {
		return fmt.Errorf("save snapshot: %w", ErrNotInitialized)
	}

	if err := persistence.WriteHeader(w, persistence.VersionCurrent, compression); err != nil {
		return err
	}
	cw, closer, err := persistence.WrapWriter(w, compression)
	if err != nil {
		return err
	}
	pw := persistence.NewWriter(cw)

	enabled := uint32(0)
	if s.cfg.Enabled() {
		enabled = 1
	}
	for _, v := range []uint32{
		uint32(s.dim),
		enabled,
		uint32(s.cfg.Mode()),
		uint32(s.cfg.MinN()),
		uint32(s.cfg.MaxN()),
		uint32(s.cfg.Buckets()),
	} {
		if err := pw.WriteUint32(v); err != nil {
			return err
		}
	}

	if err := pw.WriteUint32(uint32(s.vocab.Len())); err != nil {
		return err
	}
	counts := make([]uint64, s.vocab.Len())
	for i := 0; i < s.vocab.Len(); i++ {
		if err := pw.WriteString(s.vocab.Word(i)); err != nil {
			return err
		}
		counts[i] = s.vocab.Count(i)
	}
	if err := pw.WriteUint64Slice(counts); err != nil {
		return err
	}

	if err := pw.WriteFloat32Slice(s.vocabVectors.Data()); err != nil {
		return err
	}
	if err := pw.WriteFloat32Slice(s.bucketVectors.Data()); err != nil {
		return err
	}
	return closer.Close()
}

// SaveSnapshotFile writes the store to path, replacing any existing file
// atomically.
func (s *Store) SaveSnapshotFile(path string, compression persistence.Compression) error {
	return persistence.SaveToFile(path, func(w io.Writer) error {
		return s.SaveSnapshot(w, compression)
	})
}

// LoadSnapshot reads a snapshot written by SaveSnapshot, or a legacy
// packed-bucket snapshot written by older tooling. Legacy snapshots carry no
// hash mode field; they load under HashLegacy with a logged compatibility
// warning, and their packed bucket matrix is expanded to the full bucket
// count. The composite matrix is recomputed after loading.
func LoadSnapshot(r io.Reader, optFns ...Option) (*Store, error) {
	header, err := persistence.ReadHeader(r)
	if err != nil {
		return nil, err
	}
	cr, err := persistence.WrapReader(r, persistence.Compression(header.Compression))
	if err != nil {
		return nil, err
	}
	pr := persistence.NewReader(cr)

	dim, err := pr.ReadInt()
	if err != nil {
		return nil, err
	}
	enabled, err := pr.ReadUint32()
	if err != nil {
		return nil, err
	}

	mode := ngram.HashLegacy
	if header.Version >= persistence.VersionCurrent {
		m, err := pr.ReadUint32()
		if err != nil {
			return nil, err
		}
		mode = ngram.HashMode(m)
	}

	minN, err := pr.ReadInt()
	if err != nil {
		return nil, err
	}
	maxN, err := pr.ReadInt()
	if err != nil {
		return nil, err
	}
	buckets, err := pr.ReadInt()
	if err != nil {
		return nil, err
	}

	cfg := WordsOnly()
	if enabled != 0 {
		cfg = WithSubwords(buckets, minN, maxN, mode)
	}
	s, err := New(dim, cfg, optFns...)
	if err != nil {
		return nil, err
	}

	if header.Version < persistence.VersionCurrent && enabled != 0 {
		s.logger.Warn("legacy snapshot carries no hash mode, assuming non-byte hashing",
			"version", header.Version, "mode", mode.String())
	}

	vocabLen, err := pr.ReadInt()
	if err != nil {
		return nil, err
	}
	words := make([]string, vocabLen)
	for i := range words {
		if words[i], err = pr.ReadString(); err != nil {
			return nil, err
		}
	}
	counts, err := pr.ReadUint64Slice(vocabLen)
	if err != nil {
		return nil, err
	}
	vocab := NewVocabulary()
	for i, w := range words {
		vocab.Add(w, counts[i])
	}
	s.vocab = vocab

	vocabData, err := pr.ReadFloat32Slice(vocabLen * dim)
	if err != nil {
		return nil, err
	}
	if vocabData == nil {
		vocabData = []float32{}
	}
	if s.vocabVectors, err = matrix.FromData(vocabData, vocabLen, dim); err != nil {
		return nil, err
	}

	if header.Version >= persistence.VersionCurrent {
		bucketData, err := pr.ReadFloat32Slice(buckets * dim)
		if err != nil {
			return nil, err
		}
		if bucketData == nil {
			bucketData = []float32{}
		}
		if s.bucketVectors, err = matrix.FromData(bucketData, buckets, dim); err != nil {
			return nil, err
		}
	} else {
		if s.bucketVectors, err = readLegacyBuckets(pr, buckets, dim); err != nil {
			return nil, err
		}
	}

	s.rebuildBucketsWord()
	s.invalidate()
	s.Composite()
	return s, nil
}

// LoadSnapshotFile reads a snapshot from path.
func LoadSnapshotFile(path string, optFns ...Option) (*Store, error) {
	var s *Store
	err := persistence.LoadFromFile(path, func(r io.Reader) error {
		var err error
		s, err = LoadSnapshot(r, optFns...)
		return err
	})
	return s, err
}

// readLegacyBuckets reads the packed bucket section of a legacy snapshot
// and expands it to a full bucket matrix.
func readLegacyBuckets(pr *persistence.Reader, buckets, dim int) (*matrix.Matrix, error) {
	packedRows, err := pr.ReadInt()
	if err != nil {
		return nil, err
	}
	packedData, err := pr.ReadFloat32Slice(packedRows * dim)
	if err != nil {
		return nil, err
	}
	if packedData == nil {
		packedData = []float32{}
	}
	packed, err := matrix.FromData(packedData, packedRows, dim)
	if err != nil {
		return nil, err
	}

	mapLen, err := pr.ReadInt()
	if err != nil {
		return nil, err
	}
	hashToPacked := make(map[int]int, mapLen)
	for i := 0; i < mapLen; i++ {
		h, err := pr.ReadUint32()
		if err != nil {
			return nil, err
		}
		p, err := pr.ReadUint32()
		if err != nil {
			return nil, err
		}
		hashToPacked[int(h)] = int(p)
	}

	return legacy.Unpack(packed, buckets, hashToPacked, legacyUnpackSeed)
}
