package blobstore

import (
	"context"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultBlockSize = 64 * 1024

type blockKey struct {
	name string
	idx  int64
}

// CachingStore wraps a BlobStore and adds block-level read caching, so
// repeated reads of remote snapshots avoid refetching ranges.
type CachingStore struct {
	inner     BlobStore
	cache     *lru.Cache[blockKey, []byte]
	blockSize int64
}

// NewCachingStore creates a read-through cache over inner holding up to
// maxBlocks blocks. blockSize defaults to 64KB if <= 0.
func NewCachingStore(inner BlobStore, maxBlocks int, blockSize int64) (*CachingStore, error) {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	cache, err := lru.New[blockKey, []byte](maxBlocks)
	if err != nil {
		return nil, err
	}
	return &CachingStore{
		inner:     inner,
		cache:     cache,
		blockSize: blockSize,
	}, nil
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner: b,
		store: s,
		name:  name,
	}, nil
}

// Create passes through; cached blocks for the name are invalidated since
// Close replaces the blob's content.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.invalidate(name)
	return s.inner.Create(ctx, name)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	for _, key := range s.cache.Keys() {
		if key.name == name {
			s.cache.Remove(key)
		}
	}
}

type cachingBlob struct {
	inner Blob
	store *CachingStore
	name  string
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

func (b *cachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *cachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if off >= b.inner.Size() {
		return 0, io.EOF
	}

	blockSize := b.store.blockSize
	total := 0
	for total < len(p) {
		pos := off + int64(total)
		if pos >= b.inner.Size() {
			return total, io.EOF
		}
		idx := pos / blockSize
		block, err := b.block(idx)
		if err != nil {
			return total, err
		}
		inBlock := pos - idx*blockSize
		if inBlock >= int64(len(block)) {
			return total, io.EOF
		}
		total += copy(p[total:], block[inBlock:])
	}
	return total, nil
}

// block fetches one cache-aligned block, from cache when possible. The last
// block of a blob may be short.
func (b *cachingBlob) block(idx int64) ([]byte, error) {
	key := blockKey{name: b.name, idx: idx}
	if block, ok := b.store.cache.Get(key); ok {
		return block, nil
	}

	blockSize := b.store.blockSize
	start := idx * blockSize
	end := start + blockSize
	if end > b.inner.Size() {
		end = b.inner.Size()
	}
	block := make([]byte, end-start)
	n, err := b.inner.ReadAt(block, start)
	if err != nil && err != io.EOF {
		return nil, err
	}
	block = block[:n]
	b.store.cache.Add(key, block)
	return block, nil
}
