package subvec

import (
	"context"
	"io"
	"strings"

	"github.com/gojomo/subvec/blobstore"
	"github.com/gojomo/subvec/persistence"
)

// SaveSnapshotBlob writes the store's snapshot to a blob store. The blob
// becomes visible only when the write completes.
func (s *Store) SaveSnapshotBlob(ctx context.Context, store blobstore.BlobStore, name string, compression persistence.Compression) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := s.SaveSnapshot(w, compression); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// LoadSnapshotBlob reads a snapshot from a blob store.
func LoadSnapshotBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Store, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	return LoadSnapshot(io.NewSectionReader(blob, 0, blob.Size()), optFns...)
}

// SaveFacebookModelBlob writes the store in the reference binary format to a
// blob store, gzip-compressed when the name ends in .gz.
func (s *Store) SaveFacebookModelBlob(ctx context.Context, store blobstore.BlobStore, name string) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := s.SaveFacebookModel(w, strings.HasSuffix(name, ".gz")); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// LoadFacebookModelBlob reads a reference-format model from a blob store.
func LoadFacebookModelBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Store, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	return LoadFacebookModel(io.NewSectionReader(blob, 0, blob.Size()), optFns...)
}
