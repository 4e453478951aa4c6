// Package blobstore provides storage abstraction for model snapshots.
//
// BlobStore is the interface for reading and writing data blobs (snapshots,
// foreign model files). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with atomic replacement on Close
//   - MemoryStore: In-memory store for testing
//   - CachingStore: Read-through block cache over any BlobStore
//   - minio.Store: MinIO and S3-compatible storage
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//
// Snapshots are written through Create and finalized by Close, so a failed
// upload or crash never leaves a truncated blob visible.
package blobstore
