// Package s3 implements blobstore.BlobStore for Amazon S3, using ranged
// GetObject requests for reads and the multipart upload manager for
// streamed writes.
package s3
