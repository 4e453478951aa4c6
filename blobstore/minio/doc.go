// Package minio implements blobstore.BlobStore for MinIO and other
// S3-compatible object stores, using ranged reads for partial snapshot
// access and streamed uploads for writes.
//
// Example:
//
//	client, err := minio.New("play.min.io", &minio.Options{
//		Creds: credentials.NewStaticV4(accessKey, secretKey, ""),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	store := miniostore.NewStore(client, "models", "subvec/")
package minio
