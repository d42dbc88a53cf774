// Package storage provides the artifact archive for merge runs.
//
// It wraps the MinIO Go client to keep copies of uploaded input files and
// merged output documents in an S3-compatible bucket. Archiving is optional:
// with no endpoint configured the mergejob feature simply skips it.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: Verify or create the archive bucket.
//   - PutObject: Uploads content (with size and options).
//   - GetObject: Retrieves content as a stream.
//   - ListObjects: Lists archived artifacts (supports prefix/recursive).
//   - RemoveObject: Drops an archived artifact.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "arxml-artifacts")
package storage
