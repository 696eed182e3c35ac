// Package s3 provides an S3 implementation of the imagestore.Store
// interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("firmware/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Streamed multipart uploads for large images
//   - CRC32C checksums validated server side
//   - Conditional writes for immutable release names
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
