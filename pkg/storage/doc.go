// Package storage reads attachment objects from S3-compatible storage.
//
// Only the read path is provided: a dispatch job references stored files by key
// and the dispatcher fetches their content right before sending.
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "attachments",
//		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
//		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
//		Endpoint:  "http://localhost:9000",
//		PathStyle: true,
//	})
//	if err != nil {
//		return err
//	}
//
//	content, contentType, err := store.Read(ctx, "tickets/ana.pdf")
//
// Read enforces Config.MaxObjectSize and resolves a content type from the object
// metadata, the key extension or the content itself, in that order.
//
// # Errors
//
//   - ErrInvalidConfig: Missing bucket or credentials
//   - ErrInvalidKey: Empty key or key escaping the configured prefix
//   - ErrNotFound: Object does not exist
//   - ErrAccessDenied: Credentials lack read access
//   - ErrFileTooLarge: Object exceeds MaxObjectSize
//   - ErrDownloadFailed: Any other read failure
package storage
