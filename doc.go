// Package filekeep provides a small file-upload metadata service that sits
// between clients, an object storage provider and a relational metadata store.
//
// Clients ask for a signed upload URL, upload the object directly to the
// provider, then record the object's metadata. Records are retrieved together
// with a public download URL and are soft-deleted once the backing object has
// been removed from storage.
//
// # Key Components
//
//   - FileService: façade sequencing calls between the two collaborators
//   - FileRepo: metadata persistence (PostgreSQL, SQLite)
//   - ObjectStorage: signed upload URLs, public URLs and removal (S3, GCS, local filesystem)
//   - SignatureVerifier: verification of natively signed upload URLs for the local backend
//
// # Example Usage
//
//	service, err := filekeep.NewFileService(repo, storage, filekeep.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	upload, err := service.GetPresignedUploadURL(ctx, "report.pdf", "application/pdf")
//	// PUT the object to upload.UploadURL, then:
//	record, err := service.SaveFileMetadata(ctx, upload.FilePath, "report.pdf", "application/pdf")
//
//	result, err := service.GetFile(ctx, record.ID)
//	err = service.DeleteFile(ctx, record.ID)
//
// See the http package for the REST API, the database package for metadata
// backends and the s3store, gcsstore and filesystem packages for storage backends.
package filekeep
