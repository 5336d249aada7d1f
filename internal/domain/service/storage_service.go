package service

import "context"

// SignedUpload is one presigned PUT slot handed back to the client.
type SignedUpload struct {
	UploadURL string `json:"uploadURL"`
	Key       string `json:"key"`
}

// ObjectStorage abstracts the cloud object store used for listing images.
// Clients upload directly against presigned URLs; the API only ever
// mints URLs and deletes orphaned objects.
type ObjectStorage interface {
	SignUpload(ctx context.Context, filename, contentType string) (*SignedUpload, error)
	SignView(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
