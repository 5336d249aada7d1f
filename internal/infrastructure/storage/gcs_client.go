package storage

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"dormdrop/internal/domain/service"
	"dormdrop/pkg/errors"
)

// CloudStorageClient mints presigned upload/view URLs against the listing
// image bucket. Browsers upload directly to the bucket; the API never
// proxies image bytes.
type CloudStorageClient struct {
	client       *storage.Client
	bucketName   string
	uploadExpiry time.Duration
	viewExpiry   time.Duration
}

func NewCloudStorageClient(ctx context.Context, bucketName, credentialsPath string, uploadExpiry, viewExpiry time.Duration) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:       client,
		bucketName:   bucketName,
		uploadExpiry: uploadExpiry,
		viewExpiry:   viewExpiry,
	}, nil
}

func extensionFor(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/gif":
		return ".gif", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
	}
}

// SignUpload generates an object key and a short-lived signed PUT URL for
// it. Only image content types are accepted.
func (c *CloudStorageClient) SignUpload(ctx context.Context, filename, contentType string) (*service.SignedUpload, error) {
	ext, ok := extensionFor(contentType)
	if !ok {
		return nil, errors.BadRequest(fmt.Sprintf("Unsupported content type %q", contentType), nil)
	}

	key := fmt.Sprintf("listings/%d-%s%s", time.Now().Unix(), uuid.New().String(), ext)

	url, err := c.client.Bucket(c.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		Expires:     time.Now().Add(c.uploadExpiry),
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload URL: %v", err)
	}

	return &service.SignedUpload{UploadURL: url, Key: key}, nil
}

// SignView generates a read-only signed URL for an existing object key.
func (c *CloudStorageClient) SignView(ctx context.Context, key string) (string, error) {
	url, err := c.client.Bucket(c.bucketName).SignedURL(key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(c.viewExpiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign view URL: %v", err)
	}
	return url, nil
}

// Delete removes an object. Missing objects are not an error.
func (c *CloudStorageClient) Delete(ctx context.Context, key string) error {
	err := c.client.Bucket(c.bucketName).Object(key).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
