package repositories

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// AzureStore writes block blobs to an Azure Storage account.
type AzureStore struct {
	client *azblob.Client
}

// NewAzureStore creates an [AzureStore] from a storage account connection string.
func NewAzureStore(connectionString string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return &AzureStore{client: client}, nil
}

// Upload writes data as a single block blob, overwriting any existing blob.
func (s *AzureStore) Upload(ctx context.Context, container, name string, data []byte, contentType string) error {
	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}

	if _, err := s.client.UploadBuffer(ctx, container, name, data, opts); err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", name, err)
	}
	return nil
}
