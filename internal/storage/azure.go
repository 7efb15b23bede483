package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

type azureStore struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// NewAzureStore connects to a blob container with shared-key credentials.
func NewAzureStore(accountName, accountKey, container string, logger *slog.Logger) (ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("storage credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &azureStore{client: client, container: container, logger: logger}, nil
}

func (s *azureStore) Size(ctx context.Context, key string) (int64, error) {
	blobClient := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(key)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("blob properties %q: %w", key, err)
	}
	if props.ContentLength == nil {
		return 0, nil
	}
	return *props.ContentLength, nil
}

func (s *azureStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		return nil, fmt.Errorf("download %q: %w", key, err)
	}
	body := resp.Body
	defer func() {
		if cerr := body.Close(); cerr != nil {
			s.logger.Warn("storage.body_close_error", "key", key, "error", cerr)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return buf.Bytes(), nil
}
