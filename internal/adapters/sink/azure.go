package sink

import (
	"context"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureSink uploads bundles to Azure Blob Storage.
type AzureSink struct {
	client    *azblob.Client
	container string
	prefix    string
}

// AzureConfig holds Azure Blob Storage sink configuration.
type AzureConfig struct {
	Container        string
	AccountName      string
	AccountKey       string
	ConnectionString string
	Prefix           string
}

// NewAzureSink creates a new Azure Blob Storage sink adapter.
func NewAzureSink(cfg AzureConfig) (*AzureSink, error) {
	var client *azblob.Client
	var err error

	if cfg.ConnectionString != "" {
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, err
		}
	} else {
		url := "https://" + cfg.AccountName + ".blob.core.windows.net/"
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, err
		}
		client, err = azblob.NewClientWithSharedKeyCredential(url, cred, nil)
		if err != nil {
			return nil, err
		}
	}

	return &AzureSink{
		client:    client,
		container: cfg.Container,
		prefix:    cfg.Prefix,
	}, nil
}

// Store uploads the archive to the container under prefix/key. The local
// file is kept.
func (s *AzureSink) Store(ctx context.Context, localPath string, key string) (string, error) {
	f, err := os.Open(localPath) //#nosec G304 -- localPath is a controlled local path
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	blobName := s.fullKey(key)
	if _, err := s.client.UploadFile(ctx, s.container, blobName, f, nil); err != nil {
		return "", err
	}

	return "azblob://" + s.container + "/" + blobName, nil
}

// fullKey returns the full blob name including prefix.
func (s *AzureSink) fullKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
