package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobHostSuffix identifies Azure Blob Storage URLs
const BlobHostSuffix = ".blob.core.windows.net"

type azureFetcher struct {
	client   *azblob.Client
	maxBytes int64
}

// NewAzureFetcher creates a fetcher authenticated with a shared account key
func NewAzureFetcher(accountName, accountKey string, maxBytes int64) (RawFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s%s", accountName, BlobHostSuffix),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &azureFetcher{client: client, maxBytes: maxBytes}, nil
}

// IsBlobURL reports whether imageURL points at Azure Blob Storage
func IsBlobURL(imageURL string) bool {
	u, err := url.Parse(imageURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Hostname()), BlobHostSuffix)
}

// ParseBlobURL splits https://<account>.blob.core.windows.net/<container>/<blob path>
func ParseBlobURL(blobURL string) (containerName, blobName string, err error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob URL: %w", err)
	}
	containerName, blobName, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("blob URL must name a container and a blob: %s", blobURL)
	}
	return containerName, blobName, nil
}

func (s *azureFetcher) FetchRaw(ctx context.Context, blobURL string) ([]byte, error) {
	containerName, blobName, err := ParseBlobURL(blobURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if s.maxBytes > 0 && resp.ContentLength != nil && *resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, *resp.ContentLength)
	}
	return readLimited(resp.Body, s.maxBytes)
}
