package repository

import (
	"context"
	"fmt"

	"github.com/anime-shed/coa-verifier-go/internal/storage"
)

// SourceRepository routes Azure Blob URLs to the blob fetcher and everything else to HTTP
type SourceRepository struct {
	http      storage.RawFetcher
	blob      storage.RawFetcher
	validator URLValidator
}

// NewSourceRepository creates a repository. blob may be nil when Azure is not configured,
// in which case blob URLs are rejected.
func NewSourceRepository(http, blob storage.RawFetcher, validator URLValidator) ImageRepository {
	return &SourceRepository{http: http, blob: blob, validator: validator}
}

// FetchRaw retrieves an image from a URL
func (r *SourceRepository) FetchRaw(ctx context.Context, imageURL string) ([]byte, error) {
	if storage.IsBlobURL(imageURL) {
		if r.blob == nil {
			return nil, fmt.Errorf("%w: %s", ErrBlobStorageDisabled, imageURL)
		}
		return r.blob.FetchRaw(ctx, imageURL)
	}
	return r.http.FetchRaw(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *SourceRepository) ValidateImageURL(imageURL string) error {
	if imageURL == "" {
		return ErrInvalidImageURL
	}
	if r.validator == nil {
		return nil
	}
	return r.validator.ValidateImageURL(imageURL)
}
