package repository

import "context"

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchRaw retrieves the undecoded image bytes behind a URL
	FetchRaw(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// URLValidator checks URLs before any network access
type URLValidator interface {
	ValidateImageURL(imageURL string) error
}
