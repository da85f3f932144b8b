package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = errors.New("invalid image URL")

	// ErrBlobStorageDisabled indicates a blob URL without configured credentials
	ErrBlobStorageDisabled = errors.New("azure blob storage is not configured")
)
