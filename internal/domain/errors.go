package domain

import "errors"

var (
	// ErrProductNotFound is returned when a barcode has no record in the product database
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnrecognizedValue is returned when a string does not belong to a closed enum set
	ErrUnrecognizedValue = errors.New("unrecognized value")

	// ErrCatalogUnavailable is returned when a catalog search request fails
	ErrCatalogUnavailable = errors.New("catalog search failed")

	// ErrStoreMiss is returned when a key is not found in the key-value store
	ErrStoreMiss = errors.New("store miss")

	// ErrModelArtifacts is returned when model artifacts cannot be loaded at startup
	ErrModelArtifacts = errors.New("model artifacts unavailable")
)
