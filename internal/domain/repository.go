package domain

import (
	"context"
	"time"
)

// ProductLookup resolves a barcode to a mapped product record, or
// ErrProductNotFound when the external database has no record for it.
type ProductLookup interface {
	Fetch(ctx context.Context, barcode string) (*Product, error)
}

// CatalogSearcher queries the external catalog for products in a search bucket
// carrying a given nutrition grade. Implementations are expected to pace their
// own requests; a failed query returns ErrCatalogUnavailable-wrapped errors.
type CatalogSearcher interface {
	SearchByCategory(ctx context.Context, category, grade string, page, pageSize int) ([]Product, error)
}

// LocalCatalog serves the precomputed local product dataset used as the
// recommendation fallback when the external catalog comes up short.
type LocalCatalog interface {
	Products() []Product
}

// KeyValueStore is the injected repository the delivery layer uses for
// consumer-owned state (profiles, histories, carts). Implementations must be
// safe for concurrent use; serialization of mutations per consumer identity is
// the caller's responsibility. A zero TTL means the entry never expires.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
