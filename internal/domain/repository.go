package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// CatalogClient defines the interface for the product index service
type CatalogClient interface {
	GetProduct(ctx context.Context, artikelnummer string) (*Product, error)
	SearchByPartialNumber(ctx context.Context, fragment string, limit int) ([]Product, error)
	SearchByHersteller(ctx context.Context, hersteller string, limit int) ([]Product, error)
	SearchByName(ctx context.Context, name string, limit int) ([]Product, error)
	SearchSemantic(ctx context.Context, query string, opts SearchOptions) ([]Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]Product, error)
}

// PlatformClient defines the interface for the merchandise platform API.
// The platform is consulted for prices only; product data comes from the
// catalog index.
type PlatformClient interface {
	GetPricing(ctx context.Context, artikelnummer string) (*Pricing, error)
}

// ChatClient defines the interface for the completion backend
type ChatClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// PromptStore defines the interface for prompt template management
type PromptStore interface {
	Prompt(id string) (string, error)
	Keywords(id string) ([]string, error)
	File() PromptFile
	Update(id, content string) error
	Reload() error
}
