package domain

import "errors"

var (
	// ErrProductNotFound is returned when an article is not in the catalog index
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrCatalogUnavailable is returned when the product index cannot be reached
	ErrCatalogUnavailable = errors.New("catalog service unavailable")

	// ErrPlatformUnavailable is returned when the platform API request fails
	ErrPlatformUnavailable = errors.New("platform API request failed")

	// ErrCompletionFailure is returned when the completion backend request fails
	ErrCompletionFailure = errors.New("completion request failed")

	// ErrPromptNotFound is returned when a prompt id is not in the store
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrPromptReadOnly is returned when updating a non-editable prompt
	ErrPromptReadOnly = errors.New("prompt is not editable")
)
