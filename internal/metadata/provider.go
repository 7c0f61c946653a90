package metadata

import "context"

// Provider is one external metadata source. Implementations live in
// subpackages (tmdb, omdb); the search service only depends on this
// interface and on the provider-prefixed result IDs.
type Provider interface {
	Name() string

	// Configured reports whether the provider has credentials. An
	// unconfigured provider is skipped, never called.
	Configured() bool

	// Search runs a free-text title query.
	Search(ctx context.Context, query string) ([]SearchResult, error)

	// Details resolves one of this provider's own search results into the
	// richer record used for enrichment.
	Details(ctx context.Context, result SearchResult) (*Details, error)
}
