package v1

import "github.com/rs/zerolog"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	catalog     []Destination
	catalogFile string
	scope       string
	topK        int
	logger      zerolog.Logger
}

// WithCatalog ranks against the given destinations instead of a scope catalog.
func WithCatalog(items []Destination) Option {
	return func(c *clientConfig) {
		c.catalog = items
	}
}

// WithCatalogFile loads destinations from a YAML catalog file.
func WithCatalogFile(path string) Option {
	return func(c *clientConfig) {
		c.catalogFile = path
	}
}

// WithScope forces a specific scope (global or project).
func WithScope(scope string) Option {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithTopK sets how many results Recommend returns. Zero or less returns all.
func WithTopK(k int) Option {
	return func(c *clientConfig) {
		c.topK = k
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
