package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/4thel00z/wander/internal"
	"github.com/rs/zerolog"
)

// Client ranks destinations against traveller preferences.
type Client struct {
	fixed    *internal.Recommender
	catalogs *internal.CatalogService
	scope    string
	topK     int
	logger   zerolog.Logger
}

// New creates a Client. Without WithCatalog or WithCatalogFile the client uses
// the catalog of the resolved scope, falling back to the built-in one.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		topK:   internal.DefaultTopK,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Client{
		scope:  cfg.scope,
		topK:   cfg.topK,
		logger: cfg.logger,
	}

	switch {
	case cfg.catalog != nil:
		items := make([]internal.Destination, len(cfg.catalog))
		for i, d := range cfg.catalog {
			items[i] = d.toInternal()
		}
		if err := internal.ValidateCatalog(items); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		rec, err := internal.NewRecommender(items)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.fixed = rec
	case cfg.catalogFile != "":
		items, err := internal.LoadCatalog(cfg.catalogFile)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		rec, err := internal.NewRecommender(items)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.fixed = rec
	default:
		c.catalogs = internal.NewCatalogService(internal.NewScopeResolver(), nil, nil, cfg.logger)
	}

	return c, nil
}

func (c *Client) recommender() (*internal.Recommender, error) {
	if c.fixed != nil {
		return c.fixed, nil
	}
	return c.catalogs.Recommender(c.scope)
}

// Recommend returns the best matching destinations for pref, best first.
// Destinations with equal scores keep their catalog order. An unknown type,
// season or budget yields an error matching ErrUnknownCategory.
func (c *Client) Recommend(ctx context.Context, pref Preference) ([]Recommendation, error) {
	start := time.Now()

	rec, err := c.recommender()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	results, err := rec.Recommend(pref.toInternal(), c.topK)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, len(results))
	for i, r := range results {
		out[i] = Recommendation{Name: r.Destination.Name, Score: r.Score}
	}

	c.logger.Debug().
		Str("request_id", internal.RequestIDFromContext(ctx)).
		Int("results", len(out)).
		Dur("took", time.Since(start)).
		Msg("recommendation served")
	return out, nil
}

// Options returns the accepted values of type, season and budget, keyed by
// field name, in catalog order.
func (c *Client) Options() (map[string][]string, error) {
	rec, err := c.recommender()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	out := make(map[string][]string, len(internal.CategoricalFields))
	for f, values := range rec.Options() {
		out[string(f)] = values
	}
	return out, nil
}

// Catalog returns the destinations being ranked.
func (c *Client) Catalog() ([]Destination, error) {
	rec, err := c.recommender()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	items := rec.Destinations()
	out := make([]Destination, len(items))
	for i, d := range items {
		out[i] = destinationFrom(d)
	}
	return out, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
