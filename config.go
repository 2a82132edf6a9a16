package newsfront

import (
	"time"

	"go.uber.org/zap"
)

// Config holds all configuration for a newsfront deployment.
type Config struct {
	Name        string // Publication name, used in feeds (default "Newsfront")
	URL         string // Canonical site URL (default "http://localhost:3000")
	Description string // Publication description for the RSS channel
	Language    string // Publication language for the news sitemap (default "en")

	Addr        string // Listen address (default ":3000")
	CMSEndpoint string // Required: WPGraphQL endpoint, e.g. https://cms.example.com/graphql

	RequestTimeout  time.Duration // Per CMS request deadline (default 10s)
	CacheTTL        time.Duration // Query cache TTL (default 1min)
	RedisAddr       string        // Optional: Redis address for the query cache; in-memory when empty
	SearchRateLimit int           // Quick-search requests per IP per minute (default 30)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "Newsfront"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 10 * time.Second
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Minute
	}
	if c.SearchRateLimit == 0 {
		c.SearchRateLimit = 30
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger replaces the default production logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithContentSource injects a pre-built content source, bypassing the CMS
// client and cache construction. Intended for tests and multi-target setups.
func WithContentSource(src ContentSource) Option {
	return func(a *App) {
		a.Content = src
	}
}
