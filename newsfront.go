// Package newsfront is the content gateway for a news publication backed by a
// headless WordPress CMS. It exposes the WPGraphQL content graph as JSON API
// routes plus RSS, sitemap, and Google News sitemap feeds, with a short-TTL
// query cache and per-IP rate limiting on the quick-search path.
//
// Page rendering, payments, authentication, and push notifications live in
// other systems; this service only queries and shapes CMS content.
package newsfront

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/calder-media/newsfront/wp"
)

// ContentSource is the content query contract the handlers depend on. Both
// the wp.Client and the QueryCache wrapping it satisfy it, so tests can swap
// in a double and caching stays transparent to the routes.
type ContentSource interface {
	Categories(ctx context.Context) ([]wp.Category, error)
	Posts(ctx context.Context, f wp.PostFilter, pg wp.Pagination) (wp.PostPage, error)
	PostBySlug(ctx context.Context, slug string) (*wp.Post, error)
	AuthorBySlug(ctx context.Context, slug string) (*wp.Author, error)
	Topics(ctx context.Context) (wp.Topics, error)
	QuickSearch(ctx context.Context, term string) (wp.SearchResult, error)
	AllPosts(ctx context.Context) ([]wp.Post, error)
	PostsSince(ctx context.Context, cutoff time.Time) ([]wp.Post, error)
}

// App is the central newsfront application. It wires together the CMS client,
// the query cache, the search limiter, middleware, and routes.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Content ContentSource
	Log     *zap.Logger

	searchLimiter *SearchLimiter
	customRoutes  []func(*App)
	redis         *redis.Client
}

// New creates a newsfront App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// init wires the logger, CMS client, cache, limiter, middleware, and routes.
// Split from Start so tests can drive the router without a listening socket.
func (a *App) init() error {
	if a.Log == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("newsfront: init logger: %w", err)
		}
		a.Log = logger
	}

	if a.Content == nil {
		if a.Config.CMSEndpoint == "" {
			return fmt.Errorf("newsfront: CMSEndpoint is required")
		}
		client := wp.New(a.Config.CMSEndpoint,
			wp.WithLogger(a.Log),
			wp.WithTimeout(a.Config.RequestTimeout),
		)

		var store Cache
		if a.Config.RedisAddr != "" {
			a.redis = redis.NewClient(&redis.Options{Addr: a.Config.RedisAddr})
			store = NewRedisCache(a.redis, a.Config.CacheTTL)
		} else {
			store = NewMemoryCache(a.Config.CacheTTL)
		}
		a.Content = NewQueryCache(client, store)
	}

	a.searchLimiter = NewSearchLimiter(a.Config.SearchRateLimit, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start wires the application and runs the HTTP server until it is shut down.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", handleHealth)
	e.GET("/robots.txt", a.handleRobots)

	// SEO feeds
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/news-sitemap.xml", a.handleNewsSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Content API
	e.GET("/api/posts", a.handlePosts)
	e.GET("/api/posts/:slug", a.handlePost)
	e.GET("/api/categories", a.handleCategories)
	e.GET("/api/authors/:slug", a.handleAuthor)
	e.GET("/api/topics", a.handleTopics)
	e.GET("/api/search", a.handleSearch)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			return err
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("newsfront: required environment variable %s is not set", key)
	}
	return v
}
