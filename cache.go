package newsfront

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calder-media/newsfront/wp"
)

// Cache is a byte store with a backend-owned TTL. Writes are best effort: a
// failed write costs a cache miss later, never a request.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

type memoryEntry struct {
	val     []byte
	expires time.Time
}

// MemoryCache is an in-process Cache with TTL expiry and a background sweep.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryCache creates a MemoryCache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
	go c.sweep()
	return c
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(c.ttl)
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, e := range c.entries {
			if now.After(e.expires) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}

// Get returns the value for key if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.val, true
}

// Set stores val under key for the cache TTL.
func (c *MemoryCache) Set(_ context.Context, key string, val []byte) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{val: val, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// RedisCache is a Cache backed by a shared Redis instance, so multiple
// gateway replicas share one warmed cache.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a RedisCache over an existing client.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Get returns the value for key if present. Redis errors degrade to a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores val under key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, val []byte) {
	c.rdb.Set(ctx, key, val, c.ttl)
}

// QueryCache is a read-through cache in front of a ContentSource, keyed by
// the full normalized parameter tuple of each operation. Identical inputs
// produce identical queries, which makes the tuple a sound cache key. Quick
// search is deliberately passed through: it is a best-effort path and every
// keystroke is a distinct term.
type QueryCache struct {
	src   ContentSource
	store Cache
}

// NewQueryCache wraps src with the given cache backend.
func NewQueryCache(src ContentSource, store Cache) *QueryCache {
	return &QueryCache{src: src, store: store}
}

func (q *QueryCache) lookup(ctx context.Context, key string, out any) bool {
	b, ok := q.store.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

func (q *QueryCache) save(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	q.store.Set(ctx, key, b)
}

// Categories returns the cached category list, loading it on a miss.
func (q *QueryCache) Categories(ctx context.Context) ([]wp.Category, error) {
	const key = "categories"
	var cats []wp.Category
	if q.lookup(ctx, key, &cats) {
		return cats, nil
	}
	cats, err := q.src.Categories(ctx)
	if err != nil {
		return nil, err
	}
	q.save(ctx, key, cats)
	return cats, nil
}

// Posts returns the cached page for the filter/cursor tuple, loading it on a
// miss. Validation errors are never cached.
func (q *QueryCache) Posts(ctx context.Context, f wp.PostFilter, pg wp.Pagination) (wp.PostPage, error) {
	if err := pg.Validate(); err != nil {
		return wp.PostPage{}, err
	}
	key := fmt.Sprintf("posts|s=%s|c=%s|a=%s|t=%s|after=%s|before=%s",
		f.Search, f.Category, f.Author, f.Tag, pg.After, pg.Before)
	var page wp.PostPage
	if q.lookup(ctx, key, &page) {
		return page, nil
	}
	page, err := q.src.Posts(ctx, f, pg)
	if err != nil {
		return wp.PostPage{}, err
	}
	q.save(ctx, key, page)
	return page, nil
}

// PostBySlug returns the cached post for slug. Absence is cached too: a miss
// in the CMS stays a miss for the TTL.
func (q *QueryCache) PostBySlug(ctx context.Context, slug string) (*wp.Post, error) {
	key := "post|slug=" + slug
	var post *wp.Post
	if q.lookup(ctx, key, &post) {
		return post, nil
	}
	post, err := q.src.PostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	q.save(ctx, key, post)
	return post, nil
}

// AuthorBySlug returns the cached author profile for slug.
func (q *QueryCache) AuthorBySlug(ctx context.Context, slug string) (*wp.Author, error) {
	key := "author|slug=" + slug
	var author *wp.Author
	if q.lookup(ctx, key, &author) {
		return author, nil
	}
	author, err := q.src.AuthorBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	q.save(ctx, key, author)
	return author, nil
}

// Topics returns the cached topics listing.
func (q *QueryCache) Topics(ctx context.Context) (wp.Topics, error) {
	const key = "topics"
	var topics wp.Topics
	if q.lookup(ctx, key, &topics) {
		return topics, nil
	}
	topics, err := q.src.Topics(ctx)
	if err != nil {
		return wp.Topics{}, err
	}
	q.save(ctx, key, topics)
	return topics, nil
}

// QuickSearch is a pass-through; see the type comment.
func (q *QueryCache) QuickSearch(ctx context.Context, term string) (wp.SearchResult, error) {
	return q.src.QuickSearch(ctx, term)
}

// AllPosts returns the cached full post walk, used by the sitemap.
func (q *QueryCache) AllPosts(ctx context.Context) ([]wp.Post, error) {
	const key = "posts|all"
	var posts []wp.Post
	if q.lookup(ctx, key, &posts) {
		return posts, nil
	}
	posts, err := q.src.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	q.save(ctx, key, posts)
	return posts, nil
}

// PostsSince returns the cached recent-post window. The key ignores the exact
// cutoff: with a short TTL the cutoff drifts by at most the TTL, which is
// negligible against the two-day news window.
func (q *QueryCache) PostsSince(ctx context.Context, cutoff time.Time) ([]wp.Post, error) {
	const key = "posts|recent"
	var posts []wp.Post
	if q.lookup(ctx, key, &posts) {
		return posts, nil
	}
	posts, err := q.src.PostsSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	q.save(ctx, key, posts)
	return posts, nil
}
