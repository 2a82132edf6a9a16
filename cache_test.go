package newsfront

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/calder-media/newsfront/wp"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for an unset key")
	}
	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, ok)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(30 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for an unset key")
	}
	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, ok)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatal("expected entry to expire after the TTL")
	}
}

func TestRedisCacheDegradesToMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	mr.Close()

	if _, ok := c.Get(context.Background(), "k"); ok {
		t.Fatal("expected a miss when redis is down")
	}
}

func TestQueryCachePostsReadThrough(t *testing.T) {
	calls := 0
	src := &stubSource{
		posts: func(ctx context.Context, f wp.PostFilter, pg wp.Pagination) (wp.PostPage, error) {
			calls++
			return wp.PostPage{
				Posts:    []wp.Post{{Slug: "budget-vote", Title: "Budget Vote"}},
				PageInfo: wp.PageInfo{EndCursor: "cursor0", HasNextPage: true},
			}, nil
		},
	}
	q := NewQueryCache(src, NewMemoryCache(time.Minute))
	ctx := context.Background()
	filter := wp.PostFilter{Category: "politics"}

	first, err := q.Posts(ctx, filter, wp.Pagination{})
	if err != nil {
		t.Fatalf("Posts failed: %v", err)
	}
	second, err := q.Posts(ctx, filter, wp.Pagination{})
	if err != nil {
		t.Fatalf("cached Posts failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1", calls)
	}
	if len(second.Posts) != 1 || second.Posts[0].Slug != first.Posts[0].Slug {
		t.Errorf("cached page differs from loaded page: %+v", second)
	}
	if !second.PageInfo.HasNextPage || second.PageInfo.EndCursor != "cursor0" {
		t.Errorf("pageInfo lost through the cache: %+v", second.PageInfo)
	}

	// A different tuple is a different key.
	if _, err := q.Posts(ctx, wp.PostFilter{Category: "economy"}, wp.Pagination{}); err != nil {
		t.Fatalf("Posts failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2 after a new filter", calls)
	}
}

func TestQueryCachePostsValidatesBeforeLoading(t *testing.T) {
	calls := 0
	src := &stubSource{
		posts: func(ctx context.Context, f wp.PostFilter, pg wp.Pagination) (wp.PostPage, error) {
			calls++
			return wp.PostPage{}, nil
		},
	}
	q := NewQueryCache(src, NewMemoryCache(time.Minute))

	_, err := q.Posts(context.Background(), wp.PostFilter{}, wp.Pagination{After: "a", Before: "b"})
	if err == nil {
		t.Fatal("expected a validation error for both cursors")
	}
	if calls != 0 {
		t.Errorf("upstream calls = %d, want 0", calls)
	}
}

func TestQueryCachePostBySlugCachesAbsence(t *testing.T) {
	calls := 0
	src := &stubSource{
		postBySlug: func(ctx context.Context, slug string) (*wp.Post, error) {
			calls++
			return nil, nil
		},
	}
	q := NewQueryCache(src, NewMemoryCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		post, err := q.PostBySlug(ctx, "no-such-slug")
		if err != nil {
			t.Fatalf("PostBySlug failed: %v", err)
		}
		if post != nil {
			t.Fatalf("post = %+v, want nil", post)
		}
	}
	if calls != 1 {
		t.Errorf("upstream calls = %d, want 1 with absence cached", calls)
	}
}

func TestQueryCacheDoesNotCacheErrors(t *testing.T) {
	calls := 0
	src := &stubSource{
		categories: func(ctx context.Context) ([]wp.Category, error) {
			calls++
			if calls == 1 {
				return nil, context.DeadlineExceeded
			}
			return []wp.Category{{Slug: "politics", Name: "Politics"}}, nil
		},
	}
	q := NewQueryCache(src, NewMemoryCache(time.Minute))
	ctx := context.Background()

	if _, err := q.Categories(ctx); err == nil {
		t.Fatal("expected the first load to fail")
	}
	cats, err := q.Categories(ctx)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(cats) != 1 || cats[0].Slug != "politics" {
		t.Errorf("unexpected categories: %+v", cats)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2", calls)
	}
}

func TestQueryCacheQuickSearchPassesThrough(t *testing.T) {
	calls := 0
	src := &stubSource{
		quickSearch: func(ctx context.Context, term string) (wp.SearchResult, error) {
			calls++
			return wp.SearchResult{Posts: []wp.SearchHit{}, Categories: []wp.Category{}, Tags: []wp.Tag{}}, nil
		},
	}
	q := NewQueryCache(src, NewMemoryCache(time.Minute))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := q.QuickSearch(ctx, "election"); err != nil {
			t.Fatalf("QuickSearch failed: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2 without caching", calls)
	}
}
