package wp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// maxWalkPages bounds full pagination walks so a miscounting CMS cannot spin
// the sitemap builder forever.
const maxWalkPages = 200

// Categories returns every category, bounded at the first hundred, with
// id/name/slug only.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out struct {
		Categories struct {
			Nodes []Category `json:"nodes"`
		} `json:"categories"`
	}
	if err := c.do(ctx, categoriesQuery, nil, &out); err != nil {
		return nil, err
	}
	if out.Categories.Nodes == nil {
		return []Category{}, nil
	}
	return out.Categories.Nodes, nil
}

// Posts returns one page of posts, newest first, narrowed by the filter and
// positioned by the pagination cursor. Page size is fixed.
func (c *Client) Posts(ctx context.Context, f PostFilter, pg Pagination) (PostPage, error) {
	if err := pg.Validate(); err != nil {
		return PostPage{}, err
	}
	query, vars := buildPostsQuery(f, pg)
	var out struct {
		Posts struct {
			Nodes    []postNode `json:"nodes"`
			PageInfo PageInfo   `json:"pageInfo"`
		} `json:"posts"`
	}
	if err := c.do(ctx, query, vars, &out); err != nil {
		return PostPage{}, err
	}
	return PostPage{Posts: toPosts(out.Posts.Nodes), PageInfo: out.Posts.PageInfo}, nil
}

// PostBySlug returns the full post for a slug, including content and the
// complete SEO block. A slug that does not resolve is not an error: the
// result is (nil, nil) and the caller decides how to render absence.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, errors.New("wp: post slug is required")
	}
	var out struct {
		Post *postNode `json:"post"`
	}
	if err := c.do(ctx, postBySlugQuery, map[string]any{"slug": slug}, &out); err != nil {
		return nil, err
	}
	if out.Post == nil {
		return nil, nil
	}
	p := out.Post.toPost()
	return &p, nil
}

// AuthorBySlug returns the author profile for a slug, or (nil, nil) when the
// slug does not resolve.
func (c *Client) AuthorBySlug(ctx context.Context, slug string) (*Author, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, errors.New("wp: author slug is required")
	}
	var out struct {
		User *authorNode `json:"user"`
	}
	if err := c.do(ctx, authorBySlugQuery, map[string]any{"slug": slug}, &out); err != nil {
		return nil, err
	}
	return out.User.toAuthor(), nil
}

// PostsByAuthor returns the first page of posts written by the given author.
func (c *Client) PostsByAuthor(ctx context.Context, slug string) (PostPage, error) {
	return c.Posts(ctx, PostFilter{Author: slug}, Pagination{})
}

// PostsByTag returns the first page of posts carrying the given tag.
func (c *Client) PostsByTag(ctx context.Context, slug string) (PostPage, error) {
	return c.Posts(ctx, PostFilter{Tag: slug}, Pagination{})
}

// QuickSearch fans a free-text term out to posts, categories, and tags, each
// capped at a handful of hits. Terms shorter than two characters return the
// empty result without touching the CMS. On transport failure the empty
// result is returned together with the error; search-as-you-type callers
// degrade instead of failing the page.
func (c *Client) QuickSearch(ctx context.Context, term string) (SearchResult, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < 2 {
		return emptySearchResult(), nil
	}
	var out struct {
		Posts struct {
			Nodes []postNode `json:"nodes"`
		} `json:"posts"`
		Categories struct {
			Nodes []Category `json:"nodes"`
		} `json:"categories"`
		Tags struct {
			Nodes []Tag `json:"nodes"`
		} `json:"tags"`
	}
	if err := c.do(ctx, quickSearchQuery, map[string]any{"search": term}, &out); err != nil {
		return emptySearchResult(), err
	}
	res := emptySearchResult()
	for _, n := range out.Posts.Nodes {
		res.Posts = append(res.Posts, n.toSearchHit())
	}
	if out.Categories.Nodes != nil {
		res.Categories = out.Categories.Nodes
	}
	if out.Tags.Nodes != nil {
		res.Tags = out.Tags.Nodes
	}
	return res, nil
}

// Topics returns the categories and tags that have published posts, for the
// explore surface.
func (c *Client) Topics(ctx context.Context) (Topics, error) {
	var out struct {
		Categories struct {
			Nodes []Category `json:"nodes"`
		} `json:"categories"`
		Tags struct {
			Nodes []Tag `json:"nodes"`
		} `json:"tags"`
	}
	if err := c.do(ctx, topicsQuery, nil, &out); err != nil {
		return Topics{}, err
	}
	topics := Topics{Categories: []Category{}, Tags: []Tag{}}
	for _, cat := range out.Categories.Nodes {
		if cat.Count > 0 {
			topics.Categories = append(topics.Categories, cat)
		}
	}
	for _, tag := range out.Tags.Nodes {
		if tag.Count > 0 {
			topics.Tags = append(topics.Tags, tag)
		}
	}
	return topics, nil
}

// AllPosts walks the post listing forward, following endCursor until
// hasNextPage goes false, and returns every post exactly once.
func (c *Client) AllPosts(ctx context.Context) ([]Post, error) {
	var all []Post
	var after string
	for range maxWalkPages {
		page, err := c.Posts(ctx, PostFilter{}, Pagination{After: after})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Posts...)
		if !page.PageInfo.HasNextPage {
			if all == nil {
				all = []Post{}
			}
			return all, nil
		}
		after = page.PageInfo.EndCursor
	}
	return nil, fmt.Errorf("wp: post walk exceeded %d pages", maxWalkPages)
}

// PostsSince walks the newest-first listing and returns posts published at or
// after cutoff. The walk stops at the first page whose oldest post falls
// before the cutoff.
func (c *Client) PostsSince(ctx context.Context, cutoff time.Time) ([]Post, error) {
	recent := []Post{}
	var after string
	for range maxWalkPages {
		page, err := c.Posts(ctx, PostFilter{}, Pagination{After: after})
		if err != nil {
			return nil, err
		}
		for _, p := range page.Posts {
			if p.Date.Before(cutoff) {
				return recent, nil
			}
			recent = append(recent, p)
		}
		if !page.PageInfo.HasNextPage {
			return recent, nil
		}
		after = page.PageInfo.EndCursor
	}
	return nil, fmt.Errorf("wp: post walk exceeded %d pages", maxWalkPages)
}
