package wp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Post is a single article as served by the CMS. The nested node/nodes
// envelopes of the wire format are flattened at the decode boundary, so
// callers see one well-defined shape. Slug is the only stable external
// identifier; ID is CMS-internal.
type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Date          time.Time  `json:"date"`
	Modified      time.Time  `json:"modified,omitzero"`
	Content       string     `json:"content,omitempty"`
	Excerpt       string     `json:"excerpt,omitempty"`
	FeaturedImage *Image     `json:"featuredImage,omitempty"`
	SEO           *SEO       `json:"seo,omitempty"`
	Author        *Author    `json:"author,omitempty"`
	Categories    []Category `json:"categories,omitempty"`
	Tags          []Tag      `json:"tags,omitempty"`
}

// Image is a featured image reference.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

// SEO carries per-post metadata overrides for search engines and social cards.
type SEO struct {
	Title              string `json:"title,omitempty"`
	Description        string `json:"description,omitempty"`
	OGTitle            string `json:"ogTitle,omitempty"`
	OGDescription      string `json:"ogDescription,omitempty"`
	OGImage            string `json:"ogImage,omitempty"`
	TwitterTitle       string `json:"twitterTitle,omitempty"`
	TwitterDescription string `json:"twitterDescription,omitempty"`
	TwitterImage       string `json:"twitterImage,omitempty"`
}

// Category is a flat taxonomy term. Count is the number of published posts
// carrying the term, when the query asked for it.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count,omitempty"`
}

// Tag is a flat taxonomy term, same shape as Category.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count,omitempty"`
}

// Author is a CMS user who writes posts.
type Author struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// PageInfo is the cursor pagination envelope returned with every post page.
// Cursors are opaque; a cursor obtained from one direction is not a valid
// input for the other.
type PageInfo struct {
	StartCursor     string `json:"startCursor"`
	EndCursor       string `json:"endCursor"`
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
}

// PostPage is one page of posts plus its pagination envelope.
type PostPage struct {
	Posts    []Post   `json:"posts"`
	PageInfo PageInfo `json:"pageInfo"`
}

// SearchHit is a lightweight post reference returned by quick search.
type SearchHit struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// SearchResult is the quick-search fan-out: a small capped number of posts,
// categories, and tags matching a free-text term. Slices are never nil so the
// JSON shape stays stable even when empty.
type SearchResult struct {
	Posts      []SearchHit `json:"posts"`
	Categories []Category  `json:"categories"`
	Tags       []Tag       `json:"tags"`
}

// Topics lists the taxonomy terms that have at least one published post.
type Topics struct {
	Categories []Category `json:"categories"`
	Tags       []Tag      `json:"tags"`
}

func emptySearchResult() SearchResult {
	return SearchResult{
		Posts:      []SearchHit{},
		Categories: []Category{},
		Tags:       []Tag{},
	}
}

// --- Wire format ---
//
// The CMS wraps single references in {node: ...} and collections in
// {nodes: [...]}. The types below mirror that envelope and convert to the
// flattened public types above.

// dateTime decodes the CMS date format, which omits the timezone suffix.
type dateTime struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func (d *dateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("wp: unrecognized date %q", s)
}

type imageNode struct {
	SourceURL string `json:"sourceUrl"`
	AltText   string `json:"altText"`
}

type seoNode struct {
	Title                string     `json:"title"`
	MetaDesc             string     `json:"metaDesc"`
	OpengraphTitle       string     `json:"opengraphTitle"`
	OpengraphDescription string     `json:"opengraphDescription"`
	OpengraphImage       *imageNode `json:"opengraphImage"`
	TwitterTitle         string     `json:"twitterTitle"`
	TwitterDescription   string     `json:"twitterDescription"`
	TwitterImage         *imageNode `json:"twitterImage"`
}

func (s *seoNode) toSEO() *SEO {
	if s == nil {
		return nil
	}
	out := &SEO{
		Title:              s.Title,
		Description:        s.MetaDesc,
		OGTitle:            s.OpengraphTitle,
		OGDescription:      s.OpengraphDescription,
		TwitterTitle:       s.TwitterTitle,
		TwitterDescription: s.TwitterDescription,
	}
	if s.OpengraphImage != nil {
		out.OGImage = s.OpengraphImage.SourceURL
	}
	if s.TwitterImage != nil {
		out.TwitterImage = s.TwitterImage.SourceURL
	}
	return out
}

type authorNode struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Avatar      *struct {
		URL string `json:"url"`
	} `json:"avatar"`
}

func (a *authorNode) toAuthor() *Author {
	if a == nil {
		return nil
	}
	out := &Author{
		ID:          a.ID,
		Slug:        a.Slug,
		Name:        a.Name,
		Description: a.Description,
	}
	if a.Avatar != nil {
		out.AvatarURL = a.Avatar.URL
	}
	return out
}

type postNode struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Date          dateTime `json:"date"`
	Modified      dateTime `json:"modified"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage *struct {
		Node *imageNode `json:"node"`
	} `json:"featuredImage"`
	SEO    *seoNode `json:"seo"`
	Author *struct {
		Node *authorNode `json:"node"`
	} `json:"author"`
	Categories struct {
		Nodes []Category `json:"nodes"`
	} `json:"categories"`
	Tags struct {
		Nodes []Tag `json:"nodes"`
	} `json:"tags"`
}

func (n postNode) toPost() Post {
	p := Post{
		ID:         n.ID,
		Title:      n.Title,
		Slug:       n.Slug,
		Date:       n.Date.Time,
		Modified:   n.Modified.Time,
		Content:    n.Content,
		Excerpt:    n.Excerpt,
		SEO:        n.SEO.toSEO(),
		Categories: n.Categories.Nodes,
		Tags:       n.Tags.Nodes,
	}
	if n.FeaturedImage != nil && n.FeaturedImage.Node != nil {
		p.FeaturedImage = &Image{
			URL:     n.FeaturedImage.Node.SourceURL,
			AltText: n.FeaturedImage.Node.AltText,
		}
	}
	if n.Author != nil {
		p.Author = n.Author.Node.toAuthor()
	}
	return p
}

func (n postNode) toSearchHit() SearchHit {
	h := SearchHit{ID: n.ID, Title: n.Title, Slug: n.Slug}
	if n.FeaturedImage != nil && n.FeaturedImage.Node != nil {
		h.ImageURL = n.FeaturedImage.Node.SourceURL
	}
	return h
}

func toPosts(nodes []postNode) []Post {
	posts := make([]Post, 0, len(nodes))
	for _, n := range nodes {
		posts = append(posts, n.toPost())
	}
	return posts
}
