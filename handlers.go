package newsfront

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/calder-media/newsfront/wp"
)

// newsWindow is how far back the Google News sitemap reaches.
const newsWindow = 48 * time.Hour

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

// handlePosts serves the paginated, searchable, filterable post listing.
func (a *App) handlePosts(c echo.Context) error {
	filter := wp.PostFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Author:   c.QueryParam("author"),
		Tag:      c.QueryParam("tag"),
	}
	page := wp.Pagination{
		After:  c.QueryParam("after"),
		Before: c.QueryParam("before"),
	}
	if err := page.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "at most one of after/before may be set")
	}
	result, err := a.Content.Posts(c.Request().Context(), filter, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Content.PostBySlug(c.Request().Context(), slug)
	if err != nil {
		return err
	}
	if post == nil {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleCategories(c echo.Context) error {
	categories, err := a.Content.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

// handleAuthor serves an author profile together with their latest posts.
func (a *App) handleAuthor(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()
	author, err := a.Content.AuthorBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if author == nil {
		return echo.NewHTTPError(http.StatusNotFound, "author not found")
	}
	posts, err := a.Content.Posts(ctx, wp.PostFilter{Author: slug}, wp.Pagination{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"author": author,
		"posts":  posts.Posts,
	})
}

// handleTopics serves the taxonomy terms that have published posts. Failure
// keeps the response shape with empty arrays, matching the search contract.
func (a *App) handleTopics(c echo.Context) error {
	topics, err := a.Content.Topics(c.Request().Context())
	if err != nil {
		a.Log.Error("topics fetch failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":      "failed to fetch topics",
			"categories": []wp.Category{},
			"tags":       []wp.Tag{},
		})
	}
	return c.JSON(http.StatusOK, topics)
}

// handleSearch serves the quick-search fan-out. Short terms return the empty
// shape without touching the CMS; transport failure degrades to the empty
// shape with a 500, since search-as-you-type is not a critical path.
func (a *App) handleSearch(c echo.Context) error {
	if !a.searchLimiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
	}
	result, err := a.Content.QuickSearch(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		a.Log.Error("quick search failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":      "failed to search",
			"posts":      []wp.SearchHit{},
			"categories": []wp.Category{},
			"tags":       []wp.Tag{},
		})
	}
	return c.JSON(http.StatusOK, result)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Content.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleNewsSitemap(c echo.Context) error {
	cutoff := time.Now().Add(-newsWindow)
	posts, err := a.Content.PostsSince(c.Request().Context(), cutoff)
	if err != nil {
		return err
	}
	return a.renderNewsSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	page, err := a.Content.Posts(c.Request().Context(), wp.PostFilter{}, wp.Pagination{})
	if err != nil {
		return err
	}
	return a.renderRSS(c, page.Posts)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= 500 {
		a.Log.Error("request failed",
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}
