package newsfront

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/calder-media/newsfront/wp"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, posts []wp.Post) error {
	base := a.Config.URL
	today := time.Now().Format("2006-01-02")
	urls := []sitemapURL{
		{Loc: BuildURL(base), LastMod: today, ChangeFreq: "daily", Priority: "1.0"},
		{Loc: BuildURL(base, postPathSegment), LastMod: today, ChangeFreq: "daily", Priority: "0.8"},
	}
	for _, p := range posts {
		lastMod := p.Date
		if p.Modified.After(lastMod) {
			lastMod = p.Modified
		}
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, postPathSegment, p.Slug),
			LastMod:    lastMod.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

// Google News sitemap. Only articles from the last two days are eligible, per
// the News sitemap guidelines.

type newsURLSet struct {
	XMLName   xml.Name  `xml:"urlset"`
	XMLNS     string    `xml:"xmlns,attr"`
	XMLNSNews string    `xml:"xmlns:news,attr"`
	URLs      []newsURL `xml:"url"`
}

type newsURL struct {
	Loc  string   `xml:"loc"`
	News newsMeta `xml:"news:news"`
}

type newsMeta struct {
	Publication     newsPublication `xml:"news:publication"`
	PublicationDate string          `xml:"news:publication_date"`
	Title           string          `xml:"news:title"`
}

type newsPublication struct {
	Name     string `xml:"news:name"`
	Language string `xml:"news:language"`
}

func (a *App) renderNewsSitemap(c echo.Context, posts []wp.Post) error {
	base := a.Config.URL
	urls := make([]newsURL, 0, len(posts))
	for _, p := range posts {
		urls = append(urls, newsURL{
			Loc: BuildURL(base, postPathSegment, p.Slug),
			News: newsMeta{
				Publication: newsPublication{
					Name:     a.Config.Name,
					Language: a.Config.Language,
				},
				PublicationDate: p.Date.Format(time.RFC3339),
				Title:           StripHTML(p.Title),
			},
		})
	}
	sitemap := newsURLSet{
		XMLNS:     "http://www.sitemaps.org/schemas/sitemap/0.9",
		XMLNSNews: "http://www.google.com/schemas/sitemap-news/0.9",
		URLs:      urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
