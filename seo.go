package main

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// sitemapURLSet is the sitemaps.org <urlset> document.
type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// robotsTxt allows all crawling and points at the sitemap.
func robotsTxt(siteURL string) string {
	return fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", siteURL)
}

// buildSitemap has a single entry, the site root, refreshed daily.
func buildSitemap(siteURL string, now time.Time) sitemapURLSet {
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{{
			Loc:        siteURL,
			LastMod:    now.UTC().Format(time.RFC3339),
			ChangeFreq: "daily",
			Priority:   "1",
		}},
	}
}

// getRobots serves robots.txt.
// GET /robots.txt.
func (h *Handler) getRobots(c *gin.Context) {
	c.String(http.StatusOK, robotsTxt(h.cfg.SiteURL))
}

// getSitemap serves sitemap.xml with lastmod set to the request time.
// GET /sitemap.xml.
func (h *Handler) getSitemap(c *gin.Context) {
	body, err := xml.MarshalIndent(buildSitemap(h.cfg.SiteURL, time.Now()), "", "  ")
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to build sitemap")
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
}
