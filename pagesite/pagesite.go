package pagesite

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"bookmarket/analytics"
	"bookmarket/store"
)

// PageSiteModule serves the public side of generated links: resolving a link
// code, counting the visit and rendering the target page.
type PageSiteModule struct {
	store     *store.Store
	analytics *analytics.AnalyticsModule
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // page content may be raw HTML
	),
)

func NewPageSiteModule(s *store.Store, analyticsModule *analytics.AnalyticsModule) *PageSiteModule {
	return &PageSiteModule{
		store:     s,
		analytics: analyticsModule,
	}
}

func (p *PageSiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/l/:code", p.linkPage)
}

// ResolveCode maps a link code to its page id, for the render cache.
func (p *PageSiteModule) ResolveCode(code string) (string, bool) {
	link, ok := p.store.FindLinkByCode(code)
	if !ok {
		return "", false
	}
	return link.PageID, true
}

// CountVisit records a visit for a link code without rendering anything. The
// render cache calls it when serving a cached page, so cached visits still
// count.
func (p *PageSiteModule) CountVisit(c *gin.Context, code string) {
	link, ok := p.store.FindLinkByCode(code)
	if !ok {
		return
	}
	p.store.RecordVisit(link.ID)
	p.analytics.TrackVisit(c, link.ID, link.PageID)
}

func (p *PageSiteModule) linkPage(c *gin.Context) {
	code := c.Param("code")

	link, ok := p.store.FindLinkByCode(code)
	if !ok {
		c.HTML(http.StatusNotFound, "page_error.html", gin.H{
			"error": "Link not found",
		})
		return
	}

	p.store.RecordVisit(link.ID)
	p.analytics.TrackVisit(c, link.ID, link.PageID)

	page, ok := p.store.FindPageByID(link.PageID)
	if !ok {
		// Cascade delete removes links with their page, so a dangling link
		// means storage was tampered with. Treat it as not found.
		c.HTML(http.StatusNotFound, "page_error.html", gin.H{
			"error": "Page not found",
		})
		return
	}

	if page.IsFileBasedPage && page.FilePath != "" {
		c.Redirect(http.StatusFound, page.FilePath)
		return
	}

	c.HTML(http.StatusOK, "page_view.html", gin.H{
		"page":        page,
		"contentHTML": template.HTML(renderMarkdown(page.Content)),
	})
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// On render error keep the original content so the page still loads.
		return content
	}
	return buf.String()
}
