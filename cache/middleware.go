package cache

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Resolver maps a link code from the URL to the page id the cache entry is
// filed under. Unresolvable codes are left uncached.
type Resolver func(code string) (pageID string, ok bool)

// Visitor is invoked for requests served from the cache. Cached responses skip
// the handler, so visit counting has to happen here.
type Visitor func(c *gin.Context, code string)

// Middleware caches rendered link pages served under /l/:code.
func Middleware(maxAge time.Duration, resolve Resolver, visit Visitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != "GET" {
			c.Next()
			return
		}

		code := extractCode(c.Request.URL.Path)
		if code == "" {
			c.Next()
			return
		}

		pageID, ok := resolve(code)
		if !ok {
			c.Next()
			return
		}

		if cached, found := ReadCache(pageID, code, maxAge); found {
			if visit != nil {
				visit(c, code)
			}
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		// Only cache successful HTML responses.
		if c.Writer.Status() == http.StatusOK &&
			c.Writer.Header().Get("Content-Type") == "text/html; charset=utf-8" {
			WriteCache(pageID, code, writer.body.String())
		}
	}
}

// extractCode returns the code segment of a /l/:code path.
func extractCode(path string) string {
	path = strings.TrimPrefix(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) == 2 && parts[0] == "l" && parts[1] != "" {
		return parts[1]
	}
	return ""
}
