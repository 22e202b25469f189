// Package httputil carries small helpers shared by the HTTP handlers.
package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Page is the window a list endpoint was asked for. Pagination is opt-in:
// Requested reports whether the client sent a page parameter at all, and
// endpoints answer the full set when it did not.
type Page struct {
	Number    int
	Size      int
	Requested bool
}

// ParsePage reads the page and page_size query params with bounds.
func ParsePage(c *gin.Context) Page {
	p := Page{Number: 1, Size: defaultPageSize, Requested: c.Query("page") != ""}

	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Number = n
	}
	if s, err := strconv.Atoi(c.Query("page_size")); err == nil && s > 0 {
		p.Size = s
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Window cuts the requested page out of the full result set.
func Window[T any](items []T, p Page) []T {
	start := (p.Number - 1) * p.Size
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// SetPageHeaders exposes the window and the total on the response headers,
// so the body stays a plain array either way.
func SetPageHeaders(c *gin.Context, p Page, total int) {
	c.Header("X-Page", strconv.Itoa(p.Number))
	c.Header("X-Page-Size", strconv.Itoa(p.Size))
	c.Header("X-Total-Count", strconv.Itoa(total))
}
