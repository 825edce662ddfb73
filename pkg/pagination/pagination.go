// Package pagination normalizes the page/per_page inputs shared by the
// review and reservation listing endpoints.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPerPage is the listing page size when the client sends none.
	DefaultPerPage = 20
	// MaxPerPage caps a single page so review-heavy businesses cannot be
	// fetched in one request.
	MaxPerPage = 100
)

// Params is a normalized page/per-page pair. Build it with Normalize or
// FromRequest so the bounds always hold.
type Params struct {
	Page    int
	PerPage int
}

// Normalize clamps raw page/per-page values into valid bounds. Non-positive
// values take the defaults and per-page is capped at MaxPerPage.
func Normalize(page, perPage int) Params {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// FromRequest reads the page and per_page query parameters. Missing or
// unparseable values fall back to the defaults, and a per_page beyond the
// cap is treated as absent rather than silently clamped.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()

	page := 0
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page = v
	}

	perPage := 0
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v <= MaxPerPage {
		perPage = v
	}

	return Normalize(page, perPage)
}

// Offset returns the row offset where this page starts.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// TotalPages returns how many pages are needed to cover total rows.
func (p Params) TotalPages(total int) int {
	pages := total / p.PerPage
	if total%p.PerPage > 0 {
		pages++
	}
	return pages
}
