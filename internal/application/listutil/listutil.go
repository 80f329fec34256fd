// Package listutil parses paging and filter parameters for list pages
// and computes the metadata their templates need.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
)

// DefaultPerPage is used when per_page is missing or not an allowed option.
const DefaultPerPage = 50

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{25, 50, 100, 200}

// Page is a requested page, 1-indexed.
type Page struct {
	Number  int
	PerPage int
}

// ParsePage reads page and per_page from the query.
// POST: Number >= 1, PerPage is one of PerPageOptions
func ParsePage(q url.Values) Page {
	n, _ := strconv.Atoi(q.Get("page"))
	per, _ := strconv.Atoi(q.Get("per_page"))
	if !slices.Contains(PerPageOptions, per) {
		per = DefaultPerPage
	}
	return Page{Number: max(n, 1), PerPage: per}
}

// Filters returns the non-empty values of keys, in key order.
func Filters(q url.Values, keys ...string) url.Values {
	out := url.Values{}
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

// PageInfo describes where a page sits in a result set.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int

	// Query holds the filters to carry across page links.
	Query url.Values
}

// Info clamps p against total rows.
// PRE: total >= 0
// POST: 1 <= Page <= TotalPages, TotalPages >= 1
func (p Page) Info(total int, filters url.Values) PageInfo {
	per := p.PerPage
	if per < 1 {
		per = DefaultPerPage
	}
	pages := max((total+per-1)/per, 1)
	return PageInfo{
		Page:       min(max(p.Number, 1), pages),
		PerPage:    per,
		Total:      total,
		TotalPages: pages,
		Query:      filters,
	}
}

// Offset is the number of rows before this page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// FirstRow is the 1-indexed first row shown, or 0 when there are none.
func (p PageInfo) FirstRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// LastRow is the 1-indexed last row shown.
func (p PageInfo) LastRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// HasPrev reports whether an earlier page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a later page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// Window returns up to five page numbers around the current page.
func (p PageInfo) Window() []int {
	const width = 5
	first := max(1, min(p.Page-width/2, p.TotalPages-width+1))
	last := min(p.TotalPages, first+width-1)
	pages := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		pages = append(pages, n)
	}
	return pages
}

// Link returns a query string for page n that keeps the filters and page size.
func (p PageInfo) Link(n int) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	if p.PerPage != DefaultPerPage {
		q.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return "?" + q.Encode()
}
