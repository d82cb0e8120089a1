// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows shown in paged lists.
const PageSize = 50

// Page describes one page of a numbered list.
type Page struct {
	Number int // 1-based
	Size   int
}

// Parse reads the 1-based "page" query parameter. Missing or invalid values
// give page 1.
func Parse(r *http.Request, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	n, err := strconv.Atoi(query.Get(r, "page"))
	if err != nil || n < 1 {
		n = 1
	}
	return Page{Number: n, Size: size}
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int64 {
	return int64((p.Number - 1) * p.Size)
}

// Limit is the Mongo limit for this page.
func (p Page) Limit() int64 {
	return int64(p.Size)
}

// TotalPages returns how many pages total rows span. An empty list still has
// one page.
func (p Page) TotalPages(total int64) int {
	if p.Size <= 0 {
		return 1
	}
	n := int((total + int64(p.Size) - 1) / int64(p.Size))
	if n < 1 {
		return 1
	}
	return n
}
