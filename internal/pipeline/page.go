package pipeline

import "github.com/desertthunder/hitscope/internal/models"

// PageSize is the fixed number of rows per page.
const PageSize = 25

// Page is one slice of a filtered, sorted table. Number is 1-based.
type Page struct {
	Items      []models.CombinedArtist `json:"items"`
	Number     int                     `json:"page"`
	TotalPages int                     `json:"total_pages"`
	TotalItems int                     `json:"total_items"`
	PageSize   int                     `json:"page_size"`
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// PageCount is ceil(n/PageSize), and at least 1 so an empty table still has page 1.
func PageCount(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + PageSize - 1) / PageSize
}

// ClampPage bounds page to [1, PageCount(n)].
func ClampPage(page, n int) int {
	return max(1, min(page, PageCount(n)))
}

// Paginate returns the clamped page of rows.
func Paginate(rows []models.CombinedArtist, page int) Page {
	page = ClampPage(page, len(rows))
	start := (page - 1) * PageSize
	end := min(start+PageSize, len(rows))

	return Page{
		Items:      rows[start:end],
		Number:     page,
		TotalPages: PageCount(len(rows)),
		TotalItems: len(rows),
		PageSize:   PageSize,
	}
}

// Query is a one-shot table request, as used by the API and the CLI.
type Query struct {
	Filter
	Sort      SortKey
	Direction Direction
	Page      int
}

// Run filters, sorts and paginates rows for q. An empty sort key keeps the input order.
func Run(rows []models.CombinedArtist, q Query) Page {
	out := q.Filter.Apply(rows)
	if q.Sort != "" {
		dir := q.Direction
		if dir == "" {
			dir = q.Sort.DefaultDirection()
		}
		out = Sort(out, q.Sort, dir)
	}
	return Paginate(out, q.Page)
}
