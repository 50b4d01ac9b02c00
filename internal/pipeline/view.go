package pipeline

import "github.com/desertthunder/hitscope/internal/models"

// View is the interactive table state over a fixed dataset.
//
// The default view sorts by revenue, descending, on page 1.
type View struct {
	all     []models.CombinedArtist
	visible []models.CombinedArtist
	filter  Filter
	key     SortKey
	dir     Direction
	page    int
}

// NewView creates a view over rows. rows is treated as read-only.
func NewView(rows []models.CombinedArtist) *View {
	v := &View{all: rows, key: SortRevenue, dir: SortRevenue.DefaultDirection(), page: 1}
	v.refresh()
	return v
}

func (v *View) refresh() {
	v.visible = Sort(v.filter.Apply(v.all), v.key, v.dir)
	v.page = ClampPage(v.page, len(v.visible))
}

func (v *View) reset() {
	v.page = 1
	v.refresh()
}

// Filter returns the active predicates.
func (v *View) Filter() Filter { return v.filter }

// Sort returns the active key and direction.
func (v *View) Sort() (SortKey, Direction) { return v.key, v.dir }

func (v *View) SetSearch(s string) {
	v.filter.Search = s
	v.reset()
}

func (v *View) SetGenre(g string) {
	v.filter.Genre = g
	v.reset()
}

func (v *View) SetTier(t models.Tier) {
	v.filter.Tier = t
	v.reset()
}

func (v *View) SetMinHitRate(r float64) {
	v.filter.MinHitRate = r
	v.reset()
}

func (v *View) SetMinRevenue(r float64) {
	v.filter.MinRevenue = r
	v.reset()
}

// SetFilter replaces every predicate at once.
func (v *View) SetFilter(f Filter) {
	v.filter = f
	v.reset()
}

// SelectSort toggles the direction when key is already active, otherwise switches to key
// in its default direction.
func (v *View) SelectSort(key SortKey) {
	if key == v.key {
		v.dir = v.dir.Toggle()
	} else {
		v.key = key
		v.dir = key.DefaultDirection()
	}
	v.reset()
}

// SetSort sets key and direction explicitly. An empty direction uses the key's default.
func (v *View) SetSort(key SortKey, dir Direction) {
	if dir == "" {
		dir = key.DefaultDirection()
	}
	v.key, v.dir = key, dir
	v.reset()
}

// SetPage moves to page n, clamped to the available range.
func (v *View) SetPage(n int) { v.page = ClampPage(n, len(v.visible)) }

func (v *View) Next() { v.SetPage(v.page + 1) }
func (v *View) Prev() { v.SetPage(v.page - 1) }

// PageNumber returns the current 1-based page.
func (v *View) PageNumber() int { return v.page }

// Page returns the rows on the current page.
func (v *View) Page() Page { return Paginate(v.visible, v.page) }

// Rows returns every filtered, sorted row.
func (v *View) Rows() []models.CombinedArtist { return v.visible }

// Len is the number of filtered rows.
func (v *View) Len() int { return len(v.visible) }

// Total is the number of rows before filtering.
func (v *View) Total() int { return len(v.all) }

// Genres lists the primary genres in the full dataset, for filter pickers.
func (v *View) Genres() []string { return Genres(v.all) }
