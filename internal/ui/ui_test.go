package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
	"github.com/desertthunder/hitscope/internal/tasks"
	tu "github.com/desertthunder/hitscope/internal/testing"
)

type fakeCache struct {
	mu       sync.Mutex
	entries  map[string]models.ArtistInfo
	calls    int
	cleared  int
	clearErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]models.ArtistInfo{}}
}

func (c *fakeCache) Cached(_ context.Context, name string) models.ArtistInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	info := models.DefaultArtistInfo(name)
	info.Found = true
	info.Followers = "1,234"
	info.SpotifyURL = "https://open.spotify.com/artist/x"
	c.entries[name] = info
	return info
}

func (c *fakeCache) Peek(name string) (models.ArtistInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.entries[name]
	return info, ok
}

func (c *fakeCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared++
	if c.clearErr != nil {
		return c.clearErr
	}
	c.entries = map[string]models.ArtistInfo{}
	return nil
}

func newTestModel(t *testing.T, n int, cache *fakeCache) *Model {
	t.Helper()
	view := pipeline.NewView(pipeline.Join(tu.Catalog(n)))
	if cache == nil {
		return NewModel(context.Background(), view, nil, nil)
	}
	engine := tasks.NewEngine(cache, nil, shared.NewLogger(io.Discard))
	m := NewModel(context.Background(), view, cache, engine)
	m.SetEnrichOpts(tasks.EnrichOpts{NumWorkers: 4, RateLimit: 1000})
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

// drive runs cmd and feeds each resulting message back until no command remains.
func drive(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
	}
}

func TestHelpers(t *testing.T) {
	t.Run("nextTier cycles through every tier", func(t *testing.T) {
		got := []models.Tier{}
		tier := models.TierUnknown
		for range 5 {
			tier = nextTier(tier)
			got = append(got, tier)
		}
		want := []models.Tier{models.TierHit, models.TierGood, models.TierMid, models.TierBust, models.TierUnknown}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("nextGenre wraps to any", func(t *testing.T) {
		genres := []string{"pop", "rock"}
		if g := nextGenre("", genres); g != "pop" {
			t.Errorf("expected pop, got %q", g)
		}
		if g := nextGenre("pop", genres); g != "rock" {
			t.Errorf("expected rock, got %q", g)
		}
		if g := nextGenre("rock", genres); g != "" {
			t.Errorf("expected any, got %q", g)
		}
		if g := nextGenre("", nil); g != "" {
			t.Errorf("expected any without genres, got %q", g)
		}
	})

	t.Run("rows show N/A without a prediction", func(t *testing.T) {
		page := pipeline.Paginate(pipeline.Join(tu.Catalog(3)), 1)
		rows := tableRows(page)
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		// Artist 000 has no prediction.
		if rows[0][1] != "Artist 000" || rows[0][6] != "-" || rows[0][7] != shared.NotAvailable {
			t.Errorf("unexpected row %v", rows[0])
		}
		if rows[1][6] != "good" {
			t.Errorf("expected good tier for Artist 001, got %q", rows[1][6])
		}
	})

	t.Run("row numbers continue across pages", func(t *testing.T) {
		page := pipeline.Paginate(pipeline.Join(tu.Catalog(30)), 2)
		rows := tableRows(page)
		if rows[0][0] != "26" {
			t.Errorf("expected row 26, got %s", rows[0][0])
		}
	})

	t.Run("active column is marked", func(t *testing.T) {
		cols := tableColumns(pipeline.SortRevenue, pipeline.Descending)
		if cols[5].Title != "Revenue ▼" {
			t.Errorf("expected marked revenue column, got %q", cols[5].Title)
		}
		if cols[1].Title != "Artist" {
			t.Errorf("expected plain artist column, got %q", cols[1].Title)
		}
	})
}

func TestModel(t *testing.T) {
	t.Run("starts on revenue descending", func(t *testing.T) {
		m := newTestModel(t, 60, nil)
		row, ok := m.current()
		if !ok || row.Name != "Artist 059" {
			t.Errorf("expected Artist 059 first, got %q", row.Name)
		}
		if !strings.Contains(m.View(), "Page 1/3") {
			t.Errorf("expected page indicator, got:\n%s", m.View())
		}
	})

	t.Run("sort hotkey selects then toggles", func(t *testing.T) {
		m := newTestModel(t, 60, nil)

		press(m, runes("1"))
		if key, dir := m.view.Sort(); key != pipeline.SortName || dir != pipeline.Ascending {
			t.Errorf("expected name asc, got %s %s", key, dir)
		}
		if row, _ := m.current(); row.Name != "Artist 000" {
			t.Errorf("expected Artist 000, got %s", row.Name)
		}

		press(m, runes("1"))
		if _, dir := m.view.Sort(); dir != pipeline.Descending {
			t.Errorf("expected toggle to desc, got %s", dir)
		}
		if row, _ := m.current(); row.Name != "Artist 059" {
			t.Errorf("expected Artist 059, got %s", row.Name)
		}
	})

	t.Run("page navigation clamps", func(t *testing.T) {
		m := newTestModel(t, 60, nil)
		press(m, runes("l"), runes("l"), runes("l"))
		if m.view.PageNumber() != 3 {
			t.Errorf("expected last page 3, got %d", m.view.PageNumber())
		}
		if len(m.table.Rows()) != 10 {
			t.Errorf("expected 10 rows on the last page, got %d", len(m.table.Rows()))
		}
		press(m, tea.KeyMsg{Type: tea.KeyLeft})
		if m.view.PageNumber() != 2 {
			t.Errorf("expected page 2, got %d", m.view.PageNumber())
		}
	})

	t.Run("tier and genre cycling reset the page", func(t *testing.T) {
		m := newTestModel(t, 60, nil)
		press(m, runes("l"), runes("t"))
		if m.view.Filter().Tier != models.TierHit {
			t.Errorf("expected hit filter, got %q", m.view.Filter().Tier)
		}
		if m.view.PageNumber() != 1 {
			t.Errorf("expected page reset, got %d", m.view.PageNumber())
		}
		for _, row := range m.view.Rows() {
			if row.PredictedTier() != models.TierHit {
				t.Fatalf("unexpected tier %q for %s", row.PredictedTier(), row.Name)
			}
		}

		press(m, runes("g"))
		if m.view.Filter().Genre != "country" {
			t.Errorf("expected first genre country, got %q", m.view.Filter().Genre)
		}

		press(m, runes("x"))
		if !m.view.Filter().IsZero() {
			t.Errorf("expected filters reset, got %+v", m.view.Filter())
		}
	})

	t.Run("search filters as you type", func(t *testing.T) {
		m := newTestModel(t, 60, nil)
		press(m, runes("/"))
		if m.state != SearchView {
			t.Fatalf("expected search view, got %d", m.state)
		}

		press(m, runes("0"), runes("5"))
		if m.view.Filter().Search != "05" {
			t.Errorf("expected search 05, got %q", m.view.Filter().Search)
		}
		// Artist 005 and Artist 050..059
		if m.view.Len() != 11 {
			t.Errorf("expected 11 matches, got %d", m.view.Len())
		}

		press(m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.state != TableView || m.view.Filter().Search != "05" {
			t.Errorf("expected enter to keep the term, got state %d search %q", m.state, m.view.Filter().Search)
		}

		press(m, runes("/"), tea.KeyMsg{Type: tea.KeyEsc})
		if m.view.Filter().Search != "" || m.view.Len() != 60 {
			t.Errorf("expected esc to clear the search, got %q (%d rows)", m.view.Filter().Search, m.view.Len())
		}
	})

	t.Run("empty result", func(t *testing.T) {
		m := newTestModel(t, 10, nil)
		press(m, runes("/"), runes("z"), runes("z"), tea.KeyMsg{Type: tea.KeyEnter})
		if _, ok := m.current(); ok {
			t.Error("expected no current row")
		}
		if cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil || m.state != TableView {
			t.Error("expected enter to do nothing on an empty table")
		}
		if !strings.Contains(m.View(), "No artists match") {
			t.Errorf("expected empty message, got:\n%s", m.View())
		}
	})
}

func TestDetail(t *testing.T) {
	t.Run("fetches Spotify info through the cache", func(t *testing.T) {
		cache := newFakeCache()
		m := newTestModel(t, 60, cache)

		cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.state != DetailView || m.selected.Name != "Artist 059" {
			t.Fatalf("expected detail for Artist 059, got state %d %q", m.state, m.selected.Name)
		}
		if !m.loading || cmd == nil {
			t.Fatal("expected a background fetch")
		}
		if !strings.Contains(m.View(), "Fetching Spotify info") {
			t.Errorf("expected loading text, got:\n%s", m.View())
		}

		drive(m, cmd)
		if m.loading || m.info == nil || m.info.Followers != "1,234" {
			t.Errorf("expected fetched info, got %+v", m.info)
		}
		if !strings.Contains(m.View(), "1,234") {
			t.Errorf("expected followers in view, got:\n%s", m.View())
		}

		press(m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.state != TableView {
			t.Errorf("expected table view, got %d", m.state)
		}

		if cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
			t.Error("expected cached entry to be shown without a fetch")
		}
		if cache.calls != 1 {
			t.Errorf("expected one lookup, got %d", cache.calls)
		}
	})

	t.Run("stale fetch is ignored", func(t *testing.T) {
		m := newTestModel(t, 60, newFakeCache())
		press(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEsc})
		press(m, infoFetchedMsg("Artist 059", models.DefaultArtistInfo("Artist 059")))
		if m.info != nil {
			t.Error("expected info ignored outside the detail view")
		}
	})

	t.Run("without Spotify", func(t *testing.T) {
		m := newTestModel(t, 5, nil)
		if cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
			t.Error("expected no fetch without a cache")
		}
		if !strings.Contains(m.View(), "Spotify is not configured") {
			t.Errorf("expected not configured note, got:\n%s", m.View())
		}
	})

	t.Run("prediction fields", func(t *testing.T) {
		m := newTestModel(t, 5, nil)
		press(m, runes("1"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
		if m.selected.Name != "Artist 001" {
			t.Fatalf("expected Artist 001, got %s", m.selected.Name)
		}
		if view := m.View(); !strings.Contains(view, "Hit prob") || !strings.Contains(view, "cold") {
			t.Errorf("expected prediction fields, got:\n%s", view)
		}
	})
}

func TestCacheKeys(t *testing.T) {
	t.Run("clear", func(t *testing.T) {
		cache := newFakeCache()
		cache.Cached(context.Background(), "Artist 001")
		m := newTestModel(t, 10, cache)

		drive(m, press(m, runes("c")))
		if cache.cleared != 1 {
			t.Errorf("expected one clear, got %d", cache.cleared)
		}
		if _, ok := cache.Peek("Artist 001"); ok {
			t.Error("expected entries removed")
		}
		if !strings.Contains(m.status, "cache cleared") {
			t.Errorf("expected cleared status, got %q", m.status)
		}
	})

	t.Run("clear failure", func(t *testing.T) {
		cache := newFakeCache()
		cache.clearErr = errors.New("locked")
		m := newTestModel(t, 10, cache)

		drive(m, press(m, runes("c")))
		if !strings.Contains(m.status, "locked") {
			t.Errorf("expected error status, got %q", m.status)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		m := newTestModel(t, 10, nil)
		if cmd := press(m, runes("c")); cmd != nil {
			t.Error("expected no command without a cache")
		}
		if cmd := press(m, runes("w")); cmd != nil || m.state != TableView {
			t.Error("expected warm to be refused without an engine")
		}
	})

	t.Run("warm current page", func(t *testing.T) {
		cache := newFakeCache()
		m := newTestModel(t, 30, cache)

		cmd := press(m, runes("w"))
		if m.state != EnrichView {
			t.Fatalf("expected enrich view, got %d", m.state)
		}
		drive(m, cmd)

		if m.state != TableView {
			t.Errorf("expected table view after warm-up, got %d", m.state)
		}
		if cache.calls != pipeline.PageSize {
			t.Errorf("expected %d lookups, got %d", pipeline.PageSize, cache.calls)
		}
		if !strings.Contains(m.status, "Warmed 25 artists (25 found, 0 missing)") {
			t.Errorf("unexpected status %q", m.status)
		}
	})
}
