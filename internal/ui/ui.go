package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/hitscope/internal/analytics"
	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
	"github.com/desertthunder/hitscope/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TableView ViewState = iota
	SearchView
	DetailView
	EnrichView
)

// InfoCache is the Spotify enrichment surface the TUI needs.
type InfoCache interface {
	Cached(ctx context.Context, name string) models.ArtistInfo
	Peek(name string) (models.ArtistInfo, bool)
	Clear() error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	state        ViewState
	view         *pipeline.View
	cache        InfoCache
	engine       *tasks.Engine
	enrichOpts   tasks.EnrichOpts
	genres       []string
	width        int
	height       int
	table        table.Model
	search       textinput.Model
	selected     models.CombinedArtist
	info         *models.ArtistInfo
	loading      bool
	status       string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.EnrichResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model over view. cache and engine may be nil when Spotify is
// not configured; the detail pane then shows table data only.
func NewModel(ctx context.Context, view *pipeline.View, cache InfoCache, engine *tasks.Engine) *Model {
	search := textinput.New()
	search.Placeholder = "name or genre"
	search.Prompt = "/ "
	search.PromptStyle = styles.prompt
	search.CharLimit = 64

	m := &Model{
		ctx:    ctx,
		state:  TableView,
		view:   view,
		cache:  cache,
		engine: engine,
		genres: view.Genres(),
		search: search,
		help:   help.New(),
		keys:   newKeyMap(),
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(pipeline.PageSize+2),
			table.WithStyles(styles.tableStyles()),
		),
	}
	m.refresh()
	return m
}

// SetEnrichOpts configures the worker pool used by the warm key.
func (m *Model) SetEnrichOpts(opts tasks.EnrichOpts) { m.enrichOpts = opts }

// Init implements [tea.Model]. The table is built eagerly so there is nothing to fetch.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(5, min(pipeline.PageSize+2, msg.Height-10)))
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case TableView:
			return m.handleTableKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case EnrichView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgInfoFetched:
		p := msg.data.(infoPayload)
		if m.state == DetailView && p.name == m.selected.Name {
			m.info = &p.info
			m.loading = false
		}
		return m, nil

	case MsgCacheCleared:
		if err, _ := msg.data.(error); err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Clear failed: %v", err))
		} else {
			m.status = styles.ok.Render("✓ Spotify cache cleared")
		}
		return m, nil

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgEnrichComplete:
		p := msg.data.(enrichPayload)
		m.progressChan = nil
		m.state = TableView
		switch {
		case p.err != nil:
			m.status = styles.err.Render(fmt.Sprintf("Warm-up stopped: %v", p.err))
		case p.result != nil:
			m.status = styles.ok.Render(fmt.Sprintf("✓ Warmed %d artists (%d found, %d missing)",
				p.result.Total, p.result.Found, p.result.Missing))
		}
		return m, nil

	case MsgBrowserOpened:
		if err, _ := msg.data.(error); err != nil {
			m.status = styles.err.Render(fmt.Sprintf("Could not open browser: %v", err))
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.state = SearchView
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.sort):
		n, _ := strconv.Atoi(msg.String())
		m.view.SelectSort(pipeline.SortKeys[n-1])
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.tier):
		m.view.SetTier(nextTier(m.view.Filter().Tier))
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.genre):
		m.view.SetGenre(nextGenre(m.view.Filter().Genre, m.genres))
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.reset):
		m.search.SetValue("")
		m.view.SetFilter(pipeline.Filter{})
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.nextPage):
		m.view.Next()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.prevPage):
		m.view.Prev()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		row, ok := m.current()
		if !ok {
			return m, nil
		}
		m.selected = row
		m.state = DetailView
		return m, m.loadInfo(row.Name)
	case key.Matches(msg, m.keys.warm):
		if m.engine == nil {
			m.status = styles.warn.Render("Spotify is not configured; run hitscope setup")
			return m, nil
		}
		m.state = EnrichView
		return m, m.startEnrich()
	case key.Matches(msg, m.keys.clear):
		if m.cache == nil {
			m.status = styles.warn.Render("Spotify is not configured; nothing to clear")
			return m, nil
		}
		return m, m.clearCache()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// handleSearchKeys filters as the user types. enter keeps the term, esc drops it.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.search.Blur()
		m.state = TableView
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.view.SetSearch("")
		m.refresh()
		m.state = TableView
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Filter().Search {
		m.view.SetSearch(m.search.Value())
		m.refresh()
	}
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.state = TableView
		m.info = nil
		m.loading = false
		return m, nil
	case key.Matches(msg, m.keys.open):
		if m.info == nil || m.info.SpotifyURL == "" {
			return m, nil
		}
		url := m.info.SpotifyURL
		return m, func() tea.Msg { return browserOpenedMsg(shared.OpenBrowser(url)) }
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case SearchView:
		m.search, cmd = m.search.Update(msg)
	case TableView:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// refresh rebuilds the table from the view's current page and moves the cursor to the top.
func (m *Model) refresh() {
	sortKey, dir := m.view.Sort()
	m.table.SetRows(nil)
	m.table.SetColumns(tableColumns(sortKey, dir))
	m.table.SetRows(tableRows(m.view.Page()))
	m.table.SetCursor(0)
}

// current returns the artist under the cursor.
func (m *Model) current() (models.CombinedArtist, bool) {
	items := m.view.Page().Items
	i := m.table.Cursor()
	if i < 0 || i >= len(items) {
		return models.CombinedArtist{}, false
	}
	return items[i], true
}

// loadInfo shows a cached entry immediately and fetches anything else in the background.
func (m *Model) loadInfo(name string) tea.Cmd {
	m.info = nil
	m.loading = false
	if m.cache == nil {
		return nil
	}
	if info, ok := m.cache.Peek(name); ok {
		m.info = &info
		return nil
	}

	m.loading = true
	return func() tea.Msg {
		return infoFetchedMsg(name, m.cache.Cached(m.ctx, name))
	}
}

func (m *Model) clearCache() tea.Cmd {
	return func() tea.Msg {
		return cacheClearedMsg(m.cache.Clear())
	}
}

// startEnrich warms the cache for the artists on the current page.
func (m *Model) startEnrich() tea.Cmd {
	items := m.view.Page().Items
	names := make([]string, len(items))
	for i, a := range items {
		names[i] = a.Name
	}

	m.progress = tasks.ProgressUpdate{}
	m.result, m.err = nil, nil
	m.progressChan = make(chan tasks.ProgressUpdate, len(names)+4)
	ch := m.progressChan

	go func() {
		result, err := m.engine.Enrich(m.ctx, names, m.enrichOpts, ch)
		m.result = result
		m.err = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	ch := m.progressChan
	return func() tea.Msg {
		if ch == nil {
			return enrichCompleteMsg(m.result, m.err)
		}

		update, ok := <-ch
		if !ok {
			return enrichCompleteMsg(m.result, m.err)
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.state {
	case DetailView:
		return m.renderDetail()
	case EnrichView:
		return m.renderEnrich()
	default:
		return m.renderTable()
	}
}

func (m *Model) statusLine() string {
	f := m.view.Filter()
	sortKey, dir := m.view.Sort()

	tier := "any"
	if f.Tier != models.TierUnknown {
		tier = string(f.Tier)
	}
	genre := "any"
	if f.Genre != "" {
		genre = f.Genre
	}

	return fmt.Sprintf("Page %d/%d • %d of %d artists • sort %s %s • tier %s • genre %s",
		m.view.PageNumber(), pipeline.PageCount(m.view.Len()),
		m.view.Len(), m.view.Total(), sortKey, dir, tier, genre)
}

func (m *Model) renderTable() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("hitscope • Artists"))
	b.WriteString("\n")

	if m.state == SearchView || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}

	if m.view.Len() == 0 {
		b.WriteString(styles.warn.Render("No artists match the current filters (x to reset)"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(styles.help.Render(m.statusLine()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) field(label, value string) string {
	return styles.label.Render(label) + value + "\n"
}

func (m *Model) renderDetail() string {
	a := m.selected
	var b strings.Builder

	b.WriteString(m.field("Genre", a.PrimaryGenre))
	b.WriteString(m.field("Songs", strconv.Itoa(a.TotalSongs)))
	b.WriteString(m.field("Hit rate", shared.FormatPercent(a.HitRate)))
	b.WriteString(m.field("Revenue", shared.FormatCurrency(a.EstimatedTotalRevenue)))
	b.WriteString(m.field("Career", fmt.Sprintf("%.1f years, %s", a.CareerSpanYears, analytics.StageFor(a.CareerSpanYears))))

	if p := a.Prediction; p != nil {
		b.WriteString("\n")
		b.WriteString(m.field("Predicted", paintTier(styles, p.Forecast.PredictedTier)))
		b.WriteString(m.field("Hit prob", shared.FormatPercent(p.Forecast.HitProbability)))
		b.WriteString(m.field("Hotness", fmt.Sprintf("%.1f (%s)", p.Forecast.HotnessScore, analytics.HotnessLabel(p.Forecast.HotnessScore))))
		if lo, hi, ok := p.Forecast.ConfidenceBounds(); ok {
			b.WriteString(m.field("Confidence", fmt.Sprintf("%.1f to %.1f", lo, hi)))
		}
		if p.Forecast.Recommendation != "" {
			b.WriteString(m.field("Advice", p.Forecast.Recommendation))
		}
	} else {
		b.WriteString("\n")
		b.WriteString(m.field("Predicted", shared.NotAvailable))
	}

	b.WriteString("\n")
	b.WriteString(m.renderSpotify())

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	if m.info != nil && m.info.SpotifyURL != "" {
		helpKeys = []key.Binding{m.keys.open, m.keys.back, m.keys.quit}
	}

	return fmt.Sprintf("%s\n%s\n\n%s",
		styles.title.Render(a.Name),
		styles.pane.Render(strings.TrimRight(b.String(), "\n")),
		m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderSpotify() string {
	switch {
	case m.cache == nil:
		return styles.help.Render("Spotify is not configured")
	case m.loading:
		return styles.help.Render("Fetching Spotify info...")
	case m.info == nil:
		return ""
	}

	info := m.info
	var b strings.Builder
	if !info.Found {
		b.WriteString(styles.warn.Render("No Spotify match"))
		b.WriteString("\n")
	}
	b.WriteString(m.field("Followers", info.Followers))
	b.WriteString(m.field("Popularity", info.Popularity))
	b.WriteString(m.field("Genres", info.Genres))
	if info.SpotifyURL != "" {
		b.WriteString(m.field("Spotify", info.SpotifyURL))
	}
	if info.ImageURL != "" {
		b.WriteString(m.field("Image", info.ImageURL))
	}
	return b.String()
}

func (m *Model) renderEnrich() string {
	title := styles.title.Render("Warming Spotify cache")

	var phase string
	switch m.progress.Phase {
	case tasks.EnrichStart:
		phase = "Starting..."
	case tasks.EnrichArtist:
		phase = fmt.Sprintf("Looking up artists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.EnrichDone:
		phase = "Finishing..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}
