package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/apifolio/folio/internal/catalog"
	"github.com/apifolio/folio/internal/health"
	"github.com/apifolio/folio/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewProjects View = iota
	ViewDetail
	ViewLogs
)

func (v View) String() string {
	switch v {
	case ViewDetail:
		return "Detail"
	case ViewLogs:
		return "Logs"
	default:
		return "Projects"
	}
}

// logLines is how much of the log file the logs view keeps.
const logLines = 500

// HealthSource is the health poller as seen by the UI.
type HealthSource interface {
	Snapshot() health.Snapshot
	Refetch(ctx context.Context) bool
}

// CatalogSource fetches a fresh catalog. Implementations update the store
// themselves; the UI only keeps the project details for the detail view.
type CatalogSource interface {
	Execute(ctx context.Context) (catalog.Catalog, error)
}

// Options configures the UI.
type Options struct {
	Context context.Context
	Store   *state.Store
	Catalog catalog.Catalog
	Health  HealthSource
	// CatalogSource is optional; "c" does nothing without it.
	CatalogSource CatalogSource
	LogPath       string
	// Tick is how often the UI re-reads the store and health snapshot.
	Tick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	store    *state.Store
	health   HealthSource
	source   CatalogSource
	logPath  string
	tick     time.Duration
	keys     keyMap
	catalog  catalog.Catalog
	snapshot state.State
	probe    health.Snapshot

	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	cursor int
	// category filters the projects view; empty shows every API.
	category string

	logViewport viewport.Model
	logErr      error

	notice string
}

type tickMsg time.Time

type logsMsg struct {
	lines []string
	err   error
}

type catalogMsg struct {
	catalog catalog.Catalog
	err     error
}

type refetchMsg struct{ started bool }

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(state.Defaults())
	}

	m := Model{
		ctx:         ctx,
		store:       store,
		health:      opts.Health,
		source:      opts.CatalogSource,
		logPath:     opts.LogPath,
		tick:        tick,
		keys:        defaultKeyMap(),
		catalog:     opts.Catalog,
		currentView: ViewProjects,
	}
	m.refresh()
	m.cursor = m.selectedIndex()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.bodyHeight())
		}
		m.logViewport.Width = msg.Width
		m.logViewport.Height = m.bodyHeight()
		m.ready = true
		return m, nil

	case tickMsg:
		m.refresh()
		cmds := []tea.Cmd{tickCmd(m.tick)}
		if m.currentView == ViewLogs {
			cmds = append(cmds, m.readLogs())
		}
		return m, tea.Batch(cmds...)

	case logsMsg:
		m.setLogs(msg)
		return m, nil

	case catalogMsg:
		if msg.err == nil {
			m.catalog = msg.catalog
			m.notice = "catalog refreshed"
			if !m.hasCategory(m.category) {
				m.category = ""
			}
		} else {
			m.notice = ""
		}
		m.refresh()
		m.clampCursor()
		return m, nil

	case refetchMsg:
		if msg.started {
			m.notice = "health check started"
		} else {
			m.notice = "health check already running"
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help.
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		m.store.SetTheme(m.snapshot.Theme.Toggle())
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.currentView = (m.currentView + 1) % 3
		if m.currentView == ViewLogs {
			return m, m.readLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refetch):
		return m, m.refetchHealth()

	case key.Matches(msg, m.keys.ReloadCatalog):
		return m, m.reloadCatalog()
	}

	switch m.currentView {
	case ViewProjects:
		return m.handleProjectsKey(msg)
	case ViewLogs:
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleProjectsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visibleAPIs())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		visible := m.visibleAPIs()
		if m.cursor < len(visible) {
			m.store.SetSelectedAPI(visible[m.cursor].ID)
			m.refresh()
			m.currentView = ViewDetail
		}
	case key.Matches(msg, m.keys.Filter):
		m.category = m.nextCategory()
		m.cursor = m.selectedIndex()
	}
	return m, nil
}

// visibleAPIs returns the store's APIs that match the category filter.
func (m Model) visibleAPIs() []state.APIDescriptor {
	if m.category == "" {
		return m.snapshot.APIs
	}
	var out []state.APIDescriptor
	for _, api := range m.snapshot.APIs {
		if p, ok := m.catalog.Lookup(api.ID); ok && p.Category == m.category {
			out = append(out, api)
		}
	}
	return out
}

// nextCategory cycles all, then each catalog category in order, then all.
func (m Model) nextCategory() string {
	cats := m.catalog.Categories()
	if m.category == "" {
		if len(cats) == 0 {
			return ""
		}
		return cats[0]
	}
	for i, c := range cats {
		if c == m.category && i+1 < len(cats) {
			return cats[i+1]
		}
	}
	return ""
}

func (m Model) hasCategory(name string) bool {
	if name == "" {
		return true
	}
	for _, c := range m.catalog.Categories() {
		if c == name {
			return true
		}
	}
	return false
}

// refresh re-reads the store and the health snapshot.
func (m *Model) refresh() {
	m.snapshot = m.store.Snapshot()
	m.theme = ThemeFor(m.snapshot.Theme)
	if m.health != nil {
		m.probe = m.health.Snapshot()
	}
}

func (m Model) selectedIndex() int {
	if m.snapshot.SelectedAPI == nil {
		return 0
	}
	for i, api := range m.visibleAPIs() {
		if api.ID == *m.snapshot.SelectedAPI {
			return i
		}
	}
	return 0
}

func (m *Model) clampCursor() {
	if n := len(m.visibleAPIs()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) bodyHeight() int {
	// Header and footer take one line each.
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) refetchHealth() tea.Cmd {
	if m.health == nil {
		return nil
	}
	h, ctx := m.health, m.ctx
	return func() tea.Msg {
		return refetchMsg{started: h.Refetch(ctx)}
	}
}

func (m Model) reloadCatalog() tea.Cmd {
	if m.source == nil {
		return nil
	}
	src, store, ctx := m.source, m.store, m.ctx
	return func() tea.Msg {
		store.SetLoading(true)
		defer store.SetLoading(false)
		c, err := src.Execute(ctx)
		return catalogMsg{catalog: c, err: err}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the UI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	opts.Context = ctx
	program := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
