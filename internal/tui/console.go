package tui

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/session"
)

// ViewType represents the current view being displayed
type ViewType int

// View type constants
const (
	// ViewDashboard is the landing view with the signed-in profile
	ViewDashboard ViewType = iota
	// ViewList shows the active resource screen
	ViewList
	// ViewSearch overlays a search input on the list
	ViewSearch
	// ViewConfirm is the yes/no prompt before a destructive action
	ViewConfirm
	// ViewHelp is the help screen
	ViewHelp
)

// Model is the console application state. Screens are attached only
// for routes the signed-in role is allowed to open, so a denied route
// simply has no tab.
type Model struct {
	// Session state
	session session.Session
	store   *session.Store

	// Screens, one per permitted route
	screens   []Screen
	activeTab int // 0 = dashboard, 1..len(screens) = screens
	selected  int

	// Search overlay state
	searchInput textinput.Model

	// Fetch-in-flight state
	spinner spinner.Model
	loading bool

	// Pending coordinator confirmation, answered through pendingReply
	pendingPrompt string
	pendingReply  chan<- bool

	// UI state
	width    int
	height   int
	ready    bool
	quitting bool
	view     ViewType

	// Error state
	lastError string

	ctx    context.Context
	styles Styles
}

// NewModel creates the console model for the given session and the
// screens its role may open.
func NewModel(ctx context.Context, store *session.Store, screens []Screen) Model {
	search := textinput.New()
	search.Placeholder = "name or email"
	search.CharLimit = 64

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		session:     store.Snapshot(),
		store:       store,
		screens:     screens,
		searchInput: search,
		spinner:     spin,
		loading:     len(screens) > 0,
		view:        ViewDashboard,
		ctx:         ctx,
		styles:      DefaultStyles(),
	}
}

// Init issues the first fetch for every screen (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	for _, s := range m.screens {
		s.Refresh(m.ctx)
	}
	return m.spinner.Tick
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case ListChangedMsg:
		m.loading = false
		m.clampSelection()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ConfirmRequestMsg:
		if m.pendingReply != nil {
			// One confirmation at a time; deny the newcomer.
			msg.Reply <- false
			return m, nil
		}
		m.pendingPrompt = msg.Prompt
		m.pendingReply = msg.Reply
		m.view = ViewConfirm
		return m, nil

	case SessionChangedMsg:
		m.session = m.store.Snapshot()
		if !m.session.IsAuthenticated {
			m.declinePending()
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case ActionDoneMsg:
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		} else {
			m.lastError = ""
		}
		return m, nil
	}

	return m, nil
}

// View renders the console (required by Bubble Tea)
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.quitting {
		return m.renderGoodbye()
	}

	switch m.view {
	case ViewDashboard:
		return m.renderDashboard()
	case ViewList, ViewSearch:
		return m.renderList()
	case ViewConfirm:
		return m.renderConfirm()
	case ViewHelp:
		return m.renderHelp()
	default:
		return "Unknown view"
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits
	if msg.String() == "ctrl+c" {
		m.declinePending()
		m.quitting = true
		return m, tea.Quit
	}

	if m.view == ViewSearch {
		return m.handleSearchKey(msg)
	}

	if m.view == ViewConfirm {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		if m.view == ViewHelp {
			m.view = m.listOrDashboard()
		} else {
			m.view = ViewHelp
		}
		return m, nil

	case "tab":
		m.activeTab = (m.activeTab + 1) % (len(m.screens) + 1)
		m.selected = 0
		m.view = m.listOrDashboard()
		return m, nil

	case "shift+tab":
		m.activeTab = (m.activeTab + len(m.screens)) % (len(m.screens) + 1)
		m.selected = 0
		m.view = m.listOrDashboard()
		return m, nil

	case "esc":
		m.activeTab = 0
		m.view = ViewDashboard
		return m, nil
	}

	// Numeric tab jumps: 0 is the dashboard, 1..n the screens.
	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 0 && n <= len(m.screens) {
		m.activeTab = n
		m.selected = 0
		m.view = m.listOrDashboard()
		return m, nil
	}

	if m.view != ViewList {
		return m, nil
	}

	screen := m.activeScreen()
	if screen == nil {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(screen.Rows())-1 {
			m.selected++
		}

	case "left", "p":
		current, _ := screen.Pagination()
		if screen.GoToPage(m.ctx, current-1) {
			return m.withLoading()
		}

	case "right", "n":
		current, _ := screen.Pagination()
		if screen.GoToPage(m.ctx, current+1) {
			return m.withLoading()
		}

	case "s":
		if m.cycleSort(screen) {
			return m.withLoading()
		}

	case "/":
		m.searchInput.SetValue(screen.Query().Search)
		m.searchInput.Focus()
		m.view = ViewSearch
		return m, textinput.Blink

	case "f":
		if m.cycleRoleFilter(screen) {
			return m.withLoading()
		}

	case "r":
		screen.Refresh(m.ctx)
		return m.withLoading()

	default:
		return m.handleActionKey(screen, msg.String())
	}

	return m, nil
}

// handleActionKey dispatches row action keys on the selected row.
func (m Model) handleActionKey(screen Screen, key string) (tea.Model, tea.Cmd) {
	rows := screen.Rows()
	if m.selected >= len(rows) {
		return m, nil
	}

	for _, action := range screen.Actions(rows[m.selected]) {
		if action.Key == key {
			return m, m.runAction(action)
		}
	}

	return m, nil
}

// handleConfirmKey answers the coordinator waiting on the pending
// confirmation.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		m.resolvePending(true)
		m.view = ViewList

	case "n", "esc":
		m.resolvePending(false)
		m.view = ViewList
	}

	return m, nil
}

// resolvePending delivers the user's answer to the blocked mutation.
func (m *Model) resolvePending(answer bool) {
	if m.pendingReply != nil {
		m.pendingReply <- answer
	}
	m.pendingReply = nil
	m.pendingPrompt = ""
}

// declinePending answers an unresolved confirmation with no, so the
// waiting mutation goroutine is released before the program exits.
func (m *Model) declinePending() {
	m.resolvePending(false)
}

// handleSearchKey edits the search overlay
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if screen := m.activeScreen(); screen != nil {
			screen.SetSearch(m.ctx, m.searchInput.Value())
		}
		m.selected = 0
		m.view = ViewList
		return m.withLoading()

	case "esc":
		m.view = ViewList
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// runAction executes a row action off the update loop.
func (m Model) runAction(action Action) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return ActionDoneMsg{Err: action.Run(ctx)}
	}
}

// withLoading marks a fetch in flight and keeps the spinner ticking.
func (m Model) withLoading() (tea.Model, tea.Cmd) {
	m.loading = true
	return m, m.spinner.Tick
}

// cycleSort advances to the next sort key, flipping the order when the
// cycle wraps back to the active key. Reports whether a fetch was issued.
func (m Model) cycleSort(screen Screen) bool {
	keys := screen.SortKeys()
	if len(keys) == 0 {
		return false
	}

	q := screen.Query()
	next := keys[0]
	for i, key := range keys {
		if key == q.SortKey {
			next = keys[(i+1)%len(keys)]
			break
		}
	}
	screen.SetSort(m.ctx, next)
	return true
}

// cycleRoleFilter advances through the screen's role filters, if any.
// Reports whether a fetch was issued.
func (m *Model) cycleRoleFilter(screen Screen) bool {
	filters := screen.RoleFilters()
	if len(filters) == 0 {
		return false
	}

	q := screen.Query()
	current := q.RoleFilter
	if current == "" {
		current = filters[0]
	}

	next := filters[0]
	for i, f := range filters {
		if f == current {
			next = filters[(i+1)%len(filters)]
			break
		}
	}
	m.selected = 0
	screen.SetRoleFilter(m.ctx, next)
	return true
}

// activeScreen returns the screen behind the active tab, or nil on the
// dashboard tab.
func (m Model) activeScreen() Screen {
	if m.activeTab == 0 || m.activeTab > len(m.screens) {
		return nil
	}
	return m.screens[m.activeTab-1]
}

func (m Model) listOrDashboard() ViewType {
	if m.activeTab == 0 {
		return ViewDashboard
	}
	return ViewList
}

// clampSelection keeps the cursor inside the freshly applied page.
func (m *Model) clampSelection() {
	screen := m.activeScreen()
	if screen == nil {
		return
	}
	if rows := screen.Rows(); m.selected >= len(rows) {
		m.selected = 0
	}
}

// Custom messages for console events

// ListChangedMsg indicates a controller applied a fetch completion
type ListChangedMsg struct {
	Route guard.Route
}

// ConfirmRequestMsg asks the user to approve a destructive mutation.
// The coordinator's goroutine blocks on Reply, which must be buffered.
type ConfirmRequestMsg struct {
	Prompt string
	Reply  chan<- bool
}

// SessionChangedMsg indicates the session store changed state
type SessionChangedMsg struct{}

// ActionDoneMsg carries the outcome of a row action
type ActionDoneMsg struct {
	Err error
}
