package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
	"github.com/opsdeck/opsdeck/internal/session"
)

// stubScreen is a scriptable Screen recording the calls the model makes.
type stubScreen struct {
	route    guard.Route
	title    string
	rows     []Row
	current  int
	total    int
	sortKeys []string
	query    resource.Query
	actions  []Action

	refreshed  int
	sortedBy   []string
	searchedBy []string
	pagedTo    []int
	filteredBy []string
}

func (s *stubScreen) Route() guard.Route     { return s.route }
func (s *stubScreen) Title() string          { return s.title }
func (s *stubScreen) Columns() []string      { return []string{"Name"} }
func (s *stubScreen) Rows() []Row            { return s.rows }
func (s *stubScreen) Query() resource.Query  { return s.query }
func (s *stubScreen) Pagination() (int, int) { return s.current, s.total }
func (s *stubScreen) ErrorMessage() string   { return "" }
func (s *stubScreen) SortKeys() []string     { return s.sortKeys }

func (s *stubScreen) Refresh(context.Context) { s.refreshed++ }
func (s *stubScreen) SetSort(_ context.Context, key string) {
	s.sortedBy = append(s.sortedBy, key)
	s.query.SortKey = key
}
func (s *stubScreen) SetSearch(_ context.Context, search string) {
	s.searchedBy = append(s.searchedBy, search)
}
func (s *stubScreen) GoToPage(_ context.Context, n int) bool {
	if n < 1 || n > s.total {
		return false
	}
	s.pagedTo = append(s.pagedTo, n)
	s.current = n
	return true
}
func (s *stubScreen) RoleFilters() []string { return nil }
func (s *stubScreen) SetRoleFilter(_ context.Context, role string) {
	s.filteredBy = append(s.filteredBy, role)
}
func (s *stubScreen) Actions(Row) []Action { return s.actions }

type stubGateway struct {
	user model.User
}

func (g *stubGateway) Login(context.Context, api.Credentials) (api.LoginResult, error) {
	return api.LoginResult{Token: "tok", User: g.user}, nil
}
func (g *stubGateway) CurrentUser(context.Context) (model.User, error) { return g.user, nil }
func (g *stubGateway) SetToken(string)                                 {}
func (g *stubGateway) ClearToken()                                     {}

type memCreds struct {
	token string
}

func (m *memCreds) Get() (string, error) { return m.token, nil }
func (m *memCreds) Set(token string) error {
	m.token = token
	return nil
}
func (m *memCreds) Remove() error {
	m.token = ""
	return nil
}

func authedStore(t *testing.T, role model.Role) *session.Store {
	t.Helper()

	gw := &stubGateway{user: model.User{ID: "u1", Name: "Pat", Email: "pat@example.com", Role: role}}
	store := session.NewStore(gw, &memCreds{})
	if _, err := store.Login(context.Background(), "pat@example.com", "secret"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return store
}

func newTestModel(t *testing.T, screens ...Screen) (Model, *session.Store) {
	t.Helper()

	store := authedStore(t, model.RoleManager)
	m := NewModel(context.Background(), store, screens)
	m.ready = true
	return m, store
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd
	for _, key := range keys {
		var next tea.Model
		next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
		m = next.(Model)
	}
	return m, cmd
}

// TestNewModel tests model initialization
func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t, &stubScreen{title: "Orders", total: 1, current: 1})

	if m.view != ViewDashboard {
		t.Errorf("Expected ViewDashboard, got %v", m.view)
	}

	if m.activeTab != 0 {
		t.Errorf("Expected dashboard tab, got %d", m.activeTab)
	}

	if m.quitting {
		t.Error("Expected quitting to be false by default")
	}
}

// TestInitRefreshesAllScreens tests the initial fetch fan-out
func TestInitRefreshesAllScreens(t *testing.T) {
	first := &stubScreen{title: "Team", total: 1, current: 1}
	second := &stubScreen{title: "Products", total: 1, current: 1}
	m, _ := newTestModel(t, first, second)

	m.Init()

	if first.refreshed != 1 || second.refreshed != 1 {
		t.Errorf("Expected one refresh per screen, got %d and %d", first.refreshed, second.refreshed)
	}
}

// TestTabSwitching tests moving between dashboard and screens
func TestTabSwitching(t *testing.T) {
	screen := &stubScreen{title: "Products", total: 1, current: 1}
	m, _ := newTestModel(t, screen)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	if m.activeTab != 1 {
		t.Errorf("Expected tab 1, got %d", m.activeTab)
	}
	if m.view != ViewList {
		t.Errorf("Expected ViewList, got %v", m.view)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	if m.activeTab != 0 {
		t.Errorf("Expected wrap back to dashboard, got tab %d", m.activeTab)
	}
	if m.view != ViewDashboard {
		t.Errorf("Expected ViewDashboard, got %v", m.view)
	}
}

// TestNumericTabJump tests jumping straight to a screen by number
func TestNumericTabJump(t *testing.T) {
	screen := &stubScreen{title: "Products", total: 1, current: 1}
	m, _ := newTestModel(t, screen)

	m, _ = press(t, m, "1")

	if m.activeTab != 1 {
		t.Errorf("Expected tab 1, got %d", m.activeTab)
	}

	// Out-of-range numbers are ignored.
	m, _ = press(t, m, "7")

	if m.activeTab != 1 {
		t.Errorf("Expected tab unchanged, got %d", m.activeTab)
	}
}

// TestSelectionMovement tests cursor bounds on the active list
func TestSelectionMovement(t *testing.T) {
	screen := &stubScreen{
		title:   "Team",
		total:   1,
		current: 1,
		rows: []Row{
			{ID: "a", Cells: []string{"Alice"}},
			{ID: "b", Cells: []string{"Bob"}},
		},
	}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	m, _ = press(t, m, "k")
	if m.selected != 0 {
		t.Errorf("Expected selection pinned at 0, got %d", m.selected)
	}

	m, _ = press(t, m, "j", "j", "j")
	if m.selected != 1 {
		t.Errorf("Expected selection pinned at last row, got %d", m.selected)
	}
}

// TestPaginationKeys tests next/previous page requests
func TestPaginationKeys(t *testing.T) {
	screen := &stubScreen{title: "Orders", total: 3, current: 1}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	m, _ = press(t, m, "n")
	if len(screen.pagedTo) != 1 || screen.pagedTo[0] != 2 {
		t.Errorf("Expected page request for 2, got %v", screen.pagedTo)
	}

	m, _ = press(t, m, "p")
	if len(screen.pagedTo) != 2 || screen.pagedTo[1] != 1 {
		t.Errorf("Expected page request for 1, got %v", screen.pagedTo)
	}

	// Page 0 is out of range; the screen rejects it.
	_, _ = press(t, m, "p")
	if len(screen.pagedTo) != 2 {
		t.Errorf("Expected no further page requests, got %v", screen.pagedTo)
	}
}

// TestSortCycling tests advancing through the screen's sort keys
func TestSortCycling(t *testing.T) {
	screen := &stubScreen{
		title:    "Team",
		total:    1,
		current:  1,
		sortKeys: []string{"name", "email"},
		query:    resource.Query{SortKey: "name"},
	}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	m, _ = press(t, m, "s")
	if len(screen.sortedBy) != 1 || screen.sortedBy[0] != "email" {
		t.Errorf("Expected sort by email, got %v", screen.sortedBy)
	}

	_, _ = press(t, m, "s")
	if len(screen.sortedBy) != 2 || screen.sortedBy[1] != "name" {
		t.Errorf("Expected cycle back to name, got %v", screen.sortedBy)
	}
}

// TestSearchOverlay tests the search input flow
func TestSearchOverlay(t *testing.T) {
	screen := &stubScreen{title: "Team", total: 1, current: 1}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	m, _ = press(t, m, "/")
	if m.view != ViewSearch {
		t.Fatalf("Expected ViewSearch, got %v", m.view)
	}

	m, _ = press(t, m, "a", "l")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if m.view != ViewList {
		t.Errorf("Expected return to ViewList, got %v", m.view)
	}
	if len(screen.searchedBy) != 1 || screen.searchedBy[0] != "al" {
		t.Errorf("Expected search for 'al', got %v", screen.searchedBy)
	}
	if m.selected != 0 {
		t.Errorf("Expected selection reset, got %d", m.selected)
	}
}

// TestSearchEscapeCancels tests that escape abandons the search edit
func TestSearchEscapeCancels(t *testing.T) {
	screen := &stubScreen{title: "Team", total: 1, current: 1}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1", "/")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)

	if m.view != ViewList {
		t.Errorf("Expected ViewList, got %v", m.view)
	}
	if len(screen.searchedBy) != 0 {
		t.Errorf("Expected no search issued, got %v", screen.searchedBy)
	}
}

// TestConfirmFlow tests the yes/no view answering a blocked mutation
func TestConfirmFlow(t *testing.T) {
	screen := &stubScreen{
		title:   "Team",
		total:   1,
		current: 1,
		rows:    []Row{{ID: "a", Cells: []string{"Alice"}}},
	}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	reply := make(chan bool, 1)
	next, _ := m.Update(ConfirmRequestMsg{Prompt: "Remove Alice?", Reply: reply})
	m = next.(Model)

	if m.view != ViewConfirm {
		t.Fatalf("Expected ViewConfirm, got %v", m.view)
	}
	select {
	case <-reply:
		t.Fatal("Expected no answer before a keypress")
	default:
	}

	// Declining releases the waiting mutation with a no.
	m, _ = press(t, m, "n")
	if m.view != ViewList {
		t.Errorf("Expected ViewList, got %v", m.view)
	}
	if <-reply {
		t.Error("Expected declined confirmation to answer false")
	}

	reply = make(chan bool, 1)
	next, _ = m.Update(ConfirmRequestMsg{Prompt: "Remove Alice?", Reply: reply})
	m = next.(Model)

	m, _ = press(t, m, "y")
	if !<-reply {
		t.Error("Expected confirmed affirmative to answer true")
	}
	if m.view != ViewList {
		t.Errorf("Expected ViewList after confirmation, got %v", m.view)
	}
}

// TestConcurrentConfirmDenied tests that a second confirmation request
// arriving while one is pending is answered no immediately
func TestConcurrentConfirmDenied(t *testing.T) {
	screen := &stubScreen{title: "Team", total: 1, current: 1}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	first := make(chan bool, 1)
	next, _ := m.Update(ConfirmRequestMsg{Prompt: "first?", Reply: first})
	m = next.(Model)

	second := make(chan bool, 1)
	next, _ = m.Update(ConfirmRequestMsg{Prompt: "second?", Reply: second})
	m = next.(Model)

	if <-second {
		t.Error("Expected the overlapping request to be denied")
	}

	m, _ = press(t, m, "y")
	if !<-first {
		t.Error("Expected the original request to keep its answer")
	}
}

// TestQuitDeclinesPendingConfirm tests that exiting answers a pending
// confirmation with no instead of leaving the mutation blocked
func TestQuitDeclinesPendingConfirm(t *testing.T) {
	screen := &stubScreen{title: "Team", total: 1, current: 1}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	reply := make(chan bool, 1)
	next, _ := m.Update(ConfirmRequestMsg{Prompt: "Remove Alice?", Reply: reply})
	m = next.(Model)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)

	if !m.quitting {
		t.Error("Expected ctrl+c to quit")
	}
	if <-reply {
		t.Error("Expected pending confirmation declined on quit")
	}
}

// TestActionKeyRunsSelectedRowAction tests dispatching a row action
func TestActionKeyRunsSelectedRowAction(t *testing.T) {
	ran := 0
	screen := &stubScreen{
		title:   "Orders",
		total:   1,
		current: 1,
		rows:    []Row{{ID: "o1", Cells: []string{"Ada"}}},
	}
	screen.actions = []Action{{
		Key:   "d",
		Label: "deliver",
		Run: func(context.Context) error {
			ran++
			return nil
		},
	}}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	_, cmd := press(t, m, "d")
	if cmd == nil {
		t.Fatal("Expected a command carrying the action")
	}

	msg := cmd()
	done, ok := msg.(ActionDoneMsg)
	if !ok {
		t.Fatalf("Expected ActionDoneMsg, got %T", msg)
	}
	if done.Err != nil {
		t.Errorf("Expected no error, got %v", done.Err)
	}
	if ran != 1 {
		t.Errorf("Expected one run, got %d", ran)
	}
}

// TestForcedLogoutQuits tests that losing the session ends the program
func TestForcedLogoutQuits(t *testing.T) {
	screen := &stubScreen{title: "Team", total: 1, current: 1}
	m, store := newTestModel(t, screen)

	store.Logout()
	next, cmd := m.Update(SessionChangedMsg{})
	m = next.(Model)

	if !m.quitting {
		t.Error("Expected model to quit on forced logout")
	}
	if cmd == nil {
		t.Fatal("Expected tea.Quit command")
	}

	view := m.View()
	if !strings.Contains(view, "auth login") {
		t.Errorf("Expected goodbye view to point at login, got %q", view)
	}
}

// TestListChangedClampsSelection tests cursor reset after a shrinking fetch
func TestListChangedClampsSelection(t *testing.T) {
	screen := &stubScreen{
		title:   "Team",
		total:   1,
		current: 1,
		rows: []Row{
			{ID: "a", Cells: []string{"Alice"}},
			{ID: "b", Cells: []string{"Bob"}},
		},
	}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1", "j")

	screen.rows = screen.rows[:1]
	next, _ := m.Update(ListChangedMsg{Route: guard.RouteTeam})
	m = next.(Model)

	if m.selected != 0 {
		t.Errorf("Expected selection clamped to 0, got %d", m.selected)
	}
}

// TestListViewRendersRows tests the list rendering
func TestListViewRendersRows(t *testing.T) {
	screen := &stubScreen{
		title:   "Products",
		total:   2,
		current: 1,
		rows:    []Row{{ID: "p1", Cells: []string{"Widget"}}},
	}
	m, _ := newTestModel(t, screen)
	m, _ = press(t, m, "1")

	view := m.View()

	if !strings.Contains(view, "Widget") {
		t.Errorf("Expected row content in view, got %q", view)
	}
	if !strings.Contains(view, "Page 1 of 2") {
		t.Errorf("Expected pagination footer, got %q", view)
	}
}

// TestLoadingSpinnerTracksFetches tests the in-flight indicator
func TestLoadingSpinnerTracksFetches(t *testing.T) {
	screen := &stubScreen{title: "Team", total: 1, current: 1}
	m, _ := newTestModel(t, screen)
	m.loading = false
	m, _ = press(t, m, "1")

	m, cmd := press(t, m, "r")
	if !m.loading {
		t.Error("Expected loading after refresh")
	}
	if cmd == nil {
		t.Error("Expected spinner tick command")
	}

	next, _ := m.Update(ListChangedMsg{Route: guard.RouteTeam})
	m = next.(Model)

	if m.loading {
		t.Error("Expected loading cleared after applied fetch")
	}
}

// TestHelpToggle tests opening and closing the help screen
func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, &stubScreen{title: "Team", total: 1, current: 1})

	m, _ = press(t, m, "?")
	if m.view != ViewHelp {
		t.Errorf("Expected ViewHelp, got %v", m.view)
	}

	m, _ = press(t, m, "?")
	if m.view != ViewDashboard {
		t.Errorf("Expected ViewDashboard, got %v", m.view)
	}
}
