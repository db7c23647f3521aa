package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/log"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/resource"
	"github.com/opsdeck/opsdeck/internal/session"
)

// Adapter bridges the session store and list controllers to the
// running Bubble Tea program. Controller completions and session
// transitions arrive on their own goroutines; the adapter forwards them
// as messages so all model updates happen on the program loop.
type Adapter struct {
	mu      sync.Mutex
	program *tea.Program

	client *api.Client
	store  *session.Store
	logger *log.Logger
}

// NewAdapter creates the console adapter.
func NewAdapter(client *api.Client, store *session.Store, logger *log.Logger) *Adapter {
	return &Adapter{
		client: client,
		store:  store,
		logger: logger,
	}
}

// Run builds the permitted screens for the signed-in role and runs the
// console until quit or forced logout.
func (a *Adapter) Run(ctx context.Context) error {
	sess := a.store.Snapshot()
	if !sess.IsAuthenticated {
		return errors.New(errors.ErrCodeAuthRequired, "not signed in")
	}

	screens := a.buildScreens(sess)
	m := NewModel(ctx, a.store, screens)

	program := tea.NewProgram(m, tea.WithContext(ctx))
	a.mu.Lock()
	a.program = program
	a.mu.Unlock()

	if _, err := program.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeTerminal, "console terminated", err)
	}
	return nil
}

// NotifySessionChanged forwards a session transition to the program.
// Registered as the store's change hook before Run starts.
func (a *Adapter) NotifySessionChanged() {
	a.send(SessionChangedMsg{})
}

// buildScreens attaches one screen per route the role may open, in the
// route matrix's order.
func (a *Adapter) buildScreens(sess session.Session) []Screen {
	var screens []Screen
	for _, route := range guard.Routes() {
		if guard.EvaluateRoute(sess, route) != guard.DecisionAllow {
			continue
		}

		confirm := resource.ConfirmerFunc(a.confirm)

		switch route {
		case guard.RouteTeam:
			screens = append(screens, NewTeamScreen(a.client, sess, confirm,
				a.userOptions(route)...))
		case guard.RouteProducts:
			screens = append(screens, NewProductScreen(a.client, sess, confirm,
				a.productOptions(route)...))
		case guard.RouteOrders:
			screens = append(screens, NewOrderScreen(a.client, sess, confirm,
				a.orderOptions(route)...))
		}
	}
	return screens
}

func (a *Adapter) userOptions(route guard.Route) []resource.ControllerOption[model.User] {
	return []resource.ControllerOption[model.User]{
		resource.WithLogger[model.User](a.logger),
		resource.WithOnChange[model.User](a.listChanged(route)),
	}
}

func (a *Adapter) productOptions(route guard.Route) []resource.ControllerOption[model.Product] {
	return []resource.ControllerOption[model.Product]{
		resource.WithLogger[model.Product](a.logger),
		resource.WithOnChange[model.Product](a.listChanged(route)),
	}
}

func (a *Adapter) orderOptions(route guard.Route) []resource.ControllerOption[model.Order] {
	return []resource.ControllerOption[model.Order]{
		resource.WithLogger[model.Order](a.logger),
		resource.WithOnChange[model.Order](a.listChanged(route)),
	}
}

func (a *Adapter) listChanged(route guard.Route) func() {
	return func() {
		a.send(ListChangedMsg{Route: route})
	}
}

// confirm routes a coordinator confirmation request to the console's
// yes/no view and blocks until the user answers. Runs on the mutation
// goroutine, never on the program loop. Denies when the program is not
// running.
func (a *Adapter) confirm(prompt string) (bool, error) {
	reply := make(chan bool, 1)
	if !a.send(ConfirmRequestMsg{Prompt: prompt, Reply: reply}) {
		return false, nil
	}
	return <-reply, nil
}

// send forwards a message to the program, dropping it when the program
// has not started or has already exited. Reports whether the message
// was delivered.
func (a *Adapter) send(msg tea.Msg) bool {
	a.mu.Lock()
	program := a.program
	a.mu.Unlock()

	if program == nil {
		return false
	}
	program.Send(msg)
	return true
}
