package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/credential"
	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/guard"
	"github.com/opsdeck/opsdeck/internal/log"
	"github.com/opsdeck/opsdeck/internal/model"
	"github.com/opsdeck/opsdeck/internal/notify"
	"github.com/opsdeck/opsdeck/internal/session"
)

// app holds the wired collaborators every command works against.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	creds    credential.Store
	client   *api.Client
	store    *session.Store
	notifier notify.Notifier
}

// newApp loads config, builds the API client and session store, and
// wires the forced-logout side channel from the client into the store.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(config.Dir())
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, &cfg)

	logger := log.New(log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: log.OutputStderr(),
	})
	log.SetDefaultLogger(logger)

	creds := credential.NewFileStore(config.Dir())
	client := api.NewClient(cfg.APIURL, api.WithLogger(logger))
	store := session.NewStore(client, creds, session.WithLogger(logger))
	client.OnAuthFailure(store.ForceInvalidate)

	return &app{
		cfg:      cfg,
		logger:   logger,
		creds:    creds,
		client:   client,
		store:    store,
		notifier: notify.NewTerminal(os.Stderr),
	}, nil
}

// applyFlags overlays any explicitly set persistent flags on the
// loaded config, so flags win over file and environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
}

// bootstrap restores the persisted session and verifies it against the
// API. Commands that need an authenticated session call this first.
func (a *app) bootstrap(ctx context.Context) error {
	return a.store.Bootstrap(ctx)
}

// requireSession bootstraps and fails when no valid session remains.
func (a *app) requireSession(ctx context.Context) error {
	if err := a.bootstrap(ctx); err != nil {
		return err
	}

	if sess := a.store.Snapshot(); !sess.IsAuthenticated {
		return errNotSignedIn()
	}
	return nil
}

// requireRoute additionally applies the role capability matrix for the
// given screen's route.
func (a *app) requireRoute(ctx context.Context, route guard.Route) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	sess := a.store.Snapshot()
	if guard.EvaluateRoute(sess, route) != guard.DecisionAllow {
		return errors.New(errors.ErrCodeAuthRejected,
			fmt.Sprintf("role %s is not permitted to use %s", sess.User.Role, route))
	}
	return nil
}

// requireAdmin gates the team mutations, which the server only accepts
// from Admins.
func (a *app) requireAdmin(ctx context.Context) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	sess := a.store.Snapshot()
	if sess.User == nil || sess.User.Role != model.RoleAdmin {
		return errors.New(errors.ErrCodeAuthRejected, "only Admins may manage team members")
	}
	return nil
}

// requireManager gates the order status transitions. Employees take
// orders but only Managers move them through their lifecycle.
func (a *app) requireManager(ctx context.Context) error {
	if err := a.requireRoute(ctx, guard.RouteOrders); err != nil {
		return err
	}

	sess := a.store.Snapshot()
	if sess.User == nil || sess.User.Role != model.RoleManager {
		return errors.New(errors.ErrCodeAuthRejected, "only Managers may change an order's status")
	}
	return nil
}

// requireProductEditor gates the catalog mutations, which Employees
// may only browse.
func (a *app) requireProductEditor(ctx context.Context) error {
	if err := a.requireRoute(ctx, guard.RouteProducts); err != nil {
		return err
	}

	sess := a.store.Snapshot()
	if sess.User == nil || sess.User.Role == model.RoleEmployee {
		return errors.New(errors.ErrCodeAuthRejected, "Employees may browse the catalog but not change it")
	}
	return nil
}
