package resource

import (
	"context"
	"sync"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/log"
	"github.com/opsdeck/opsdeck/internal/notify"
)

// MutationFunc performs one create/update/delete request.
type MutationFunc func(ctx context.Context) error

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Coordinator wraps mutations for one list view. A successful mutation
// triggers exactly one refetch of the owning controller at its current
// page; a failed one leaves the list untouched. One mutation runs at a
// time; there is no automatic retry and no optimistic update.
type Coordinator[T any] struct {
	mu         sync.Mutex
	submitting bool

	controller *Controller[T]
	confirmer  Confirmer
	notifier   notify.Notifier
	logger     *log.Logger
	onSuccess  func()
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption[T any] func(*Coordinator[T])

// WithConfirmer sets the confirmation collaborator for deletes.
func WithConfirmer[T any](c Confirmer) CoordinatorOption[T] {
	return func(co *Coordinator[T]) { co.confirmer = c }
}

// WithMutationNotifier sets the notification sink for mutation outcomes.
func WithMutationNotifier[T any](n notify.Notifier) CoordinatorOption[T] {
	return func(co *Coordinator[T]) { co.notifier = n }
}

// WithMutationLogger sets the coordinator logger.
func WithMutationLogger[T any](logger *log.Logger) CoordinatorOption[T] {
	return func(co *Coordinator[T]) { co.logger = logger }
}

// WithOnSuccess registers the dialog/form collaborator signalled to
// close after a successful mutation.
func WithOnSuccess[T any](fn func()) CoordinatorOption[T] {
	return func(co *Coordinator[T]) { co.onSuccess = fn }
}

// NewCoordinator creates a coordinator owning mutations for controller.
func NewCoordinator[T any](controller *Controller[T], opts ...CoordinatorOption[T]) *Coordinator[T] {
	co := &Coordinator[T]{
		controller: controller,
		confirmer:  ConfirmerFunc(func(string) (bool, error) { return true, nil }),
		notifier:   notify.Discard{},
		logger:     log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(co)
	}

	return co
}

// Submit runs one create/update mutation. On success it emits one
// success notification, signals the form collaborator, and refetches
// the controller's current page.
func (co *Coordinator[T]) Submit(ctx context.Context, successMessage string, fn MutationFunc) error {
	return co.run(ctx, successMessage, fn)
}

// Delete runs one delete mutation after an explicit user confirmation.
// Without a confirmed affirmative the request is never issued.
func (co *Coordinator[T]) Delete(ctx context.Context, prompt, successMessage string, fn MutationFunc) error {
	confirmed, err := co.confirmer.Confirm(prompt)
	if err != nil {
		return err
	}
	if !confirmed {
		co.logger.Debug("delete cancelled by user")
		return nil
	}

	return co.run(ctx, successMessage, fn)
}

func (co *Coordinator[T]) run(ctx context.Context, successMessage string, fn MutationFunc) error {
	co.mu.Lock()
	if co.submitting {
		co.mu.Unlock()
		return errors.New(errors.ErrCodeAPIRejected, "another operation is still in progress")
	}
	co.submitting = true
	co.mu.Unlock()

	defer func() {
		co.mu.Lock()
		co.submitting = false
		co.mu.Unlock()
	}()

	if err := fn(ctx); err != nil {
		co.logger.WithError(err).Warn("mutation failed")
		co.notifier.Error(humanMessage(err))
		return err
	}

	co.notifier.Success(successMessage)
	if co.onSuccess != nil {
		co.onSuccess()
	}
	co.controller.Refresh(ctx)
	return nil
}
