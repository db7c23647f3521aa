package resource

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/opsdeck/opsdeck/internal/errors"
	"github.com/opsdeck/opsdeck/internal/log"
	"github.com/opsdeck/opsdeck/internal/notify"
)

// Controller owns the query state and fetch protocol for one list view.
//
// Fetch completions arrive asynchronously. Each fetch is tagged with a
// generation at issue time; a completion only applies while its
// generation is still the latest issued, so a late response can never
// overwrite a page rendered from a newer request.
type Controller[T any] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	notifier notify.Notifier
	logger   *log.Logger
	onChange func()

	query Query
	page  Page[T]
	gen   uint64
}

// ControllerOption configures a Controller.
type ControllerOption[T any] func(*Controller[T])

// WithNotifier sets the notification sink for fetch failures.
func WithNotifier[T any](n notify.Notifier) ControllerOption[T] {
	return func(c *Controller[T]) { c.notifier = n }
}

// WithLogger sets the controller logger.
func WithLogger[T any](logger *log.Logger) ControllerOption[T] {
	return func(c *Controller[T]) { c.logger = logger }
}

// WithOnChange registers a hook invoked after every applied completion.
// The view layer uses it to schedule a re-render.
func WithOnChange[T any](fn func()) ControllerOption[T] {
	return func(c *Controller[T]) { c.onChange = fn }
}

// NewController creates a controller with the given fetch function and
// default sort key. The first fetch is issued by Refresh.
func NewController[T any](fetch FetchFunc[T], defaultSortKey string, opts ...ControllerOption[T]) *Controller[T] {
	c := &Controller[T]{
		fetch:    fetch,
		notifier: notify.Discard{},
		logger:   log.DefaultLogger(),
		query: Query{
			Page:      1,
			SortKey:   defaultSortKey,
			SortOrder: SortAsc,
		},
		page: Page[T]{CurrentPage: 1, TotalPages: 1},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Snapshot returns the current query and last applied page.
func (c *Controller[T]) Snapshot() (Query, Page[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query, c.page
}

// Refresh refetches the current page with the current query.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refetchLocked(ctx, c.query.Page)
}

// SetSort sorts by key. Sorting by the current key flips the order and
// refetches the current page; a new key resets to ascending at page 1.
func (c *Controller[T]) SetSort(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.query.SortKey == key {
		c.query.SortOrder = c.query.SortOrder.Flip()
		c.refetchLocked(ctx, c.query.Page)
		return
	}

	c.query.SortKey = key
	c.query.SortOrder = SortAsc
	c.refetchLocked(ctx, 1)
}

// SetSearch updates the search query and refetches from page 1.
func (c *Controller[T]) SetSearch(ctx context.Context, search string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.Search = search
	c.refetchLocked(ctx, 1)
}

// SetRoleFilter updates the role filter and refetches from page 1.
func (c *Controller[T]) SetRoleFilter(ctx context.Context, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query.RoleFilter = role
	c.refetchLocked(ctx, 1)
}

// GoToPage fetches page n, leaving sort and search untouched.
// Out-of-range pages are a no-op. Returns whether a fetch was issued.
func (c *Controller[T]) GoToPage(ctx context.Context, n int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 1 || n > c.page.TotalPages {
		return false
	}

	c.refetchLocked(ctx, n)
	return true
}

// refetchLocked issues one tagged fetch. Callers must hold mu.
func (c *Controller[T]) refetchLocked(ctx context.Context, pageNum int) {
	c.gen++
	gen := c.gen

	q := c.query
	q.Page = pageNum

	go func() {
		res, err := c.fetch(ctx, q)
		c.apply(ctx, gen, pageNum, res, err)
	}()
}

// apply installs a fetch completion, discarding it when a newer fetch
// has been issued since.
func (c *Controller[T]) apply(ctx context.Context, gen uint64, pageNum int, res Page[T], err error) {
	c.mu.Lock()

	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale fetch result", "generation", gen, "page", pageNum)
		return
	}

	if err != nil {
		message := humanMessage(err)
		c.page = Page[T]{
			Items:       nil,
			CurrentPage: c.page.CurrentPage,
			TotalPages:  1,
			Error:       message,
		}
		onChange := c.onChange
		c.mu.Unlock()

		c.logger.WithError(err).Warn("fetch failed", "page", pageNum)
		c.notifier.Error(message)
		if onChange != nil {
			onChange()
		}
		return
	}

	if res.TotalPages < 1 {
		res.TotalPages = 1
	}

	// A mutation can shrink the list under us; a successful fetch beyond
	// the last page clamps to the reported last page with one follow-up.
	if pageNum > res.TotalPages {
		c.refetchLocked(ctx, res.TotalPages)
		c.mu.Unlock()
		return
	}

	res.CurrentPage = pageNum
	res.Error = ""
	c.page = res
	c.query.Page = pageNum
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// humanMessage unwraps the short user-facing message from a classified
// error, falling back to the raw error text.
func humanMessage(err error) string {
	var oe *errors.OpsdeckError
	if stderrors.As(err, &oe) {
		return oe.Message
	}
	return err.Error()
}
