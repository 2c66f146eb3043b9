// Package tracker keeps the local application list and form in step with the
// remote collection.
//
// Every write is pessimistic: the controller never inserts or removes a record
// locally. A successful create or delete is followed by a full refresh, and a
// failed one leaves the list exactly as it was.
package tracker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"jobmate/tracker/internal/application"
	"jobmate/tracker/internal/form"
	"jobmate/tracker/internal/recordstore"
)

// API is the remote collection. *apiclient.Client satisfies it.
type API interface {
	List(ctx context.Context) ([]application.Record, error)
	Create(ctx context.Context, p application.Payload) (application.Record, error)
	Delete(ctx context.Context, id application.ID) error
}

// ErrSubmitInFlight is returned by Submit while a previous submission has not
// resolved. No request is sent.
var ErrSubmitInFlight = errors.New("a submission is already in progress")

// State is a point-in-time snapshot for rendering.
type State struct {
	Records []application.Record
	Saving  bool
	// Loading is true while at least one refresh is outstanding.
	Loading bool
	// Loaded is true once any refresh has succeeded.
	Loaded bool
	Err    error
}

// ErrorMessage returns the inline error text, or "" when there is none.
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Controller is the only writer of the record store and of the saving/error
// flags. Methods block for one round trip (plus the refresh after a write)
// and may be called from several goroutines at once; responses then apply in
// arrival order.
type Controller struct {
	api        API
	store      *recordstore.Store
	log        *zap.Logger
	observers  []func(State)
	latestWins bool

	mu       sync.Mutex
	saving   bool
	err      error
	inflight int
	loaded   bool
	issued   uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithStore uses s instead of a fresh store.
func WithStore(s *recordstore.Store) Option {
	return func(c *Controller) { c.store = s }
}

// WithObserver registers fn to receive a snapshot after every state change.
// fn runs on the goroutine that made the change, under the controller lock:
// it must not block or call back into the Controller.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// WithLatestRefreshWins numbers each refresh and drops any response whose
// number is not the most recently issued one, so an older list can never
// overwrite a newer one. Off by default.
func WithLatestRefreshWins() Option {
	return func(c *Controller) { c.latestWins = true }
}

// New returns a Controller over api with an empty store.
func New(api API, opts ...Option) *Controller {
	c := &Controller{
		api: api,
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = recordstore.New()
	}
	return c
}

// Store returns the record store the controller writes to.
func (c *Controller) Store() *recordstore.Store { return c.store }

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	return State{
		Records: c.store.Current(),
		Saving:  c.saving,
		Loading: c.inflight > 0,
		Loaded:  c.loaded,
		Err:     c.err,
	}
}

// Refresh replaces the store with the server's list. On failure the store is
// left untouched and the error slot is set.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	gen := c.issued
	c.inflight++
	c.notifyLocked()
	c.mu.Unlock()

	records, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if c.latestWins && gen != c.issued {
		c.log.Debug("dropping stale refresh", zap.Uint64("generation", gen), zap.Uint64("latest", c.issued))
		c.notifyLocked()
		return nil
	}
	if err != nil {
		c.err = &OpError{Op: OpList, Err: err}
		c.log.Warn("refresh failed", zap.Error(err))
		c.notifyLocked()
		return c.err
	}

	c.store.ReplaceAll(records)
	c.loaded = true
	c.err = nil
	c.log.Debug("refreshed", zap.Int("records", len(records)))
	c.notifyLocked()
	return nil
}

// Submit sends the form's draft as a new record. On success the form is reset
// and the list refreshed; on failure the draft is left exactly as it was.
// The saving flag is cleared on every path, including a failed refresh.
func (c *Controller) Submit(ctx context.Context, f *form.Model) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.saving = true
	c.err = nil
	c.notifyLocked()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.saving = false
		c.notifyLocked()
		c.mu.Unlock()
	}()

	draft := f.Draft()
	created, err := c.api.Create(ctx, draft.Payload())
	if err != nil {
		return c.fail(OpCreate, err)
	}
	c.log.Info("application created", zap.String("id", string(created.ID)), zap.String("company", draft.Company))

	f.Reset()
	return c.Refresh(ctx)
}

// Remove deletes the record on the server, then refreshes. Nothing is
// removed locally before the server confirms.
func (c *Controller) Remove(ctx context.Context, id application.ID) error {
	c.mu.Lock()
	c.err = nil
	c.notifyLocked()
	c.mu.Unlock()

	if err := c.api.Delete(ctx, id); err != nil {
		return c.fail(OpDelete, err)
	}
	c.log.Info("application deleted", zap.String("id", string(id)))
	return c.Refresh(ctx)
}

func (c *Controller) fail(op Op, err error) error {
	opErr := &OpError{Op: op, Err: err}
	c.log.Warn(string(op)+" failed", zap.Error(err))

	c.mu.Lock()
	c.err = opErr
	c.notifyLocked()
	c.mu.Unlock()
	return opErr
}

func (c *Controller) notifyLocked() {
	if len(c.observers) == 0 {
		return
	}
	s := c.snapshotLocked()
	for _, fn := range c.observers {
		fn(s)
	}
}
