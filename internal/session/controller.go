package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
)

// Op names an operation guarded by a loading flag.
type Op string

const (
	OpAdd         Op = "add"
	OpRefresh     Op = "refresh"
	OpCredentials Op = "credentials"
	OpImport      Op = "url-import"
)

// Controller owns the tracking session state. It is safe for concurrent use; remote calls
// are made without holding the lock, and each reload replaces the list wholesale.
type Controller struct {
	deps   Deps
	logger *log.Logger

	mu           sync.Mutex
	identity     *models.Identity
	tracks       []models.TrackedItem
	interval     models.RefreshInterval
	busy         map[Op]bool
	stopPoll     func()
	pollInterval models.RefreshInterval
	closed       bool
	stopped      chan struct{}

	pollCtx    context.Context
	cancelPoll context.CancelFunc
}

// New creates a controller with the given collaborators. interval is used until a stored one is loaded by [Controller.Start].
func New(deps Deps, interval models.RefreshInterval, logger *log.Logger) *Controller {
	if deps.Scheduler == nil {
		deps.Scheduler = TickerScheduler{}
	}
	if deps.Notifier == nil {
		deps.Notifier = NotifierFunc(func(*models.Notification) {})
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if interval.Validate() != nil {
		interval = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		deps:       deps,
		logger:     logger,
		interval:   interval,
		busy:       map[Op]bool{},
		stopped:    make(chan struct{}, 1),
		pollCtx:    ctx,
		cancelPoll: cancel,
	}
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Identity *models.Identity
	Tracks   []models.TrackedItem
	Interval models.RefreshInterval
	Busy     map[Op]bool
	Polling  bool
}

// Snapshot returns a copy of the whole state taken under one lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var identity *models.Identity
	if c.identity != nil {
		id := *c.identity
		identity = &id
	}
	return Snapshot{
		Identity: identity,
		Tracks:   slices.Clone(c.tracks),
		Interval: c.interval,
		Busy:     maps.Clone(c.busy),
		Polling:  c.stopPoll != nil,
	}
}

// Tracks returns a copy of the cached tracked items.
func (c *Controller) Tracks() []models.TrackedItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tracks)
}

// History returns the tracked items auto-purchase has bought.
func (c *Controller) History() []models.TrackedItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	var bought []models.TrackedItem
	for _, t := range c.tracks {
		if t.Purchased() {
			bought = append(bought, t)
		}
	}
	return bought
}

// Identity returns the signed-in identity, or nil.
func (c *Controller) Identity() *models.Identity {
	return c.Snapshot().Identity
}

// Interval returns the refresh interval in minutes.
func (c *Controller) Interval() models.RefreshInterval {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Busy reports whether op is in flight.
func (c *Controller) Busy(op Op) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy[op]
}

// Polling reports whether the refresh task is armed.
func (c *Controller) Polling() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopPoll != nil
}

// begin sets the loading flag for op, failing when it is already set.
func (c *Controller) begin(op Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[op] {
		return fmt.Errorf("%w: %s", shared.ErrBusy, op)
	}
	c.busy[op] = true
	return nil
}

func (c *Controller) end(op Op) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.busy, op)
}

// steamID returns the signed-in account id, or "".
func (c *Controller) steamID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return ""
	}
	return c.identity.SteamID
}

// requireIdentity returns the account id or reports that sign-in is needed.
func (c *Controller) requireIdentity(action string) (string, error) {
	id := c.steamID()
	if id == "" {
		c.notify(models.KindError, "Sign in with Steam to "+action)
		return "", fmt.Errorf("%w: sign in to %s", shared.ErrNotAuthenticated, action)
	}
	return id, nil
}

func (c *Controller) notify(kind models.NotificationKind, msg string) {
	c.deps.Notifier.Notify(models.NewNotification(kind, msg))
}

func (c *Controller) notifyf(kind models.NotificationKind, format string, args ...any) {
	c.notify(kind, fmt.Sprintf(format, args...))
}

// syncPollerLocked arms or disarms the refresh task so that exactly one exists
// iff there are tracked items and the interval is non-zero. Callers hold c.mu.
func (c *Controller) syncPollerLocked() {
	want := !c.closed && len(c.tracks) > 0 && c.interval.Enabled()

	if c.stopPoll != nil && (!want || c.pollInterval != c.interval) {
		c.stopPoll()
		c.stopPoll = nil
		c.logger.Debug("poller disarmed")
		if !want && !c.closed {
			select {
			case c.stopped <- struct{}{}:
			default:
			}
		}
	}

	if want && c.stopPoll == nil {
		c.pollInterval = c.interval
		c.stopPoll = c.deps.Scheduler.Every(c.interval.Duration(), c.poll)
		c.logger.Debug("poller armed", "every", c.interval)
	}
}

// PollerStopped signals when the poller disarms because nothing is left to refresh or the interval
// was turned off. Signals coalesce; Close does not signal.
func (c *Controller) PollerStopped() <-chan struct{} {
	return c.stopped
}

// poll is the scheduled task body.
func (c *Controller) poll() {
	if _, err := c.refresh(c.pollCtx, true); err != nil && !errors.Is(err, shared.ErrBusy) {
		c.logger.Warn("scheduled refresh failed", "err", err)
	}
}

// Close disarms the poller and cancels any scheduled refresh in flight.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.syncPollerLocked()
	c.mu.Unlock()

	c.cancelPoll()
}
