package session

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/shopspring/decimal"
)

// TrackStore is the identity-scoped remote track store.
type TrackStore interface {
	ListTracks(ctx context.Context, steamID string) ([]models.TrackedItem, error)
	CreateTrack(ctx context.Context, steamID string, t models.NewTrack) (*models.TrackedItem, error)
	UpdateTrack(ctx context.Context, steamID string, id int64, u models.TrackUpdate) error
	DeleteTrack(ctx context.Context, steamID string, id int64) error
	SaveCredentials(ctx context.Context, steamID string, c models.Credentials) error
}

// MarketClient searches the market and looks up authoritative prices.
type MarketClient interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Price(ctx context.Context, hashName string) (decimal.Decimal, error)
}

// Refresher runs the remote re-price and auto-purchase trigger.
type Refresher interface {
	Refresh(ctx context.Context, steamID string) (*models.RefreshReport, error)
}

// ProfileLookup resolves display name and avatar for an account id.
type ProfileLookup interface {
	Profile(ctx context.Context, steamID string) (models.Identity, error)
}

// Authenticator drives the external OpenID login.
type Authenticator interface {
	BeginLogin(returnTo string) (string, error)
	CompleteLogin(ctx context.Context, params url.Values) (string, error)
}

// Preferences is durable local storage for identity and interval.
type Preferences interface {
	LoadIdentity() (*models.Identity, error)
	SaveIdentity(identity models.Identity) error
	ClearIdentity() error
	LoadInterval() (models.RefreshInterval, bool, error)
	SaveInterval(interval models.RefreshInterval) error
}

// Notifier receives user-facing notices.
type Notifier interface {
	Notify(n *models.Notification)
}

// Observer receives refresh and list events, e.g. for metrics.
type Observer interface {
	ObserveRefresh(report *models.RefreshReport, err error, took time.Duration)
	ObserveTracks(tracks []models.TrackedItem)
}

// Scheduler runs fn every d until the returned stop func is called.
type Scheduler interface {
	Every(d time.Duration, fn func()) (stop func())
}

// Deps bundles the controller's collaborators.
//
// Notifier, Observer and Scheduler are optional; Scheduler defaults to [TickerScheduler].
type Deps struct {
	Tracks    TrackStore
	Market    MarketClient
	Refresher Refresher
	Profiles  ProfileLookup
	Auth      Authenticator
	Prefs     Preferences
	Notifier  Notifier
	Observer  Observer
	Scheduler Scheduler
}

// TickerScheduler runs tasks on a [time.Ticker] in their own goroutine.
type TickerScheduler struct{}

// Every starts a goroutine that calls fn on each tick. Stop is idempotent and does not wait
// for a running fn, so fn may itself trigger the stop.
func (TickerScheduler) Every(d time.Duration, fn func()) (stop func()) {
	ticker := time.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(n *models.Notification)

func (f NotifierFunc) Notify(n *models.Notification) { f(n) }

// Fanout delivers every notice to each notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(n *models.Notification) {
	for _, notifier := range f {
		notifier.Notify(n)
	}
}

type nopObserver struct{}

func (nopObserver) ObserveRefresh(*models.RefreshReport, error, time.Duration) {}
func (nopObserver) ObserveTracks([]models.TrackedItem)                         {}
