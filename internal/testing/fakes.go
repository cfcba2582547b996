package testing

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/shopspring/decimal"
)

// FakeRemote is an in-memory stand-in for the remote track store, market and refresh functions.
//
// Set the *Err fields to make the matching call fail. Counters record how often each call ran.
type FakeRemote struct {
	mu     sync.Mutex
	nextID int64
	tracks map[string][]models.TrackedItem

	Results   []models.SearchResult
	Prices    map[string]decimal.Decimal
	Report    *models.RefreshReport
	Profiles  map[string]models.Identity
	SavedCred map[string]models.Credentials

	ListErr    error
	CreateErr  error
	UpdateErr  error
	DeleteErr  error
	PriceErr   error
	SearchErr  error
	RefreshErr error
	ProfileErr error
	CredErr    error

	ListCalls    int
	CreateCalls  int
	RefreshCalls int
	// Block, when set, is received from before CreateTrack and Refresh return.
	Block chan struct{}
}

// NewFakeRemote creates an empty [FakeRemote].
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		nextID:    1,
		tracks:    map[string][]models.TrackedItem{},
		Prices:    map[string]decimal.Decimal{},
		Profiles:  map[string]models.Identity{},
		SavedCred: map[string]models.Credentials{},
	}
}

// Seed stores items for steamID, assigning ids to those without one.
func (f *FakeRemote) Seed(steamID string, items ...models.TrackedItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		if item.ID == 0 {
			item.ID = f.nextID
		}
		f.nextID = max(f.nextID, item.ID) + 1
		if item.Status == "" {
			item.Status = models.StatusActive
		}
		f.tracks[steamID] = append(f.tracks[steamID], item)
	}
}

// Stored returns a copy of what the remote holds for steamID.
func (f *FakeRemote) Stored(steamID string) []models.TrackedItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tracks[steamID])
}

func (f *FakeRemote) ListTracks(_ context.Context, steamID string) ([]models.TrackedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return slices.Clone(f.tracks[steamID]), nil
}

func (f *FakeRemote) CreateTrack(_ context.Context, steamID string, t models.NewTrack) (*models.TrackedItem, error) {
	if f.Block != nil {
		<-f.Block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}

	item := models.TrackedItem{
		ID:           f.nextID,
		Name:         t.Name,
		HashName:     t.HashName,
		Image:        t.Image,
		CurrentPrice: t.CurrentPrice,
		TargetPrice:  t.TargetPrice,
		Status:       models.StatusActive,
	}
	f.nextID++
	f.tracks[steamID] = append(f.tracks[steamID], item)
	return &item, nil
}

func (f *FakeRemote) UpdateTrack(_ context.Context, steamID string, id int64, u models.TrackUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i := range f.tracks[steamID] {
		item := &f.tracks[steamID][i]
		if item.ID != id {
			continue
		}
		if u.TargetPrice != nil {
			item.TargetPrice = *u.TargetPrice
		}
		if u.AutoPurchase != nil {
			item.AutoPurchase = *u.AutoPurchase
		}
		return nil
	}
	return fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
}

func (f *FakeRemote) DeleteTrack(_ context.Context, steamID string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	before := len(f.tracks[steamID])
	f.tracks[steamID] = slices.DeleteFunc(f.tracks[steamID], func(t models.TrackedItem) bool { return t.ID == id })
	if len(f.tracks[steamID]) == before {
		return fmt.Errorf("%w: %d", shared.ErrTrackNotFound, id)
	}
	return nil
}

func (f *FakeRemote) SaveCredentials(_ context.Context, steamID string, c models.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CredErr != nil {
		return f.CredErr
	}
	f.SavedCred[steamID] = c
	return nil
}

func (f *FakeRemote) Search(_ context.Context, _ string) ([]models.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	return slices.Clone(f.Results), nil
}

func (f *FakeRemote) Price(_ context.Context, hashName string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PriceErr != nil {
		return decimal.Zero, f.PriceErr
	}
	p, ok := f.Prices[hashName]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", shared.ErrPriceUnavailable, hashName)
	}
	return p, nil
}

// Refresh applies the configured [models.RefreshReport] to the stored items and returns it.
func (f *FakeRemote) Refresh(_ context.Context, steamID string) (*models.RefreshReport, error) {
	if f.Block != nil {
		<-f.Block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls++
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}

	report := models.RefreshReport{}
	if f.Report != nil {
		report = *f.Report
	}

	bought := report.PurchasedIDs()
	for i := range f.tracks[steamID] {
		item := &f.tracks[steamID][i]
		for _, d := range report.PriceDrops {
			if d.TrackID == item.ID {
				item.CurrentPrice = d.NewPrice
			}
		}
		if bought[item.ID] {
			item.Status = models.StatusPurchased
		}
	}
	return &report, nil
}

func (f *FakeRemote) Profile(_ context.Context, steamID string) (models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProfileErr != nil {
		return models.Identity{}, f.ProfileErr
	}
	identity, ok := f.Profiles[steamID]
	if !ok {
		return models.Identity{}, fmt.Errorf("no profile for %s", steamID)
	}
	return identity, nil
}

// FakePreferences keeps identity and interval in memory.
type FakePreferences struct {
	mu          sync.Mutex
	Identity    *models.Identity
	Interval    models.RefreshInterval
	HasInterval bool
	SaveErr     error
}

func (p *FakePreferences) LoadIdentity() (*models.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Identity == nil {
		return nil, nil
	}
	identity := *p.Identity
	return &identity, nil
}

func (p *FakePreferences) SaveIdentity(identity models.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.Identity = &identity
	return nil
}

func (p *FakePreferences) ClearIdentity() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Identity = nil
	return nil
}

func (p *FakePreferences) LoadInterval() (models.RefreshInterval, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Interval, p.HasInterval, nil
}

func (p *FakePreferences) SaveInterval(interval models.RefreshInterval) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.Interval, p.HasInterval = interval, true
	return nil
}

// RecordingNotifier collects every notification it receives.
type RecordingNotifier struct {
	mu    sync.Mutex
	items []*models.Notification
}

func (r *RecordingNotifier) Notify(n *models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns the notifications received so far.
func (r *RecordingNotifier) All() []*models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// Last returns the most recent notification, or nil.
func (r *RecordingNotifier) Last() *models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return nil
	}
	return r.items[len(r.items)-1]
}

// Count returns how many notifications of kind were received.
func (r *RecordingNotifier) Count(kind models.NotificationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Kind() == kind {
			n++
		}
	}
	return n
}

// ManualScheduler records armed tasks and fires them on demand instead of on a clock.
type ManualScheduler struct {
	mu    sync.Mutex
	tasks []*ManualTask
}

// ManualTask is a task armed on a [ManualScheduler].
type ManualTask struct {
	Interval time.Duration
	fn       func()
	stopped  bool
	mu       *sync.Mutex
}

// Stop disarms the task.
func (t *ManualTask) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (s *ManualScheduler) Every(d time.Duration, fn func()) (stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &ManualTask{Interval: d, fn: fn, mu: &s.mu}
	s.tasks = append(s.tasks, task)
	return task.Stop
}

// Active returns the tasks that have not been stopped.
func (s *ManualScheduler) Active() []*ManualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []*ManualTask
	for _, t := range s.tasks {
		if !t.stopped {
			active = append(active, t)
		}
	}
	return active
}

// Armed returns how many tasks were ever armed.
func (s *ManualScheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Fire runs every active task once, synchronously.
func (s *ManualScheduler) Fire() int {
	active := s.Active()
	for _, t := range active {
		t.fn()
	}
	return len(active)
}

// FakeAuthenticator returns canned OpenID results.
type FakeAuthenticator struct {
	RedirectURL string
	SteamID     string
	Err         error
	Params      url.Values
}

func (a *FakeAuthenticator) BeginLogin(returnTo string) (string, error) {
	if a.Err != nil {
		return "", a.Err
	}
	return a.RedirectURL + "?return_to=" + url.QueryEscape(returnTo), nil
}

func (a *FakeAuthenticator) CompleteLogin(_ context.Context, params url.Values) (string, error) {
	a.Params = params
	if a.Err != nil {
		return "", a.Err
	}
	return a.SteamID, nil
}
