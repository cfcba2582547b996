package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	tu "github.com/desertthunder/steamwatch/internal/testing"
	"github.com/shopspring/decimal"
)

const steamID = "76561198000000001"

type harness struct {
	ctrl      *Controller
	remote    *tu.FakeRemote
	prefs     *tu.FakePreferences
	notes     *tu.RecordingNotifier
	scheduler *tu.ManualScheduler
	auth      *tu.FakeAuthenticator
}

func newHarness(t *testing.T, interval models.RefreshInterval) *harness {
	t.Helper()

	h := &harness{
		remote:    tu.NewFakeRemote(),
		prefs:     &tu.FakePreferences{},
		notes:     &tu.RecordingNotifier{},
		scheduler: &tu.ManualScheduler{},
		auth:      &tu.FakeAuthenticator{RedirectURL: "https://steamcommunity.com/openid/login", SteamID: steamID},
	}
	h.ctrl = New(Deps{
		Tracks:    h.remote,
		Market:    h.remote,
		Refresher: h.remote,
		Profiles:  h.remote,
		Auth:      h.auth,
		Prefs:     h.prefs,
		Notifier:  h.notes,
		Scheduler: h.scheduler,
	}, interval, shared.NewLogger(io.Discard))
	t.Cleanup(h.ctrl.Close)
	return h
}

// signedIn returns a harness whose controller has restored a stored identity.
func signedIn(t *testing.T, interval models.RefreshInterval, seed ...models.TrackedItem) *harness {
	t.Helper()

	h := newHarness(t, interval)
	h.prefs.Identity = &models.Identity{SteamID: steamID, DisplayName: "gaben"}
	h.remote.Seed(steamID, seed...)
	if err := h.ctrl.Start(context.Background(), nil); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return h
}

func item(name string, current, target int64) models.TrackedItem {
	return models.TrackedItem{
		Name:         name,
		HashName:     name,
		CurrentPrice: decimal.NewFromInt(current),
		TargetPrice:  decimal.NewFromInt(target),
		Status:       models.StatusActive,
	}
}

func TestLoadTracks(t *testing.T) {
	t.Run("Requires Identity", func(t *testing.T) {
		h := newHarness(t, 5)

		err := h.ctrl.LoadTracks(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if h.remote.ListCalls != 0 {
			t.Error("store should not be called without identity")
		}
		if last := h.notes.Last(); last == nil || !last.IsError() {
			t.Error("expected an error notice")
		}
	})

	t.Run("Replaces List", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 40, 50))
		if len(h.ctrl.Tracks()) != 1 {
			t.Fatalf("expected 1 track after start, got %d", len(h.ctrl.Tracks()))
		}

		h.remote.Seed(steamID, item("Knife", 900, 800))
		if err := h.ctrl.LoadTracks(context.Background()); err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if len(h.ctrl.Tracks()) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(h.ctrl.Tracks()))
		}
	})

	t.Run("Unauthorized Leaves List Unchanged", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 40, 50))
		before := h.ctrl.Tracks()

		h.remote.ListErr = fmt.Errorf("%w: status 401", shared.ErrNotAuthenticated)
		err := h.ctrl.LoadTracks(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}

		after := h.ctrl.Tracks()
		if len(after) != len(before) || after[0].ID != before[0].ID {
			t.Errorf("tracks changed on failed load: %+v", after)
		}
		if msg := h.notes.Last().Message(); !strings.Contains(msg, "Authentication required") {
			t.Errorf("expected auth notice, got %q", msg)
		}
	})

	t.Run("Other Failure Leaves List Unchanged", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 40, 50))

		h.remote.ListErr = fmt.Errorf("%w: status 500", shared.ErrAPIRequest)
		if err := h.ctrl.LoadTracks(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if len(h.ctrl.Tracks()) != 1 {
			t.Error("tracks should be unchanged")
		}
		if msg := h.notes.Last().Message(); !strings.HasPrefix(msg, "Load error") {
			t.Errorf("expected load error notice, got %q", msg)
		}
	})
}

func TestAddTrack(t *testing.T) {
	result := models.SearchResult{Name: "Prisma Case", HashName: "Prisma Case", Image: "img", Price: "$0.01"}

	t.Run("Uses Authoritative Price", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.Prices["Prisma Case"] = decimal.NewFromInt(750)

		if err := h.ctrl.AddTrack(context.Background(), result, decimal.NewFromInt(700)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		tracks := h.ctrl.Tracks()
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		got := tracks[0]
		if !got.CurrentPrice.Equal(decimal.NewFromInt(750)) || !got.TargetPrice.Equal(decimal.NewFromInt(700)) {
			t.Errorf("expected 750/700, got %s/%s", got.CurrentPrice, got.TargetPrice)
		}
		if got.Status != models.StatusActive {
			t.Errorf("expected active, got %s", got.Status)
		}
		if got.TargetReached() {
			t.Error("750 against a 700 target is not reached")
		}
	})

	t.Run("Rejects Negative Target", func(t *testing.T) {
		h := signedIn(t, 5)
		err := h.ctrl.AddTrack(context.Background(), result, decimal.NewFromInt(-1))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if h.remote.CreateCalls != 0 {
			t.Error("nothing should be submitted")
		}
	})

	t.Run("Price Lookup Failure", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.PriceErr = fmt.Errorf("%w: Prisma Case", shared.ErrPriceUnavailable)

		if err := h.ctrl.AddTrack(context.Background(), result, decimal.NewFromInt(1)); !errors.Is(err, shared.ErrPriceUnavailable) {
			t.Errorf("expected ErrPriceUnavailable, got %v", err)
		}
		if h.remote.CreateCalls != 0 {
			t.Error("create should not run without a price")
		}
	})

	t.Run("No Optimistic Insert", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.Prices["Prisma Case"] = decimal.NewFromInt(750)
		h.remote.CreateErr = fmt.Errorf("%w: status 500", shared.ErrAPIRequest)

		if err := h.ctrl.AddTrack(context.Background(), result, decimal.NewFromInt(700)); err == nil {
			t.Fatal("expected add error")
		}
		if len(h.ctrl.Tracks()) != 0 {
			t.Error("failed add must not show the item")
		}
		if msg := h.notes.Last().Message(); !strings.HasPrefix(msg, "Add error") {
			t.Errorf("expected add error notice, got %q", msg)
		}
	})

	t.Run("Shown Only After Reload Confirms", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.Prices["Prisma Case"] = decimal.NewFromInt(750)
		h.remote.ListErr = errors.New("store unavailable")

		if err := h.ctrl.AddTrack(context.Background(), result, decimal.NewFromInt(700)); err == nil {
			t.Fatal("expected reload error to surface")
		}
		if h.remote.CreateCalls != 1 {
			t.Errorf("expected the create to be submitted once, got %d", h.remote.CreateCalls)
		}
		if len(h.ctrl.Tracks()) != 0 {
			t.Error("item must not be shown until a reload returns it")
		}
	})

	t.Run("Busy", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.Prices["Prisma Case"] = decimal.NewFromInt(750)
		h.remote.Block = make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ctrl.AddTrack(context.Background(), result, decimal.NewFromInt(700))
		}()

		deadline := time.Now().Add(2 * time.Second)
		for !h.ctrl.Busy(OpAdd) && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if !h.ctrl.Busy(OpAdd) {
			t.Fatal("expected add to be in flight")
		}

		if err := h.ctrl.AddTrack(context.Background(), result, decimal.NewFromInt(700)); !errors.Is(err, shared.ErrBusy) {
			t.Errorf("expected ErrBusy, got %v", err)
		}

		close(h.remote.Block)
		wg.Wait()
		if h.ctrl.Busy(OpAdd) {
			t.Error("flag should clear when the add finishes")
		}
		if h.remote.CreateCalls != 1 {
			t.Errorf("expected exactly one create, got %d", h.remote.CreateCalls)
		}
	})
}

func TestUpdates(t *testing.T) {
	t.Run("UpdateTarget", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 40, 50))
		id := h.ctrl.Tracks()[0].ID

		if err := h.ctrl.UpdateTarget(context.Background(), id, decimal.NewFromInt(30)); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if got := h.ctrl.Tracks()[0].TargetPrice; !got.Equal(decimal.NewFromInt(30)) {
			t.Errorf("expected target 30, got %s", got)
		}
	})

	t.Run("UpdateTarget Failure Keeps Previous", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 40, 50))
		id := h.ctrl.Tracks()[0].ID
		h.remote.UpdateErr = fmt.Errorf("%w: status 500", shared.ErrAPIRequest)

		if err := h.ctrl.UpdateTarget(context.Background(), id, decimal.NewFromInt(30)); err == nil {
			t.Fatal("expected error")
		}
		if got := h.ctrl.Tracks()[0].TargetPrice; !got.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected target to stay 50, got %s", got)
		}
		if msg := h.notes.Last().Message(); !strings.HasPrefix(msg, "Update error") {
			t.Errorf("expected update error notice, got %q", msg)
		}
	})

	t.Run("ToggleAutoPurchase", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 40, 50))
		id := h.ctrl.Tracks()[0].ID

		if err := h.ctrl.ToggleAutoPurchase(context.Background(), id, true); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if !h.ctrl.Tracks()[0].AutoPurchase {
			t.Error("expected auto purchase on")
		}
	})
}

func TestDeleteTrack(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 40, 50))
		id := h.ctrl.Tracks()[0].ID

		if err := h.ctrl.DeleteTrack(context.Background(), id); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if len(h.ctrl.Tracks()) != 0 {
			t.Error("expected empty list")
		}
	})

	t.Run("Failure Still Reloads", func(t *testing.T) {
		h := signedIn(t, 5, models.TrackedItem{ID: 5, Name: "Case", HashName: "Case"})
		listsBefore := h.remote.ListCalls
		h.remote.DeleteErr = fmt.Errorf("%w: status 500", shared.ErrAPIRequest)

		err := h.ctrl.DeleteTrack(context.Background(), 5)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected delete error, got %v", err)
		}
		if h.remote.ListCalls != listsBefore+1 {
			t.Error("expected a reload after the failed delete")
		}
		tracks := h.ctrl.Tracks()
		if len(tracks) != 1 || tracks[0].ID != 5 {
			t.Errorf("expected id 5 to reappear, got %+v", tracks)
		}
		if msg := h.notes.Last().Message(); !strings.HasPrefix(msg, "Delete error") {
			t.Errorf("failed delete must be reported as such, got %q", msg)
		}
	})
}

func TestRefreshPrices(t *testing.T) {
	t.Run("Purchase Notice Wins", func(t *testing.T) {
		h := signedIn(t, 5,
			models.TrackedItem{ID: 1, Name: "Case", HashName: "Case", CurrentPrice: decimal.NewFromInt(60), TargetPrice: decimal.NewFromInt(50)},
			models.TrackedItem{ID: 2, Name: "Knife", HashName: "Knife", CurrentPrice: decimal.NewFromInt(900), TargetPrice: decimal.NewFromInt(800), AutoPurchase: true},
		)
		h.remote.Report = &models.RefreshReport{
			Updated:       2,
			Total:         2,
			PriceDrops:    []models.PriceDrop{{TrackID: 1, ItemName: "Case", NewPrice: decimal.NewFromInt(45), TargetPrice: decimal.NewFromInt(50)}},
			PurchasesMade: []models.Purchase{{TrackID: 2, ItemName: "Knife", Price: decimal.NewFromInt(780)}},
		}
		before := len(h.notes.All())

		report, err := h.ctrl.RefreshPrices(context.Background())
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if report.Outcome() != models.OutcomePurchased {
			t.Errorf("expected purchase outcome, got %v", report.Outcome())
		}

		notes := h.notes.All()[before:]
		if len(notes) != 1 || notes[0].Kind() != models.KindPurchase {
			t.Fatalf("expected exactly one purchase notice, got %d", len(notes))
		}

		history := h.ctrl.History()
		if len(history) != 1 || history[0].ID != 2 {
			t.Errorf("expected Knife in history, got %+v", history)
		}
	})

	t.Run("Target Reached Notice", func(t *testing.T) {
		h := signedIn(t, 5, models.TrackedItem{ID: 1, Name: "Case", HashName: "Case", CurrentPrice: decimal.NewFromInt(60), TargetPrice: decimal.NewFromInt(50)})
		h.remote.Report = &models.RefreshReport{
			Updated:    1,
			Total:      1,
			PriceDrops: []models.PriceDrop{{TrackID: 1, ItemName: "Case", NewPrice: decimal.NewFromInt(45), TargetPrice: decimal.NewFromInt(50)}},
		}

		if _, err := h.ctrl.RefreshPrices(context.Background()); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if h.notes.Last().Kind() != models.KindPriceDrop {
			t.Errorf("expected price drop notice, got %s", h.notes.Last().Kind())
		}

		got := h.ctrl.Tracks()[0]
		if !got.TargetReached() || got.Purchased() {
			t.Errorf("expected reached but still active, got %+v", got)
		}
	})

	t.Run("Plain Update Notice", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		h.remote.Report = &models.RefreshReport{Updated: 1, Total: 1}

		h.ctrl.RefreshPrices(context.Background())
		if msg := h.notes.Last().Message(); msg != "Updated 1 of 1 prices" {
			t.Errorf("unexpected notice %q", msg)
		}
	})

	t.Run("Status Never Purchased Without Report", func(t *testing.T) {
		h := signedIn(t, 5, models.TrackedItem{ID: 1, Name: "Case", HashName: "Case", CurrentPrice: decimal.NewFromInt(10), TargetPrice: decimal.NewFromInt(50), AutoPurchase: true})
		h.remote.Report = &models.RefreshReport{Updated: 1, Total: 1}

		h.ctrl.RefreshPrices(context.Background())
		if h.ctrl.Tracks()[0].Purchased() {
			t.Error("item must not become purchased without a purchase in the report")
		}
	})

	t.Run("Always Reloads", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		listsBefore := h.remote.ListCalls
		h.remote.RefreshErr = fmt.Errorf("%w: status 502", shared.ErrAPIRequest)

		if _, err := h.ctrl.RefreshPrices(context.Background()); err == nil {
			t.Fatal("expected refresh error")
		}
		if h.remote.ListCalls != listsBefore+1 {
			t.Error("expected a reload after a failed refresh")
		}
		if msg := h.notes.Last().Message(); !strings.HasPrefix(msg, "Refresh error") {
			t.Errorf("expected refresh error notice, got %q", msg)
		}
		if h.ctrl.Busy(OpRefresh) {
			t.Error("refresh flag should be cleared")
		}
	})

	t.Run("Requires Identity", func(t *testing.T) {
		h := newHarness(t, 5)
		if _, err := h.ctrl.RefreshPrices(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if h.remote.RefreshCalls != 0 {
			t.Error("trigger should not be called")
		}
	})
}

func TestPoller(t *testing.T) {
	t.Run("Armed Iff Tracks And Interval", func(t *testing.T) {
		h := signedIn(t, 5)
		if h.ctrl.Polling() {
			t.Fatal("no tracks: poller must be idle")
		}

		h.remote.Prices["Case"] = decimal.NewFromInt(40)
		h.ctrl.AddTrack(context.Background(), models.SearchResult{Name: "Case", HashName: "Case"}, decimal.NewFromInt(50))
		if !h.ctrl.Polling() || len(h.scheduler.Active()) != 1 {
			t.Fatalf("expected one armed task, got %d", len(h.scheduler.Active()))
		}
		if got := h.scheduler.Active()[0].Interval; got != 5*time.Minute {
			t.Errorf("expected 5m cadence, got %v", got)
		}

		h.ctrl.DeleteTrack(context.Background(), h.ctrl.Tracks()[0].ID)
		if h.ctrl.Polling() || len(h.scheduler.Active()) != 0 {
			t.Error("empty list: poller must be disarmed")
		}
	})

	t.Run("Interval Zero Never Fires", func(t *testing.T) {
		h := signedIn(t, 0, item("Case", 60, 50))
		if h.ctrl.Polling() || h.scheduler.Armed() != 0 {
			t.Error("interval 0 must not arm a task")
		}
		if h.scheduler.Fire() != 0 || h.remote.RefreshCalls != 0 {
			t.Error("nothing should fire")
		}
	})

	t.Run("Interval Change Rearms Single Task", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))

		if err := h.ctrl.SetInterval(0.5); err != nil {
			t.Fatalf("set interval failed: %v", err)
		}
		active := h.scheduler.Active()
		if len(active) != 1 || active[0].Interval != 30*time.Second {
			t.Fatalf("expected one 30s task, got %+v", active)
		}

		if err := h.ctrl.SetInterval(0); err != nil {
			t.Fatalf("set interval failed: %v", err)
		}
		if len(h.scheduler.Active()) != 0 {
			t.Error("interval 0 must disarm")
		}
		if h.prefs.Interval != 0 || !h.prefs.HasInterval {
			t.Error("interval should be persisted")
		}
	})

	t.Run("Rejects Unknown Interval", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		if err := h.ctrl.SetInterval(3); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if h.ctrl.Interval() != 5 {
			t.Error("interval should be unchanged")
		}
	})

	t.Run("Tick Refreshes Quietly", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		h.remote.Report = &models.RefreshReport{Updated: 1, Total: 1}
		before := len(h.notes.All())

		if fired := h.scheduler.Fire(); fired != 1 {
			t.Fatalf("expected one task to fire, got %d", fired)
		}
		if h.remote.RefreshCalls != 1 {
			t.Errorf("expected one refresh, got %d", h.remote.RefreshCalls)
		}
		if len(h.notes.All()) != before {
			t.Error("scheduled plain updates should not add notices")
		}
	})

	t.Run("Stored Interval Wins", func(t *testing.T) {
		h := newHarness(t, 5)
		h.prefs.Interval, h.prefs.HasInterval = 15, true
		h.ctrl.Start(context.Background(), nil)

		if h.ctrl.Interval() != 15 {
			t.Errorf("expected stored interval 15, got %v", h.ctrl.Interval())
		}
	})

	t.Run("Signals When List Empties", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		for _, stored := range h.remote.Stored(steamID) {
			h.remote.DeleteTrack(context.Background(), steamID, stored.ID)
		}

		h.scheduler.Fire()
		if h.ctrl.Polling() {
			t.Fatal("poller should disarm once the list is empty")
		}
		select {
		case <-h.ctrl.PollerStopped():
		default:
			t.Error("expected a stop signal")
		}
	})

	t.Run("Close Does Not Signal", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		h.ctrl.Close()
		select {
		case <-h.ctrl.PollerStopped():
			t.Error("close should not signal a stop")
		default:
		}
	})

	t.Run("Close Disarms", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		h.ctrl.Close()
		if h.ctrl.Polling() || len(h.scheduler.Active()) != 0 {
			t.Error("close must disarm the poller")
		}
	})
}

func TestLogin(t *testing.T) {
	callback := url.Values{
		"openid.mode":       {"id_res"},
		"openid.claimed_id": {"https://steamcommunity.com/openid/id/" + steamID},
	}

	t.Run("Start Completes Callback", func(t *testing.T) {
		h := newHarness(t, 5)
		h.remote.Profiles[steamID] = models.Identity{SteamID: steamID, DisplayName: "gaben", AvatarURL: "a.jpg"}
		h.remote.Seed(steamID, item("Case", 60, 50))

		if err := h.ctrl.Start(context.Background(), callback); err != nil {
			t.Fatalf("start failed: %v", err)
		}
		if h.auth.Params.Get("openid.mode") != "id_res" {
			t.Error("callback params should reach the authenticator")
		}

		identity := h.ctrl.Identity()
		if identity == nil || identity.DisplayName != "gaben" {
			t.Fatalf("unexpected identity %+v", identity)
		}
		if h.prefs.Identity == nil || h.prefs.Identity.SteamID != steamID {
			t.Error("identity should be persisted")
		}
		if len(h.ctrl.Tracks()) != 1 {
			t.Error("tracks should load after login")
		}
	})

	t.Run("Profile Failure Uses Placeholder", func(t *testing.T) {
		h := newHarness(t, 5)
		h.remote.ProfileErr = errors.New("relay down")

		identity, err := h.ctrl.CompleteLogin(context.Background(), callback)
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if *identity != models.PlaceholderIdentity(steamID) {
			t.Errorf("expected placeholder, got %+v", identity)
		}
	})

	t.Run("Rejected Callback", func(t *testing.T) {
		h := newHarness(t, 5)
		h.auth.Err = fmt.Errorf("%w: login cancelled", shared.ErrAuthFailed)

		if _, err := h.ctrl.CompleteLogin(context.Background(), callback); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if h.ctrl.Identity() != nil || h.prefs.Identity != nil {
			t.Error("no identity should be stored")
		}
	})

	t.Run("Failed Callback Keeps Stored Identity", func(t *testing.T) {
		h := newHarness(t, 5)
		h.prefs.Identity = &models.Identity{SteamID: steamID, DisplayName: "gaben"}
		h.remote.Seed(steamID, item("Case", 60, 50))
		h.auth.Err = fmt.Errorf("%w: login cancelled", shared.ErrAuthFailed)

		err := h.ctrl.Start(context.Background(), url.Values{"openid.mode": {"cancel"}})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}

		identity := h.ctrl.Identity()
		if identity == nil || identity.SteamID != steamID {
			t.Fatalf("stored identity should survive a failed callback, got %+v", identity)
		}
		if h.prefs.Identity == nil {
			t.Error("stored identity should not be cleared")
		}
		if len(h.ctrl.Tracks()) != 1 {
			t.Errorf("tracks should load for the restored identity, got %d", len(h.ctrl.Tracks()))
		}
		if !h.ctrl.Polling() {
			t.Error("poller should arm for the restored identity")
		}
	})

	t.Run("Login Returns Redirect", func(t *testing.T) {
		h := newHarness(t, 5)
		redirect, err := h.ctrl.Login("http://localhost:3000/callback")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.HasPrefix(redirect, "https://steamcommunity.com/openid/login") {
			t.Errorf("unexpected redirect %s", redirect)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		h := signedIn(t, 5, item("Case", 60, 50))
		if !h.ctrl.Polling() {
			t.Fatal("expected poller armed before logout")
		}

		if err := h.ctrl.Logout(); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if h.ctrl.Identity() != nil || h.prefs.Identity != nil {
			t.Error("identity should be cleared everywhere")
		}
		if len(h.ctrl.Tracks()) != 0 {
			t.Error("tracks should be cleared on logout")
		}
		if h.ctrl.Polling() {
			t.Error("poller should be disarmed on logout")
		}
	})
}

func TestSearchAndImport(t *testing.T) {
	t.Run("Zero Results Gives Guidance", func(t *testing.T) {
		h := signedIn(t, 5)

		_, err := h.ctrl.Search(context.Background(), "ак-47")
		if !errors.Is(err, shared.ErrNoResults) {
			t.Fatalf("expected ErrNoResults, got %v", err)
		}
		if msg := h.notes.Last().Message(); !strings.Contains(msg, "exact English item name") {
			t.Errorf("expected guidance, got %q", msg)
		}
	})

	t.Run("Search Error", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.SearchErr = errors.New("boom")
		if _, err := h.ctrl.Search(context.Background(), "case"); err == nil {
			t.Fatal("expected error")
		}
		if msg := h.notes.Last().Message(); !strings.HasPrefix(msg, "Search error") {
			t.Errorf("unexpected notice %q", msg)
		}
	})

	t.Run("ParseListingURL", func(t *testing.T) {
		tests := []struct {
			raw     string
			want    Listing
			wantErr bool
		}{
			{"https://steamcommunity.com/market/listings/730/AK-47%20%7C%20Redline%20%28Field-Tested%29", Listing{730, "AK-47 | Redline (Field-Tested)"}, false},
			{"https://steamcommunity.com/market/listings/730/Prisma%20Case/", Listing{730, "Prisma Case"}, false},
			{"https://steamcommunity.com/market/search?q=case", Listing{}, true},
			{"https://steamcommunity.com/market/listings/abc/Case", Listing{}, true},
			{"https://steamcommunity.com/market/listings/730/", Listing{}, true},
		}

		for _, tt := range tests {
			t.Run(tt.raw, func(t *testing.T) {
				got, err := ParseListingURL(tt.raw)
				if (err != nil) != tt.wantErr {
					t.Fatalf("ParseListingURL() error = %v, wantErr %v", err, tt.wantErr)
				}
				if got != tt.want {
					t.Errorf("ParseListingURL() = %+v, want %+v", got, tt.want)
				}
			})
		}
	})

	t.Run("ImportFromURL Resolves Through Search", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.Results = []models.SearchResult{{Name: "Prisma Case", HashName: "Prisma Case", Image: "prisma.png"}}
		h.remote.Prices["Prisma Case"] = decimal.NewFromInt(80)

		err := h.ctrl.ImportFromURL(context.Background(), "https://steamcommunity.com/market/listings/730/Prisma%20Case", decimal.NewFromInt(70))
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		tracks := h.ctrl.Tracks()
		if len(tracks) != 1 || tracks[0].Image != "prisma.png" {
			t.Errorf("expected resolved item, got %+v", tracks)
		}
	})

	t.Run("ImportFromURL Falls Back To Hash Name", func(t *testing.T) {
		h := signedIn(t, 5)
		h.remote.Prices["Prisma Case"] = decimal.NewFromInt(80)

		err := h.ctrl.ImportFromURL(context.Background(), "https://steamcommunity.com/market/listings/730/Prisma%20Case", decimal.NewFromInt(70))
		if err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if got := h.ctrl.Tracks()[0].Name; got != "Prisma Case" {
			t.Errorf("expected hash name as display name, got %q", got)
		}
	})

	t.Run("ImportFromURL Bad URL", func(t *testing.T) {
		h := signedIn(t, 5)
		if err := h.ctrl.ImportFromURL(context.Background(), "https://example.com", decimal.NewFromInt(1)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if h.ctrl.Busy(OpImport) {
			t.Error("import flag should be cleared")
		}
	})
}

func TestSaveCredentials(t *testing.T) {
	h := signedIn(t, 5)
	creds := models.Credentials{SteamCookie: "cookie", SessionID: "sess"}

	if err := h.ctrl.SaveCredentials(context.Background(), creds); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if h.remote.SavedCred[steamID] != creds {
		t.Error("credentials should reach the store")
	}

	h.remote.CredErr = errors.New("denied")
	if err := h.ctrl.SaveCredentials(context.Background(), creds); err == nil {
		t.Error("expected error")
	}
	if msg := h.notes.Last().Message(); !strings.HasPrefix(msg, "Credentials error") {
		t.Errorf("unexpected notice %q", msg)
	}
}

func TestTickerScheduler(t *testing.T) {
	var (
		mu    sync.Mutex
		count int
	)
	stop := TickerScheduler{}.Every(5*time.Millisecond, func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := count
		mu.Unlock()
		if n >= 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	stop()
	stop()

	mu.Lock()
	if count < 2 {
		t.Errorf("expected at least 2 ticks, got %d", count)
	}
	mu.Unlock()
}

func TestNotifiers(t *testing.T) {
	t.Run("Fanout", func(t *testing.T) {
		a, b := &tu.RecordingNotifier{}, &tu.RecordingNotifier{}
		Fanout{a, b}.Notify(models.NewNotification(models.KindInfo, "hi"))
		if len(a.All()) != 1 || len(b.All()) != 1 {
			t.Error("expected both notifiers to receive the notice")
		}
	})

	t.Run("StoreNotifier", func(t *testing.T) {
		store := &memoryStore{}
		StoreNotifier{Store: store, Logger: shared.NewLogger(io.Discard)}.Notify(models.NewNotification(models.KindError, "load error"))
		if len(store.created) != 1 {
			t.Error("expected notification to be stored")
		}

		store.err = errors.New("disk full")
		StoreNotifier{Store: store, Logger: shared.NewLogger(io.Discard)}.Notify(models.NewNotification(models.KindInfo, "x"))
	})
}

type memoryStore struct {
	created []*models.Notification
	err     error
}

func (m *memoryStore) Create(n *models.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, n)
	return nil
}
