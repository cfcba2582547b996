package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenStore(":memory:", 1, 1)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	seq1, err := NextSequence(db, "notifications")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}
	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := NextSequence(db, "notifications")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}
	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestPreferencesRepository(t *testing.T) {
	t.Run("Get Set Delete", func(t *testing.T) {
		repo := NewPreferencesRepository(setupTestDB(t))

		if _, err := repo.Get("theme"); !errors.Is(err, ErrPreferenceNotFound) {
			t.Fatalf("expected ErrPreferenceNotFound, got %v", err)
		}

		if err := repo.Set("theme", "dark"); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		if err := repo.Set("theme", "light"); err != nil {
			t.Fatalf("failed to overwrite: %v", err)
		}

		got, err := repo.Get("theme")
		if err != nil || got != "light" {
			t.Errorf("expected light, got %q (%v)", got, err)
		}

		if err := repo.Delete("theme"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete("theme"); err != nil {
			t.Errorf("deleting an unset key should not fail: %v", err)
		}
	})

	t.Run("Identity", func(t *testing.T) {
		repo := NewPreferencesRepository(setupTestDB(t))

		identity, err := repo.LoadIdentity()
		if err != nil || identity != nil {
			t.Fatalf("expected no identity, got %+v (%v)", identity, err)
		}

		want := models.Identity{SteamID: "76561198000000001", DisplayName: "gaben", AvatarURL: "https://a/b.jpg"}
		if err := repo.SaveIdentity(want); err != nil {
			t.Fatalf("failed to save identity: %v", err)
		}

		identity, err = repo.LoadIdentity()
		if err != nil {
			t.Fatalf("failed to load identity: %v", err)
		}
		if *identity != want {
			t.Errorf("expected %+v, got %+v", want, *identity)
		}

		if err := repo.ClearIdentity(); err != nil {
			t.Fatalf("failed to clear identity: %v", err)
		}
		if identity, _ := repo.LoadIdentity(); identity != nil {
			t.Errorf("expected identity to be cleared, got %+v", identity)
		}
	})

	t.Run("Identity Validation", func(t *testing.T) {
		repo := NewPreferencesRepository(setupTestDB(t))

		if err := repo.SaveIdentity(models.Identity{SteamID: "not-a-number"}); err == nil {
			t.Error("expected validation error")
		}

		repo.Set(KeyIdentity, "{not json")
		if _, err := repo.LoadIdentity(); err == nil {
			t.Error("expected error for corrupt identity")
		}
	})

	t.Run("Interval", func(t *testing.T) {
		repo := NewPreferencesRepository(setupTestDB(t))

		if _, ok, err := repo.LoadInterval(); ok || err != nil {
			t.Fatalf("expected no stored interval, got ok=%v err=%v", ok, err)
		}

		if err := repo.SaveInterval(0.5); err != nil {
			t.Fatalf("failed to save interval: %v", err)
		}
		interval, ok, err := repo.LoadInterval()
		if err != nil || !ok || interval != 0.5 {
			t.Errorf("expected 0.5, got %v ok=%v err=%v", interval, ok, err)
		}

		if err := repo.SaveInterval(0); err != nil {
			t.Fatalf("saving zero should be allowed: %v", err)
		}
		if interval, ok, _ := repo.LoadInterval(); !ok || interval != 0 {
			t.Errorf("expected stored zero, got %v ok=%v", interval, ok)
		}

		if err := repo.SaveInterval(7); err == nil {
			t.Error("expected error for interval outside the allowed set")
		}
	})

	t.Run("Interval Ignores Garbage", func(t *testing.T) {
		repo := NewPreferencesRepository(setupTestDB(t))

		repo.Set(KeyRefreshInterval, "3")
		if _, ok, _ := repo.LoadInterval(); ok {
			t.Error("disallowed stored interval should read as unset")
		}

		repo.Set(KeyRefreshInterval, "soon")
		if _, ok, _ := repo.LoadInterval(); ok {
			t.Error("unparseable stored interval should read as unset")
		}
	})
}

func TestNotificationRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		repo := NewNotificationRepository(setupTestDB(t))
		n := models.NewNotification(models.KindPriceDrop, "Case reached target: 40.00 (target 50.00)")

		if err := repo.Create(n); err != nil {
			t.Fatalf("failed to create notification: %v", err)
		}
		if n.ID() == "" || n.Sequence() != 1 {
			t.Errorf("expected id and sequence 1, got %q / %d", n.ID(), n.Sequence())
		}

		got, err := repo.Get(n.ID())
		if err != nil {
			t.Fatalf("failed to get notification: %v", err)
		}
		if got.Message() != n.Message() || got.Kind() != models.KindPriceDrop || got.Read() {
			t.Errorf("unexpected notification %+v", got)
		}
	})

	t.Run("Create Validates", func(t *testing.T) {
		repo := NewNotificationRepository(setupTestDB(t))
		if err := repo.Create(models.NewNotification(models.KindInfo, "")); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewNotificationRepository(setupTestDB(t))
		n := models.NewNotification(models.KindInfo, "hello")
		repo.Create(n)

		n.SetRead(true)
		if err := repo.Update(n); err != nil {
			t.Fatalf("failed to update: %v", err)
		}

		got, _ := repo.Get(n.ID())
		if !got.Read() {
			t.Error("expected notification to be read")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewNotificationRepository(setupTestDB(t))
		n := models.NewNotification(models.KindError, "load error")
		repo.Create(n)

		if err := repo.Delete(n.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(n.ID()); err == nil {
			t.Error("expected deleted notification to be hidden")
		}
		if err := repo.Delete(n.ID()); err == nil {
			t.Error("expected error deleting twice")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewNotificationRepository(setupTestDB(t))
		for _, n := range []*models.Notification{
			models.NewNotification(models.KindInfo, "first"),
			models.NewNotification(models.KindPurchase, "second"),
			models.NewNotification(models.KindInfo, "third"),
		} {
			if err := repo.Create(n); err != nil {
				t.Fatalf("failed to create: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(all) != 3 || all[0].Message() != "third" {
			t.Errorf("expected newest first, got %d items starting with %q", len(all), all[0].Message())
		}

		infos, _ := repo.List(map[string]any{"kind": models.KindInfo})
		if len(infos) != 2 {
			t.Errorf("expected 2 info notifications, got %d", len(infos))
		}

		limited, _ := repo.List(map[string]any{"limit": 1})
		if len(limited) != 1 {
			t.Errorf("expected 1 notification, got %d", len(limited))
		}
	})

	t.Run("MarkAllRead", func(t *testing.T) {
		repo := NewNotificationRepository(setupTestDB(t))
		repo.Create(models.NewNotification(models.KindInfo, "a"))
		repo.Create(models.NewNotification(models.KindInfo, "b"))

		if count, _ := repo.UnreadCount(); count != 2 {
			t.Errorf("expected 2 unread, got %d", count)
		}

		changed, err := repo.MarkAllRead()
		if err != nil || changed != 2 {
			t.Fatalf("expected 2 changed, got %d (%v)", changed, err)
		}

		unread, _ := repo.List(map[string]any{"unread": true})
		if len(unread) != 0 {
			t.Errorf("expected no unread notifications, got %d", len(unread))
		}
	})
}
