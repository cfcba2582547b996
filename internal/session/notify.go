package session

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/steamwatch/internal/models"
)

// NotificationStore persists notices.
type NotificationStore interface {
	Create(n *models.Notification) error
}

// StoreNotifier persists every notice. Failures are logged, never surfaced.
type StoreNotifier struct {
	Store  NotificationStore
	Logger *log.Logger
}

func (s StoreNotifier) Notify(n *models.Notification) {
	if err := s.Store.Create(n); err != nil && s.Logger != nil {
		s.Logger.Warn("could not persist notification", "err", err)
	}
}

// LogNotifier writes notices to a logger, errors at error level.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(n *models.Notification) {
	switch n.Kind() {
	case models.KindError:
		l.Logger.Error(n.Message())
	case models.KindPriceDrop, models.KindPurchase:
		l.Logger.Warn(n.Message(), "kind", n.Kind())
	default:
		l.Logger.Info(n.Message())
	}
}
