package models

import (
	"fmt"
	"time"
)

// NotificationKind classifies a [Notification].
type NotificationKind string

const (
	KindPriceDrop NotificationKind = "price_drop"
	KindPurchase  NotificationKind = "purchase"
	KindInfo      NotificationKind = "info"
	KindError     NotificationKind = "error"
)

// Notification is a user-facing notice persisted in the local state database.
type Notification struct {
	id        string
	sequence  int
	kind      NotificationKind
	message   string
	read      bool
	createdAt time.Time
	updatedAt time.Time
}

var _ Model = (*Notification)(nil)

// NewNotification creates an unread notification stamped with the current time.
func NewNotification(kind NotificationKind, message string) *Notification {
	now := time.Now().UTC()
	return &Notification{kind: kind, message: message, createdAt: now, updatedAt: now}
}

func (n *Notification) ID() string               { return n.id }
func (n *Notification) Sequence() int            { return n.sequence }
func (n *Notification) Kind() NotificationKind   { return n.kind }
func (n *Notification) Message() string          { return n.message }
func (n *Notification) Read() bool               { return n.read }
func (n *Notification) CreatedAt() time.Time     { return n.createdAt }
func (n *Notification) UpdatedAt() time.Time     { return n.updatedAt }
func (n *Notification) SetID(id string)          { n.id = id }
func (n *Notification) SetSequence(seq int)      { n.sequence = seq }
func (n *Notification) SetRead(read bool)        { n.read = read }
func (n *Notification) SetCreatedAt(t time.Time) { n.createdAt = t }
func (n *Notification) SetUpdatedAt(t time.Time) { n.updatedAt = t }

// IsError reports whether the notice describes a failure.
func (n *Notification) IsError() bool { return n.kind == KindError }

// Validate checks the kind is known and the message is non-empty.
func (n *Notification) Validate() error {
	switch n.kind {
	case KindPriceDrop, KindPurchase, KindInfo, KindError:
	default:
		return fmt.Errorf("unknown notification kind %q", n.kind)
	}
	if n.message == "" {
		return fmt.Errorf("notification message is required")
	}
	return nil
}
