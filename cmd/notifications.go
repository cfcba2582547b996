package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

type notificationRow struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// NotificationsList prints stored notices, newest first.
func (r *Runner) NotificationsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	notices, err := r.notes.List(map[string]any{
		"unread": cmd.Bool("unread"),
		"kind":   cmd.String("kind"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		rows := make([]notificationRow, len(notices))
		for i, n := range notices {
			rows[i] = notificationRow{
				ID:        n.ID(),
				Kind:      string(n.Kind()),
				Message:   n.Message(),
				Read:      n.Read(),
				CreatedAt: n.CreatedAt().Format("2006-01-02T15:04:05Z07:00"),
			}
		}
		return r.writeJSON(rows, true)
	}

	unread, err := r.notes.UnreadCount()
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Notifications (%d unread)", unread))
	if len(notices) == 0 {
		return r.writePlain("No notifications.\n")
	}
	for _, n := range notices {
		marker := " "
		if !n.Read() {
			marker = "•"
		}
		r.writePlain("%s %s [%s] %s\n", marker, n.CreatedAt().Local().Format("Jan 02 15:04"), n.Kind(), n.Message())
	}
	return nil
}

// NotificationsRead marks every notice as read.
func (r *Runner) NotificationsRead(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	n, err := r.notes.MarkAllRead()
	if err != nil {
		return err
	}
	return r.writePlain("✓ Marked %d notifications read\n", n)
}
