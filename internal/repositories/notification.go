package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
)

// NotificationRepository implements [models.Repository] for [models.Notification] persistence.
type NotificationRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Notification] = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new [NotificationRepository] with the given database connection
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification with generated ID and sequence
func (r *NotificationRepository) Create(n *models.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "notifications")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO notifications (id, sequence, kind, message, read, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err = r.db.Exec(query, id, sequence, n.Kind(), n.Message(), n.Read(), n.CreatedAt(), n.UpdatedAt()); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	n.SetID(id)
	n.SetSequence(sequence)
	return nil
}

const notificationColumns = `id, sequence, kind, message, read, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		id        string
		sequence  int
		kind      string
		message   string
		read      bool
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &sequence, &kind, &message, &read, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	n := models.NewNotification(models.NotificationKind(kind), message)
	n.SetID(id)
	n.SetSequence(sequence)
	n.SetRead(read)
	n.SetCreatedAt(createdAt)
	n.SetUpdatedAt(updatedAt)
	return n, nil
}

// Get retrieves a notification by ID, excluding soft-deleted rows
func (r *NotificationRepository) Get(id string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ? AND deleted_at IS NULL`

	n, err := scanNotification(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query notification: %w", err)
	}
	return n, nil
}

// Update persists the read flag of an existing notification
func (r *NotificationRepository) Update(n *models.Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	query := `UPDATE notifications SET read = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, n.Read(), now, n.ID())
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	if err := expectRows(result, n.ID()); err != nil {
		return err
	}

	n.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a notification by ID
func (r *NotificationRepository) Delete(id string) error {
	query := `UPDATE notifications SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return expectRows(result, id)
}

func expectRows(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("notification not found or already deleted: %s", id)
	}
	return nil
}

// List returns notifications newest first.
//
// Supported criteria: "unread" (bool), "kind" (string or [models.NotificationKind]), "limit" (int).
func (r *NotificationRepository) List(criteria map[string]any) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE deleted_at IS NULL`
	args := []any{}

	if unread, ok := criteria["unread"].(bool); ok && unread {
		query += " AND read = 0"
	}

	switch kind := criteria["kind"].(type) {
	case string:
		if kind != "" {
			query += " AND kind = ?"
			args = append(args, kind)
		}
	case models.NotificationKind:
		query += " AND kind = ?"
		args = append(args, string(kind))
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return notifications, nil
}

// MarkAllRead flags every unread notification as read and returns how many changed.
func (r *NotificationRepository) MarkAllRead() (int64, error) {
	result, err := r.db.Exec(
		`UPDATE notifications SET read = 1, updated_at = ? WHERE read = 0 AND deleted_at IS NULL`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

// UnreadCount returns the number of unread notifications.
func (r *NotificationRepository) UnreadCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE read = 0 AND deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
