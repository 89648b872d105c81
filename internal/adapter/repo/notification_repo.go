package repo

import (
	"context"

	"github.com/google/uuid"

	"donationhub/internal/domain"
	"donationhub/internal/infra"
	"donationhub/internal/sqlinline"
)

// NotificationRepositoryPG implements domain.NotificationRepository.
type NotificationRepositoryPG struct {
	db infra.SQLExecutor
}

func NewNotificationRepository(db infra.SQLExecutor) *NotificationRepositoryPG {
	return &NotificationRepositoryPG{db: db}
}

func (r *NotificationRepositoryPG) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	row := r.db.QueryRow(ctx, sqlinline.QInsertNotification, n.ID, n.RecipientID, n.Topic, n.Message, string(n.Category))
	return mapErr(row.Scan(&n.CreatedAt))
}

func (r *NotificationRepositoryPG) ListFor(ctx context.Context, readerID string, topics []string, limit int) ([]domain.Notification, error) {
	if topics == nil {
		topics = []string{}
	}
	rows, err := r.db.Query(ctx, sqlinline.QListNotificationsFor, readerID, topics, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var items []domain.Notification
	for rows.Next() {
		var (
			n        domain.Notification
			category string
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Topic, &n.Message, &category, &n.Read, &n.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		n.Category = domain.NotificationCategory(category)
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return items, nil
}

func (r *NotificationRepositoryPG) MarkRead(ctx context.Context, notificationID, readerID string, topics []string) error {
	if topics == nil {
		topics = []string{}
	}
	var matched int
	if err := r.db.QueryRow(ctx, sqlinline.QMarkNotificationRead, notificationID, readerID, topics).Scan(&matched); err != nil {
		return mapErr(err)
	}
	if matched == 0 {
		return domain.ErrNotFound
	}
	return nil
}
