// Package notify persists localized notifications for contributors and topics.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"donationhub/internal/domain"
)

const (
	defaultInboxLimit = 50
	maxInboxLimit     = 200
)

// Notifier is a fire-and-forget sink: delivery failures are logged, never returned.
type Notifier struct {
	repo          domain.NotificationRepository
	logger        zerolog.Logger
	defaultLocale string
}

func New(repo domain.NotificationRepository, logger zerolog.Logger, defaultLocale string) *Notifier {
	return &Notifier{
		repo:          repo,
		logger:        logger.With().Str("component", "notify").Logger(),
		defaultLocale: defaultLocale,
	}
}

// Notify stores a message for a single recipient rendered in locale.
func (n *Notifier) Notify(ctx context.Context, recipientID, locale string, msg Message) {
	if recipientID == "" {
		return
	}
	if locale == "" {
		locale = n.defaultLocale
	}
	n.store(ctx, &domain.Notification{
		RecipientID: recipientID,
		Message:     Render(locale, msg),
		Category:    categoryOf(msg),
	}, msg)
}

// Broadcast publishes one message on topic; every subscriber sees the same record.
func (n *Notifier) Broadcast(ctx context.Context, topic string, msg Message) {
	n.store(ctx, &domain.Notification{
		Topic:    topic,
		Message:  Render(n.defaultLocale, msg),
		Category: categoryOf(msg),
	}, msg)
}

func (n *Notifier) store(ctx context.Context, record *domain.Notification, msg Message) {
	if err := n.repo.Create(ctx, record); err != nil {
		n.logger.Error().Err(err).
			Str("kind", string(msg.Kind)).
			Str("recipient_id", record.RecipientID).
			Str("topic", record.Topic).
			Msg("notification dropped")
		return
	}
	n.logger.Debug().Str("notification_id", record.ID).Str("kind", string(msg.Kind)).Msg("notification stored")
}

// Inbox lists the reader's direct notifications plus subscribed topics, newest first.
func (n *Notifier) Inbox(ctx context.Context, readerID string, admin bool, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultInboxLimit
	}
	if limit > maxInboxLimit {
		limit = maxInboxLimit
	}
	items, err := n.repo.ListFor(ctx, readerID, topicsFor(admin), limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead records that readerID has seen the notification.
func (n *Notifier) MarkRead(ctx context.Context, notificationID, readerID string, admin bool) error {
	return n.repo.MarkRead(ctx, notificationID, readerID, topicsFor(admin))
}

func topicsFor(admin bool) []string {
	if admin {
		return []string{domain.TopicAdmins}
	}
	return []string{}
}

func categoryOf(msg Message) domain.NotificationCategory {
	if msg.Category == "" {
		return domain.NotificationInfo
	}
	return msg.Category
}
