package service

import (
	"context"
	"fmt"
	"time"

	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/citysafe/inspection-backend/internal/repository"
	"github.com/citysafe/inspection-backend/internal/ws"
	"github.com/citysafe/inspection-backend/pkg/cache"
	"github.com/citysafe/inspection-backend/pkg/logger"
)

// Notifier delivers a message to one user. A nil user is a no-op.
type Notifier interface {
	Notify(ctx context.Context, userID *uint64, title, content string) error
}

// EventSender pushes real-time events to connected users
type EventSender interface {
	SendToUser(userID uint64, event *ws.Event)
}

// MessageNotifier stores messages in the message center and pushes them over WebSocket
type MessageNotifier struct {
	repo   repository.NotificationRepository
	cache  cache.Service
	events EventSender
}

// NewMessageNotifier creates a new MessageNotifier; events may be nil
func NewMessageNotifier(repo repository.NotificationRepository, c cache.Service, events EventSender) *MessageNotifier {
	return &MessageNotifier{repo: repo, cache: c, events: events}
}

// Notify persists the message first; cache and socket delivery are best effort
func (n *MessageNotifier) Notify(ctx context.Context, userID *uint64, title, content string) error {
	if userID == nil {
		return nil
	}

	msg := &domain.MessageCenter{Title: title, Content: content}
	target, err := n.repo.CreateForUser(ctx, msg, *userID)
	if err != nil {
		return fmt.Errorf("store message for user %d: %w", *userID, err)
	}

	if err := n.cache.InvalidateUnreadCount(ctx, *userID); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("user_id", *userID).Msg("invalidate unread count")
	}

	if n.events != nil {
		n.events.SendToUser(*userID, &ws.Event{
			Type: ws.EventNotification,
			Payload: domain.NotificationItem{
				ID:        target.ID,
				MessageID: msg.ID,
				Title:     msg.Title,
				Content:   msg.Content,
				CreatedAt: msg.CreatedAt,
			},
		})
	}
	return nil
}

// NotificationService read side of the message center
type NotificationService struct {
	repo   repository.NotificationRepository
	cache  cache.Service
	events EventSender
	clock  Clock
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository, c cache.Service, events EventSender, clock Clock) *NotificationService {
	return &NotificationService{repo: repo, cache: c, events: events, clock: clock}
}

// List returns the user's messages, newest first; since limits to messages created after it
func (s *NotificationService) List(ctx context.Context, userID uint64, since *time.Time, page, limit int) ([]domain.NotificationItem, int64, error) {
	page, limit = normalizePage(page, limit)
	items, total, err := s.repo.ListForUser(ctx, userID, since, page, limit)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []domain.NotificationItem{}
	}
	return items, total, nil
}

// UnreadCount served from cache when possible
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint64) (*domain.NotificationSummaryResponse, error) {
	if n, err := s.cache.GetUnreadCount(ctx, userID); err == nil {
		return &domain.NotificationSummaryResponse{TotalUnread: n}, nil
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetUnreadCount(ctx, userID, n); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("user_id", userID).Msg("cache unread count")
	}
	return &domain.NotificationSummaryResponse{TotalUnread: n}, nil
}

// MarkRead marks one delivery as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint64) error {
	if err := s.repo.MarkRead(ctx, userID, id, s.clock.Now()); err != nil {
		return err
	}
	s.refreshUnread(ctx, userID)
	return nil
}

// MarkAllRead marks every unread delivery of the user and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, s.clock.Now())
	if err != nil {
		return 0, err
	}
	s.refreshUnread(ctx, userID)
	return n, nil
}

func (s *NotificationService) refreshUnread(ctx context.Context, userID uint64) {
	if err := s.cache.InvalidateUnreadCount(ctx, userID); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("user_id", userID).Msg("invalidate unread count")
	}
	if s.events == nil {
		return
	}
	summary, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return
	}
	s.events.SendToUser(userID, &ws.Event{Type: ws.EventUnreadCount, Payload: summary})
}
