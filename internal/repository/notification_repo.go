package repository

import (
	"context"
	"errors"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository message center data access
type NotificationRepository interface {
	// CreateForUser stores the message and an unread delivery row for userID
	CreateForUser(ctx context.Context, msg *domain.MessageCenter, userID uint64) (*domain.MessageCenterTargetUser, error)
	ListForUser(ctx context.Context, userID uint64, since *time.Time, page, limit int) ([]domain.NotificationItem, int64, error)
	CountUnread(ctx context.Context, userID uint64) (int64, error)
	MarkRead(ctx context.Context, userID, id uint64, at time.Time) error
	MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateForUser(ctx context.Context, msg *domain.MessageCenter, userID uint64) (*domain.MessageCenterTargetUser, error) {
	var target domain.MessageCenterTargetUser
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		target = domain.MessageCenterTargetUser{MessageID: msg.ID, UserID: userID}
		return tx.Omit("Message").Create(&target).Error
	})
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uint64, since *time.Time, page, limit int) ([]domain.NotificationItem, int64, error) {
	var items []domain.NotificationItem
	var total int64

	query := r.db.WithContext(ctx).Table("message_center_target_users AS t").
		Joins("JOIN message_center AS m ON m.id = t.message_id").
		Where("t.user_id = ?", userID)
	if since != nil {
		query = query.Where("m.created_at > ?", *since)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Select("t.id AS id, m.id AS message_id, m.title AS title, m.content AS content, " +
		"t.is_read AS is_read, t.read_at AS read_at, m.created_at AS created_at").
		Order("m.created_at DESC").Order("t.id DESC").
		Offset(offset).Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.MessageCenterTargetUser{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uint64, at time.Time) error {
	var target domain.MessageCenterTargetUser
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotificationNotFound
	}
	if err != nil {
		return err
	}
	if target.IsRead {
		return nil
	}
	return r.db.WithContext(ctx).Model(&domain.MessageCenterTargetUser{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.MessageCenterTargetUser{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return result.RowsAffected, result.Error
}
