package repository

import (
	"context"
	"errors"
	"time"

	"warbler/internal/cache"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error)
	Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	DeleteOwned(ctx context.Context, id, ownerID uint) (bool, error)
}

type messageRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB, c *cache.Cache) MessageRepository {
	return &messageRepository{db: db, cache: c}
}

// newestFirst orders messages by timestamp, breaking ties on id.
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("messages.timestamp DESC").Order("messages.id DESC")
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(msg).Error; err != nil {
		return translateWriteError(err, "message already exists", "User", msg.UserID)
	}
	r.cache.InvalidateCounts(ctx, msg.UserID)
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Scopes(newestFirst).
		Preload("User").
		Where("user_id = ?", userID).
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// Timeline returns the newest messages written by userID or by anyone
// userID follows.
func (r *messageRepository) Timeline(ctx context.Context, userID uint, limit int) (msgs []models.Message, err error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Timeline", "messages")
	defer func() { observability.EndSpan(span, err) }()

	db := r.db.WithContext(ctx)
	followed := db.Model(&models.Follow{}).
		Select("user_being_followed_id").
		Where("user_following_id = ?", userID)

	if err = db.
		Scopes(newestFirst).
		Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Limit(clampLimit(limit)).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// DeleteOwned deletes message id only if ownerID wrote it, along with its
// likes. It reports whether a row was removed.
func (r *messageRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (bool, error) {
	var likers []uint
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Like{}).
			Where("message_id = ?", id).
			Pluck("user_id", &likers).Error; err != nil {
			return err
		}
		owned := tx.Model(&models.Message{}).Select("id").Where("id = ? AND user_id = ?", id, ownerID)
		if err := tx.Where("message_id IN (?)", owned).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Message{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if removed {
		r.cache.InvalidateCounts(ctx, append(likers, ownerID)...)
	}
	return removed, nil
}
