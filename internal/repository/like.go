package repository

import (
	"context"

	"warbler/internal/cache"
	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for likes.
type LikeRepository interface {
	Create(ctx context.Context, userID, messageID uint) error
	Delete(ctx context.Context, userID, messageID uint) (bool, error)
	Exists(ctx context.Context, userID, messageID uint) (bool, error)
	MessagesLikedBy(ctx context.Context, userID uint) ([]models.Message, error)
	UsersWhoLiked(ctx context.Context, messageID uint) ([]models.User, error)
}

type likeRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB, c *cache.Cache) LikeRepository {
	return &likeRepository{db: db, cache: c}
}

func (r *likeRepository) Create(ctx context.Context, userID, messageID uint) error {
	like := models.Like{UserID: userID, MessageID: messageID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&like).Error; err != nil {
		return translateWriteError(err, "message already liked", "Message", messageID)
	}
	r.cache.InvalidateCounts(ctx, userID)
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, messageID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.cache.InvalidateCounts(ctx, userID)
	return true, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// MessagesLikedBy returns the messages userID liked, most recently liked first.
func (r *likeRepository) MessagesLikedBy(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Preload("User").
		Order("likes.created_at DESC").
		Order("likes.id DESC").
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// UsersWhoLiked returns the users who liked messageID, ordered by username.
func (r *likeRepository) UsersWhoLiked(ctx context.Context, messageID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.message_id = ?", messageID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
