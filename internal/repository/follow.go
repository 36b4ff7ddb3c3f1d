package repository

import (
	"context"

	"warbler/internal/cache"
	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for the follow graph.
// An edge (followerID, followedID) means followerID follows followedID.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) (bool, error)
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB, c *cache.Cache) FollowRepository {
	return &followRepository{db: db, cache: c}
}

func (r *followRepository) Create(ctx context.Context, followerID, followedID uint) error {
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&follow).Error; err != nil {
		return translateWriteError(err, "already following this user", "User", followedID)
	}
	r.cache.InvalidateCounts(ctx, followerID, followedID)
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	r.cache.InvalidateCounts(ctx, followerID, followedID)
	return true, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Followers returns the users following userID, ordered by username.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return r.users(ctx, "follows.user_following_id", "follows.user_being_followed_id", userID)
}

// Following returns the users userID follows, ordered by username.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return r.users(ctx, "follows.user_being_followed_id", "follows.user_following_id", userID)
}

// users joins follows on joinCol and filters on matchCol.
func (r *followRepository) users(ctx context.Context, joinCol, matchCol string, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN follows ON users.id = "+joinCol).
		Where(matchCol+" = ?", userID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.ids(ctx, "user_following_id", "user_being_followed_id", userID)
}

func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return r.ids(ctx, "user_being_followed_id", "user_following_id", userID)
}

func (r *followRepository) ids(ctx context.Context, pluckCol, matchCol string, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where(matchCol+" = ?", userID).
		Order(pluckCol+" ASC").
		Pluck(pluckCol, &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
