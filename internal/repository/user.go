package repository

import (
	"context"
	"errors"

	"warbler/internal/cache"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// profileColumns are the columns UpdateProfile may write.
var profileColumns = []string{"Username", "Email", "ImageURL", "HeaderImageURL", "Bio", "Location"}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.User, error)
	Counts(ctx context.Context, id uint) (*models.Counts, error)
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewUserRepository returns a new UserRepository implementation. c may be nil.
func NewUserRepository(db *gorm.DB, c *cache.Cache) UserRepository {
	return &userRepository{db: db, cache: c}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns nil, nil when no user has that username.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// GetByEmail returns nil, nil when no user has that email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateWriteError(err, "username or email already taken", "User", user.ID)
	}
	return nil
}

// UpdateProfile writes the profile columns of user, including zero values.
// The password column is never touched here.
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).
		Model(user).
		Select(profileColumns).
		Updates(user)
	if result.Error != nil {
		return translateWriteError(result.Error, "username or email already taken", "User", user.ID)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	r.cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", hash)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.InvalidateUser(ctx, id)
	return nil
}

// Delete removes a user together with their messages, the likes on those
// messages, the likes they gave and every follow edge touching them.
func (r *userRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "DeleteUser", "users")
	defer func() { observability.EndSpan(span, err) }()

	var affected []uint
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		affected, err = neighbours(tx, id)
		if err != nil {
			return err
		}

		ownMessages := tx.Model(&models.Message{}).Select("id").Where("user_id = ?", id)
		steps := []func() error{
			func() error { return tx.Where("message_id IN (?)", ownMessages).Delete(&models.Like{}).Error },
			func() error { return tx.Where("user_id = ?", id).Delete(&models.Like{}).Error },
			func() error {
				return tx.Where("user_following_id = ? OR user_being_followed_id = ?", id, id).
					Delete(&models.Follow{}).Error
			},
			func() error { return tx.Where("user_id = ?", id).Delete(&models.Message{}).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return models.NewInternalError(err)
			}
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return models.NewInternalError(result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.cache.InvalidateUser(ctx, id)
	r.cache.InvalidateCounts(ctx, affected...)
	return nil
}

// neighbours returns the users whose counts change when id disappears:
// both ends of its follow edges and everyone who liked its messages.
func neighbours(tx *gorm.DB, id uint) ([]uint, error) {
	var followers, following, likers []uint
	if err := tx.Model(&models.Follow{}).
		Where("user_being_followed_id = ?", id).
		Pluck("user_following_id", &followers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := tx.Model(&models.Follow{}).
		Where("user_following_id = ?", id).
		Pluck("user_being_followed_id", &following).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := tx.Model(&models.Like{}).
		Joins("JOIN messages ON messages.id = likes.message_id").
		Where("messages.user_id = ?", id).
		Distinct().
		Pluck("likes.user_id", &likers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(followers)+len(following)+len(likers))
	ids = append(ids, followers...)
	ids = append(ids, following...)
	return append(ids, likers...), nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Order("username ASC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Search matches query as a case-insensitive substring of the username.
func (r *userRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\'`, likePattern(query)).
		Order("username ASC").
		Limit(clampLimit(limit)).
		Offset(clampOffset(offset)).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Counts returns the profile stats of a user. It does not check that the
// user exists.
func (r *userRepository) Counts(ctx context.Context, id uint) (*models.Counts, error) {
	var counts models.Counts
	err := r.cache.Aside(ctx, cache.CountsKey(id), &counts, cache.CountsTTL, func() error {
		db := r.db.WithContext(ctx)
		queries := []struct {
			dest  *int64
			model interface{}
			where string
		}{
			{&counts.Messages, &models.Message{}, "user_id = ?"},
			{&counts.Followers, &models.Follow{}, "user_being_followed_id = ?"},
			{&counts.Following, &models.Follow{}, "user_following_id = ?"},
			{&counts.Likes, &models.Like{}, "user_id = ?"},
		}
		for _, q := range queries {
			if err := db.Model(q.model).Where(q.where, id).Count(q.dest).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
