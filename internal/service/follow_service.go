package service

import (
	"context"
	"log/slog"

	"warbler/internal/models"
	"warbler/internal/repository"
)

// FollowService manages the directed follow graph.
type FollowService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	obs     Observer
}

func NewFollowService(users repository.UserRepository, follows repository.FollowRepository, obs Observer) *FollowService {
	return &FollowService{users: users, follows: follows, obs: obs}
}

// Follow makes followerID follow followedID.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uint) error {
	return s.obs.run(ctx, "follow", func(ctx context.Context) error {
		if followerID == followedID {
			return models.NewValidationError("users cannot follow themselves")
		}
		if _, err := s.users.GetByID(ctx, followerID); err != nil {
			return err
		}
		if _, err := s.users.GetByID(ctx, followedID); err != nil {
			return err
		}
		if err := s.follows.Create(ctx, followerID, followedID); err != nil {
			return err
		}

		s.obs.logger().InfoContext(ctx, "user followed",
			slog.Uint64("follower_id", uint64(followerID)),
			slog.Uint64("followed_id", uint64(followedID)))
		return nil
	})
}

// Unfollow removes the edge if present and reports whether it existed.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	var removed bool
	err := s.obs.run(ctx, "unfollow", func(ctx context.Context) error {
		var err error
		removed, err = s.follows.Delete(ctx, followerID, followedID)
		if err != nil {
			return err
		}
		if removed {
			s.obs.logger().InfoContext(ctx, "user unfollowed",
				slog.Uint64("follower_id", uint64(followerID)),
				slog.Uint64("followed_id", uint64(followedID)))
		}
		return nil
	})
	return removed, err
}

// IsFollowing reports whether a follows b.
func (s *FollowService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.follows.Exists(ctx, a, b)
}

// IsFollowedBy reports whether b follows a.
func (s *FollowService) IsFollowedBy(ctx context.Context, a, b uint) (bool, error) {
	return s.follows.Exists(ctx, b, a)
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Followers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.follows.Following(ctx, userID)
}

func (s *FollowService) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.follows.FollowerIDs(ctx, userID)
}

func (s *FollowService) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.follows.FollowingIDs(ctx, userID)
}

// FollowCounts returns the profile stats of userID.
func (s *FollowService) FollowCounts(ctx context.Context, userID uint) (*models.Counts, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Counts(ctx, userID)
}
