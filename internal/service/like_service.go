package service

import (
	"context"
	"log/slog"

	"warbler/internal/models"
	"warbler/internal/repository"
)

// LikeService records which users like which messages.
type LikeService struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	likes    repository.LikeRepository
	obs      Observer
}

func NewLikeService(
	users repository.UserRepository,
	messages repository.MessageRepository,
	likes repository.LikeRepository,
	obs Observer,
) *LikeService {
	return &LikeService{users: users, messages: messages, likes: likes, obs: obs}
}

// Like records that userID likes messageID. Liking twice is a
// ConstraintError.
func (s *LikeService) Like(ctx context.Context, userID, messageID uint) error {
	return s.obs.run(ctx, "like", func(ctx context.Context) error {
		return s.like(ctx, userID, messageID)
	})
}

func (s *LikeService) like(ctx context.Context, userID, messageID uint) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return err
	}
	if err := s.likes.Create(ctx, userID, messageID); err != nil {
		return err
	}
	s.obs.logger().InfoContext(ctx, "message liked",
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("message_id", uint64(messageID)))
	return nil
}

// Unlike removes the like if present and reports whether it existed.
func (s *LikeService) Unlike(ctx context.Context, userID, messageID uint) (bool, error) {
	var removed bool
	err := s.obs.run(ctx, "unlike", func(ctx context.Context) error {
		var err error
		removed, err = s.likes.Delete(ctx, userID, messageID)
		return err
	})
	return removed, err
}

// ToggleLike likes messageID if userID has not, and unlikes it otherwise.
// It returns whether the message is liked afterwards.
func (s *LikeService) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	var liked bool
	err := s.obs.run(ctx, "toggle_like", func(ctx context.Context) error {
		removed, err := s.likes.Delete(ctx, userID, messageID)
		if err != nil {
			return err
		}
		if removed {
			return nil
		}

		err = s.like(ctx, userID, messageID)
		switch {
		case err == nil:
			liked = true
		case models.IsConstraint(err):
			// Liked concurrently; the end state is the same.
			liked = true
			err = nil
		}
		return err
	})
	return liked, err
}

// LikesOf returns the messages userID has liked.
func (s *LikeService) LikesOf(ctx context.Context, userID uint) ([]models.Message, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.likes.MessagesLikedBy(ctx, userID)
}

// LikedBy returns the users who liked messageID.
func (s *LikeService) LikedBy(ctx context.Context, messageID uint) ([]models.User, error) {
	if _, err := s.messages.GetByID(ctx, messageID); err != nil {
		return nil, err
	}
	return s.likes.UsersWhoLiked(ctx, messageID)
}

func (s *LikeService) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.likes.Exists(ctx, userID, messageID)
}
