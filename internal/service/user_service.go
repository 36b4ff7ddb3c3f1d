package service

import (
	"context"
	"log/slog"
	"strings"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/validation"
)

type UserService struct {
	users repository.UserRepository
	obs   Observer
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// unchanged.
type UpdateProfileInput struct {
	UserID         uint
	Username       *string
	Email          *string
	ImageURL       *string
	HeaderImageURL *string
	Bio            *string
	Location       *string
}

func NewUserService(users repository.UserRepository, obs Observer) *UserService {
	return &UserService{users: users, obs: obs}
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetByUsername returns a NotFoundError when no user has that username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// SearchUsers matches q against usernames, ignoring case. An empty query
// lists everyone.
func (s *UserService) SearchUsers(ctx context.Context, q string, limit, offset int) ([]models.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.users.List(ctx, limit, offset)
	}
	return s.users.Search(ctx, q, limit, offset)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	var user *models.User
	err := s.obs.run(ctx, "update_profile", func(ctx context.Context) error {
		current, err := s.users.GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if err := applyProfile(current, in); err != nil {
			return err
		}
		if err := s.users.UpdateProfile(ctx, current); err != nil {
			return err
		}
		user = current

		s.obs.logger().InfoContext(ctx, "profile updated", slog.Uint64("user_id", uint64(in.UserID)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func applyProfile(user *models.User, in UpdateProfileInput) error {
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return models.NewValidationError(err.Error())
		}
		user.Username = username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return models.NewValidationError(err.Error())
		}
		user.Email = email
	}
	if in.ImageURL != nil {
		if err := validation.ValidateImageURL(*in.ImageURL); err != nil {
			return models.NewValidationError(err.Error())
		}
		user.ImageURL = orDefault(*in.ImageURL, models.DefaultImageURL)
	}
	if in.HeaderImageURL != nil {
		if err := validation.ValidateImageURL(*in.HeaderImageURL); err != nil {
			return models.NewValidationError(err.Error())
		}
		user.HeaderImageURL = orDefault(*in.HeaderImageURL, models.DefaultHeaderImageURL)
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return models.NewValidationError(err.Error())
		}
		user.Bio = *in.Bio
	}
	if in.Location != nil {
		if err := validation.ValidateLocation(*in.Location); err != nil {
			return models.NewValidationError(err.Error())
		}
		user.Location = *in.Location
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DeleteUser removes a user and everything hanging off them.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.obs.run(ctx, "delete_user", func(ctx context.Context) error {
		if err := s.users.Delete(ctx, id); err != nil {
			return err
		}
		s.obs.logger().InfoContext(ctx, "user deleted", slog.Uint64("user_id", uint64(id)))
		return nil
	})
}
